package supervisor

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/widmerroger/cardlock/internal/lockersvc/locker"
	"github.com/widmerroger/cardlock/internal/platform"
)

// Manager owns the set of live supervisors. Arm is idempotent per app: a
// re-arm request for an app with a live watcher is dropped so repeated
// triggers stay harmless.
type Manager struct {
	ctx      context.Context
	interval time.Duration
	platform platform.Controller
	locker   *locker.Locker

	mu     sync.Mutex
	active map[string]bool
	wg     sync.WaitGroup
}

func NewManager(ctx context.Context, interval time.Duration, pc platform.Controller, lk *locker.Locker) *Manager {
	return &Manager{
		ctx:      ctx,
		interval: interval,
		platform: pc,
		locker:   lk,
		active:   make(map[string]bool),
	}
}

// Arm starts a supervisor for appName unless one is already running.
func (m *Manager) Arm(appName string) {
	m.mu.Lock()
	if m.active[appName] {
		m.mu.Unlock()
		log.Infof("supervisor for %s already armed", appName)
		return
	}
	m.active[appName] = true
	m.mu.Unlock()

	sup := New(appName, m.interval, m.platform, m.locker)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer func() {
			m.mu.Lock()
			delete(m.active, appName)
			m.mu.Unlock()
		}()

		if err := sup.Run(m.ctx); err != nil && err != context.Canceled {
			log.Warnf("supervisor for %s stopped: %s", appName, err)
		}
	}()
}

// ArmAll re-arms supervision for every known app name. Safe to call
// repeatedly (the hotkey/rearm trigger).
func (m *Manager) ArmAll(appNames []string) {
	for _, name := range appNames {
		m.Arm(name)
	}
	log.Infof("monitoring armed for %d applications", len(appNames))
}

// Active reports how many supervisors are currently running.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// Wait blocks until all supervisors have exited, used during shutdown.
func (m *Manager) Wait() {
	m.wg.Wait()
}
