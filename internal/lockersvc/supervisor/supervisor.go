package supervisor

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/widmerroger/cardlock/internal/lockersvc/locker"
	"github.com/widmerroger/cardlock/internal/lockersvc/service"
	"github.com/widmerroger/cardlock/internal/platform"
)

// Supervisor watches the process table for one guarded application. When the
// process appears it is terminated and the lock/unlock state machine takes
// over. After an Unlocked outcome the supervisor re-arms itself so the
// relaunched app stays guarded; any other outcome ends supervision for this
// instance.
type Supervisor struct {
	appName  string
	interval time.Duration
	platform platform.Controller
	locker   *locker.Locker
}

func New(appName string, interval time.Duration, pc platform.Controller, lk *locker.Locker) *Supervisor {
	return &Supervisor{
		appName:  appName,
		interval: interval,
		platform: pc,
		locker:   lk,
	}
}

// Run polls until the guarded process shows up, then locks. Returns when the
// cycle ends in a terminal state, on a monitor error, or when ctx is done.
func (s *Supervisor) Run(ctx context.Context) error {
	log.Infof("supervising application %s", s.appName)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		pid, found, err := s.platform.FindProcess(s.appName)
		if err != nil {
			// fail-isolated: this app is unguarded until re-armed
			log.Errorf("Error [Supervisor.Run] %s: %s", s.appName, err)
			return fmt.Errorf("%w: %v", service.ErrProcessMonitor, err)
		}
		if !found {
			continue
		}

		if err := s.platform.Terminate(pid); err != nil {
			log.Errorf("Error [Supervisor.Run] terminate %s pid %d: %s", s.appName, pid, err)
			continue
		}

		state, err := s.locker.Run(ctx, s.appName)
		if err != nil {
			log.Warnf("lock cycle for %s ended: %s", s.appName, err)
		}

		if state == locker.StateUnlocked {
			continue // keep guarding the relaunched app
		}

		return nil
	}
}
