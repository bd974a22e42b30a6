package locker

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/widmerroger/cardlock/internal/comm"
	"github.com/widmerroger/cardlock/internal/lockersvc/service"
	"github.com/widmerroger/cardlock/internal/platform"
)

// State of one lock/unlock cycle. Unlocked and SecurityLockout are terminal;
// a cycle that ends Locked stayed locked (unknown card, timeout, cancel).
type State string

const (
	StateLocked          State = "locked"
	StateAwaitingCard    State = "awaiting-card"
	StateUnlocked        State = "unlocked"
	StateSecurityLockout State = "security-lockout"
)

const (
	// pause before the punitive sequence starts, mirrors the sensor's
	// scan-settle time
	lockoutGraceDelay = 500 * time.Millisecond

	// how long the camera runs before it is force-stopped
	cameraCaptureWindow = 1500 * time.Millisecond
)

// Locker drives the per-application lock/unlock state machine: show the lock
// prompt, wait for a card, validate it against the registry, then either
// relaunch the app or run the security lockout.
type Locker struct {
	registry *service.RegistryService
	gateway  service.ScanGateway
	platform platform.Controller
	notifier service.Notifier
}

func New(registry *service.RegistryService, gateway service.ScanGateway,
	pc platform.Controller, notifier service.Notifier) *Locker {
	return &Locker{
		registry: registry,
		gateway:  gateway,
		platform: pc,
		notifier: notifier,
	}
}

// Run executes one full cycle for appName. The guarded process has already
// been terminated by the supervisor when this is called.
func (l *Locker) Run(ctx context.Context, appName string) (State, error) {
	l.notifier.Notify(comm.NewUIEvent("lock-prompt", appName, "warning",
		"Please scan your card to unlock the application"))
	log.Infof("application %s locked, awaiting card", appName)

	cardID, err := l.gateway.RequestScan(ctx)
	if err != nil {
		defer l.dismissPrompt(appName)
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warnf("lock prompt for %s expired: %s", appName, service.ErrScanTimeout)
			return StateLocked, service.ErrScanTimeout
		}
		return StateLocked, err
	}

	known, err := l.registry.IsCardRegistered(ctx, cardID)
	if err != nil {
		l.dismissPrompt(appName)
		return StateLocked, err
	}
	if !known {
		l.notifier.Notify(comm.NewUIEvent("dialog", appName, "error",
			service.ErrUnknownCard.Error()))
		l.dismissPrompt(appName)
		return StateLocked, service.ErrUnknownCard
	}

	registeredCard, found, err := l.registry.FindCardFor(ctx, appName)
	if err != nil {
		l.dismissPrompt(appName)
		return StateLocked, err
	}

	if found && cardID == registeredCard {
		if err := l.platform.Launch(appName); err != nil {
			log.Errorf("Error [Locker.Run] relaunch %s: %s", appName, err)
		}
		l.dismissPrompt(appName)
		log.Infof("unlocked %s", appName)
		return StateUnlocked, nil
	}

	// valid card, wrong application: punitive path
	l.securityLockout(appName)
	l.dismissPrompt(appName)
	return StateSecurityLockout, nil
}

func (l *Locker) securityLockout(appName string) {
	log.Warnf("security lockout triggered for %s", appName)
	time.Sleep(lockoutGraceDelay)

	if err := l.platform.StartCameraCapture(); err != nil {
		log.Errorf("Error [Locker.securityLockout] camera start: %s", err)
	}
	time.Sleep(cameraCaptureWindow)
	if err := l.platform.StopCameraCapture(); err != nil {
		log.Errorf("Error [Locker.securityLockout] camera stop: %s", err)
	}

	if err := l.platform.LockWorkstation(); err != nil {
		log.Errorf("Error [Locker.securityLockout] workstation lock: %s", err)
	}
}

func (l *Locker) dismissPrompt(appName string) {
	l.notifier.Notify(comm.NewUIEvent("dismiss-prompt", appName, "info", ""))
}
