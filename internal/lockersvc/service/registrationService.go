package service

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/widmerroger/cardlock/internal/comm"
	"github.com/widmerroger/cardlock/internal/lockersvc/models"
)

// ScanGateway blocks for the next card scan after prompting the user.
type ScanGateway interface {
	RequestScan(ctx context.Context) (string, error)
}

// Armer starts supervision for a newly registered application.
type Armer interface {
	Arm(appName string)
}

// Notifier pushes user-facing events (dialogs, prompts) to the operator UI.
type Notifier interface {
	Notify(ev comm.UIEvent)
}

// RegistrationService runs the card registration workflow: validate the app
// name, reject duplicates, then wait for the next scan on its own goroutine
// so the interactive surface is never blocked. On success the pairing is
// persisted and the app is armed for supervision immediately.
type RegistrationService struct {
	ctx      context.Context // service lifetime, owns in-flight waits
	registry *RegistryService
	gateway  ScanGateway
	armer    Armer
	notifier Notifier
}

func NewRegistrationService(ctx context.Context, registry *RegistryService,
	gateway ScanGateway, armer Armer, notifier Notifier) *RegistrationService {
	return &RegistrationService{
		ctx:      ctx,
		registry: registry,
		gateway:  gateway,
		armer:    armer,
		notifier: notifier,
	}
}

// Register performs the synchronous part of the workflow and kicks off the
// scan wait in the background. The returned error covers validation and
// duplicate checks only; scan-side failures are reported through the notifier.
func (s *RegistrationService) Register(ctx context.Context, appName string) error {
	appName = models.NormalizeAppName(appName)
	if appName == "" {
		return ErrValidation
	}

	registered, err := s.registry.IsRegistered(ctx, appName)
	if err != nil {
		return err
	}
	if registered {
		return ErrDuplicateRegistration
	}

	go s.waitForCardAndRegister(appName)

	return nil
}

// Remove deletes the pairing for an app name. Reports whether one existed.
func (s *RegistrationService) Remove(ctx context.Context, appName string) (bool, error) {
	appName = models.NormalizeAppName(appName)
	if appName == "" {
		return false, ErrValidation
	}

	return s.registry.RemoveByAppName(ctx, appName)
}

func (s *RegistrationService) waitForCardAndRegister(appName string) {
	cardID, err := s.gateway.RequestScan(s.ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = ErrScanTimeout
		}
		log.Errorf("Error [RegistrationService.waitForCardAndRegister] %s", err)
		s.notifier.Notify(comm.NewUIEvent("dialog", appName, "error", err.Error()))
		return
	}

	if cardID == "" {
		log.Errorf("Error [RegistrationService.waitForCardAndRegister] %s", ErrScanFailure)
		s.notifier.Notify(comm.NewUIEvent("dialog", appName, "error", ErrScanFailure.Error()))
		return
	}

	if err := s.registry.Append(s.ctx, cardID, appName); err != nil {
		log.Errorf("Error [RegistrationService.waitForCardAndRegister] %s", err)
		s.notifier.Notify(comm.NewUIEvent("dialog", appName, "error", err.Error()))
		return
	}

	s.notifier.Notify(comm.NewUIEvent("dialog", appName, "info",
		fmt.Sprintf("Card number: %s registered to application: %s", cardID, appName)))
	log.Infof("card registered to application %s", appName)

	// guard the new app without requiring a restart
	s.armer.Arm(appName)
}
