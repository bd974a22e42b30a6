package service

import "errors"

// Workflow-boundary errors. All of them surface as a user-visible message;
// none crash the owning goroutine except ErrProcessMonitor, which ends only
// that application's supervisor.
var (
	ErrValidation            = errors.New("application name is empty")
	ErrDuplicateRegistration = errors.New("application is already registered with a card")
	ErrScanFailure           = errors.New("failed to retrieve card number")
	ErrScanTimeout           = errors.New("timed out waiting for a card scan")
	ErrUnknownCard           = errors.New("card is not registered")
	ErrPersistence           = errors.New("registry store failure")
	ErrProcessMonitor        = errors.New("process enumeration failed")
)
