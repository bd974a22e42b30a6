package service

import (
	"context"
	"fmt"

	"github.com/widmerroger/cardlock/internal/lockersvc/models"
	"github.com/widmerroger/cardlock/internal/lockersvc/store"
)

// RegistryService wraps the pairing store. Store failures come back wrapped
// in ErrPersistence so callers can match with errors.Is.
type RegistryService struct {
	store store.Registry
}

func NewRegistryService(store store.Registry) *RegistryService {
	return &RegistryService{store: store}
}

func (s *RegistryService) IsRegistered(ctx context.Context, appName string) (bool, error) {
	ok, err := s.store.IsRegistered(ctx, models.NormalizeAppName(appName))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return ok, nil
}

func (s *RegistryService) Append(ctx context.Context, cardID, appName string) error {
	if err := s.store.Append(ctx, cardID, models.NormalizeAppName(appName)); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func (s *RegistryService) RemoveByAppName(ctx context.Context, appName string) (bool, error) {
	found, err := s.store.RemoveByAppName(ctx, models.NormalizeAppName(appName))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return found, nil
}

func (s *RegistryService) FindCardFor(ctx context.Context, appName string) (string, bool, error) {
	cardID, found, err := s.store.FindCardFor(ctx, models.NormalizeAppName(appName))
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return cardID, found, nil
}

func (s *RegistryService) IsCardRegistered(ctx context.Context, cardID string) (bool, error) {
	ok, err := s.store.IsCardRegistered(ctx, cardID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return ok, nil
}

func (s *RegistryService) LoadAllAppNames(ctx context.Context) ([]string, error) {
	names, err := s.store.LoadAllAppNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return names, nil
}
