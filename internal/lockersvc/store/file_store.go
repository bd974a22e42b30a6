package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/widmerroger/cardlock/internal/lockersvc/models"
)

// FileStore keeps pairings as delimited rows of (cardId, appName) in a flat
// file. Lookups re-scan the file every time so edits made outside the process
// are picked up. Removal rewrites to a temp file and renames it into place.
type FileStore struct {
	path string
	mu   sync.Mutex // serializes mutations
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) IsRegistered(ctx context.Context, appName string) (bool, error) {
	rows, err := s.readAll()
	if err != nil {
		return false, err
	}
	for _, p := range rows {
		if p.AppName == appName {
			return true, nil
		}
	}
	return false, nil
}

func (s *FileStore) Append(ctx context.Context, cardID, appName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open registry file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{cardID, appName}); err != nil {
		return fmt.Errorf("failed to append pairing: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush pairing: %w", err)
	}

	return nil
}

func (s *FileStore) RemoveByAppName(ctx context.Context, appName string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readAll()
	if err != nil {
		return false, err
	}

	found := false
	kept := make([]models.CardAppPairing, 0, len(rows))
	for _, p := range rows {
		if p.AppName == appName {
			found = true
			continue
		}
		kept = append(kept, p)
	}

	if !found {
		return false, nil
	}

	// write-to-temp-then-rename so a concurrent reader never sees a
	// half-written registry
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".registry-*")
	if err != nil {
		return false, fmt.Errorf("failed to create temp registry: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	for _, p := range kept {
		if err := w.Write([]string{p.CardID, p.AppName}); err != nil {
			tmp.Close()
			return false, fmt.Errorf("failed to rewrite pairing: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return false, fmt.Errorf("failed to flush registry rewrite: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return false, fmt.Errorf("failed to close temp registry: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return false, fmt.Errorf("failed to replace registry file: %w", err)
	}

	return true, nil
}

func (s *FileStore) FindCardFor(ctx context.Context, appName string) (string, bool, error) {
	rows, err := s.readAll()
	if err != nil {
		return "", false, err
	}
	for _, p := range rows {
		if p.AppName == appName { // first match wins
			return p.CardID, true, nil
		}
	}
	return "", false, nil
}

func (s *FileStore) IsCardRegistered(ctx context.Context, cardID string) (bool, error) {
	rows, err := s.readAll()
	if err != nil {
		return false, err
	}
	for _, p := range rows {
		if p.CardID == cardID {
			return true, nil
		}
	}
	return false, nil
}

func (s *FileStore) LoadAllAppNames(ctx context.Context) ([]string, error) {
	rows, err := s.readAll()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, p := range rows {
		names = append(names, p.AppName)
	}
	return names, nil
}

func (s *FileStore) Close() error {
	return nil
}

// readAll scans the whole backing file; a missing file is an empty registry.
func (s *FileStore) readAll() ([]models.CardAppPairing, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open registry file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	pairings := make([]models.CardAppPairing, 0, len(records))
	for _, rec := range records {
		if len(rec) < 2 {
			continue // tolerate malformed rows
		}
		pairings = append(pairings, models.CardAppPairing{CardID: rec[0], AppName: rec[1]})
	}

	return pairings, nil
}
