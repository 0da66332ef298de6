// Package override keeps operator-chosen table statuses that shadow the server status.
//
// Overrides are advisory: they never reach the backend and are not reconciled against
// server-side status changes.
package override

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/alihassan193/snooker-console/internal/domain"
)

var ErrInvalidStatus = errors.New("invalid table status")

type Storage interface {
	Load(ctx context.Context) (map[uint]domain.TableStatus, error)
	Put(ctx context.Context, tableID uint, status domain.TableStatus) error
	Delete(ctx context.Context, tableID uint) error
}

type Store struct {
	mu        sync.RWMutex
	overrides map[uint]domain.TableStatus
	storage   Storage
}

// NewStore loads the persisted overrides once. Unreadable storage is logged and the
// store starts empty.
func NewStore(ctx context.Context, storage Storage) *Store {
	s := &Store{
		overrides: make(map[uint]domain.TableStatus),
		storage:   storage,
	}

	loaded, err := storage.Load(ctx)
	if err != nil {
		zap.L().Warn("discarding unreadable table status overrides", zap.Error(err))
		return s
	}

	for tableID, status := range loaded {
		if !status.Valid() {
			zap.L().Warn("skipping invalid table status override",
				zap.Uint("table_id", tableID), zap.String("status", string(status)))
			continue
		}
		s.overrides[tableID] = status
	}

	return s
}

// Status returns the override for tableID, or serverStatus when there is none.
func (s *Store) Status(tableID uint, serverStatus domain.TableStatus) domain.TableStatus {
	if status, ok := s.Lookup(tableID); ok {
		return status
	}

	return serverStatus
}

func (s *Store) Lookup(tableID uint) (domain.TableStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status, ok := s.overrides[tableID]
	return status, ok
}

// Set upserts the override. A persistence failure is logged; the override still applies
// for the life of the process.
func (s *Store) Set(ctx context.Context, tableID uint, status domain.TableStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	s.mu.Lock()
	s.overrides[tableID] = status
	s.mu.Unlock()

	if err := s.storage.Put(ctx, tableID, status); err != nil {
		zap.L().Error("failed to persist table status override",
			zap.Uint("table_id", tableID), zap.String("status", string(status)), zap.Error(err))
	}

	return nil
}

func (s *Store) Clear(ctx context.Context, tableID uint) {
	s.mu.Lock()
	delete(s.overrides, tableID)
	s.mu.Unlock()

	if err := s.storage.Delete(ctx, tableID); err != nil {
		zap.L().Error("failed to remove persisted table status override",
			zap.Uint("table_id", tableID), zap.Error(err))
	}
}

func (s *Store) All() map[uint]domain.TableStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make(map[uint]domain.TableStatus, len(s.overrides))
	for tableID, status := range s.overrides {
		all[tableID] = status
	}

	return all
}
