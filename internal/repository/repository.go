// Package repository persists the latest catalogue snapshot between runs.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Houeta/catalog-watcher/internal/models"
)

var ErrStateNotFound = errors.New("state not found")

// StateRepository is a snapshot backend. GetState returns ErrStateNotFound when nothing was saved yet.
type StateRepository interface {
	GetState(ctx context.Context) (*models.State, error)
	UpdateState(ctx context.Context, state *models.State) error
}

// Store loads and saves snapshots on top of a backend.
// Loading never fails: a missing or unreadable snapshot means "no previous state".
// Saving always reports its error.
type Store struct {
	log  *slog.Logger
	repo StateRepository
	now  func() time.Time
}

func NewStore(log *slog.Logger, repo StateRepository) *Store {
	return &Store{log: log, repo: repo, now: time.Now}
}

// WithClock replaces the time source used for lastChecked.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Load returns the previous snapshot or nil.
func (s *Store) Load(ctx context.Context) *models.State {
	const opn = "repository.Store.Load"

	state, err := s.repo.GetState(ctx)
	switch {
	case errors.Is(err, ErrStateNotFound):
		s.log.InfoContext(ctx, "No previous state (first run)", "op", opn)
		return nil
	case err != nil:
		s.log.WarnContext(ctx, "Previous state is unreadable, treating as first run", "op", opn, "error", err)
		return nil
	}

	return state
}

// Save persists products as the new snapshot, incrementing the check counter of previous.
func (s *Store) Save(ctx context.Context, products []models.Product, previous *models.State) (*models.State, error) {
	const opn = "repository.Store.Save"

	state := models.NextState(products, previous, s.now())
	if err := s.repo.UpdateState(ctx, state); err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}

	return state, nil
}
