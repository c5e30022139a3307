// internal/storage/store.go

// Package storage persists the wizard state as a single JSON blob under a
// namespaced key: {"users": {id: profile}, "applications": {id: app}}.
// Every mutation decodes the blob, applies the change, and writes the whole
// blob back. An absent or undecodable blob reads as empty state.
package storage

import (
	"context"
	"encoding/json"

	"loanflow/internal/common/logger"
	"loanflow/internal/models"
)

// State is the decoded namespace blob.
type State struct {
	Users        map[string]*models.UserProfile `json:"users"`
	Applications map[string]*models.Application `json:"applications"`
}

// NewState returns an empty state with both maps allocated.
func NewState() *State {
	return &State{
		Users:        make(map[string]*models.UserProfile),
		Applications: make(map[string]*models.Application),
	}
}

// Store is the persistence boundary for users and applications. Lookups
// report a miss as a nil record with a nil error; errors are reserved for
// backend failures. Mutate applies fn to the decoded state and writes the
// result back in a single write, which is what makes multi-record updates
// (create application + user pointer) non-tearable.
type Store interface {
	SaveUser(ctx context.Context, user *models.UserProfile) error
	GetUser(ctx context.Context, id string) (*models.UserProfile, error)
	GetUserByEmail(ctx context.Context, email string) (*models.UserProfile, error)
	SaveApplication(ctx context.Context, app *models.Application) error
	GetApplication(ctx context.Context, id string) (*models.Application, error)
	GetUserApplication(ctx context.Context, userID string) (*models.Application, error)
	Mutate(ctx context.Context, fn func(*State) error) error
	ClearAllData(ctx context.Context) error
}

// backend is the raw blob transport a Store implementation plugs in.
type backend interface {
	load(ctx context.Context) ([]byte, error) // nil bytes means no blob stored
	save(ctx context.Context, data []byte) error
	clear(ctx context.Context) error
}

// blobStore implements Store on top of any blob backend.
type blobStore struct {
	backend backend
	logger  logger.Logger
}

func newBlobStore(b backend, log logger.Logger) *blobStore {
	return &blobStore{
		backend: b,
		logger:  log,
	}
}

func (s *blobStore) loadState(ctx context.Context) (*State, error) {
	raw, err := s.backend.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return NewState(), nil
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		// A corrupted blob reads as empty rather than failing the caller.
		s.logger.Warn("stored state blob is not decodable, treating as empty", map[string]interface{}{
			"error": err.Error(),
			"bytes": len(raw),
		})
		return NewState(), nil
	}
	if state.Users == nil {
		state.Users = make(map[string]*models.UserProfile)
	}
	if state.Applications == nil {
		state.Applications = make(map[string]*models.Application)
	}
	return &state, nil
}

func (s *blobStore) saveState(ctx context.Context, state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.backend.save(ctx, raw)
}

func (s *blobStore) SaveUser(ctx context.Context, user *models.UserProfile) error {
	return s.Mutate(ctx, func(state *State) error {
		state.Users[user.ID] = user
		return nil
	})
}

func (s *blobStore) GetUser(ctx context.Context, id string) (*models.UserProfile, error) {
	state, err := s.loadState(ctx)
	if err != nil {
		return nil, err
	}
	return state.Users[id], nil
}

func (s *blobStore) GetUserByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	state, err := s.loadState(ctx)
	if err != nil {
		return nil, err
	}
	for _, user := range state.Users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, nil
}

func (s *blobStore) SaveApplication(ctx context.Context, app *models.Application) error {
	return s.Mutate(ctx, func(state *State) error {
		state.Applications[app.ID] = app
		return nil
	})
}

func (s *blobStore) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	state, err := s.loadState(ctx)
	if err != nil {
		return nil, err
	}
	return state.Applications[id], nil
}

func (s *blobStore) GetUserApplication(ctx context.Context, userID string) (*models.Application, error) {
	state, err := s.loadState(ctx)
	if err != nil {
		return nil, err
	}
	for _, app := range state.Applications {
		if app.UserID == userID {
			return app, nil
		}
	}
	return nil, nil
}

func (s *blobStore) Mutate(ctx context.Context, fn func(*State) error) error {
	state, err := s.loadState(ctx)
	if err != nil {
		return err
	}
	if err := fn(state); err != nil {
		return err
	}
	return s.saveState(ctx, state)
}

func (s *blobStore) ClearAllData(ctx context.Context) error {
	return s.backend.clear(ctx)
}
