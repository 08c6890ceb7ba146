package network

import (
	"context"
	"errors"
)

// ErrNoState is returned by Store.Load when nothing has been saved yet.
var ErrNoState = errors.New("no saved state")

// Store persists the application state. Implementations live in
// pkg/storage.
type Store interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, s *State) error
	Close() error
}
