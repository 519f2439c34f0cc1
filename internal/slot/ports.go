package slot

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by stores that cannot be reached.
var ErrUnavailable = errors.New("slot store unavailable")

// Ports for the persisted key-value slot.
type (
	Reader interface {
		// Get returns the value under key; ok is false when nothing was stored yet.
		Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	}

	Writer interface {
		// Set replaces the value under key as a whole.
		Set(ctx context.Context, key string, value []byte) error
	}

	Store interface {
		Reader
		Writer
	}
)
