package domain

import (
	"context"
	"time"
)

// StateStore is the key-value contract behind per-email OTP and analysis state.
// Entries past their TTL must behave as absent. SetNX and CompareAndDelete are
// atomic per key.
type StateStore interface {
	// SetNX stores value only if key is absent. It reports whether the write happened.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get returns ErrNotFound when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	// CompareAndDelete removes key only if its current value equals expected.
	CompareAndDelete(ctx context.Context, key string, expected []byte) (bool, error)
	Delete(ctx context.Context, key string) error
}
