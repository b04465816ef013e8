package storage

import "github.com/google/uuid"

// IDGenerator produces unique opaque identifiers for birthdays and messages.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random (v4) UUIDs.
type UUIDGenerator struct{}

// NewID returns a fresh UUID string.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}
