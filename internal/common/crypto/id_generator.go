package crypto

import "github.com/google/uuid"

// IDGenerator mints identifiers for new rows. Services take the
// interface so tests can hand out predictable IDs.
type IDGenerator interface {
	NewID() (string, error)
}

// UUIDGenerator produces random (v4) UUIDs.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
