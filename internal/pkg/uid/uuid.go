package uid

import "github.com/google/uuid"

// UUID generates version 7 UUID strings. They sort by creation time, which
// keeps correlation and token IDs readable in logs.
type UUID struct{}

// NewUUID returns a UUID generator.
func NewUUID() *UUID {
	return &UUID{}
}

// Generate returns a new v7 UUID, or a random v4 if the v7 source fails.
func (*UUID) Generate() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
