package service

import "github.com/google/uuid"

type IDGenerator interface {
	NewID() (string, error)
}
type RandomIDGenerator struct {
	prefix string
}

func NewRandomIDGenerator(prefix string) *RandomIDGenerator {
	return &RandomIDGenerator{prefix: prefix}
}

// NewID returns random identifier. IDs are never reused, so uniqueness
// within a store follows from uuid uniqueness.
func (g *RandomIDGenerator) NewID() (string, error) {
	id := uuid.NewString()
	if g.prefix == "" {
		return id, nil
	}
	return g.prefix + id, nil
}
