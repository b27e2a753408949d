// Package idgen contains the default [domain.IDGenerator] implementation.
package idgen

import (
	"github.com/google/uuid"

	"github.com/firelite-db/firelite/domain"
)

// IDGenerator implements [domain.IDGenerator] with random UUIDs.
type IDGenerator struct{}

// NewIDGenerator returns a new implementation of [domain.IDGenerator].
func NewIDGenerator() domain.IDGenerator {
	return &IDGenerator{}
}

// NewID implements [domain.IDGenerator].
func (g *IDGenerator) NewID() string {
	return uuid.NewString()
}
