package sexp

import "github.com/google/uuid"

// NewUUID generates an identifier for entities created
// programmatically. Entities read from a file keep the identifier the
// file carried.
func NewUUID() string {
	return uuid.NewString()
}
