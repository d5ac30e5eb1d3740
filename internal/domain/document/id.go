package document

import (
	"github.com/google/uuid"
)

// IDKey is the wire name of a document identifier.
const IDKey = "_id"

// NewID returns a fresh document identifier.
func NewID() string {
	return uuid.NewString()
}

// ParseID normalises a client-supplied identifier. It reports false when the
// value is not a well-formed identifier.
func ParseID(raw string) (string, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}
