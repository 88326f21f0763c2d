// Package id generates and validates identifiers.
//
// Documents in the store (posts, comments, notifications) use 24-character hex
// ObjectIDs. Transient identifiers (SSE clients, token IDs, seeded users) use
// prefixed NanoIDs.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	domainerrors "github.com/mommylounge/lounge-server/internal/errors"
)

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "sse-V1StGXR8_Z5jdHi6B-myT").
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// NewObjectID returns a fresh document ID.
func NewObjectID() primitive.ObjectID {
	return primitive.NewObjectID()
}

// ParseObjectID validates a document ID before it reaches the store.
// kind names the entity in the error message ("post", "comment", ...).
func ParseObjectID(kind, s string) (primitive.ObjectID, error) {
	if s == "" {
		return primitive.NilObjectID, domainerrors.Validationf("%s id is required", kind).
			WithDetails(map[string]string{kind + "_id": "is required"})
	}
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, domainerrors.Validationf("invalid %s id %q", kind, s).
			WithDetails(map[string]string{kind + "_id": "must be a 24-character hex id"})
	}
	return oid, nil
}

// IsObjectID reports whether s is a well-formed document ID.
func IsObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}
