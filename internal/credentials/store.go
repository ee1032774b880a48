// Package credentials persists the user's generation API key per owner.
// Values are stored and returned verbatim; callers trim before Set.
package credentials

import (
	"context"
	"errors"

	"cv-improver/internal/shared/util"
)

// ErrNotFound is returned by Get when the owner has no stored credential.
var ErrNotFound = errors.New("credential not found")

// Store is durable key-value storage for one credential per owner.
type Store interface {
	Get(ctx context.Context, owner string) (string, error)
	Set(ctx context.Context, owner string, value string) error
	Remove(ctx context.Context, owner string) error
}

// ownerKey is the identifier written to storage; raw session ids never are.
func ownerKey(owner string) string {
	return util.HashOwner(owner)
}
