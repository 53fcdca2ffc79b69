// Package auth owns credential handling and session tokens: password
// digests, token issuance, and per-request identity resolution.
package auth

import (
	"context"

	"github.com/danivela/ai-todo-be/internal/models"
)

// Identity is the resolved acting user attached to an authenticated request.
type Identity struct {
	UserID   int64
	Username string
}

// PasswordHasher is the credential subset of Authenticator, for components
// that never touch tokens.
type PasswordHasher interface {
	HashPassword(plaintext string) (string, error)
	CheckPassword(plaintext, digest string) bool
}

// Authenticator bundles the authentication operations the rest of the
// application is allowed to use.
type Authenticator interface {
	PasswordHasher
	Issue(user models.User) (string, error)
	Resolve(ctx context.Context, token string) (Identity, error)
}

// SubjectStore looks up token subjects in the credential store.
type SubjectStore interface {
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

type contextKey string

const identityKey = contextKey("identity")

// WithIdentity returns a context carrying the resolved identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom extracts the resolved identity from the request context.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
