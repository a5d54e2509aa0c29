package auth

import (
	"context"

	"github.com/dmitrijs2005/blockkeeper/internal/common"
)

// Identity is the per-call result of token resolution. The zero value means
// "unauthenticated".
type Identity struct {
	Subject string
	IsAuth  bool
}

// Anonymous is the identity of a call without a valid token.
var Anonymous = Identity{}

// Authenticated returns the identity of a verified subject.
func Authenticated(subject string) Identity {
	return Identity{Subject: subject, IsAuth: true}
}

// Require returns the subject or common.ErrorUnauthorized.
func (i Identity) Require() (string, error) {
	if !i.IsAuth || i.Subject == "" {
		return "", common.ErrorUnauthorized
	}
	return i.Subject, nil
}

type identityKey struct{}

// WithIdentity attaches id to ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity attached by WithIdentity, or
// Anonymous when there is none.
func IdentityFromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(identityKey{}).(Identity); ok {
		return id
	}
	return Anonymous
}
