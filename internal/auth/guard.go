package auth

import (
	"context"
	"errors"

	"github.com/vedang-raul/taskhub/internal/domain/user"
)

var (
	// ErrUnknownSubject means the token verified but its subject no longer
	// exists. Kept distinct for logging; the transport layer must surface it
	// exactly like ErrInvalidToken.
	ErrUnknownSubject = errors.New("unknown subject")

	ErrForbidden = errors.New("forbidden")
)

// UserReader is the slice of the credential store the guard needs.
type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

// Guard turns a bearer token into a live user record. Tokens are stateless,
// so the subject is re-resolved against the store on every request; a token
// for a deleted user verifies but fails here.
type Guard struct {
	tokens *Manager
	users  UserReader
}

func NewGuard(tokens *Manager, users UserReader) *Guard {
	return &Guard{tokens: tokens, users: users}
}

func (g *Guard) Resolve(ctx context.Context, raw string) (user.User, error) {
	claims, err := g.tokens.VerifyAccessToken(raw)

	if err != nil {
		return user.User{}, err
	}

	u, err := g.users.GetByEmail(ctx, claims.Subject)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrUnknownSubject
		}

		return user.User{}, err
	}

	return u, nil
}

// RequireRole is an exact-match check; there is no role hierarchy.
func (g *Guard) RequireRole(u user.User, role string) error {
	if u.Role != role {
		return ErrForbidden
	}

	return nil
}
