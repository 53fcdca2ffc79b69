package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/danivela/ai-todo-be/internal/apperr"
	"github.com/danivela/ai-todo-be/internal/models"
)

// Claims defines the JWT claims structure. The subject carries the username.
type Claims struct {
	jwt.RegisteredClaims
}

// Service implements Authenticator with bcrypt digests and HS256 tokens.
// Tokens are self-contained; nothing is persisted server-side.
type Service struct {
	*Hasher
	secret   []byte
	tokenTTL time.Duration
	subjects SubjectStore
}

// NewService creates an authenticator. The signing secret and token lifetime
// are fixed at construction and immutable afterwards.
func NewService(secret []byte, tokenTTL time.Duration, subjects SubjectStore) *Service {
	return &Service{
		Hasher:   NewHasher(),
		secret:   secret,
		tokenTTL: tokenTTL,
		subjects: subjects,
	}
}

// Issue creates a signed token asserting the user's identity until the
// configured lifetime elapses.
func (s *Service) Issue(user models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Resolve validates a presented token and resolves it to the acting user.
// Every failure kind is logged with its cause but returned uniformly as
// apperr.ErrUnauthenticated so callers cannot tell why a token was rejected.
func (s *Service) Resolve(ctx context.Context, tokenStr string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			log.Debug().Err(err).Msg("Rejected malformed token")
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			log.Warn().Err(err).Msg("Rejected token with invalid signature")
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug().Str("jti", claims.ID).Msg("Rejected expired token")
		default:
			log.Debug().Err(err).Msg("Rejected invalid token")
		}
		return Identity{}, apperr.ErrUnauthenticated
	}
	if !token.Valid || claims.Subject == "" {
		return Identity{}, apperr.ErrUnauthenticated
	}

	user, err := s.subjects.GetUserByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			// The subject was deleted after the token was issued.
			log.Warn().Str("subject", claims.Subject).Msg("Rejected token for unknown subject")
			return Identity{}, apperr.ErrUnauthenticated
		}
		return Identity{}, err
	}

	return Identity{UserID: user.ID, Username: user.Username}, nil
}
