// internal/auth/resolver.go
package auth

import (
	"context"
	"fmt"
	"strconv"

	"astrochat/internal/domain"
	"astrochat/internal/repository"
	"astrochat/internal/util"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the result of resolving a bearer credential.
type Identity struct {
	UserID int64
	Role   domain.UserRole
}

// Resolver resolves a bearer credential to a user identity and role.
type Resolver interface {
	Resolve(ctx context.Context, credential string) (Identity, error)
}

// JWTResolver resolves HS256-signed tokens whose subject claim carries the
// user ID, then loads the user from the store to pick up the current role
// and active flag.
type JWTResolver struct {
	secret []byte
	db     repository.DBExecutor
	users  repository.UserRepository
}

// NewJWTResolver creates a new JWTResolver.
func NewJWTResolver(secret string, db repository.DBExecutor, users repository.UserRepository) *JWTResolver {
	return &JWTResolver{
		secret: []byte(secret),
		db:     db,
		users:  users,
	}
}

// Resolve parses and verifies the token and returns the identity of its
// subject. Any parse, signature, expiry or lookup failure maps to
// util.ErrUnauthorized so callers can treat them uniformly.
func (r *JWTResolver) Resolve(ctx context.Context, credential string) (Identity, error) {
	token, err := jwt.Parse(credential, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return r.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, util.ErrUnauthorized
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return Identity{}, util.ErrUnauthorized
	}
	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return Identity{}, util.ErrUnauthorized
	}

	user, err := r.users.GetUserByID(ctx, r.db, userID)
	if err != nil {
		return Identity{}, util.ErrUnauthorized
	}
	if !user.IsActive {
		return Identity{}, util.ErrUnauthorized
	}

	return Identity{UserID: user.ID, Role: user.Role}, nil
}
