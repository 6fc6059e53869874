package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/hongminglow/fanclub/internal/http/respond"
	"github.com/hongminglow/fanclub/internal/models"
	"github.com/hongminglow/fanclub/internal/storage"
)

type userKey struct{}

// TokenParser turns a bearer token into a user id.
type TokenParser interface {
	Parse(raw string) (string, error)
}

// UserLoader resolves the user id carried by a token.
type UserLoader interface {
	User(ctx context.Context, id string) (models.User, error)
}

// Authenticator resolves bearer tokens into users.
type Authenticator struct {
	tokens TokenParser
	users  UserLoader
}

// NewAuthenticator constructs the middleware factory.
func NewAuthenticator(tokens TokenParser, users UserLoader) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Require rejects requests without a valid bearer token with 401.
func (a *Authenticator) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok, err := a.resolve(r)
		if err != nil {
			log.Printf("auth: resolve user: %v", err)
			respond.Error(w, http.StatusInternalServerError, "failed to load user")
			return
		}
		if !ok {
			respond.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r.WithContext(WithUser(r.Context(), user)))
	}
}

// Optional lets requests without a bearer token through anonymously and
// attaches the user of a valid one. A token that does not resolve to a user
// is rejected with 401 like Require does.
func (a *Authenticator) Optional(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if bearerToken(r) == "" {
			next(w, r)
			return
		}
		user, ok, err := a.resolve(r)
		if err != nil {
			log.Printf("auth: resolve user: %v", err)
			respond.Error(w, http.StatusInternalServerError, "failed to load user")
			return
		}
		if !ok {
			respond.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r.WithContext(WithUser(r.Context(), user)))
	}
}

func (a *Authenticator) resolve(r *http.Request) (models.User, bool, error) {
	raw := bearerToken(r)
	if raw == "" {
		return models.User{}, false, nil
	}
	id, err := a.tokens.Parse(raw)
	if err != nil {
		return models.User{}, false, nil
	}
	user, err := a.users.User(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, false, nil
		}
		return models.User{}, false, err
	}
	return user, true, nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// WithUser stores the authenticated user on ctx.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFrom returns the authenticated user, if any.
func UserFrom(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey{}).(models.User)
	return user, ok
}
