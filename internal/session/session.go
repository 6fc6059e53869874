// Package session holds the signed-in user and the fan club being viewed,
// mirrored into the local key/value store so a later run picks them up.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hongminglow/fanclub/internal/localstore"
	"github.com/hongminglow/fanclub/internal/models"
	"github.com/hongminglow/fanclub/internal/models/dto"
)

// Verifier revalidates the stored token, usually a gateway.Gateway.
type Verifier interface {
	CurrentUser(ctx context.Context) (models.User, error)
}

// Session is safe for concurrent use. Its lifecycle is Restore, then
// Reconcile, then any number of SignIn and Clear calls.
type Session struct {
	kv *localstore.Store

	mu      sync.RWMutex
	token   string
	user    *models.User
	fanclub *models.Fanclub
}

// New returns an empty session backed by kv.
func New(kv *localstore.Store) *Session {
	return &Session{kv: kv}
}

// Restore loads the token, cached user and current fan club from storage.
// It reports whether a token was found, in which case the caller may show a
// logged-in state until Reconcile says otherwise.
func (s *Session) Restore() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, _ := s.kv.Get(localstore.KeyAuthToken)
	s.token = token
	s.user = nil
	s.fanclub = nil

	var errs []error
	var user models.User
	if ok, err := s.kv.Decode(localstore.KeyCurrentUser, &user); err != nil {
		errs = append(errs, fmt.Errorf("cached user: %w", err))
	} else if ok {
		s.user = &user
	}
	var club models.Fanclub
	if ok, err := s.kv.Decode(localstore.KeyCurrentFanclub, &club); err != nil {
		errs = append(errs, fmt.Errorf("current fan club: %w", err))
	} else if ok {
		s.fanclub = &club
	}
	return s.token != "", errors.Join(errs...)
}

// Reconcile revalidates the token. On any failure both token and cached
// user are cleared and the error is returned. Without a token it does nothing.
func (s *Session) Reconcile(ctx context.Context, v Verifier) error {
	if s.Token() == "" {
		return nil
	}
	user, err := v.CurrentUser(ctx)
	if err != nil {
		if clearErr := s.Clear(); clearErr != nil {
			return errors.Join(err, clearErr)
		}
		return err
	}
	return s.SetUser(user)
}

// SignIn stores the result of a login or signup.
func (s *Session) SignIn(auth dto.LoginResponse) error {
	if auth.Token == "" {
		return errors.New("sign in without a token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user := auth.User
	s.token = auth.Token
	s.user = &user
	if err := s.kv.Set(localstore.KeyAuthToken, auth.Token); err != nil {
		return err
	}
	return s.kv.Encode(localstore.KeyCurrentUser, user)
}

// SetUser replaces the cached user, e.g. after a whoami call.
func (s *Session) SetUser(user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
	return s.kv.Encode(localstore.KeyCurrentUser, user)
}

// Clear forgets the token and the cached user. The current fan club stays,
// since anonymous visitors can still browse it.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	return errors.Join(
		s.kv.Remove(localstore.KeyAuthToken),
		s.kv.Remove(localstore.KeyCurrentUser),
	)
}

// Token returns the bearer token, empty when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// LoggedIn reports whether a token is held.
func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}

// User returns the cached user, if any.
func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil || s.token == "" {
		return models.User{}, false
	}
	return *s.user, true
}

// UserID is the signed-in user's id or "".
func (s *Session) UserID() string {
	u, _ := s.User()
	return u.ID
}

// SetFanclub records the fan club being viewed.
func (s *Session) SetFanclub(club models.Fanclub) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fanclub = &club
	return s.kv.Encode(localstore.KeyCurrentFanclub, club)
}

// Fanclub returns the fan club being viewed, if any.
func (s *Session) Fanclub() (models.Fanclub, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fanclub == nil {
		return models.Fanclub{}, false
	}
	return *s.fanclub, true
}
