// Package app is the client application core: hash routing, page and tab
// control, and one handler per user action. Each handler validates its
// input, calls the gateway, then reconciles session and view.
package app

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"

	"github.com/hongminglow/fanclub/internal/gateway"
	"github.com/hongminglow/fanclub/internal/localstore"
	"github.com/hongminglow/fanclub/internal/models"
	"github.com/hongminglow/fanclub/internal/models/dto"
	"github.com/hongminglow/fanclub/internal/session"
)

// ErrLoginRequired is returned when an action needs a signed-in user.
var ErrLoginRequired = errors.New("login required")

// InputError is a validation failure caught before any call was made.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

// Deps are the collaborators of an App.
type Deps struct {
	Gateway   gateway.Gateway
	Session   *session.Session
	Store     *localstore.Store
	View      View
	Notifier  Notifier
	Confirmer Confirmer
	// Logger receives root causes. Defaults to a discarding logger.
	Logger *log.Logger
}

// App owns the client state. Handlers may run concurrently; results of
// loads superseded by a later navigation are dropped.
type App struct {
	gw        gateway.Gateway
	sess      *session.Session
	kv        *localstore.Store
	view      View
	notifier  Notifier
	confirmer Confirmer
	logger    *log.Logger
	loading   *Loading

	nav Sequencer
	tab Sequencer

	mu             sync.Mutex
	page           Page
	hash           string
	tabs           map[TabGroup]string
	membership     dto.MembershipResponse
	posts          []models.Post
	postsContainer Container
	chat           []models.ChatMessage
}

// New wires an App.
func New(d Deps) *App {
	logger := d.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	a := &App{
		gw:        d.Gateway,
		sess:      d.Session,
		kv:        d.Store,
		view:      d.View,
		notifier:  d.Notifier,
		confirmer: d.Confirmer,
		logger:    logger,
		tabs:      map[TabGroup]string{},
	}
	a.loading = NewLoading(d.View.SetLoading)
	return a
}

// Start restores the session and shows it optimistically, then revalidates
// the token. A failed revalidation leaves the app logged out.
func (a *App) Start(ctx context.Context) {
	loggedIn, err := a.sess.Restore()
	if err != nil {
		a.logger.Printf("restore session: %v", err)
	}
	if !loggedIn {
		a.view.SetAuthState(nil)
		return
	}
	if user, ok := a.sess.User(); ok {
		a.view.SetAuthState(&user)
	}

	done := a.loading.Begin()
	defer done()
	if err := a.sess.Reconcile(ctx, a.gw); err != nil {
		a.logger.Printf("revalidate session: %v", err)
		a.view.SetAuthState(nil)
		return
	}
	if user, ok := a.sess.User(); ok {
		a.view.SetAuthState(&user)
	}
}

// Page returns the visible page.
func (a *App) Page() Page {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.page
}

// Hash returns the route fragment matching the visible page.
func (a *App) Hash() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hash
}

// Tab returns the active tab of group, or "" before one was selected.
func (a *App) Tab(group TabGroup) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tabs[group]
}

// Loading reports whether any call is in flight.
func (a *App) Loading() bool {
	return a.loading.Active()
}

// navigate makes page the only visible page and starts a new epoch.
func (a *App) navigate(page Page, hash string) Epoch {
	epoch := a.nav.Next()
	a.tab.Next()
	a.mu.Lock()
	a.page = page
	a.hash = hash
	a.mu.Unlock()
	a.view.ShowPage(page)
	return epoch
}

func (a *App) reject(message string) error {
	a.notifier.Notify(NoticeError, message)
	return &InputError{Message: message}
}

func (a *App) needLogin(message string, mode AuthMode) error {
	a.notifier.Notify(NoticeWarning, message)
	a.ShowAuth(mode)
	return ErrLoginRequired
}

// fail reports a failed call. A 401 ends the session.
func (a *App) fail(action, generic string, err error) error {
	a.logger.Printf("%s: %v", action, err)
	if errors.Is(err, gateway.ErrUnauthorized) {
		a.signedOut()
		a.notifier.Notify(NoticeError, msgSessionExpired)
		return err
	}
	return a.report(generic, err)
}

// report shows the backend's message for err, or generic without one.
// Login and signup use it directly since their 401 means bad credentials.
func (a *App) report(generic string, err error) error {
	msg, ok := gateway.UserMessage(err)
	if !ok {
		msg = generic
	}
	a.notifier.Notify(NoticeError, msg)
	return err
}

func (a *App) signedOut() {
	if err := a.sess.Clear(); err != nil {
		a.logger.Printf("clear session: %v", err)
	}
	a.view.SetAuthState(nil)
}

func (a *App) currentFanclub() (models.Fanclub, error) {
	club, ok := a.sess.Fanclub()
	if !ok {
		return models.Fanclub{}, a.reject(msgNoFanclub)
	}
	return club, nil
}

func (a *App) isOwner(club models.Fanclub) bool {
	uid := a.sess.UserID()
	return uid != "" && club.OwnerID == uid
}
