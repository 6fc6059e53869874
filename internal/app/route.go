package app

import (
	"context"
	"strings"
)

// Route is a parsed "#page/param" fragment.
type Route struct {
	Page  string
	Param string
}

// ParseRoute splits a hash fragment. The leading '#' is optional and only
// the first path segment after the page is kept as the parameter.
func ParseRoute(hash string) Route {
	hash = strings.TrimPrefix(strings.TrimSpace(hash), "#")
	page, rest, _ := strings.Cut(hash, "/")
	param, _, _ := strings.Cut(rest, "/")
	return Route{Page: page, Param: param}
}

// Dispatch shows the page named by hash. Unknown fragments fall back to the
// top page and clear the hash.
func (a *App) Dispatch(ctx context.Context, hash string) error {
	r := ParseRoute(hash)
	switch r.Page {
	case "fanclub":
		if r.Param != "" {
			return a.ShowFanclub(ctx, r.Param)
		}
	case "login":
		a.ShowAuth(AuthLogin)
		return nil
	case "signup":
		a.ShowAuth(AuthSignup)
		return nil
	case "profile":
		if a.sess.LoggedIn() {
			return a.ShowMyPage(ctx)
		}
		a.ShowAuth(AuthLogin)
		a.setHash("")
		return nil
	}
	return a.ShowTop(ctx)
}

func (a *App) setHash(hash string) {
	a.mu.Lock()
	a.hash = hash
	a.mu.Unlock()
}
