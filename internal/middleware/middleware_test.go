package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hongminglow/fanclub/internal/models"
	"github.com/hongminglow/fanclub/internal/storage"
)

type stubTokens map[string]string

func (s stubTokens) Parse(raw string) (string, error) {
	if id, ok := s[raw]; ok {
		return id, nil
	}
	return "", errors.New("bad token")
}

type stubUsers map[string]models.User

func (s stubUsers) User(ctx context.Context, id string) (models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return models.User{}, storage.ErrNotFound
}

func newTestAuthenticator() *Authenticator {
	return NewAuthenticator(
		stubTokens{"good": "u1", "orphan": "ghost"},
		stubUsers{"u1": {ID: "u1", Nickname: "fan"}},
	)
}

func TestRequire(t *testing.T) {
	a := newTestAuthenticator()
	h := a.Require(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFrom(r.Context())
		if !ok || u.ID != "u1" {
			t.Errorf("user not attached: %+v", u)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	cases := map[string]int{
		"":              http.StatusUnauthorized,
		"Bearer nope":   http.StatusUnauthorized,
		"Bearer orphan": http.StatusUnauthorized,
		"Basic good":    http.StatusUnauthorized,
		"bearer good":   http.StatusNoContent,
		"Bearer good":   http.StatusNoContent,
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h(rec, req)
		if rec.Code != want {
			t.Errorf("%q: status %d want %d", header, rec.Code, want)
		}
	}
}

func TestOptional(t *testing.T) {
	a := newTestAuthenticator()
	h := a.Optional(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := UserFrom(r.Context()); ok && u.ID != "u1" {
			t.Errorf("unexpected user attached: %+v", u)
		}
		if _, ok := UserFrom(r.Context()); ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	cases := map[string]int{
		"":              http.StatusOK,
		"Basic good":    http.StatusOK,
		"Bearer nope":   http.StatusUnauthorized,
		"Bearer orphan": http.StatusUnauthorized,
		"Bearer good":   http.StatusNoContent,
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h(rec, req)
		if rec.Code != want {
			t.Errorf("%q: status %d want %d", header, rec.Code, want)
		}
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := CORS([]string{"https://fans.example"}, next)

	req := httptest.NewRequest(http.MethodOptions, "/api/fanclubs", nil)
	req.Header.Set("Origin", "https://FANS.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://FANS.example" {
		t.Fatalf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/fanclubs", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("foreign origin should not be allowed")
	}
}
