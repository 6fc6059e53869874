package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/fanclub/internal/auth"
	"github.com/hongminglow/fanclub/internal/fanclub"
	"github.com/hongminglow/fanclub/internal/middleware"
	"github.com/hongminglow/fanclub/internal/models/dto"
	"github.com/hongminglow/fanclub/internal/storage"
	"github.com/hongminglow/fanclub/internal/storage/memory"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, store storage.Store) *httptest.Server {
	t.Helper()
	if store == nil {
		var err error
		if store, err = memory.New(nil); err != nil {
			t.Fatalf("memory store: %v", err)
		}
	}
	svc := fanclub.NewService(store, fanclub.WithHashCost(bcrypt.MinCost))
	tokens := auth.NewTokenManager("test-secret", "fanclub-test", time.Hour)
	authn := middleware.NewAuthenticator(tokens, svc)

	mux := http.NewServeMux()
	NewHealthHandler(time.Now(), "memory").Register(mux)
	NewAuthHandler(svc, tokens, authn).Register(mux)
	NewFanclubHandler(svc, authn).Register(mux)
	NewPostHandler(svc, authn).Register(mux)
	NewChatHandler(svc, authn).Register(mux)
	NewUploadHandler(t.TempDir(), 1<<20, authn).Register(mux)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, token string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode %s %s: %v", method, url, err)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("decode data of %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func signupUser(t *testing.T, baseURL, email string) dto.LoginResponse {
	t.Helper()
	var out dto.LoginResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/auth/signup", "", dto.SignupRequest{
		Nickname: email,
		Email:    email,
		Phone:    "090-0000-0000",
		Password: "secret123",
	}, &out)
	if status != http.StatusCreated {
		t.Fatalf("signup %s status = %d", email, status)
	}
	if out.Token == "" {
		t.Fatalf("signup %s returned no token", email)
	}
	return out
}

func fanclubURL(base, id string, parts ...string) string {
	u := fmt.Sprintf("%s/api/fanclubs/%s", base, id)
	for _, p := range parts {
		u += "/" + p
	}
	return u
}
