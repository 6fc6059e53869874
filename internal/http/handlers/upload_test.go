package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/fanclub/internal/auth"
	"github.com/hongminglow/fanclub/internal/fanclub"
	"github.com/hongminglow/fanclub/internal/middleware"
	"github.com/hongminglow/fanclub/internal/models/dto"
	"github.com/hongminglow/fanclub/internal/storage/memory"
)

func TestUploadSizeLimit(t *testing.T) {
	const limit = 4096
	store, err := memory.New(nil)
	if err != nil {
		t.Fatalf("memory store: %v", err)
	}
	svc := fanclub.NewService(store, fanclub.WithHashCost(bcrypt.MinCost))
	tokens := auth.NewTokenManager("test-secret", "fanclub-test", time.Hour)
	user, err := svc.Signup(context.Background(), fanclub.SignupInput{
		Nickname: "uploader", Email: "limit@example.com", Password: "secret123",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	token, err := tokens.Generate(user)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	dir := t.TempDir()
	mux := http.NewServeMux()
	NewUploadHandler(dir, limit, middleware.NewAuthenticator(tokens, svc)).Register(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	upload := func(size int) (int, string) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, _ := mw.CreateFormFile("image", "cover.png")
		header := "\x89PNG\r\n\x1a\n"
		fw.Write([]byte(header + strings.Repeat("\x00", size-len(header))))
		mw.Close()
		req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		defer resp.Body.Close()
		var env envelope
		var out dto.UploadResponse
		if json.NewDecoder(resp.Body).Decode(&env) == nil && len(env.Data) > 0 {
			json.Unmarshal(env.Data, &out)
		}
		return resp.StatusCode, out.URL
	}

	status, url := upload(limit)
	if status != http.StatusCreated || url == "" {
		t.Fatalf("upload at the limit: status=%d url=%q", status, url)
	}
	if status, _ := upload(limit + 300); status != http.StatusRequestEntityTooLarge {
		t.Fatalf("upload over the limit: status=%d", status)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("stored %d files, want only the accepted one", len(entries))
	}

	resp, err := http.Get(ts.URL + url)
	if err != nil {
		t.Fatalf("get image: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get image status = %d", resp.StatusCode)
	}
	resp, err = http.Get(ts.URL + UploadURLPrefix)
	if err != nil {
		t.Fatalf("get upload dir: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("directory listing status = %d, want 404", resp.StatusCode)
	}
}
