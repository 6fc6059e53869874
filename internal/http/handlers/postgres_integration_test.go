package handlers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"github.com/hongminglow/fanclub/internal/models"
	"github.com/hongminglow/fanclub/internal/models/dto"
	"github.com/hongminglow/fanclub/internal/storage/postgres"
)

// TestPostgresIntegration exercises signup, fan club creation, and chat against a live database.
func TestPostgresIntegration(t *testing.T) {
	if os.Getenv("RUN_PG_INTEGRATION") != "true" {
		t.Skip("set RUN_PG_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL is required")
	}

	store, err := postgres.NewStore(context.Background(), dbURL)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	defer store.Close()

	ts := newTestServer(t, store)
	email := fmt.Sprintf("apitest_%d@example.com", time.Now().UnixNano())
	owner := signupUser(t, ts.URL, email)

	var club models.Fanclub
	if status := doJSON(t, http.MethodPost, ts.URL+"/api/fanclubs", owner.Token, dto.CreateFanclubRequest{
		Name: "integration " + email, MonthlyFee: 500,
	}, &club); status != http.StatusCreated {
		t.Fatalf("create status = %d", status)
	}
	if club.MemberCount != 1 {
		t.Fatalf("member count = %d", club.MemberCount)
	}

	var msgs []models.ChatMessage
	doJSON(t, http.MethodGet, fanclubURL(ts.URL, club.ID, "chat"), "", nil, &msgs)
	var again []models.ChatMessage
	doJSON(t, http.MethodGet, fanclubURL(ts.URL, club.ID, "chat"), "", nil, &again)
	if len(msgs) != 2 || len(again) != 2 || msgs[0].ID != again[0].ID {
		t.Fatalf("chat seeding not idempotent: %+v vs %+v", msgs, again)
	}
	t.Logf("created fan club %s for %s", club.ID, email)
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
		"../../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}
