package memory

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hongminglow/fanclub/internal/localstore"
	"github.com/hongminglow/fanclub/internal/models"
	"github.com/hongminglow/fanclub/internal/storage"
)

func TestNewSeedsDemoData(t *testing.T) {
	s, err := New(nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	club, err := s.FindFanclub(ctx, DemoFanclubID)
	if err != nil {
		t.Fatalf("demo fan club missing: %v", err)
	}
	if club.MemberCount != 1 {
		t.Fatalf("demo member count = %d", club.MemberCount)
	}
	if _, err := s.FindUserByEmail(ctx, "TEST@example.com"); err != nil {
		t.Fatalf("demo user lookup should be case-insensitive: %v", err)
	}
	msgs, _ := s.ListChatMessages(ctx, DemoFanclubID)
	if len(msgs) != 2 {
		t.Fatalf("demo chat = %d messages", len(msgs))
	}
}

func TestStateSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	kv, err := localstore.Open(path)
	if err != nil {
		t.Fatalf("open kv: %v", err)
	}
	s, err := New(kv)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	club := models.Fanclub{ID: "c1", Name: "Club", OwnerID: "u1", MemberCount: 1, CreatedAt: time.Now()}
	if _, err := s.CreateFanclub(ctx, club); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.AddMembership(ctx, models.Membership{FanclubID: "c1", UserID: "u1", Role: models.RoleOwner}); err != nil {
		t.Fatalf("add membership: %v", err)
	}

	kv2, err := localstore.Open(path)
	if err != nil {
		t.Fatalf("reopen kv: %v", err)
	}
	s2, err := New(kv2)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	joined, err := s2.ListJoinedFanclubs(ctx, "u1")
	if err != nil || len(joined) != 1 || joined[0].ID != "c1" {
		t.Fatalf("joined after reopen = %+v, %v", joined, err)
	}
	all, _ := s2.ListFanclubs(ctx)
	if len(all) != 2 {
		t.Fatalf("reopen should not reseed: got %d fan clubs", len(all))
	}
}

func TestMembershipAndCounts(t *testing.T) {
	s, _ := New(nil)
	ctx := context.Background()
	m := models.Membership{FanclubID: DemoFanclubID, UserID: "test-1", Role: models.RoleMember}
	if err := s.AddMembership(ctx, m); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddMembership(ctx, m); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate add err = %v", err)
	}
	if err := s.RemoveMembership(ctx, DemoFanclubID, "nobody"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("remove missing err = %v", err)
	}

	club, err := s.AdjustMemberCount(ctx, DemoFanclubID, -5)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if club.MemberCount != 0 {
		t.Fatalf("member count should clamp at 0, got %d", club.MemberCount)
	}
}

func TestLikesAreIdempotent(t *testing.T) {
	s, _ := New(nil)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		post, err := s.SetLike(ctx, "demo-post-1", "test-1", true)
		if err != nil {
			t.Fatalf("like: %v", err)
		}
		if post.LikeCount != 1 || !post.IsLiked {
			t.Fatalf("like #%d: %+v", i, post)
		}
	}
	liked, _ := s.LikedPostIDs(ctx, DemoFanclubID, "test-1")
	if !liked["demo-post-1"] {
		t.Fatal("liked set missing post")
	}
	post, err := s.SetLike(ctx, "demo-post-1", "test-1", false)
	if err != nil || post.LikeCount != 0 {
		t.Fatalf("unlike: %+v, %v", post, err)
	}
}

func TestDeleteChatMessage(t *testing.T) {
	s, _ := New(nil)
	ctx := context.Background()
	if err := s.DeleteChatMessage(ctx, DemoFanclubID, "chat-2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.FindChatMessage(ctx, DemoFanclubID, "chat-2"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("find deleted err = %v", err)
	}
	if err := s.DeleteChatMessage(ctx, DemoFanclubID, "chat-2"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestNullTablesLoadAsEmpty(t *testing.T) {
	kv := localstore.NewMemory()
	for _, key := range []string{
		localstore.KeyUsers, localstore.KeyFanclubs, localstore.KeyPosts,
		localstore.KeyChats, localstore.KeyMemberships, localstore.KeyLikes,
	} {
		if err := kv.Set(key, "null"); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}
	s, err := New(kv)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	if _, err := s.CreateUser(ctx, models.User{ID: "u9", Email: "null@example.com"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := s.AddMembership(ctx, models.Membership{FanclubID: DemoFanclubID, UserID: "u9", Role: models.RoleMember}); err != nil {
		t.Fatalf("add membership: %v", err)
	}
	if _, err := s.SetLike(ctx, "demo-post-1", "u9", true); err != nil {
		t.Fatalf("set like: %v", err)
	}
}

func TestPasswordHashSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	kv, err := localstore.Open(path)
	if err != nil {
		t.Fatalf("open kv: %v", err)
	}
	s, err := New(kv)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	if _, err := s.CreateUser(ctx, models.User{ID: "u1", Email: "Fan@example.com", PasswordHash: "hash-1"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := s.UpdatePasswordHash(ctx, "u1", "hash-2"); err != nil {
		t.Fatalf("update hash: %v", err)
	}

	kv2, err := localstore.Open(path)
	if err != nil {
		t.Fatalf("reopen kv: %v", err)
	}
	s2, err := New(kv2)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	u, err := s2.FindUserByEmail(ctx, "fan@example.com")
	if err != nil || u.PasswordHash != "hash-2" {
		t.Fatalf("user after reopen = %+v, %v", u, err)
	}
	demo, err := s2.FindUserByEmail(ctx, "test@example.com")
	if err != nil || demo.PasswordHash == "" {
		t.Fatalf("demo user after reopen = %+v, %v", demo, err)
	}
}
