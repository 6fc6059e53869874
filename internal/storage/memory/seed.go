package memory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/fanclub/internal/localstore"
	"github.com/hongminglow/fanclub/internal/models"
)

// DemoFanclubID identifies the fan club seeded into an empty store.
const DemoFanclubID = "demo-fanclub-1"

type demoAccount struct {
	id, email, password, nickname string
}

var demoAccounts = []demoAccount{
	{"demo-user-1", "creator@fanclub.com", "creator123", "Creator Taro"},
	{"test-1", "test@example.com", "password", "Test User"},
	{"admin-1", "admin@fanclub.com", "admin123", "Administrator"},
	{"demo-1", "user@demo.jp", "demo", "Demo User"},
}

func (s *Store) seedDemo() error {
	now := time.Now().UTC()

	for _, a := range demoAccounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), bcrypt.MinCost)
		if err != nil {
			return err
		}
		if _, exists := s.users[a.email]; exists {
			continue
		}
		s.users[a.email] = models.User{
			ID:           a.id,
			Email:        a.email,
			Nickname:     a.nickname,
			Name:         a.nickname,
			PasswordHash: string(hash),
			CreatedAt:    now.Add(-30 * 24 * time.Hour),
		}
	}

	owner := demoAccounts[0]
	s.fanclubs = append(s.fanclubs, models.Fanclub{
		ID:            DemoFanclubID,
		Name:          "Creator Taro's Atelier",
		Description:   "A fan club sharing the illustration process and members-only content.",
		Purpose:       "Supporting illustration work and connecting fans",
		MonthlyFee:    1200,
		CoverImageURL: "https://via.placeholder.com/1200x400/FF8C9F/white?text=Creative+Studio",
		OwnerID:       owner.id,
		OwnerName:     owner.nickname,
		MemberCount:   1,
		CreatedAt:     now.Add(-7 * 24 * time.Hour),
		UpdatedAt:     now,
	})
	s.memberships[DemoFanclubID] = []models.Membership{{
		FanclubID: DemoFanclubID,
		UserID:    owner.id,
		UserName:  owner.nickname,
		Role:      models.RoleOwner,
		JoinedAt:  now.Add(-7 * 24 * time.Hour),
	}}
	s.posts[DemoFanclubID] = []models.Post{
		{
			ID:               "demo-post-1",
			FanclubID:        DemoFanclubID,
			AuthorID:         owner.id,
			AuthorName:       owner.nickname,
			Title:            "The fan club is open",
			Content:          "<p>The fan club is now open! Enjoy work-in-progress sharing and exclusive content.</p>",
			Excerpt:          "The fan club is now open",
			FeaturedImageURL: "https://via.placeholder.com/600x300/01D3D9/white?text=Welcome",
			Visibility:       models.VisibilityPublic,
			LikeCount:        0,
			CreatedAt:        now.Add(-48 * time.Hour),
		},
		{
			ID:               "demo-post-2",
			FanclubID:        DemoFanclubID,
			AuthorID:         owner.id,
			AuthorName:       owner.nickname,
			Title:            "Starting a new illustration",
			Content:          "<p>A new project is starting. Progress will be published step by step.</p>",
			Excerpt:          "A new project is starting",
			FeaturedImageURL: "https://via.placeholder.com/600x300/FF8C9F/white?text=New+Project",
			Visibility:       models.VisibilityMembers,
			CreatedAt:        now.Add(-24 * time.Hour),
		},
	}
	s.chats[DemoFanclubID] = []models.ChatMessage{
		{
			ID:        "chat-1",
			FanclubID: DemoFanclubID,
			UserID:    models.SystemUserID,
			UserName:  "System",
			Message:   "Welcome to the fan club chat!",
			CreatedAt: now.Add(-time.Hour),
		},
		{
			ID:        "chat-2",
			FanclubID: DemoFanclubID,
			UserID:    owner.id,
			UserName:  owner.nickname,
			Message:   "Nice to meet you all!",
			CreatedAt: now.Add(-30 * time.Minute),
		},
	}

	if err := s.persistUsers(); err != nil {
		return err
	}
	for key, v := range map[string]any{
		localstore.KeyFanclubs:    s.fanclubs,
		localstore.KeyMemberships: s.memberships,
		localstore.KeyPosts:       s.posts,
		localstore.KeyChats:       s.chats,
	} {
		if err := s.persist(key, v); err != nil {
			return err
		}
	}
	return nil
}
