package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/fanclub/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore captures persistence operations for accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByID(ctx context.Context, id string) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
}

// FanclubStore persists fan clubs. AdjustMemberCount clamps the result at zero.
type FanclubStore interface {
	CreateFanclub(ctx context.Context, club models.Fanclub) (models.Fanclub, error)
	FindFanclub(ctx context.Context, id string) (models.Fanclub, error)
	ListFanclubs(ctx context.Context) ([]models.Fanclub, error)
	AdjustMemberCount(ctx context.Context, id string, delta int) (models.Fanclub, error)
}

// MembershipStore persists the (fan club, user) relation.
// AddMembership returns ErrAlreadyExists for a duplicate pair and
// RemoveMembership returns ErrNotFound when no row was removed.
type MembershipStore interface {
	AddMembership(ctx context.Context, m models.Membership) error
	RemoveMembership(ctx context.Context, fanclubID, userID string) error
	FindMembership(ctx context.Context, fanclubID, userID string) (models.Membership, error)
	ListMembers(ctx context.Context, fanclubID string) ([]models.Membership, error)
	ListJoinedFanclubs(ctx context.Context, userID string) ([]models.Fanclub, error)
}

// PostStore persists posts and likes.
type PostStore interface {
	CreatePost(ctx context.Context, post models.Post) (models.Post, error)
	FindPost(ctx context.Context, id string) (models.Post, error)
	ListPosts(ctx context.Context, fanclubID string) ([]models.Post, error)
	// SetLike records or clears a like and returns the post with its updated count.
	SetLike(ctx context.Context, postID, userID string, liked bool) (models.Post, error)
	LikedPostIDs(ctx context.Context, fanclubID, userID string) (map[string]bool, error)
}

// ChatStore persists chat messages in insertion order.
type ChatStore interface {
	AppendChatMessages(ctx context.Context, msgs ...models.ChatMessage) error
	ListChatMessages(ctx context.Context, fanclubID string) ([]models.ChatMessage, error)
	FindChatMessage(ctx context.Context, fanclubID, id string) (models.ChatMessage, error)
	DeleteChatMessage(ctx context.Context, fanclubID, id string) error
}

// Store aggregates every persistence capability the service needs.
type Store interface {
	UserStore
	FanclubStore
	MembershipStore
	PostStore
	ChatStore
	Close()
}
