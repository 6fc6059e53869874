package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hongminglow/fanclub/internal/localstore"
	"github.com/hongminglow/fanclub/internal/models"
	"github.com/hongminglow/fanclub/internal/storage"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// Store keeps every table in process memory and mirrors each table into a
// localstore document after every mutation.
type Store struct {
	mu sync.RWMutex
	kv *localstore.Store

	users       map[string]models.User // keyed by lower-cased email
	fanclubs    []models.Fanclub
	posts       map[string][]models.Post
	chats       map[string][]models.ChatMessage
	memberships map[string][]models.Membership
	likes       map[string][]string // post id -> user ids
}

// New loads the tables from kv (nil means a throwaway in-memory document)
// and seeds the demo data when no fan club exists yet.
func New(kv *localstore.Store) (*Store, error) {
	if kv == nil {
		kv = localstore.NewMemory()
	}
	s := &Store{
		kv:          kv,
		users:       map[string]models.User{},
		posts:       map[string][]models.Post{},
		chats:       map[string][]models.ChatMessage{},
		memberships: map[string][]models.Membership{},
		likes:       map[string][]string{},
	}
	accounts := map[string]account{}
	tables := []struct {
		key string
		dst any
	}{
		{localstore.KeyUsers, &accounts},
		{localstore.KeyFanclubs, &s.fanclubs},
		{localstore.KeyPosts, &s.posts},
		{localstore.KeyChats, &s.chats},
		{localstore.KeyMemberships, &s.memberships},
		{localstore.KeyLikes, &s.likes},
	}
	for _, t := range tables {
		if _, err := kv.Decode(t.key, t.dst); err != nil {
			return nil, err
		}
	}
	for key, a := range accounts {
		u := a.User
		u.PasswordHash = a.PasswordHash
		s.users[key] = u
	}
	// A table stored as JSON null decodes to a nil map.
	if s.posts == nil {
		s.posts = map[string][]models.Post{}
	}
	if s.chats == nil {
		s.chats = map[string][]models.ChatMessage{}
	}
	if s.memberships == nil {
		s.memberships = map[string][]models.Membership{}
	}
	if s.likes == nil {
		s.likes = map[string][]string{}
	}
	if len(s.fanclubs) == 0 {
		if err := s.seedDemo(); err != nil {
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
	}
	return s, nil
}

// Close is a no-op; every mutation is flushed eagerly.
func (s *Store) Close() {}

// account is the stored form of a user. models.User never serialises its
// password hash.
type account struct {
	models.User
	PasswordHash string `json:"password_hash"`
}

func (s *Store) persistUsers() error {
	accounts := make(map[string]account, len(s.users))
	for key, u := range s.users {
		accounts[key] = account{User: u, PasswordHash: u.PasswordHash}
	}
	return s.persist(localstore.KeyUsers, accounts)
}

func (s *Store) persist(key string, v any) error {
	if err := s.kv.Encode(key, v); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}

// CreateUser inserts a new account keyed by email.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(user.Email)
	if _, ok := s.users[key]; ok {
		return models.User{}, storage.ErrAlreadyExists
	}
	s.users[key] = user
	if err := s.persistUsers(); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// FindUserByID scans the account table for id.
func (s *Store) FindUserByID(ctx context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

// FindUserByEmail looks the account up case-insensitively.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return u, nil
}

// UpdatePasswordHash replaces the stored hash for userID.
func (s *Store) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, u := range s.users {
		if u.ID == userID {
			u.PasswordHash = hash
			s.users[key] = u
			return s.persistUsers()
		}
	}
	return storage.ErrNotFound
}

// CreateFanclub appends a fan club.
func (s *Store) CreateFanclub(ctx context.Context, club models.Fanclub) (models.Fanclub, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fanclubIndex(club.ID) >= 0 {
		return models.Fanclub{}, storage.ErrAlreadyExists
	}
	s.fanclubs = append(s.fanclubs, club)
	if err := s.persist(localstore.KeyFanclubs, s.fanclubs); err != nil {
		return models.Fanclub{}, err
	}
	return club, nil
}

// FindFanclub returns the fan club with id.
func (s *Store) FindFanclub(ctx context.Context, id string) (models.Fanclub, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.fanclubIndex(id)
	if i < 0 {
		return models.Fanclub{}, storage.ErrNotFound
	}
	return s.fanclubs[i], nil
}

// ListFanclubs returns fan clubs newest first.
func (s *Store) ListFanclubs(ctx context.Context) ([]models.Fanclub, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]models.Fanclub(nil), s.fanclubs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// AdjustMemberCount adds delta to the member count, never going below zero.
func (s *Store) AdjustMemberCount(ctx context.Context, id string, delta int) (models.Fanclub, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.fanclubIndex(id)
	if i < 0 {
		return models.Fanclub{}, storage.ErrNotFound
	}
	s.fanclubs[i].MemberCount = max(0, s.fanclubs[i].MemberCount+delta)
	if err := s.persist(localstore.KeyFanclubs, s.fanclubs); err != nil {
		return models.Fanclub{}, err
	}
	return s.fanclubs[i], nil
}

func (s *Store) fanclubIndex(id string) int {
	for i, c := range s.fanclubs {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// AddMembership records m unless the pair already exists.
func (s *Store) AddMembership(ctx context.Context, m models.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.memberships[m.FanclubID] {
		if existing.UserID == m.UserID {
			return storage.ErrAlreadyExists
		}
	}
	s.memberships[m.FanclubID] = append(s.memberships[m.FanclubID], m)
	return s.persist(localstore.KeyMemberships, s.memberships)
}

// RemoveMembership filters the pair out of the relation.
func (s *Store) RemoveMembership(ctx context.Context, fanclubID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := s.memberships[fanclubID]
	kept := members[:0:0]
	for _, m := range members {
		if m.UserID != userID {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(members) {
		return storage.ErrNotFound
	}
	s.memberships[fanclubID] = kept
	return s.persist(localstore.KeyMemberships, s.memberships)
}

// FindMembership returns the membership row for the pair.
func (s *Store) FindMembership(ctx context.Context, fanclubID, userID string) (models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.memberships[fanclubID] {
		if m.UserID == userID {
			return m, nil
		}
	}
	return models.Membership{}, storage.ErrNotFound
}

// ListMembers returns members in join order.
func (s *Store) ListMembers(ctx context.Context, fanclubID string) ([]models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Membership(nil), s.memberships[fanclubID]...), nil
}

// ListJoinedFanclubs returns every fan club userID belongs to, in fan club order.
func (s *Store) ListJoinedFanclubs(ctx context.Context, userID string) ([]models.Fanclub, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Fanclub
	for _, club := range s.fanclubs {
		for _, m := range s.memberships[club.ID] {
			if m.UserID == userID {
				out = append(out, club)
				break
			}
		}
	}
	return out, nil
}

// CreatePost appends a post to its fan club.
func (s *Store) CreatePost(ctx context.Context, post models.Post) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[post.FanclubID] = append(s.posts[post.FanclubID], post)
	if err := s.persist(localstore.KeyPosts, s.posts); err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// FindPost scans every fan club for the post id.
func (s *Store) FindPost(ctx context.Context, id string) (models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	club, i := s.postIndex(id)
	if i < 0 {
		return models.Post{}, storage.ErrNotFound
	}
	return s.posts[club][i], nil
}

// ListPosts returns posts newest first.
func (s *Store) ListPosts(ctx context.Context, fanclubID string) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]models.Post(nil), s.posts[fanclubID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// SetLike toggles the (post, user) like and keeps like_count in step.
func (s *Store) SetLike(ctx context.Context, postID, userID string, liked bool) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	club, i := s.postIndex(postID)
	if i < 0 {
		return models.Post{}, storage.ErrNotFound
	}
	users := s.likes[postID]
	has := -1
	for j, u := range users {
		if u == userID {
			has = j
			break
		}
	}
	post := &s.posts[club][i]
	switch {
	case liked && has < 0:
		s.likes[postID] = append(users, userID)
		post.LikeCount++
	case !liked && has >= 0:
		s.likes[postID] = append(users[:has:has], users[has+1:]...)
		post.LikeCount = max(0, post.LikeCount-1)
	default:
		out := *post
		out.IsLiked = liked
		return out, nil
	}
	if err := s.persist(localstore.KeyLikes, s.likes); err != nil {
		return models.Post{}, err
	}
	if err := s.persist(localstore.KeyPosts, s.posts); err != nil {
		return models.Post{}, err
	}
	out := *post
	out.IsLiked = liked
	return out, nil
}

// LikedPostIDs returns the set of posts in fanclubID liked by userID.
func (s *Store) LikedPostIDs(ctx context.Context, fanclubID, userID string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[string]bool{}
	for _, p := range s.posts[fanclubID] {
		for _, u := range s.likes[p.ID] {
			if u == userID {
				out[p.ID] = true
				break
			}
		}
	}
	return out, nil
}

func (s *Store) postIndex(id string) (string, int) {
	for club, posts := range s.posts {
		for i, p := range posts {
			if p.ID == id {
				return club, i
			}
		}
	}
	return "", -1
}

// AppendChatMessages appends msgs, which must all belong to one fan club.
func (s *Store) AppendChatMessages(ctx context.Context, msgs ...models.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range msgs {
		s.chats[m.FanclubID] = append(s.chats[m.FanclubID], m)
	}
	return s.persist(localstore.KeyChats, s.chats)
}

// ListChatMessages returns messages in insertion order.
func (s *Store) ListChatMessages(ctx context.Context, fanclubID string) ([]models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ChatMessage(nil), s.chats[fanclubID]...), nil
}

// FindChatMessage returns one message of a fan club chat.
func (s *Store) FindChatMessage(ctx context.Context, fanclubID, id string) (models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.chats[fanclubID] {
		if m.ID == id {
			return m, nil
		}
	}
	return models.ChatMessage{}, storage.ErrNotFound
}

// DeleteChatMessage filters the message out of the chat.
func (s *Store) DeleteChatMessage(ctx context.Context, fanclubID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.chats[fanclubID]
	kept := msgs[:0:0]
	for _, m := range msgs {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(msgs) {
		return storage.ErrNotFound
	}
	s.chats[fanclubID] = kept
	return s.persist(localstore.KeyChats, s.chats)
}
