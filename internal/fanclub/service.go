// Package fanclub holds the rules every data path shares: account checks,
// membership bookkeeping, post visibility and chat moderation.
package fanclub

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/fanclub/internal/models"
	"github.com/hongminglow/fanclub/internal/storage"
)

// timeNow is a variable for testability.
var timeNow = func() time.Time { return time.Now().UTC() }

const defaultCoverURL = "https://via.placeholder.com/1200x400/01D3D9/white?text="

// Service applies the fan club rules on top of a storage.Store.
type Service struct {
	store      storage.Store
	hashCost   int
	chatSeedMu sync.Mutex
}

// Option customises a Service.
type Option func(*Service)

// WithHashCost overrides the bcrypt cost, mainly for tests.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

// NewService constructs the service.
func NewService(store storage.Store, opts ...Option) *Service {
	s := &Service{store: store, hashCost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// SignupInput carries the fields of the signup form.
type SignupInput struct {
	Nickname string
	Email    string
	Phone    string
	Password string
}

// Signup validates and stores a new account.
func (s *Service) Signup(ctx context.Context, in SignupInput) (models.User, error) {
	in.Nickname = strings.TrimSpace(in.Nickname)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Nickname == "" || in.Email == "" || in.Password == "" {
		return models.User{}, invalid("nickname, email, and password are required")
	}
	if !strings.Contains(in.Email, "@") {
		return models.User{}, invalid("email address is malformed")
	}
	if err := validatePassword(in.Password); err != nil {
		return models.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{
		ID:           newID("user"),
		Email:        in.Email,
		Nickname:     in.Nickname,
		Name:         in.Nickname,
		Phone:        in.Phone,
		PasswordHash: string(hash),
		CreatedAt:    timeNow(),
	}
	created, err := s.store.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// Authenticate checks an email/password pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return models.User{}, invalid("email and password are required")
	}
	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// User loads an account by id.
func (s *Service) User(ctx context.Context, id string) (models.User, error) {
	return s.store.FindUserByID(ctx, id)
}

// ChangePassword verifies the current password and stores the new one.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	if current == "" || next == "" {
		return invalid("current and new password are required")
	}
	if err := validatePassword(next); err != nil {
		return err
	}
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.store.UpdatePasswordHash(ctx, userID, string(hash))
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < 6 || !utf8.ValidString(password) {
		return invalid("password must be at least 6 characters")
	}
	return nil
}

// CreateFanclubInput carries the fields of the create form.
type CreateFanclubInput struct {
	Name          string
	Description   string
	Purpose       string
	MonthlyFee    int
	CoverImageURL string
}

// CreateFanclub stores a fan club owned by owner. The owner is recorded as
// its first member, so member_count starts at 1.
func (s *Service) CreateFanclub(ctx context.Context, owner models.User, in CreateFanclubInput) (models.Fanclub, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Fanclub{}, invalid("fan club name is required")
	}
	if in.MonthlyFee < 0 {
		return models.Fanclub{}, invalid("monthly fee must not be negative")
	}
	cover := strings.TrimSpace(in.CoverImageURL)
	if cover == "" {
		cover = defaultCoverURL + url.QueryEscape(name)
	}
	now := timeNow()
	club := models.Fanclub{
		ID:            newID("fanclub"),
		Name:          name,
		Description:   strings.TrimSpace(in.Description),
		Purpose:       strings.TrimSpace(in.Purpose),
		MonthlyFee:    in.MonthlyFee,
		CoverImageURL: cover,
		OwnerID:       owner.ID,
		OwnerName:     owner.DisplayName(),
		MemberCount:   1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	created, err := s.store.CreateFanclub(ctx, club)
	if err != nil {
		return models.Fanclub{}, fmt.Errorf("create fan club: %w", err)
	}
	err = s.store.AddMembership(ctx, models.Membership{
		FanclubID: created.ID,
		UserID:    owner.ID,
		UserName:  owner.DisplayName(),
		Role:      models.RoleOwner,
		JoinedAt:  now,
	})
	if err != nil {
		return models.Fanclub{}, fmt.Errorf("record owner membership: %w", err)
	}
	return created, nil
}

// Fanclub loads one fan club.
func (s *Service) Fanclub(ctx context.Context, id string) (models.Fanclub, error) {
	return s.store.FindFanclub(ctx, id)
}

// Fanclubs lists fan clubs, filtered by a case-insensitive query over the
// name, description, and purpose when query is non-empty.
func (s *Service) Fanclubs(ctx context.Context, query string) ([]models.Fanclub, error) {
	all, err := s.store.ListFanclubs(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return all, nil
	}
	var out []models.Fanclub
	for _, c := range all {
		haystack := strings.ToLower(c.Name + "\n" + c.Description + "\n" + c.Purpose)
		if strings.Contains(haystack, query) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Join adds user as a member and bumps member_count by one.
func (s *Service) Join(ctx context.Context, fanclubID string, user models.User) (models.Fanclub, error) {
	if _, err := s.store.FindFanclub(ctx, fanclubID); err != nil {
		return models.Fanclub{}, err
	}
	err := s.store.AddMembership(ctx, models.Membership{
		FanclubID: fanclubID,
		UserID:    user.ID,
		UserName:  user.DisplayName(),
		Role:      models.RoleMember,
		JoinedAt:  timeNow(),
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return models.Fanclub{}, ErrAlreadyMember
		}
		return models.Fanclub{}, fmt.Errorf("add membership: %w", err)
	}
	return s.store.AdjustMemberCount(ctx, fanclubID, 1)
}

// Leave removes user's membership and lowers member_count, never below zero.
func (s *Service) Leave(ctx context.Context, fanclubID string, user models.User) (models.Fanclub, error) {
	club, err := s.store.FindFanclub(ctx, fanclubID)
	if err != nil {
		return models.Fanclub{}, err
	}
	if club.OwnerID == user.ID {
		return models.Fanclub{}, ErrOwnerCannotLeave
	}
	if err := s.store.RemoveMembership(ctx, fanclubID, user.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Fanclub{}, ErrNotMember
		}
		return models.Fanclub{}, fmt.Errorf("remove membership: %w", err)
	}
	return s.store.AdjustMemberCount(ctx, fanclubID, -1)
}

// Membership returns the role of userID in fanclubID, or ok=false.
// This is the one membership predicate every caller uses.
func (s *Service) Membership(ctx context.Context, fanclubID, userID string) (models.Membership, bool, error) {
	if userID == "" {
		return models.Membership{}, false, nil
	}
	m, err := s.store.FindMembership(ctx, fanclubID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Membership{}, false, nil
		}
		return models.Membership{}, false, err
	}
	return m, true, nil
}

// Members lists the members of a fan club.
func (s *Service) Members(ctx context.Context, fanclubID string) ([]models.Membership, error) {
	if _, err := s.store.FindFanclub(ctx, fanclubID); err != nil {
		return nil, err
	}
	return s.store.ListMembers(ctx, fanclubID)
}

// JoinedFanclubs lists the fan clubs userID belongs to, owned ones included.
func (s *Service) JoinedFanclubs(ctx context.Context, userID string) ([]models.Fanclub, error) {
	return s.store.ListJoinedFanclubs(ctx, userID)
}
