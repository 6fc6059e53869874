package fanclub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hongminglow/fanclub/internal/models"
	"github.com/hongminglow/fanclub/internal/storage"
)

// MaxChatMessageLength bounds a single chat message in runes.
const MaxChatMessageLength = 1000

const (
	welcomeSystemText = "Welcome to the fan club chat!"
	welcomeOwnerText  = "Let's have fun talking together!"
)

// ChatMessages returns the chat of a fan club. An empty chat is seeded with
// two welcome messages which are persisted, so later loads return the same
// pair. With lastID set only messages after that one are returned.
func (s *Service) ChatMessages(ctx context.Context, fanclubID, lastID string) ([]models.ChatMessage, error) {
	club, err := s.store.FindFanclub(ctx, fanclubID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.store.ListChatMessages(ctx, fanclubID)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		if msgs, err = s.seedChat(ctx, club); err != nil {
			return nil, err
		}
	}
	if lastID == "" {
		return msgs, nil
	}
	for i, m := range msgs {
		if m.ID == lastID {
			return msgs[i+1:], nil
		}
	}
	return msgs, nil
}

func (s *Service) seedChat(ctx context.Context, club models.Fanclub) ([]models.ChatMessage, error) {
	s.chatSeedMu.Lock()
	defer s.chatSeedMu.Unlock()

	// Another load may have seeded while we waited.
	msgs, err := s.store.ListChatMessages(ctx, club.ID)
	if err != nil || len(msgs) > 0 {
		return msgs, err
	}
	now := timeNow()
	ownerName := club.OwnerName
	if ownerName == "" {
		ownerName = "Administrator"
	}
	seed := []models.ChatMessage{
		{
			ID:        newID("welcome"),
			FanclubID: club.ID,
			UserID:    models.SystemUserID,
			UserName:  "System",
			Message:   welcomeSystemText,
			CreatedAt: now,
		},
		{
			ID:        newID("welcome"),
			FanclubID: club.ID,
			UserID:    club.OwnerID,
			UserName:  ownerName,
			Message:   welcomeOwnerText,
			CreatedAt: now,
		},
	}
	if err := s.store.AppendChatMessages(ctx, seed...); err != nil {
		return nil, fmt.Errorf("seed chat: %w", err)
	}
	return seed, nil
}

// SendChatMessage appends a message written by a member of the fan club.
func (s *Service) SendChatMessage(ctx context.Context, fanclubID string, user models.User, text string) (models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.ChatMessage{}, invalid("message is required")
	}
	if utf8.RuneCountInString(text) > MaxChatMessageLength {
		return models.ChatMessage{}, invalid(fmt.Sprintf("message must be at most %d characters", MaxChatMessageLength))
	}
	if _, err := s.store.FindFanclub(ctx, fanclubID); err != nil {
		return models.ChatMessage{}, err
	}
	_, member, err := s.Membership(ctx, fanclubID, user.ID)
	if err != nil {
		return models.ChatMessage{}, err
	}
	if !member {
		return models.ChatMessage{}, ErrForbidden
	}
	msg := models.ChatMessage{
		ID:        newID("msg"),
		FanclubID: fanclubID,
		UserID:    user.ID,
		UserName:  user.DisplayName(),
		Message:   text,
		CreatedAt: timeNow(),
	}
	if err := s.store.AppendChatMessages(ctx, msg); err != nil {
		return models.ChatMessage{}, fmt.Errorf("append chat message: %w", err)
	}
	return msg, nil
}

// CanDeleteChatMessage reports whether userID may delete msg in club:
// the author or the fan club owner may, and nobody may delete system messages.
func CanDeleteChatMessage(club models.Fanclub, msg models.ChatMessage, userID string) bool {
	if userID == "" || msg.IsSystem() {
		return false
	}
	return msg.UserID == userID || club.OwnerID == userID
}

// DeleteChatMessage removes a message if user is allowed to.
func (s *Service) DeleteChatMessage(ctx context.Context, fanclubID, messageID string, user models.User) error {
	club, err := s.store.FindFanclub(ctx, fanclubID)
	if err != nil {
		return err
	}
	msg, err := s.store.FindChatMessage(ctx, fanclubID, messageID)
	if err != nil {
		return err
	}
	if !CanDeleteChatMessage(club, msg, user.ID) {
		return ErrForbidden
	}
	if err := s.store.DeleteChatMessage(ctx, fanclubID, messageID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("delete chat message: %w", err)
	}
	return nil
}
