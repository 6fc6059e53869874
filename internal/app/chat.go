package app

import (
	"context"
	"errors"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/hongminglow/fanclub/internal/fanclub"
	"github.com/hongminglow/fanclub/internal/gateway"
	"github.com/hongminglow/fanclub/internal/localstore"
	"github.com/hongminglow/fanclub/internal/models"
)

// ErrMessageNotFound is returned when deleting a message that is not in the chat.
var ErrMessageNotFound = errors.New("chat message not found")

// loadChat fetches the whole chat of the current fan club and renders it.
// The list is cached locally and the cache is shown when the backend
// cannot be reached.
func (a *App) loadChat(ctx context.Context, fresh func() bool) error {
	club, err := a.currentFanclub()
	if err != nil {
		return err
	}
	done := a.loading.Begin()
	defer done()

	msgs, err := a.gw.ChatMessages(ctx, club.ID, "")
	offline := false
	if err != nil {
		var apiErr *gateway.APIError
		if errors.As(err, &apiErr) {
			if !fresh() {
				return nil
			}
			return a.fail("load chat of "+club.ID, msgLoadFailed, err)
		}
		cached, ok := a.cachedChat(club.ID)
		if !ok {
			if !fresh() {
				return nil
			}
			return a.fail("load chat of "+club.ID, msgLoadFailed, err)
		}
		a.logger.Printf("load chat of %s, showing cache: %v", club.ID, err)
		msgs, offline = cached, true
	}

	inputVisible := a.canChat(ctx, club.ID)
	if !fresh() {
		return nil
	}
	if !offline && a.kv != nil {
		if err := a.kv.Encode(localstore.ChatKey(club.ID), msgs); err != nil {
			a.logger.Printf("cache chat of %s: %v", club.ID, err)
		}
	}
	if offline {
		a.notifier.Notify(NoticeWarning, msgChatOffline)
	}

	uid := a.sess.UserID()
	deletable := map[string]bool{}
	for _, m := range msgs {
		if fanclub.CanDeleteChatMessage(club, m, uid) {
			deletable[m.ID] = true
		}
	}
	a.mu.Lock()
	a.chat = msgs
	a.mu.Unlock()
	a.view.RenderChat(ContainerChat, ChatView{
		Messages:     msgs,
		Deletable:    deletable,
		InputVisible: inputVisible && !offline,
		Offline:      offline,
	})
	return nil
}

// canChat is the chat input gate: a signed-in member of the fan club.
func (a *App) canChat(ctx context.Context, fanclubID string) bool {
	if !a.sess.LoggedIn() {
		return false
	}
	m, err := a.gw.Membership(ctx, fanclubID)
	if err != nil {
		a.logger.Printf("membership of %s: %v", fanclubID, err)
		return false
	}
	return m.IsMember
}

func (a *App) cachedChat(fanclubID string) ([]models.ChatMessage, bool) {
	if a.kv == nil {
		return nil, false
	}
	var msgs []models.ChatMessage
	ok, err := a.kv.Decode(localstore.ChatKey(fanclubID), &msgs)
	if err != nil {
		a.logger.Printf("read cached chat of %s: %v", fanclubID, err)
		return nil, false
	}
	return msgs, ok
}

// SendChat posts a message to the current fan club, then reloads and
// redraws the whole chat.
func (a *App) SendChat(ctx context.Context, text string) error {
	if !a.sess.LoggedIn() {
		return a.needLogin(msgChatNeedsLogin, AuthLogin)
	}
	club, err := a.currentFanclub()
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return a.reject(msgChatEmpty)
	}
	if utf8.RuneCountInString(text) > fanclub.MaxChatMessageLength {
		return a.reject(msgChatTooLong)
	}
	done := a.loading.Begin()
	defer done()

	if _, err := a.gw.SendChatMessage(ctx, club.ID, text); err != nil {
		return a.fail("send chat message to "+club.ID, msgChatSendFailed, err)
	}
	a.notifier.Notify(NoticeSuccess, msgChatSent)
	return a.loadChat(ctx, a.reloadFresh())
}

// DeleteChat deletes a message of the current fan club after confirmation.
// Only the author or the owner may delete, and system messages never.
func (a *App) DeleteChat(ctx context.Context, messageID string) error {
	if !a.sess.LoggedIn() {
		return a.needLogin(msgChatNeedsLogin, AuthLogin)
	}
	club, err := a.currentFanclub()
	if err != nil {
		return err
	}
	msg, err := a.findChatMessage(ctx, club.ID, messageID)
	if err != nil {
		return err
	}
	if !fanclub.CanDeleteChatMessage(club, msg, a.sess.UserID()) {
		return a.reject(msgChatDeleteForbidden)
	}
	if !a.confirmer.Confirm(msgChatDeleteConfirm) {
		return nil
	}
	done := a.loading.Begin()
	defer done()

	if err := a.gw.DeleteChatMessage(ctx, club.ID, messageID); err != nil {
		return a.fail("delete chat message "+messageID, msgChatDeleteFailed, err)
	}
	a.notifier.Notify(NoticeSuccess, msgChatDeleted)
	return a.loadChat(ctx, a.reloadFresh())
}

// findChatMessage looks in the rendered chat first and asks the backend
// when the message is not there.
func (a *App) findChatMessage(ctx context.Context, fanclubID, messageID string) (models.ChatMessage, error) {
	a.mu.Lock()
	loaded := slices.Clone(a.chat)
	a.mu.Unlock()
	if i := slices.IndexFunc(loaded, func(m models.ChatMessage) bool { return m.ID == messageID }); i >= 0 {
		return loaded[i], nil
	}

	done := a.loading.Begin()
	defer done()
	msgs, err := a.gw.ChatMessages(ctx, fanclubID, "")
	if err != nil {
		return models.ChatMessage{}, a.fail("load chat of "+fanclubID, msgChatDeleteFailed, err)
	}
	if i := slices.IndexFunc(msgs, func(m models.ChatMessage) bool { return m.ID == messageID }); i >= 0 {
		return msgs[i], nil
	}
	a.notifier.Notify(NoticeError, msgChatDeleteFailed)
	return models.ChatMessage{}, ErrMessageNotFound
}

// Chat returns the chat as last rendered.
func (a *App) Chat() []models.ChatMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.chat)
}
