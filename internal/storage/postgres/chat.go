package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/fanclub/internal/models"
	"github.com/hongminglow/fanclub/internal/storage"
	"github.com/jackc/pgx/v5"
)

const chatColumns = `id, fanclub_id, user_id, user_name, message, created_at`

// AppendChatMessages inserts msgs in order using one batch.
func (s *Store) AppendChatMessages(ctx context.Context, msgs ...models.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range msgs {
		batch.Queue(`INSERT INTO chat_messages (`+chatColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
			m.ID, m.FanclubID, m.UserID, m.UserName, m.Message, m.CreatedAt)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert chat messages: %w", err)
	}
	return nil
}

// ListChatMessages returns a fan club's chat in insertion order.
func (s *Store) ListChatMessages(ctx context.Context, fanclubID string) ([]models.ChatMessage, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+chatColumns+` FROM chat_messages WHERE fanclub_id = $1 ORDER BY seq`, fanclubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.ChatMessage
	for rows.Next() {
		m, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// FindChatMessage fetches one message of a fan club chat.
func (s *Store) FindChatMessage(ctx context.Context, fanclubID, id string) (models.ChatMessage, error) {
	return scanChat(s.pool.QueryRow(ctx,
		`SELECT `+chatColumns+` FROM chat_messages WHERE fanclub_id = $1 AND id = $2`, fanclubID, id))
}

// DeleteChatMessage removes one message.
func (s *Store) DeleteChatMessage(ctx context.Context, fanclubID, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM chat_messages WHERE fanclub_id = $1 AND id = $2`, fanclubID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanChat(row pgx.Row) (models.ChatMessage, error) {
	var m models.ChatMessage
	if err := row.Scan(&m.ID, &m.FanclubID, &m.UserID, &m.UserName, &m.Message, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ChatMessage{}, storage.ErrNotFound
		}
		return models.ChatMessage{}, err
	}
	return m, nil
}
