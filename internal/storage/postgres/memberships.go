package postgres

import (
	"context"
	"errors"

	"github.com/hongminglow/fanclub/internal/models"
	"github.com/hongminglow/fanclub/internal/storage"
	"github.com/jackc/pgx/v5"
)

// AddMembership inserts the (fan club, user) pair.
func (s *Store) AddMembership(ctx context.Context, m models.Membership) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO memberships (fanclub_id, user_id, user_name, role, joined_at) VALUES ($1, $2, $3, $4, $5)`,
		m.FanclubID, m.UserID, m.UserName, m.Role, m.JoinedAt)
	if isUniqueViolation(err) {
		return storage.ErrAlreadyExists
	}
	return err
}

// RemoveMembership deletes the pair.
func (s *Store) RemoveMembership(ctx context.Context, fanclubID, userID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM memberships WHERE fanclub_id = $1 AND user_id = $2`, fanclubID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// FindMembership fetches the membership row for the pair.
func (s *Store) FindMembership(ctx context.Context, fanclubID, userID string) (models.Membership, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT fanclub_id, user_id, user_name, role, joined_at FROM memberships WHERE fanclub_id = $1 AND user_id = $2`,
		fanclubID, userID)
	m, err := scanMembership(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Membership{}, storage.ErrNotFound
	}
	return m, err
}

// ListMembers returns the members of a fan club in join order.
func (s *Store) ListMembers(ctx context.Context, fanclubID string) ([]models.Membership, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT fanclub_id, user_id, user_name, role, joined_at FROM memberships WHERE fanclub_id = $1 ORDER BY joined_at`,
		fanclubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListJoinedFanclubs returns the fan clubs userID belongs to.
func (s *Store) ListJoinedFanclubs(ctx context.Context, userID string) ([]models.Fanclub, error) {
	const query = `
		SELECT f.id, f.name, f.description, f.purpose, f.monthly_fee, f.cover_image_url, f.owner_id, f.owner_name,
			f.member_count, f.created_at, f.updated_at
		FROM fanclubs f
		JOIN memberships m ON m.fanclub_id = f.id
		WHERE m.user_id = $1
		ORDER BY m.joined_at DESC`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collectFanclubs(rows)
}

func scanMembership(row pgx.Row) (models.Membership, error) {
	var m models.Membership
	err := row.Scan(&m.FanclubID, &m.UserID, &m.UserName, &m.Role, &m.JoinedAt)
	return m, err
}
