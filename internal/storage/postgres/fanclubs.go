package postgres

import (
	"context"
	"errors"

	"github.com/hongminglow/fanclub/internal/models"
	"github.com/hongminglow/fanclub/internal/storage"
	"github.com/jackc/pgx/v5"
)

const fanclubColumns = `id, name, description, purpose, monthly_fee, cover_image_url, owner_id, owner_name, member_count, created_at, updated_at`

// CreateFanclub inserts a fan club row.
func (s *Store) CreateFanclub(ctx context.Context, club models.Fanclub) (models.Fanclub, error) {
	const query = `
		INSERT INTO fanclubs (id, name, description, purpose, monthly_fee, cover_image_url, owner_id, owner_name, member_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + fanclubColumns
	row := s.pool.QueryRow(ctx, query, club.ID, club.Name, club.Description, club.Purpose, club.MonthlyFee,
		club.CoverImageURL, club.OwnerID, club.OwnerName, club.MemberCount, club.CreatedAt, club.UpdatedAt)
	created, err := scanFanclub(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Fanclub{}, storage.ErrAlreadyExists
		}
		return models.Fanclub{}, err
	}
	return created, nil
}

// FindFanclub fetches a fan club by id.
func (s *Store) FindFanclub(ctx context.Context, id string) (models.Fanclub, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+fanclubColumns+` FROM fanclubs WHERE id = $1`, id)
	return scanFanclub(row)
}

// ListFanclubs returns every fan club, newest first.
func (s *Store) ListFanclubs(ctx context.Context) ([]models.Fanclub, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+fanclubColumns+` FROM fanclubs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectFanclubs(rows)
}

// AdjustMemberCount applies delta, clamping at zero.
func (s *Store) AdjustMemberCount(ctx context.Context, id string, delta int) (models.Fanclub, error) {
	const query = `
		UPDATE fanclubs SET member_count = GREATEST(0, member_count + $2), updated_at = NOW()
		WHERE id = $1
		RETURNING ` + fanclubColumns
	return scanFanclub(s.pool.QueryRow(ctx, query, id, delta))
}

func scanFanclub(row pgx.Row) (models.Fanclub, error) {
	var c models.Fanclub
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Purpose, &c.MonthlyFee, &c.CoverImageURL,
		&c.OwnerID, &c.OwnerName, &c.MemberCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Fanclub{}, storage.ErrNotFound
		}
		return models.Fanclub{}, err
	}
	return c, nil
}

func collectFanclubs(rows pgx.Rows) ([]models.Fanclub, error) {
	defer rows.Close()
	var out []models.Fanclub
	for rows.Next() {
		c, err := scanFanclub(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
