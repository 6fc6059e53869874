package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/fanclub/internal/models"
	"github.com/hongminglow/fanclub/internal/storage"
	"github.com/jackc/pgx/v5"
)

const postColumns = `id, fanclub_id, author_id, author_name, title, excerpt, content, featured_image_url, visibility, like_count, created_at`

// CreatePost inserts a post row.
func (s *Store) CreatePost(ctx context.Context, p models.Post) (models.Post, error) {
	const query = `
		INSERT INTO posts (id, fanclub_id, author_id, author_name, title, excerpt, content, featured_image_url, visibility, like_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + postColumns
	return scanPost(s.pool.QueryRow(ctx, query, p.ID, p.FanclubID, p.AuthorID, p.AuthorName, p.Title, p.Excerpt,
		p.Content, p.FeaturedImageURL, p.Visibility, p.LikeCount, p.CreatedAt))
}

// FindPost fetches a post by id.
func (s *Store) FindPost(ctx context.Context, id string) (models.Post, error) {
	return scanPost(s.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
}

// ListPosts returns the posts of a fan club, newest first.
func (s *Store) ListPosts(ctx context.Context, fanclubID string) ([]models.Post, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+postColumns+` FROM posts WHERE fanclub_id = $1 ORDER BY created_at DESC`, fanclubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetLike records or clears a like inside one transaction so like_count
// follows post_likes exactly.
func (s *Store) SetLike(ctx context.Context, postID, userID string, liked bool) (models.Post, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.Post{}, fmt.Errorf("begin like tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var stmt string
	if liked {
		stmt = `INSERT INTO post_likes (post_id, user_id) SELECT id, $2 FROM posts WHERE id = $1 ON CONFLICT DO NOTHING`
	} else {
		stmt = `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`
	}
	if _, err := tx.Exec(ctx, stmt, postID, userID); err != nil {
		return models.Post{}, err
	}
	const update = `
		UPDATE posts SET like_count = (SELECT COUNT(*) FROM post_likes WHERE post_id = $1)
		WHERE id = $1
		RETURNING ` + postColumns
	post, err := scanPost(tx.QueryRow(ctx, update, postID))
	if err != nil {
		return models.Post{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Post{}, fmt.Errorf("commit like tx: %w", err)
	}
	post.IsLiked = liked
	return post, nil
}

// LikedPostIDs returns the set of posts in a fan club liked by userID.
func (s *Store) LikedPostIDs(ctx context.Context, fanclubID, userID string) (map[string]bool, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT l.post_id FROM post_likes l JOIN posts p ON p.id = l.post_id WHERE p.fanclub_id = $1 AND l.user_id = $2`,
		fanclubID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

func scanPost(row pgx.Row) (models.Post, error) {
	var p models.Post
	if err := row.Scan(&p.ID, &p.FanclubID, &p.AuthorID, &p.AuthorName, &p.Title, &p.Excerpt, &p.Content,
		&p.FeaturedImageURL, &p.Visibility, &p.LikeCount, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Post{}, storage.ErrNotFound
		}
		return models.Post{}, err
	}
	return p, nil
}
