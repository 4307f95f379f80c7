package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Posts struct {
	db DBTX
}

func NewPosts(db DBTX) *Posts {
	return &Posts{db: db}
}

func (r *Posts) Create(ctx context.Context, p *Post) error {
	query := `
		INSERT INTO posts (id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, p.ID, p.AuthorID, p.Content).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *Posts) GetByID(ctx context.Context, id string) (*Post, error) {
	p := &Post{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, author_id, content, created_at, updated_at
		FROM posts WHERE id = $1`, id,
	).Scan(&p.ID, &p.AuthorID, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *Posts) ListByAuthor(ctx context.Context, authorID string, limit int) ([]Post, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, author_id, content, created_at, updated_at
		FROM posts
		WHERE author_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, authorID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Content, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return posts, nil
}

func (r *Posts) UpdateContent(ctx context.Context, id, content string) (*Post, error) {
	p := &Post{}
	err := r.db.QueryRowContext(ctx, `
		UPDATE posts
		SET content = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, author_id, content, created_at, updated_at`, id, content,
	).Scan(&p.ID, &p.AuthorID, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *Posts) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
