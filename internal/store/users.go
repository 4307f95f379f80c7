package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Users struct {
	db DBTX
}

func NewUsers(db DBTX) *Users {
	return &Users{db: db}
}

const userColumns = `id, email, username, first_name, last_name, bio, avatar,
       location, website, password_hash, created_at, updated_at`

func scanUser(row *sql.Row) (*User, error) {
	u := &User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.Bio,
		&u.Avatar, &u.Location, &u.Website, &u.PasswordHash,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *Users) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (id, email, username, first_name, last_name, bio,
		                   avatar, location, website, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		u.ID, u.Email, u.Username, u.FirstName, u.LastName, u.Bio,
		u.Avatar, u.Location, u.Website, u.PasswordHash,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *Users) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *Users) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// Exists reports whether a user row exists for id.
func (r *Users) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// ExistsByEmailOrUsername backs the signup uniqueness check.
func (r *Users) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users
			WHERE LOWER(email) = LOWER($1) OR LOWER(username) = LOWER($2)
		)`, email, username,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// UpdatePasswordHash replaces the stored secret hash. Used for
// transparent rehashes after login when cost parameters change.
func (r *Users) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ProfileUpdate carries the mutable profile fields. Nil means "leave
// unchanged".
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Bio       *string
	Avatar    *string
	Location  *string
	Website   *string
}

// UpdateProfile applies u to the row and returns the fresh state.
// COALESCE keeps untouched columns as they were.
func (r *Users) UpdateProfile(ctx context.Context, id string, u ProfileUpdate) (*User, error) {
	query := `
		UPDATE users
		SET first_name = COALESCE($2, first_name),
		    last_name  = COALESCE($3, last_name),
		    bio        = COALESCE($4, bio),
		    avatar     = COALESCE($5, avatar),
		    location   = COALESCE($6, location),
		    website    = COALESCE($7, website),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	return scanUser(r.db.QueryRowContext(ctx, query,
		id, u.FirstName, u.LastName, u.Bio, u.Avatar, u.Location, u.Website,
	))
}
