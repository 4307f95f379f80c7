package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Connections struct {
	db DBTX
}

func NewConnections(db DBTX) *Connections {
	return &Connections{db: db}
}

const connectionColumns = `id, sender_id, receiver_id, status, created_at, updated_at`

func scanConnection(row *sql.Row) (*Connection, error) {
	c := &Connection{}
	err := row.Scan(&c.ID, &c.SenderID, &c.ReceiverID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

// CreatePending inserts a PENDING record directed sender->receiver. The
// insert is conditional on the partial unique pair index: if a PENDING
// or ACCEPTED record already exists for the unordered pair (in either
// direction), no row is written and [ErrPairConflict] is returned. This
// closes the race where two simultaneous requests in opposite directions
// both observe "no existing record".
func (r *Connections) CreatePending(ctx context.Context, id, senderID, receiverID string) (*Connection, error) {
	query := `
		INSERT INTO connections (id, sender_id, receiver_id, status)
		VALUES ($1, $2, $3, 'PENDING')
		ON CONFLICT ((LEAST(sender_id, receiver_id)), (GREATEST(sender_id, receiver_id)))
			WHERE status IN ('PENDING', 'ACCEPTED')
			DO NOTHING
		RETURNING ` + connectionColumns

	conn, err := scanConnection(r.db.QueryRowContext(ctx, query, id, senderID, receiverID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrPairConflict
		}
		return nil, err
	}
	return conn, nil
}

func (r *Connections) GetByID(ctx context.Context, id string) (*Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE id = $1`
	return scanConnection(r.db.QueryRowContext(ctx, query, id))
}

// FindActiveBetween returns the PENDING or ACCEPTED record for the
// unordered pair {a, b}, or [ErrNotFound]. REJECTED records are
// deliberately invisible here: they never block recreation.
func (r *Connections) FindActiveBetween(ctx context.Context, a, b string) (*Connection, error) {
	query := `
		SELECT ` + connectionColumns + `
		FROM connections
		WHERE status IN ('PENDING', 'ACCEPTED')
		  AND ((sender_id = $1 AND receiver_id = $2)
		    OR (sender_id = $2 AND receiver_id = $1))
		LIMIT 1`

	return scanConnection(r.db.QueryRowContext(ctx, query, a, b))
}

// Resolve transitions a PENDING record to the given terminal status.
// The status predicate makes the transition atomic: of two concurrent
// resolutions exactly one matches the PENDING row, and the loser gets
// resolved=false.
func (r *Connections) Resolve(ctx context.Context, id string, to ConnectionStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE connections
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING'`, id, string(to))
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected == 1, nil
}

// ListIncoming returns PENDING records where userID is the receiver,
// newest first, each with the sender's public summary.
func (r *Connections) ListIncoming(ctx context.Context, userID string) ([]IncomingRequest, error) {
	query := `
		SELECT c.id, u.id, u.username, u.first_name, u.last_name, u.avatar, u.bio,
		       c.created_at
		FROM connections c
		JOIN users u ON u.id = c.sender_id
		WHERE c.receiver_id = $1 AND c.status = 'PENDING'
		ORDER BY c.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	requests := []IncomingRequest{}
	for rows.Next() {
		var req IncomingRequest
		if err := rows.Scan(
			&req.ID,
			&req.Sender.ID, &req.Sender.Username, &req.Sender.FirstName,
			&req.Sender.LastName, &req.Sender.Avatar, &req.Sender.Bio,
			&req.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return requests, nil
}

// ListAccepted returns ACCEPTED records touching userID, projected to
// the other party plus the acceptance timestamp, most recent first.
func (r *Connections) ListAccepted(ctx context.Context, userID string) ([]AcceptedConnection, error) {
	query := `
		SELECT c.id, u.id, u.username, u.first_name, u.last_name, u.avatar, u.bio,
		       c.updated_at
		FROM connections c
		JOIN users u
		  ON u.id = CASE WHEN c.sender_id = $1 THEN c.receiver_id ELSE c.sender_id END
		WHERE c.status = 'ACCEPTED'
		  AND (c.sender_id = $1 OR c.receiver_id = $1)
		ORDER BY c.updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	connections := []AcceptedConnection{}
	for rows.Next() {
		var conn AcceptedConnection
		if err := rows.Scan(
			&conn.ID,
			&conn.Peer.ID, &conn.Peer.Username, &conn.Peer.FirstName,
			&conn.Peer.LastName, &conn.Peer.Avatar, &conn.Peer.Bio,
			&conn.ConnectedAt,
		); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		connections = append(connections, conn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return connections, nil
}

// Delete removes the record entirely, regardless of status. Idempotent.
func (r *Connections) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM connections WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
