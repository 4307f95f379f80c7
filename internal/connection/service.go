// Package connection implements the request/accept/reject protocol
// between users. A record starts PENDING, directed sender->receiver,
// and moves to exactly one of ACCEPTED or REJECTED, both terminal for
// that record. At most one PENDING or ACCEPTED record exists per
// unordered user pair at any time; REJECTED records never block a new
// request.
package connection

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/logging"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/store"
)

var (
	// ErrSelfConnection is returned when sender and receiver are the same
	// user.
	ErrSelfConnection = errors.New("cannot connect to yourself")
	// ErrPeerNotFound is returned when the receiver does not exist.
	ErrPeerNotFound = errors.New("peer not found")
	// ErrRequestPending is returned when a PENDING record already exists
	// for the pair, in either direction.
	ErrRequestPending = errors.New("connection request already pending")
	// ErrAlreadyConnected is returned when an ACCEPTED record already
	// exists for the pair.
	ErrAlreadyConnected = errors.New("already connected")
	// ErrConnectionNotFound is returned when no record exists for the id.
	ErrConnectionNotFound = errors.New("connection not found")
	// ErrNotReceiver is returned when anyone but the receiver tries to
	// resolve a request.
	ErrNotReceiver = errors.New("only the receiver can resolve a request")
	// ErrNotParticipant is returned when a non-party tries to remove a
	// record.
	ErrNotParticipant = errors.New("not a participant of this connection")
	// ErrNotPending is returned when resolving a record that already
	// reached a terminal status.
	ErrNotPending = errors.New("connection request is not pending")
)

// Store is the slice of the connection repository this service needs.
type Store interface {
	CreatePending(ctx context.Context, id, senderID, receiverID string) (*store.Connection, error)
	GetByID(ctx context.Context, id string) (*store.Connection, error)
	FindActiveBetween(ctx context.Context, a, b string) (*store.Connection, error)
	Resolve(ctx context.Context, id string, to store.ConnectionStatus) (bool, error)
	ListIncoming(ctx context.Context, userID string) ([]store.IncomingRequest, error)
	ListAccepted(ctx context.Context, userID string) ([]store.AcceptedConnection, error)
	Delete(ctx context.Context, id string) error
}

// UserStore answers receiver-existence checks.
type UserStore interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Service is the connection state machine over the repositories.
type Service struct {
	connections Store
	users       UserStore
	log         logging.Logger
}

// NewService creates a connection [Service].
func NewService(connections Store, users UserStore, log logging.Logger) *Service {
	return &Service{connections: connections, users: users, log: log}
}

// Request creates a PENDING record directed senderID->receiverID.
// Dedup is enforced by the store's conditional insert against the
// canonical-pair index, so two simultaneous requests in opposite
// directions cannot both land; the probe here exists to classify the
// conflict for the caller.
func (s *Service) Request(ctx context.Context, senderID, receiverID string) (*store.Connection, error) {
	if senderID == receiverID {
		return nil, ErrSelfConnection
	}

	exists, err := s.users.Exists(ctx, receiverID)
	if err != nil {
		return nil, fmt.Errorf("check receiver: %w", err)
	}
	if !exists {
		return nil, ErrPeerNotFound
	}

	if existing, err := s.connections.FindActiveBetween(ctx, senderID, receiverID); err == nil {
		return nil, pairConflictError(existing.Status)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("probe existing connection: %w", err)
	}

	conn, err := s.connections.CreatePending(ctx, uuid.NewString(), senderID, receiverID)
	if err != nil {
		if errors.Is(err, store.ErrPairConflict) {
			// Lost a race with a concurrent request for the same pair.
			if existing, probeErr := s.connections.FindActiveBetween(ctx, senderID, receiverID); probeErr == nil {
				return nil, pairConflictError(existing.Status)
			}
			return nil, ErrRequestPending
		}
		return nil, fmt.Errorf("create connection request: %w", err)
	}

	return conn, nil
}

// Accept transitions a PENDING record to ACCEPTED. Only the receiver
// may accept.
func (s *Service) Accept(ctx context.Context, connectionID, actorID string) (*store.Connection, error) {
	return s.resolve(ctx, connectionID, actorID, store.StatusAccepted)
}

// Reject transitions a PENDING record to REJECTED. Only the receiver
// may reject.
func (s *Service) Reject(ctx context.Context, connectionID, actorID string) (*store.Connection, error) {
	return s.resolve(ctx, connectionID, actorID, store.StatusRejected)
}

// ListIncoming returns the PENDING requests where userID is the
// receiver, newest first.
func (s *Service) ListIncoming(ctx context.Context, userID string) ([]store.IncomingRequest, error) {
	return s.connections.ListIncoming(ctx, userID)
}

// ListAccepted returns the accepted connections touching userID,
// projected to the other party plus the acceptance timestamp.
func (s *Service) ListAccepted(ctx context.Context, userID string) ([]store.AcceptedConnection, error) {
	return s.connections.ListAccepted(ctx, userID)
}

// Remove deletes the record entirely, any status. Either party may
// remove; there is no "removed" terminal state.
func (s *Service) Remove(ctx context.Context, connectionID, actorID string) error {
	conn, err := s.connections.GetByID(ctx, connectionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrConnectionNotFound
		}
		return fmt.Errorf("load connection: %w", err)
	}

	if conn.SenderID != actorID && conn.ReceiverID != actorID {
		return ErrNotParticipant
	}

	if err := s.connections.Delete(ctx, connectionID); err != nil {
		return fmt.Errorf("delete connection: %w", err)
	}
	return nil
}

func (s *Service) resolve(ctx context.Context, connectionID, actorID string, to store.ConnectionStatus) (*store.Connection, error) {
	conn, err := s.connections.GetByID(ctx, connectionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrConnectionNotFound
		}
		return nil, fmt.Errorf("load connection: %w", err)
	}

	if conn.ReceiverID != actorID {
		return nil, ErrNotReceiver
	}
	if conn.Status != store.StatusPending {
		return nil, ErrNotPending
	}

	// Conditional update: of two concurrent resolutions exactly one
	// matches the PENDING row; the loser observes ErrNotPending here.
	resolved, err := s.connections.Resolve(ctx, connectionID, to)
	if err != nil {
		return nil, fmt.Errorf("resolve connection: %w", err)
	}
	if !resolved {
		return nil, ErrNotPending
	}

	return s.connections.GetByID(ctx, connectionID)
}

func pairConflictError(status store.ConnectionStatus) error {
	if status == store.StatusAccepted {
		return ErrAlreadyConnected
	}
	return ErrRequestPending
}
