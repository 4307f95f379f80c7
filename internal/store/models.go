package store

import "time"

// User is the authoritative user row. PasswordHash never leaves the
// store/auth layers; public projections are built in the user service.
type User struct {
	ID           string
	Email        string
	Username     string
	FirstName    string
	LastName     string
	Bio          string
	Avatar       string
	Location     string
	Website      string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ConnectionStatus is the lifecycle state of a connection record.
type ConnectionStatus string

const (
	StatusPending  ConnectionStatus = "PENDING"
	StatusAccepted ConnectionStatus = "ACCEPTED"
	StatusRejected ConnectionStatus = "REJECTED"
)

// Connection is a directed request record. Once ACCEPTED it represents
// an undirected relationship between the two users.
type Connection struct {
	ID         string           `json:"id"`
	SenderID   string           `json:"sender_id"`
	ReceiverID string           `json:"receiver_id"`
	Status     ConnectionStatus `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// UserSummary is the public slice of a user embedded in connection
// listings.
type UserSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

// IncomingRequest is a PENDING record joined with its sender, as listed
// for the receiver.
type IncomingRequest struct {
	ID        string      `json:"id"`
	Sender    UserSummary `json:"sender"`
	CreatedAt time.Time   `json:"created_at"`
}

// AcceptedConnection projects an ACCEPTED record to "the other party"
// plus the acceptance timestamp. A view concern, not a new entity.
type AcceptedConnection struct {
	ID          string      `json:"id"`
	Peer        UserSummary `json:"connected_user"`
	ConnectedAt time.Time   `json:"connected_at"`
}

// Post is a user-authored post row.
type Post struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
