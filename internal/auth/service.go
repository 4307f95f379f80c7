// Package auth implements signup, login, and logout. A successful
// signup or login issues a fresh credential and records it as the sole
// valid session for the user, superseding any prior credential even if
// that one is still cryptographically valid.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/logging"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/rate"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/session"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/store"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/user"
)

var (
	// ErrInvalidCredentials is returned for unknown email or wrong
	// password; callers cannot distinguish the two.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when the signup email or username is
	// already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrRateLimited is returned when the caller exceeded the attempt
	// budget for the window.
	ErrRateLimited = errors.New("too many attempts")
)

// UserStore is the slice of the user repository this service needs.
type UserStore interface {
	Create(ctx context.Context, u *store.User) error
	GetByEmail(ctx context.Context, email string) (*store.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}

// Hasher hashes and verifies password secrets.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
	NeedsRehash(encodedHash string) (bool, error)
}

// Issuer signs and verifies credentials.
type Issuer interface {
	Issue(userID string) (string, error)
	Verify(token string) (string, error)
	TTL() time.Duration
}

// SessionAuthority records and revokes the single valid session per
// user.
type SessionAuthority interface {
	Establish(ctx context.Context, sess session.Session, ttl time.Duration) error
	Revoke(ctx context.Context, userID string) error
}

// Limiter throttles authentication attempts.
type Limiter interface {
	Check(ctx context.Context, identifier, ip string) error
	Increment(ctx context.Context, identifier, ip string) error
	Reset(ctx context.Context, identifier, ip string) error
}

// SignupParams carries the validated signup input.
type SignupParams struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
	Bio       string
	Avatar    string
	Location  string
	Website   string
}

// Result is a profile plus the freshly issued credential.
type Result struct {
	Profile *user.Profile
	Token   string
}

// Service wires credential issuing, password hashing, and the session
// authority into the signup/login/logout flows.
type Service struct {
	users    UserStore
	hasher   Hasher
	tokens   Issuer
	sessions SessionAuthority
	limiter  Limiter
	log      logging.Logger
}

// NewService creates an auth [Service]. limiter may be nil to disable
// throttling.
func NewService(
	users UserStore,
	hasher Hasher,
	tokens Issuer,
	sessions SessionAuthority,
	limiter Limiter,
	log logging.Logger,
) *Service {
	return &Service{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		sessions: sessions,
		limiter:  limiter,
		log:      log,
	}
}

// Signup creates the user, issues a credential, and establishes the
// session.
func (s *Service) Signup(ctx context.Context, params SignupParams, ip string) (*Result, error) {
	email := strings.TrimSpace(strings.ToLower(params.Email))
	username := strings.TrimSpace(params.Username)
	if username == "" {
		// Same fallback the signup form applies client-side.
		username = strings.SplitN(email, "@", 2)[0]
	}

	if err := s.throttle(ctx, email, ip); err != nil {
		return nil, err
	}
	// Every signup attempt consumes budget, successful or not, so mass
	// registration from one address trips the IP counter.
	s.recordAttempt(ctx, email, ip)

	taken, err := s.users.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, fmt.Errorf("signup uniqueness check: %w", err)
	}
	if taken {
		return nil, ErrUserExists
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &store.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Bio:          params.Bio,
		Avatar:       params.Avatar,
		Location:     params.Location,
		Website:      params.Website,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.issueAndEstablish(ctx, u)
}

// Login verifies the secret and, on success, issues a credential and
// establishes a session that supersedes any prior one for the user.
func (s *Service) Login(ctx context.Context, email, pass, ip string) (*Result, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	if err := s.throttle(ctx, email, ip); err != nil {
		return nil, err
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.recordAttempt(ctx, email, ip)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	ok, err := s.hasher.Verify(pass, u.PasswordHash)
	if err != nil || !ok {
		s.recordAttempt(ctx, email, ip)
		return nil, ErrInvalidCredentials
	}

	s.maybeRehash(ctx, u, pass)

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, email, ip); err != nil {
			s.log.Warn(ctx, "rate counter reset failed", "error", err)
		}
	}

	return s.issueAndEstablish(ctx, u)
}

// Logout revokes the session for the decoded credential. Best effort:
// an unverifiable credential or a missing session is not an error.
func (s *Service) Logout(ctx context.Context, tokenStr string) error {
	if tokenStr == "" {
		return nil
	}

	userID, err := s.tokens.Verify(tokenStr)
	if err != nil {
		return nil
	}

	if err := s.sessions.Revoke(ctx, userID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *Service) issueAndEstablish(ctx context.Context, u *store.User) (*Result, error) {
	tokenStr, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issue credential: %w", err)
	}

	now := time.Now()
	sess := session.Session{
		UserID:    u.ID,
		Token:     tokenStr,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.tokens.TTL()),
	}
	if err := s.sessions.Establish(ctx, sess, s.tokens.TTL()); err != nil {
		return nil, fmt.Errorf("establish session: %w", err)
	}

	return &Result{Profile: user.ProfileFromUser(u), Token: tokenStr}, nil
}

// throttle applies the attempt budget. Redis being down never blocks
// authentication: throttling protects availability, it does not gate
// correctness.
func (s *Service) throttle(ctx context.Context, identifier, ip string) error {
	if s.limiter == nil {
		return nil
	}
	err := s.limiter.Check(ctx, identifier, ip)
	if err == nil {
		return nil
	}
	if errors.Is(err, rate.ErrRateLimited) {
		return ErrRateLimited
	}
	s.log.Warn(ctx, "rate limiter unavailable, proceeding", "error", err)
	return nil
}

// recordAttempt charges one attempt against the identifier and IP
// counters: signup attempts and failed logins both count. A successful
// login resets the counters instead.
func (s *Service) recordAttempt(ctx context.Context, identifier, ip string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Increment(ctx, identifier, ip); err != nil &&
		!errors.Is(err, rate.ErrRateLimited) {
		s.log.Warn(ctx, "rate counter increment failed", "error", err)
	}
}

// maybeRehash upgrades the stored hash after a successful verify when
// cost parameters have been raised since it was written.
func (s *Service) maybeRehash(ctx context.Context, u *store.User, pass string) {
	needs, err := s.hasher.NeedsRehash(u.PasswordHash)
	if err != nil || !needs {
		return
	}
	fresh, err := s.hasher.Hash(pass)
	if err != nil {
		return
	}
	if err := s.users.UpdatePasswordHash(ctx, u.ID, fresh); err != nil {
		s.log.Warn(ctx, "password rehash failed", "user_id", u.ID, "error", err)
		return
	}
	u.PasswordHash = fresh
}
