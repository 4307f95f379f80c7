package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/auth"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/cache"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/connection"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/logging"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/password"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/post"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/session"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/store"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/token"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/user"
)

// memUsers is an in-memory stand-in for the users repository, covering
// the slices the auth, user, and connection services need.
type memUsers struct {
	byID map[string]*store.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*store.User{}}
}

func (m *memUsers) Create(_ context.Context, u *store.User) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	copied := *u
	m.byID[u.ID] = &copied
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*store.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*store.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memUsers) Exists(_ context.Context, id string) (bool, error) {
	_, ok := m.byID[id]
	return ok, nil
}

func (m *memUsers) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	for _, u := range m.byID {
		if u.Email == email || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) UpdatePasswordHash(_ context.Context, id, hash string) error {
	u, ok := m.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id string, update store.ProfileUpdate) (*store.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if update.FirstName != nil {
		u.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		u.LastName = *update.LastName
	}
	if update.Bio != nil {
		u.Bio = *update.Bio
	}
	if update.Avatar != nil {
		u.Avatar = *update.Avatar
	}
	if update.Location != nil {
		u.Location = *update.Location
	}
	if update.Website != nil {
		u.Website = *update.Website
	}
	u.UpdatedAt = time.Now()
	copied := *u
	return &copied, nil
}

// memConnections mirrors the repository's pair semantics in memory.
type memConnections struct {
	byID map[string]*store.Connection
}

func newMemConnections() *memConnections {
	return &memConnections{byID: map[string]*store.Connection{}}
}

func (m *memConnections) activeBetween(a, b string) *store.Connection {
	for _, c := range m.byID {
		if c.Status == store.StatusRejected {
			continue
		}
		if (c.SenderID == a && c.ReceiverID == b) || (c.SenderID == b && c.ReceiverID == a) {
			return c
		}
	}
	return nil
}

func (m *memConnections) CreatePending(_ context.Context, id, senderID, receiverID string) (*store.Connection, error) {
	if m.activeBetween(senderID, receiverID) != nil {
		return nil, store.ErrPairConflict
	}
	now := time.Now()
	c := &store.Connection{
		ID: id, SenderID: senderID, ReceiverID: receiverID,
		Status: store.StatusPending, CreatedAt: now, UpdatedAt: now,
	}
	m.byID[id] = c
	copied := *c
	return &copied, nil
}

func (m *memConnections) GetByID(_ context.Context, id string) (*store.Connection, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *memConnections) FindActiveBetween(_ context.Context, a, b string) (*store.Connection, error) {
	c := m.activeBetween(a, b)
	if c == nil {
		return nil, store.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *memConnections) Resolve(_ context.Context, id string, to store.ConnectionStatus) (bool, error) {
	c, ok := m.byID[id]
	if !ok || c.Status != store.StatusPending {
		return false, nil
	}
	c.Status = to
	c.UpdatedAt = time.Now()
	return true, nil
}

func (m *memConnections) ListIncoming(_ context.Context, userID string) ([]store.IncomingRequest, error) {
	out := []store.IncomingRequest{}
	for _, c := range m.byID {
		if c.ReceiverID == userID && c.Status == store.StatusPending {
			out = append(out, store.IncomingRequest{
				ID:        c.ID,
				Sender:    store.UserSummary{ID: c.SenderID},
				CreatedAt: c.CreatedAt,
			})
		}
	}
	return out, nil
}

func (m *memConnections) ListAccepted(_ context.Context, userID string) ([]store.AcceptedConnection, error) {
	out := []store.AcceptedConnection{}
	for _, c := range m.byID {
		if c.Status != store.StatusAccepted {
			continue
		}
		var peer string
		switch userID {
		case c.SenderID:
			peer = c.ReceiverID
		case c.ReceiverID:
			peer = c.SenderID
		default:
			continue
		}
		out = append(out, store.AcceptedConnection{
			ID:          c.ID,
			Peer:        store.UserSummary{ID: peer},
			ConnectedAt: c.UpdatedAt,
		})
	}
	return out, nil
}

func (m *memConnections) Delete(_ context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

// memPosts is an in-memory stand-in for the posts repository.
type memPosts struct {
	byID map[string]*store.Post
}

func newMemPosts() *memPosts {
	return &memPosts{byID: map[string]*store.Post{}}
}

func (m *memPosts) Create(_ context.Context, p *store.Post) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	copied := *p
	m.byID[p.ID] = &copied
	return nil
}

func (m *memPosts) GetByID(_ context.Context, id string) (*store.Post, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *memPosts) ListByAuthor(_ context.Context, authorID string, limit int) ([]store.Post, error) {
	out := []store.Post{}
	for _, p := range m.byID {
		if p.AuthorID == authorID {
			out = append(out, *p)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memPosts) UpdateContent(_ context.Context, id, content string) (*store.Post, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p.Content = content
	p.UpdatedAt = time.Now()
	copied := *p
	return &copied, nil
}

func (m *memPosts) Delete(_ context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

type apiFixture struct {
	router *gin.Engine
	redis  *miniredis.Miniredis
}

func newAPITest(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})

	issuer, err := token.NewIssuer(token.Config{
		Secret: []byte("0123456789abcdef0123456789abcdef"),
		TTL:    time.Hour,
		Issuer: "test",
	})
	require.NoError(t, err)

	hasher, err := password.NewHasher(password.Config{
		Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 16,
	})
	require.NoError(t, err)

	log := logging.Nop()
	users := newMemUsers()
	sessions := session.NewAuthority(rdb, "session")

	authSvc := auth.NewService(users, hasher, issuer, sessions, nil, log)
	userSvc := user.NewService(users, cache.New(rdb, "cache:user"), user.Config{ProfileTTL: time.Hour}, log)
	connSvc := connection.NewService(newMemConnections(), users, log)
	postSvc := post.NewService(newMemPosts(), cache.New(rdb, "cache:userposts"), post.Config{FeedTTL: time.Minute}, log)

	gate := NewGate(issuer, sessions, userSvc, log)
	handler := NewHandler(authSvc, userSvc, connSvc, postSvc, gate, sessions, log)

	router := gin.New()
	handler.RegisterRoutes(router)
	return &apiFixture{router: router, redis: mr}
}

func (fx *apiFixture) do(t *testing.T, method, path, tokenStr string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if tokenStr != "" {
		req.Header.Set("Authorization", "Bearer "+tokenStr)
	}
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	data, _ := envelope.Data.(map[string]any)
	return data
}

// signup registers a user and returns (userID, token).
func (fx *apiFixture) signup(t *testing.T, email, username string) (string, string) {
	t.Helper()
	rec := fx.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email":    email,
		"username": username,
		"password": "Secretpass1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	userData, _ := data["user"].(map[string]any)
	id, _ := userData["id"].(string)
	tokenStr, _ := data["token"].(string)
	require.NotEmpty(t, id)
	require.NotEmpty(t, tokenStr)
	return id, tokenStr
}

func TestSignupProfileFlow(t *testing.T) {
	fx := newAPITest(t)

	_, tokenStr := fx.signup(t, "alice@example.com", "alice")

	rec := fx.do(t, http.MethodGet, "/api/user/profile", tokenStr, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	userData, _ := data["user"].(map[string]any)
	require.Equal(t, "alice", userData["username"])

	bio := "hello there"
	rec = fx.do(t, http.MethodPut, "/api/user/profile", tokenStr, gin.H{"bio": bio})
	require.Equal(t, http.StatusOK, rec.Code)

	// Read-after-write: the updated value must be visible immediately.
	rec = fx.do(t, http.MethodGet, "/api/user/profile", tokenStr, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data = decodeData(t, rec)
	userData, _ = data["user"].(map[string]any)
	require.Equal(t, bio, userData["bio"])
}

func TestSignupRejectsWeakPassword(t *testing.T) {
	fx := newAPITest(t)

	rec := fx.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email":    "alice@example.com",
		"password": "weakpass",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutInvalidatesCredential(t *testing.T) {
	fx := newAPITest(t)

	_, tokenStr := fx.signup(t, "alice@example.com", "alice")

	rec := fx.do(t, http.MethodPost, "/api/auth/logout", tokenStr, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Still cryptographically valid, but no session records it anymore.
	rec = fx.do(t, http.MethodGet, "/api/user/profile", tokenStr, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestConnectionLifecycleOverHTTP(t *testing.T) {
	fx := newAPITest(t)

	aliceID, aliceToken := fx.signup(t, "alice@example.com", "alice")
	bobID, bobToken := fx.signup(t, "bob@example.com", "bob")

	rec := fx.do(t, http.MethodPost, "/api/connections/request", aliceToken,
		gin.H{"receiver_id": bobID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	connData, _ := data["connection"].(map[string]any)
	connID, _ := connData["id"].(string)
	require.NotEmpty(t, connID)

	// Duplicate, either direction, conflicts.
	rec = fx.do(t, http.MethodPost, "/api/connections/request", bobToken,
		gin.H{"receiver_id": aliceID})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = fx.do(t, http.MethodGet, "/api/connections/requests", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data = decodeData(t, rec)
	require.Equal(t, float64(1), data["count"])

	// Only the receiver may accept.
	rec = fx.do(t, http.MethodPut, "/api/connections/"+connID+"/accept", aliceToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = fx.do(t, http.MethodPut, "/api/connections/"+connID+"/accept", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, tok := range []string{aliceToken, bobToken} {
		rec = fx.do(t, http.MethodGet, "/api/connections", tok, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		data = decodeData(t, rec)
		require.Equal(t, float64(1), data["count"])
	}

	// Terminal: a second resolve conflicts.
	rec = fx.do(t, http.MethodPut, "/api/connections/"+connID+"/reject", bobToken, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = fx.do(t, http.MethodDelete, "/api/connections/"+connID, aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPostLifecycleOverHTTP(t *testing.T) {
	fx := newAPITest(t)

	_, aliceToken := fx.signup(t, "alice@example.com", "alice")
	_, bobToken := fx.signup(t, "bob@example.com", "bob")

	rec := fx.do(t, http.MethodPost, "/api/posts", aliceToken, gin.H{"content": "first post"})
	require.Equal(t, http.StatusCreated, rec.Code)
	data := decodeData(t, rec)
	postData, _ := data["post"].(map[string]any)
	postID, _ := postData["id"].(string)
	require.NotEmpty(t, postID)

	rec = fx.do(t, http.MethodGet, "/api/posts", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data = decodeData(t, rec)
	require.Equal(t, float64(1), data["count"])

	// Anonymous callers get an empty feed, not an error.
	rec = fx.do(t, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data = decodeData(t, rec)
	require.Equal(t, float64(0), data["count"])

	// Ownership is enforced on mutation.
	rec = fx.do(t, http.MethodPut, "/api/posts/"+postID, bobToken, gin.H{"content": "hijacked"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = fx.do(t, http.MethodPut, "/api/posts/"+postID, aliceToken, gin.H{"content": "edited"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = fx.do(t, http.MethodDelete, "/api/posts/"+postID, aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = fx.do(t, http.MethodGet, "/api/posts", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data = decodeData(t, rec)
	require.Equal(t, float64(0), data["count"])
}

func TestHealthz(t *testing.T) {
	fx := newAPITest(t)

	rec := fx.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthzReportsSessionStoreDown(t *testing.T) {
	fx := newAPITest(t)

	fx.redis.Close()

	rec := fx.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
