// Package httpapi exposes the service over HTTP: gin handlers, the
// authentication gate, and the JSON envelope every response uses.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/auth"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/connection"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/post"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/user"
)

// Envelope is the uniform response shape.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: message})
}

// statusFor maps domain sentinels to HTTP status codes. State conflicts
// (self-request, duplicate, already connected, not pending) all map to
// 409; the upstream service was inconsistent between 400 and 409 here,
// this implementation picks 409 everywhere.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, auth.ErrUserExists):
		return http.StatusConflict, "User with this email or username already exists"
	case errors.Is(err, auth.ErrRateLimited):
		return http.StatusTooManyRequests, "Too many attempts, try again later"
	case errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, connection.ErrSelfConnection):
		return http.StatusConflict, "Cannot send connection request to yourself"
	case errors.Is(err, connection.ErrPeerNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, connection.ErrRequestPending):
		return http.StatusConflict, "Connection request already pending"
	case errors.Is(err, connection.ErrAlreadyConnected):
		return http.StatusConflict, "Already connected with this user"
	case errors.Is(err, connection.ErrConnectionNotFound):
		return http.StatusNotFound, "Connection not found"
	case errors.Is(err, connection.ErrNotReceiver):
		return http.StatusForbidden, "You can only resolve requests sent to you"
	case errors.Is(err, connection.ErrNotParticipant):
		return http.StatusForbidden, "You can only remove your own connections"
	case errors.Is(err, connection.ErrNotPending):
		return http.StatusConflict, "Connection request is not pending"
	case errors.Is(err, post.ErrPostNotFound):
		return http.StatusNotFound, "Post not found"
	case errors.Is(err, post.ErrNotPostOwner):
		return http.StatusForbidden, "You can only modify your own posts"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// fail logs unexpected errors server-side and answers with the mapped
// status. Internal detail never leaks into the envelope.
func (h *Handler) fail(c *gin.Context, err error) {
	status, message := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
	}
	respondError(c, status, message)
}
