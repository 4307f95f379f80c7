package httpapi

import (
	"net/http"
	"regexp"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"

	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/auth"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

type signupRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name" binding:"omitempty,max=50"`
	LastName  string `json:"last_name" binding:"omitempty,max=50"`
	Password  string `json:"password" binding:"required"`
	Bio       string `json:"bio" binding:"omitempty,max=500"`
	Avatar    string `json:"avatar" binding:"omitempty,url"`
	Location  string `json:"location" binding:"omitempty,max=100"`
	Website   string `json:"website" binding:"omitempty,url"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// validPassword requires at least 8 characters with an upper-case
// letter, a lower-case letter, and a digit.
func validPassword(pass string) bool {
	if len(pass) < 8 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range pass {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// Signup handles POST /api/auth/signup.
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid signup payload")
		return
	}
	if !validPassword(req.Password) {
		respondError(c, http.StatusBadRequest,
			"Password must be at least 8 chars with uppercase, lowercase, and number")
		return
	}
	if req.Username != "" && !usernamePattern.MatchString(req.Username) {
		respondError(c, http.StatusBadRequest,
			"Username must be 3-30 characters and contain only letters, numbers, and underscores")
		return
	}

	result, err := h.auth.Signup(c.Request.Context(), auth.SignupParams{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Password:  req.Password,
		Bio:       strings.TrimSpace(req.Bio),
		Avatar:    req.Avatar,
		Location:  strings.TrimSpace(req.Location),
		Website:   req.Website,
	}, c.ClientIP())
	if err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "User created successfully", gin.H{
		"user":  result.Profile,
		"token": result.Token,
	})
}

// Login handles POST /api/auth/login. A success supersedes any prior
// session for the user.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid login payload")
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Login successful", gin.H{
		"user":  result.Profile,
		"token": result.Token,
	})
}

// Logout handles POST /api/auth/logout. Best effort: it answers 200
// whether or not a live session existed for the presented credential.
func (h *Handler) Logout(c *gin.Context) {
	if tokenStr, ok := bearerToken(c.GetHeader("Authorization")); ok {
		if err := h.auth.Logout(c.Request.Context(), tokenStr); err != nil {
			h.log.Warn(c.Request.Context(), "logout revoke failed", "error", err)
		}
	}
	respond(c, http.StatusOK, "Logged out successfully", nil)
}
