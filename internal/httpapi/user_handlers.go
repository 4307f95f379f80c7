package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/store"
)

type updateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=50"`
	LastName  *string `json:"last_name" binding:"omitempty,max=50"`
	Bio       *string `json:"bio" binding:"omitempty,max=500"`
	Avatar    *string `json:"avatar" binding:"omitempty,url"`
	Location  *string `json:"location" binding:"omitempty,max=100"`
	Website   *string `json:"website" binding:"omitempty,url"`
}

// GetProfile handles GET /api/user/profile. The response is tagged
// with whether it was served from the cache or the database.
func (h *Handler) GetProfile(c *gin.Context) {
	identity, _ := CurrentUser(c)

	profile, source, err := h.users.GetProfile(c.Request.Context(), identity.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "", gin.H{
		"user":   profile,
		"source": source,
	})
}

// UpdateProfile handles PUT /api/user/profile: authoritative update,
// then cache invalidate and repopulate.
func (h *Handler) UpdateProfile(c *gin.Context) {
	identity, _ := CurrentUser(c)

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid profile payload")
		return
	}

	profile, err := h.users.UpdateProfile(c.Request.Context(), identity.ID, store.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Avatar:    req.Avatar,
		Location:  req.Location,
		Website:   req.Website,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Profile updated successfully", gin.H{"user": profile})
}
