package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type postBody struct {
	Content string `json:"content" binding:"required,max=3000"`
}

// ListPosts handles GET /api/posts. Identified callers get their own
// feed; anonymous callers get an empty one.
func (h *Handler) ListPosts(c *gin.Context) {
	identity, ok := CurrentUser(c)
	if !ok {
		respond(c, http.StatusOK, "", gin.H{"posts": []any{}, "count": 0})
		return
	}

	posts, err := h.posts.ListByAuthor(c.Request.Context(), identity.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "", gin.H{"posts": posts, "count": len(posts)})
}

// CreatePost handles POST /api/posts.
func (h *Handler) CreatePost(c *gin.Context) {
	identity, _ := CurrentUser(c)

	var req postBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Post content is required")
		return
	}

	created, err := h.posts.Create(c.Request.Context(), identity.ID, req.Content)
	if err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "Post created", gin.H{"post": created})
}

// UpdatePost handles PUT /api/posts/:id.
func (h *Handler) UpdatePost(c *gin.Context) {
	identity, _ := CurrentUser(c)

	var req postBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Post content is required")
		return
	}

	updated, err := h.posts.Update(c.Request.Context(), c.Param("id"), identity.ID, req.Content)
	if err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Post updated", gin.H{"post": updated})
}

// DeletePost handles DELETE /api/posts/:id.
func (h *Handler) DeletePost(c *gin.Context) {
	identity, _ := CurrentUser(c)

	if err := h.posts.Delete(c.Request.Context(), c.Param("id"), identity.ID); err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Post deleted", nil)
}
