package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type connectionRequestBody struct {
	ReceiverID string `json:"receiver_id" binding:"required,uuid"`
}

// RequestConnection handles POST /api/connections/request.
func (h *Handler) RequestConnection(c *gin.Context) {
	identity, _ := CurrentUser(c)

	var req connectionRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Receiver ID is required")
		return
	}

	conn, err := h.connections.Request(c.Request.Context(), identity.ID, req.ReceiverID)
	if err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "Connection request sent", gin.H{"connection": conn})
}

// ListIncomingRequests handles GET /api/connections/requests.
func (h *Handler) ListIncomingRequests(c *gin.Context) {
	identity, _ := CurrentUser(c)

	requests, err := h.connections.ListIncoming(c.Request.Context(), identity.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "", gin.H{
		"requests": requests,
		"count":    len(requests),
	})
}

// AcceptConnection handles PUT /api/connections/:id/accept.
func (h *Handler) AcceptConnection(c *gin.Context) {
	identity, _ := CurrentUser(c)

	conn, err := h.connections.Accept(c.Request.Context(), c.Param("id"), identity.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Connection accepted", gin.H{"connection": conn})
}

// RejectConnection handles PUT /api/connections/:id/reject.
func (h *Handler) RejectConnection(c *gin.Context) {
	identity, _ := CurrentUser(c)

	conn, err := h.connections.Reject(c.Request.Context(), c.Param("id"), identity.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Connection rejected", gin.H{"connection": conn})
}

// ListConnections handles GET /api/connections: every accepted
// connection projected to the other party.
func (h *Handler) ListConnections(c *gin.Context) {
	identity, _ := CurrentUser(c)

	connections, err := h.connections.ListAccepted(c.Request.Context(), identity.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "", gin.H{
		"connections": connections,
		"count":       len(connections),
	})
}

// RemoveConnection handles DELETE /api/connections/:id.
func (h *Handler) RemoveConnection(c *gin.Context) {
	identity, _ := CurrentUser(c)

	if err := h.connections.Remove(c.Request.Context(), c.Param("id"), identity.ID); err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Connection removed", nil)
}
