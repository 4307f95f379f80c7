package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/auth"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/connection"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/logging"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/post"
	"github.com/24-arushi-saxena/linkedin-clone-mini/internal/user"
)

// Pinger reports point-in-time backend availability. The session
// authority satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the services behind the HTTP surface.
type Handler struct {
	auth        *auth.Service
	users       *user.Service
	connections *connection.Service
	posts       *post.Service
	gate        *Gate
	health      Pinger
	log         logging.Logger
}

// NewHandler creates a [Handler]. health may be nil to make /healthz
// unconditional.
func NewHandler(
	authSvc *auth.Service,
	users *user.Service,
	connections *connection.Service,
	posts *post.Service,
	gate *Gate,
	health Pinger,
	log logging.Logger,
) *Handler {
	return &Handler{
		auth:        authSvc,
		users:       users,
		connections: connections,
		posts:       posts,
		gate:        gate,
		health:      health,
		log:         log,
	}
}

// Health handles GET /healthz. The session store backs the security
// path, so its availability decides readiness.
func (h *Handler) Health(c *gin.Context) {
	if h.health != nil {
		if err := h.health.Ping(c.Request.Context()); err != nil {
			h.log.Error(c.Request.Context(), "health check failed", "error", err)
			respondError(c, http.StatusServiceUnavailable, "Session store unreachable")
			return
		}
	}
	respond(c, http.StatusOK, "ok", nil)
}

// RegisterRoutes mounts the API on the router.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Health)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/signup", h.Signup)
	authGroup.POST("/login", h.Login)
	authGroup.POST("/logout", h.Logout)

	userGroup := api.Group("/user")
	userGroup.Use(h.gate.RequireAuth())
	userGroup.GET("/profile", h.GetProfile)
	userGroup.PUT("/profile", h.UpdateProfile)

	postGroup := api.Group("/posts")
	postGroup.GET("", h.gate.OptionalAuth(), h.ListPosts)
	postGroup.POST("", h.gate.RequireAuth(), h.CreatePost)
	postGroup.PUT("/:id", h.gate.RequireAuth(), h.UpdatePost)
	postGroup.DELETE("/:id", h.gate.RequireAuth(), h.DeletePost)

	connGroup := api.Group("/connections")
	connGroup.Use(h.gate.RequireAuth())
	connGroup.POST("/request", h.RequestConnection)
	connGroup.GET("/requests", h.ListIncomingRequests)
	connGroup.PUT("/:id/accept", h.AcceptConnection)
	connGroup.PUT("/:id/reject", h.RejectConnection)
	connGroup.GET("", h.ListConnections)
	connGroup.DELETE("/:id", h.RemoveConnection)
}
