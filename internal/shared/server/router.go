package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	googleauth "github.com/Kantheephob/Nostalgia-Life-Log/internal/auth"
	"github.com/Kantheephob/Nostalgia-Life-Log/internal/images"
	"github.com/Kantheephob/Nostalgia-Life-Log/internal/shared/config"
	"github.com/Kantheephob/Nostalgia-Life-Log/internal/shared/server/middleware"
	"github.com/Kantheephob/Nostalgia-Life-Log/internal/shared/server/respond"
	"github.com/Kantheephob/Nostalgia-Life-Log/internal/users"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config        config.Config
	ImagesHandler *images.Handler
	UsersHandler  *users.Handler
	GoogleAuth    *googleauth.GoogleService

	// LocalBlobDir, when non-empty, is served at /blob so locally stored
	// image URLs resolve without a separate file server.
	LocalBlobDir string
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(),
	)

	if deps.LocalBlobDir != "" {
		r.Static("/blob", deps.LocalBlobDir)
	}

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UsersHandler != nil {
		deps.UsersHandler.RegisterRoutes(api)
	}
	if deps.ImagesHandler != nil {
		api.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"UPLOAD": {Rate: 1, Burst: 10},
			},
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == http.MethodPost && c.FullPath() == "/api/upload" {
					return "UPLOAD"
				}
				return ""
			},
		}))
		deps.ImagesHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
