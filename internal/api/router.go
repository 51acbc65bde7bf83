package api

import (
	"net/http"
	"time"

	"datadesk/ports"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig holds what the HTTP shell needs beyond the handlers
type RouterConfig struct {
	JWTSecret      []byte
	GinMode        string
	RequestTimeout time.Duration
}

// NewRouter builds the HTTP handler: a chi shell with health checks and
// request middleware, with the gin API mounted under /api/v1
func NewRouter(cfg RouterConfig, files *FileHandler, users ports.UserRepository) http.Handler {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())
	engine.HandleMethodNotAllowed = true
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found", "code": "NOT_FOUND"})
	})

	v1 := engine.Group("/api/v1")
	v1.Use(RequireAuth(cfg.JWTSecret, users))
	files.Register(v1)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Mount("/api", engine)
	return r
}
