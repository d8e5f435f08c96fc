package http

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirebattle-server/internal/config"
	"github.com/vovakirdan/wirebattle-server/internal/core"
	"github.com/vovakirdan/wirebattle-server/internal/store"
)

const readHeaderTimeout = 5 * time.Second

// Battle is the part of the hub the admin surface needs.
type Battle interface {
	Accept(ctx context.Context, conn core.Conn) bool
	Stats() core.Stats
}

// NewServer builds the admin HTTP server: health, read-only match API and the
// optional WebSocket gateway into the battle hub.
func NewServer(hub Battle, st store.MatchStore, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	return &stdhttp.Server{
		Addr:              cfg.AdminAddr,
		Handler:           NewRouter(hub, st, cfg, logger),
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// NewRouter registers every admin route.
func NewRouter(hub Battle, st store.MatchStore, cfg config.Config, logger *zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	api := NewAPIHandlers(hub, st, logger)
	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/stats", api.Stats)
		apiGroup.GET("/matches", api.RecentMatches)
		apiGroup.GET("/players/:name", api.Player)
	}

	if cfg.WebSocket {
		router.GET("/ws", gin.WrapH(NewWSHandler(hub, newRateLimiter(cfg.WSRateLimit), logger)))
	}

	return router
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
