package http

import (
	"context"
	"net"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirerelay/internal/config"
	"github.com/vovakirdan/wirerelay/internal/core"
)

// Relay is the part of the hub the admin surface needs.
type Relay interface {
	Admit(conn net.Conn)
	Roster() []*core.Client
	Loads() []core.WorkerLoad
}

// NewServer builds the admin HTTP server. Bridged WebSocket sessions live as
// long as ctx unless the relay closes them first.
func NewServer(ctx context.Context, relay Relay, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	api := NewAPIHandlers(relay, logger)
	router.GET("/health", healthHandler)
	router.GET("/api/clients", api.ListClients)
	router.GET("/api/workers", api.ListWorkers)
	router.GET("/ws", gin.WrapH(NewWSHandler(ctx, relay, logger)))

	return &stdhttp.Server{
		Addr:              cfg.AdminAddr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
