package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// APIHandlers exposes read-only views of relay state.
type APIHandlers struct {
	relay Relay
	log   *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(relay Relay, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		relay: relay,
		log:   logger,
	}
}

// ListClients returns the presence roster, most recently joined first.
// GET /api/clients
func (h *APIHandlers) ListClients(c *gin.Context) {
	roster := h.relay.Roster()
	c.JSON(http.StatusOK, clientsToResponse(roster))
}

// ListWorkers returns the per-worker load table.
// GET /api/workers
func (h *APIHandlers) ListWorkers(c *gin.Context) {
	c.JSON(http.StatusOK, h.relay.Loads())
}
