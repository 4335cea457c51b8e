package http

import (
	"time"

	"github.com/vovakirdan/wirerelay/internal/core"
)

// ClientResponse is the JSON view of a registered client.
type ClientResponse struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Addr     string    `json:"addr"`
	JoinedAt time.Time `json:"joined_at"`
}

func clientsToResponse(clients []*core.Client) []ClientResponse {
	out := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, ClientResponse{
			ID:       c.ID,
			Name:     c.Name,
			Addr:     c.Addr,
			JoinedAt: c.JoinedAt,
		})
	}
	return out
}
