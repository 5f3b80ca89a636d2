package realtime

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/clipstream/clipstream-backend/internal/common/logger"
)

// Handler upgrades GET /api/v1/realtime to a websocket. Origin checking is
// delegated to the CORS allow-list the rest of the API uses.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	log      *logger.Logger
}

func NewHandler(hub *Hub, originAllowed func(string) bool, log *logger.Logger) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return originAllowed(origin)
			},
		},
		log: log,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("realtime: upgrade failed: %v", err)
		return
	}

	client := newClient(h.hub, conn)
	h.hub.register(client)

	go client.writeLoop()
	go client.readLoop()
}
