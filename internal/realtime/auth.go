package realtime

import (
	"net/http"

	"flowcore/pkg"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS handles the WebSocket upgrade with JWT authentication via query param.
func ServeWS(hub *Hub, jwtSecret string, logger zerolog.Logger, w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := pkg.ValidateToken(token, jwtSecret)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug().Err(err).Msg("ws upgrade failed")
		return
	}

	client := NewClient(hub, conn, logger.With().Uint("userId", claims.UserID).Logger())
	hub.register <- client

	go client.WritePump()
	go client.ReadPump()
}
