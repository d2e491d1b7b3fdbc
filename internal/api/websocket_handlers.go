package api

import (
	"net/http"

	"passvault/internal/auth"
	"passvault/internal/websocket"
)

// @Summary      Session event stream
// @Description  Upgrades to a websocket that receives session_revoked events for the token's user.
// @Tags         system
// @Param        token  query  string  true  "Session token"
// @Router       /ws [get]
func (s *Server) ServeWsHandler(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		s.respondError(w, r, auth.ErrTokenRequired())
		return
	}

	identity, err := s.auth.ValidateToken(r.Context(), tokenString)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	conn, err := websocket.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	client := websocket.NewClient(s.wsHub, conn, identity.ID)
	if !s.wsHub.Register(client) {
		conn.Close()
		return
	}

	go client.ReadPump()
	go client.WritePump()
}
