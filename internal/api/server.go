package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"passvault/internal/auth"
	"passvault/internal/config"
	"passvault/internal/database"
	"passvault/internal/storage"
	"passvault/internal/websocket"
)

const maxUploadSize = 10 << 20

type Server struct {
	config  *config.Config
	store   *database.Store
	storage storage.ObjectStore
	cleaner *storage.Cleaner
	auth    *auth.Service
	wsHub   *websocket.Hub
	logger  *slog.Logger
}

func NewServer(
	cfg *config.Config,
	store *database.Store,
	objects storage.ObjectStore,
	cleaner *storage.Cleaner,
	authService *auth.Service,
	wsHub *websocket.Hub,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:  cfg,
		store:   store,
		storage: objects,
		cleaner: cleaner,
		auth:    authService,
		wsHub:   wsHub,
		logger:  logger,
	}
}

// @Summary      Health check
// @Description  Reports whether the server can reach its database.
// @Tags         system
// @Produce      json
// @Success      200  {object}  MessageResponse
// @Failure      503  {object}  MessageResponse
// @Router       /health [get]
func (s *Server) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.GetPool().Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, envelope{"success": false, "message": "database unavailable"})
		return
	}
	respond(w, http.StatusOK, "ok", nil)
}
