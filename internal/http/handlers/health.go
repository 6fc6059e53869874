package handlers

import (
	"net/http"
	"time"

	"github.com/hongminglow/fanclub/internal/http/respond"
)

// HealthHandler returns uptime and basic status.
type HealthHandler struct {
	startedAt time.Time
	storage   string
}

// NewHealthHandler creates a health endpoint handler reporting the storage backend in use.
func NewHealthHandler(startedAt time.Time, storageBackend string) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, storage: storageBackend}
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, "ok", map[string]string{
		"status":  "ok",
		"storage": h.storage,
		"uptime":  time.Since(h.startedAt).Truncate(time.Second).String(),
	})
}
