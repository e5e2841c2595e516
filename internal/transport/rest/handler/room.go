package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"quizroyale/internal/game"
)

// RoomHandler exposes read-only room state over HTTP. The socket protocol
// is the authoritative surface; these endpoints exist for dashboards and
// debugging.
type RoomHandler struct {
	svc *game.Service
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(svc *game.Service) *RoomHandler {
	return &RoomHandler{svc: svc}
}

// Get handles GET /v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	snap, ok := h.svc.RoomSnapshot(code)
	if !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}

	writeJSON(w, http.StatusOK, snap)
}
