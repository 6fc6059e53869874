package handlers

import (
	"net/http"

	"github.com/hongminglow/fanclub/internal/fanclub"
	"github.com/hongminglow/fanclub/internal/http/respond"
	"github.com/hongminglow/fanclub/internal/middleware"
	"github.com/hongminglow/fanclub/internal/models/dto"
)

// ChatHandler serves the per fan club chat.
type ChatHandler struct {
	svc   *fanclub.Service
	authn *middleware.Authenticator
}

// NewChatHandler constructs the handler.
func NewChatHandler(svc *fanclub.Service, authn *middleware.Authenticator) *ChatHandler {
	return &ChatHandler{svc: svc, authn: authn}
}

// Register attaches chat routes to the mux.
func (h *ChatHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/fanclubs/{id}/chat", h.handleList)
	mux.HandleFunc("POST /api/fanclubs/{id}/chat", h.authn.Require(h.handleSend))
	mux.HandleFunc("DELETE /api/fanclubs/{id}/chat/{messageId}", h.authn.Require(h.handleDelete))
}

func (h *ChatHandler) handleList(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.svc.ChatMessages(r.Context(), r.PathValue("id"), r.URL.Query().Get("last_id"))
	if err != nil {
		writeServiceError(w, err, "load chat")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", nonNil(msgs))
}

func (h *ChatHandler) handleSend(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	var req dto.ChatMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	msg, err := h.svc.SendChatMessage(r.Context(), r.PathValue("id"), user, req.Message)
	if err != nil {
		writeServiceError(w, err, "send message")
		return
	}
	respond.JSON(w, http.StatusCreated, "message sent", msg)
}

func (h *ChatHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if err := h.svc.DeleteChatMessage(r.Context(), r.PathValue("id"), r.PathValue("messageId"), user); err != nil {
		writeServiceError(w, err, "delete message")
		return
	}
	respond.JSON(w, http.StatusOK, "message deleted", nil)
}
