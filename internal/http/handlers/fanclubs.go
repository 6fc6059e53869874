package handlers

import (
	"net/http"

	"github.com/hongminglow/fanclub/internal/fanclub"
	"github.com/hongminglow/fanclub/internal/http/respond"
	"github.com/hongminglow/fanclub/internal/middleware"
	"github.com/hongminglow/fanclub/internal/models/dto"
)

// FanclubHandler serves fan club listing, creation, and membership.
type FanclubHandler struct {
	svc   *fanclub.Service
	authn *middleware.Authenticator
}

// NewFanclubHandler constructs the handler.
func NewFanclubHandler(svc *fanclub.Service, authn *middleware.Authenticator) *FanclubHandler {
	return &FanclubHandler{svc: svc, authn: authn}
}

// Register attaches fan club routes to the mux.
func (h *FanclubHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/fanclubs", h.handleList)
	mux.HandleFunc("POST /api/fanclubs", h.authn.Require(h.handleCreate))
	mux.HandleFunc("GET /api/fanclubs/joined", h.authn.Require(h.handleJoined))
	mux.HandleFunc("GET /api/fanclubs/{id}", h.handleGet)
	mux.HandleFunc("POST /api/fanclubs/{id}/join", h.authn.Require(h.handleJoin))
	mux.HandleFunc("DELETE /api/fanclubs/{id}/leave", h.authn.Require(h.handleLeave))
	mux.HandleFunc("GET /api/fanclubs/{id}/membership", h.authn.Optional(h.handleMembership))
	mux.HandleFunc("GET /api/fanclubs/{id}/members", h.handleMembers)
}

func (h *FanclubHandler) handleList(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.svc.Fanclubs(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, err, "list fan clubs")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", nonNil(clubs))
}

func (h *FanclubHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	var req dto.CreateFanclubRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	club, err := h.svc.CreateFanclub(r.Context(), user, fanclub.CreateFanclubInput{
		Name:          req.Name,
		Description:   req.Description,
		Purpose:       req.Purpose,
		MonthlyFee:    req.MonthlyFee,
		CoverImageURL: req.CoverImageURL,
	})
	if err != nil {
		writeServiceError(w, err, "create fan club")
		return
	}
	respond.JSON(w, http.StatusCreated, "fan club created", club)
}

func (h *FanclubHandler) handleJoined(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	clubs, err := h.svc.JoinedFanclubs(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err, "list joined fan clubs")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", nonNil(clubs))
}

func (h *FanclubHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	club, err := h.svc.Fanclub(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err, "load fan club")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", club)
}

func (h *FanclubHandler) handleJoin(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	club, err := h.svc.Join(r.Context(), r.PathValue("id"), user)
	if err != nil {
		writeServiceError(w, err, "join fan club")
		return
	}
	respond.JSON(w, http.StatusOK, "joined the fan club", club)
}

func (h *FanclubHandler) handleLeave(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	club, err := h.svc.Leave(r.Context(), r.PathValue("id"), user)
	if err != nil {
		writeServiceError(w, err, "leave fan club")
		return
	}
	respond.JSON(w, http.StatusOK, "left the fan club", club)
}

func (h *FanclubHandler) handleMembership(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	m, ok, err := h.svc.Membership(r.Context(), r.PathValue("id"), user.ID)
	if err != nil {
		writeServiceError(w, err, "check membership")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", dto.MembershipResponse{IsMember: ok, Role: m.Role})
}

func (h *FanclubHandler) handleMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.svc.Members(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err, "list members")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", nonNil(members))
}

// nonNil keeps empty lists encoded as [] rather than omitted.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
