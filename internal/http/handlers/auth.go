package handlers

import (
	"errors"
	"net/http"

	"github.com/hongminglow/fanclub/internal/auth"
	"github.com/hongminglow/fanclub/internal/fanclub"
	"github.com/hongminglow/fanclub/internal/http/respond"
	"github.com/hongminglow/fanclub/internal/middleware"
	"github.com/hongminglow/fanclub/internal/models/dto"
)

// AuthHandler owns signup/login/whoami/password endpoints.
type AuthHandler struct {
	svc    *fanclub.Service
	tokens *auth.TokenManager
	authn  *middleware.Authenticator
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(svc *fanclub.Service, tokens *auth.TokenManager, authn *middleware.Authenticator) *AuthHandler {
	return &AuthHandler{svc: svc, tokens: tokens, authn: authn}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/signup", h.handleSignup)
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.HandleFunc("GET /api/auth/user", h.authn.Require(h.handleCurrentUser))
	mux.HandleFunc("POST /api/auth/update-password", h.authn.Require(h.handleUpdatePassword))
}

func (h *AuthHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.svc.Signup(r.Context(), fanclub.SignupInput{
		Nickname: req.Nickname,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, err, "create user")
		return
	}
	token, err := h.tokens.Generate(user)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respond.JSON(w, http.StatusCreated, "User created successfully", dto.LoginResponse{Token: token, User: user})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err, "log in")
		return
	}
	token, err := h.tokens.Generate(user)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respond.JSON(w, http.StatusOK, "login successful", dto.LoginResponse{Token: token, User: user})
}

func (h *AuthHandler) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	respond.JSON(w, http.StatusOK, "ok", user)
}

func (h *AuthHandler) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	var req dto.UpdatePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	err := h.svc.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword)
	if errors.Is(err, fanclub.ErrInvalidCredentials) {
		// 401 would log the client out; a wrong current password is a form error.
		respond.Error(w, http.StatusBadRequest, "current password is incorrect")
		return
	}
	if err != nil {
		writeServiceError(w, err, "update password")
		return
	}
	respond.JSON(w, http.StatusOK, "password updated", nil)
}
