package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mohashafici/DalagHub/internal/adapter/auth"
	"github.com/mohashafici/DalagHub/internal/marketplace/domain"
	"github.com/mohashafici/DalagHub/internal/marketplace/session"
	"github.com/mohashafici/DalagHub/internal/platform/logger"
)

type AuthHandler struct {
	sessions *session.Store
	auth     domain.AuthService
	logger   logger.Logger
}

func NewAuthHandler(sessions *session.Store, authSvc domain.AuthService, log logger.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, auth: authSvc, logger: log}
}

type registerRequest struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Phone    string   `json:"phone"`
	Location string   `json:"location"`
	Roles    []string `json:"roles"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" || req.Location == "" {
		writeError(w, http.StatusBadRequest, "name, email, password and location are required")
		return
	}
	if !domain.ValidLocation(req.Location) {
		writeError(w, http.StatusBadRequest, "unknown location")
		return
	}

	roles := make([]domain.Role, 0, len(req.Roles))
	for _, role := range req.Roles {
		switch domain.Role(role) {
		case domain.RoleBuyer, domain.RoleSeller:
			roles = append(roles, domain.Role(role))
		default:
			writeError(w, http.StatusBadRequest, "roles must be buyer or seller")
			return
		}
	}
	if len(roles) == 0 {
		roles = []domain.Role{domain.RoleBuyer}
	}

	err := h.sessions.Register(r.Context(), session.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Location: req.Location,
		Roles:    roles,
	})
	if errors.Is(err, auth.ErrEmailTaken) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if errors.Is(err, session.ErrPartialRegistration) {
		// The identity exists; the caller must not see this as success.
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err != nil {
		h.logger.Errorf("register failed for %s: %v", req.Email, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeSession(w, http.StatusCreated)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		h.logger.Errorf("login failed for %s: %v", req.Email, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeSession(w, http.StatusOK)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		h.logger.Errorf("logout failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

func (h *AuthHandler) RefreshProfile(w http.ResponseWriter, r *http.Request) {
	h.sessions.RefreshProfile(r.Context())
	h.writeSession(w, http.StatusOK)
}

type sessionResponse struct {
	Identity    *domain.Identity `json:"identity"`
	AccessToken string           `json:"access_token,omitempty"`
	Profile     *domain.Profile  `json:"profile"`
	Roles       []domain.Role    `json:"roles"`
	IsSeller    bool             `json:"is_seller"`
}

func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	h.writeSession(w, http.StatusOK)
}

// writeSession reports the auth service's session (set synchronously) plus
// the store's snapshot. Profile and roles are fetched asynchronously off
// the auth event, so they can lag right after sign-in; GET /api/auth/session
// reflects them once the fetch lands.
func (h *AuthHandler) writeSession(w http.ResponseWriter, status int) {
	snap := h.sessions.Current()
	resp := sessionResponse{
		Identity: snap.Identity,
		Profile:  snap.Profile,
		Roles:    snap.Roles,
		IsSeller: h.sessions.IsSeller(),
	}
	if authSession := h.auth.CurrentSession(); authSession != nil {
		resp.Identity = &authSession.Identity
		resp.AccessToken = authSession.AccessToken
	}
	writeJSON(w, status, resp)
}
