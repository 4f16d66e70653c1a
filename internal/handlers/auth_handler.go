package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"kidsvids/internal/models"
	"kidsvids/internal/security"
	"kidsvids/internal/service"
	"kidsvids/internal/session"
)

// AuthHandler handles parent signup, login and PIN reset
type AuthHandler struct {
	authService *service.AuthService
	sessions    *session.Manager
	tokens      *security.TokenIssuer
	middleware  *Middleware
	log         *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, sessions *session.Manager, tokens *security.TokenIssuer, middleware *Middleware, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		tokens:      tokens,
		middleware:  middleware,
		log:         log.With(zap.String("handler", "auth")),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token  string         `json:"token"`
	Parent *models.Parent `json:"parent"`
}

// Signup registers a parent account
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in service.SignupInput
	if !decodeJSON(w, r, h.log, &in) {
		return
	}

	parent, err := h.authService.Signup(r.Context(), in)
	if err != nil {
		respondWithServiceError(w, h.log, "failed to sign up parent", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, parent)
}

// Login signs a parent in on the calling device. A device that already holds
// a token keeps its session key; otherwise a new device session is created.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if !decodeJSON(w, r, h.log, &in) {
		return
	}

	key := security.GenerateSessionKey()
	if claims, ok := h.middleware.bearerClaims(r); ok && claims.Role == security.RoleParent {
		key = claims.Subject
	}

	sess, err := h.sessions.Get(r.Context(), key)
	if err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "failed to open session", err)
		return
	}

	parent, err := h.authService.Login(r.Context(), sess, in.Email, in.Password)
	if err != nil {
		respondWithServiceError(w, h.log, "failed to log in parent", err)
		return
	}

	token, err := h.tokens.Issue(key, security.RoleParent)
	if err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "failed to issue token", err)
		return
	}

	respondWithJSON(w, http.StatusOK, loginResponse{Token: token, Parent: parent})
}

// Logout clears the device session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	if sess == nil {
		respondWithError(w, h.log, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	if err := h.authService.Logout(r.Context(), sess); err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "failed to log out", err)
		return
	}
	h.sessions.Forget(sess.Key())

	w.WriteHeader(http.StatusNoContent)
}

type resetPINRequest struct {
	Email string `json:"email"`
}

// ResetPIN emails a new parental PIN. The response does not reveal whether
// the address belongs to an account.
func (h *AuthHandler) ResetPIN(w http.ResponseWriter, r *http.Request) {
	var in resetPINRequest
	if !decodeJSON(w, r, h.log, &in) {
		return
	}

	if err := h.authService.ResetPIN(r.Context(), in.Email); err != nil {
		respondWithServiceError(w, h.log, "failed to reset PIN", err)
		return
	}

	respondWithJSON(w, http.StatusAccepted, map[string]string{
		"message": "If an account exists for that email, a new PIN is on its way.",
	})
}
