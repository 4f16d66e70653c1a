package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"kidsvids/internal/screens"
	"kidsvids/internal/service"
)

// ParentHandler handles kid profile management and the parent area
type ParentHandler struct {
	profileService *service.ProfileService
	log            *zap.Logger
}

// NewParentHandler creates a new parent handler
func NewParentHandler(profileService *service.ProfileService, log *zap.Logger) *ParentHandler {
	return &ParentHandler{
		profileService: profileService,
		log:            log.With(zap.String("handler", "parent")),
	}
}

// ListProfiles returns the profile selection screen
func (h *ParentHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	screen := screens.NewProfiles(sess, h.profileService, h.log)
	snapshotView(w, r, h.log, screen, screen.Holder)
}

// StreamProfiles streams the profile selection screen
func (h *ParentHandler) StreamProfiles(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	screen := screens.NewProfiles(sess, h.profileService, h.log)
	defer screen.Close()
	streamUpdates(w, h.log, screen.Updates(r.Context()))
}

// CreateProfile adds a kid profile to the logged in parent
func (h *ParentHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	parentID, ok := GetSessionFromContext(r.Context()).ParentID()
	if !ok {
		respondWithServiceError(w, h.log, "", service.ErrNotLoggedIn)
		return
	}

	var in service.ProfileInput
	if !decodeJSON(w, r, h.log, &in) {
		return
	}

	kid, err := h.profileService.AddProfile(r.Context(), parentID, in)
	if err != nil {
		respondWithServiceError(w, h.log, "failed to add profile", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, kid)
}

// UpdateProfile edits one of the parent's kid profiles
func (h *ParentHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	parentID, ok := GetSessionFromContext(r.Context()).ParentID()
	if !ok {
		respondWithServiceError(w, h.log, "", service.ErrNotLoggedIn)
		return
	}
	kidID, ok := pathID(w, r, h.log)
	if !ok {
		return
	}

	var in service.ProfileInput
	if !decodeJSON(w, r, h.log, &in) {
		return
	}

	kid, err := h.profileService.UpdateProfile(r.Context(), parentID, kidID, in)
	if err != nil {
		respondWithServiceError(w, h.log, "failed to update profile", err)
		return
	}
	respondWithJSON(w, http.StatusOK, kid)
}

// DeleteProfile removes a kid profile and everything recorded for it
func (h *ParentHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	parentID, ok := GetSessionFromContext(r.Context()).ParentID()
	if !ok {
		respondWithServiceError(w, h.log, "", service.ErrNotLoggedIn)
		return
	}
	kidID, ok := pathID(w, r, h.log)
	if !ok {
		return
	}

	if err := h.profileService.DeleteProfile(r.Context(), parentID, kidID); err != nil {
		respondWithServiceError(w, h.log, "failed to delete profile", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectProfile makes a kid profile active on the calling device
func (h *ParentHandler) SelectProfile(w http.ResponseWriter, r *http.Request) {
	kidID, ok := pathID(w, r, h.log)
	if !ok {
		return
	}

	kid, err := h.profileService.SelectProfile(r.Context(), GetSessionFromContext(r.Context()), kidID)
	if err != nil {
		respondWithServiceError(w, h.log, "failed to select profile", err)
		return
	}
	respondWithJSON(w, http.StatusOK, kid)
}

// ShowAccount returns the parent area summary
func (h *ParentHandler) ShowAccount(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	screen := screens.NewAccount(sess, h.profileService, h.log)
	snapshotView(w, r, h.log, screen, screen.Holder)
}

type pinRequest struct {
	PIN string `json:"pin"`
}

// CheckPIN unlocks the parent area
func (h *ParentHandler) CheckPIN(w http.ResponseWriter, r *http.Request) {
	var in pinRequest
	if !decodeJSON(w, r, h.log, &in) {
		return
	}

	parentID, ok := GetSessionFromContext(r.Context()).ParentID()
	if !ok {
		respondWithServiceError(w, h.log, "", service.ErrNotLoggedIn)
		return
	}

	valid, err := h.profileService.CheckPIN(r.Context(), parentID, in.PIN)
	if err != nil {
		respondWithServiceError(w, h.log, "failed to check PIN", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}
