package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"kidsvids/internal/service"
	"kidsvids/internal/validation"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, log *zap.Logger, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Error(logMsg, zap.Error(err))
	}

	respondWithJSON(w, status, errorResponse{Error: userMsg})
}

// respondWithServiceError maps a service failure to its HTTP status. Anything
// unrecognised is logged and reported as a 500.
func respondWithServiceError(w http.ResponseWriter, log *zap.Logger, logMsg string, err error) {
	var fields validation.Errors
	if errors.As(err, &fields) {
		respondWithJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: ErrValidationFailed, Fields: fields})
		return
	}

	switch {
	case errors.Is(err, service.ErrKidNotFound),
		errors.Is(err, service.ErrVideoNotFound),
		errors.Is(err, service.ErrParentNotFound),
		errors.Is(err, service.ErrCategoryNotFound):
		respondWithError(w, log, http.StatusNotFound, err.Error(), "", nil)
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrNotLoggedIn):
		respondWithError(w, log, http.StatusUnauthorized, err.Error(), "", nil)
	case errors.Is(err, service.ErrInactiveParent):
		respondWithError(w, log, http.StatusForbidden, err.Error(), "", nil)
	case errors.Is(err, service.ErrEmailTaken):
		respondWithError(w, log, http.StatusConflict, err.Error(), "", nil)
	case errors.Is(err, service.ErrNoProfileSelected):
		respondWithError(w, log, http.StatusBadRequest, err.Error(), "", nil)
	case errors.Is(err, service.ErrUnplayableSource), errors.Is(err, service.ErrUnsupportedMedia):
		respondWithError(w, log, http.StatusUnprocessableEntity, err.Error(), "", nil)
	case errors.Is(err, service.ErrStorageDisabled), errors.Is(err, service.ErrEmailDisabled):
		respondWithError(w, log, http.StatusServiceUnavailable, err.Error(), "", nil)
	default:
		respondWithError(w, log, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, log *zap.Logger, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, log, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return false
	}
	return true
}

// pathID parses the {id} path value
func pathID(w http.ResponseWriter, r *http.Request, log *zap.Logger) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, log, http.StatusBadRequest, ErrInvalidID, "", nil)
		return 0, false
	}
	return id, true
}
