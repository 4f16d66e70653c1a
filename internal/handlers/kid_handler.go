package handlers

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"kidsvids/internal/repository"
	"kidsvids/internal/screens"
	"kidsvids/internal/service"
)

// KidHandler handles the screens of the selected kid profile
type KidHandler struct {
	contentService  *service.ContentService
	overlayService  *service.OverlayService
	playbackService *service.PlaybackService
	kidRepo         *repository.KidRepository
	categoryRepo    *repository.CategoryRepository
	log             *zap.Logger
}

// NewKidHandler creates a new kid handler
func NewKidHandler(contentService *service.ContentService, overlayService *service.OverlayService, playbackService *service.PlaybackService, kidRepo *repository.KidRepository, categoryRepo *repository.CategoryRepository, log *zap.Logger) *KidHandler {
	return &KidHandler{
		contentService:  contentService,
		overlayService:  overlayService,
		playbackService: playbackService,
		kidRepo:         kidRepo,
		categoryRepo:    categoryRepo,
		log:             log.With(zap.String("handler", "kid")),
	}
}

// categoryParam reads the optional ?category= filter
func categoryParam(r *http.Request) (*int64, bool) {
	raw := r.URL.Query().Get("category")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, false
	}
	return &id, true
}

func (h *KidHandler) openHome(w http.ResponseWriter, r *http.Request) (*screens.Home, bool) {
	categoryID, ok := categoryParam(r)
	if !ok {
		respondWithError(w, h.log, http.StatusBadRequest, "Invalid category", "", nil)
		return nil, false
	}
	sess := GetSessionFromContext(r.Context())
	return screens.NewHome(sess, h.contentService, h.kidRepo, h.categoryRepo, categoryID, h.log), true
}

// ShowHome returns the home screen snapshot
func (h *KidHandler) ShowHome(w http.ResponseWriter, r *http.Request) {
	home, ok := h.openHome(w, r)
	if !ok {
		return
	}
	defer home.Close()

	ctx, cancel := context.WithTimeout(r.Context(), screenTimeout)
	defer cancel()

	state, err := home.Await(ctx, func(s screens.HomeState) bool { return s.Status.Settled() })
	if err != nil {
		respondWithError(w, h.log, http.StatusGatewayTimeout, "Screen did not load in time", "home await failed", err)
		return
	}
	respondWithJSON(w, http.StatusOK, state)
}

// StreamHome streams home screen snapshots as server-sent events
func (h *KidHandler) StreamHome(w http.ResponseWriter, r *http.Request) {
	home, ok := h.openHome(w, r)
	if !ok {
		return
	}
	defer home.Close()
	streamUpdates(w, h.log, home.Updates(r.Context()))
}

// ToggleFavorite flips a video's favorite marker for the selected kid.
// Without a selected kid nothing changes.
func (h *KidHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	videoID, ok := pathID(w, r, h.log)
	if !ok {
		return
	}

	actions := screens.NewKidActions(GetSessionFromContext(r.Context()), h.contentService)
	favorite, applied, err := actions.ToggleFavorite(r.Context(), videoID)
	if err != nil {
		respondWithServiceError(w, h.log, "failed to toggle favorite", err)
		return
	}
	if !applied {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"video_id": videoID, "favorite": favorite})
}

// BlockVideo hides a video from the selected kid
func (h *KidHandler) BlockVideo(w http.ResponseWriter, r *http.Request) {
	videoID, ok := pathID(w, r, h.log)
	if !ok {
		return
	}

	actions := screens.NewKidActions(GetSessionFromContext(r.Context()), h.contentService)
	if _, err := actions.Block(r.Context(), videoID); err != nil {
		respondWithServiceError(w, h.log, "failed to block video", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UnblockVideo makes a blocked video visible to the selected kid again
func (h *KidHandler) UnblockVideo(w http.ResponseWriter, r *http.Request) {
	videoID, ok := pathID(w, r, h.log)
	if !ok {
		return
	}

	actions := screens.NewKidActions(GetSessionFromContext(r.Context()), h.contentService)
	if _, err := actions.Unblock(r.Context(), videoID); err != nil {
		respondWithServiceError(w, h.log, "failed to unblock video", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ShowYourStuff returns the selected kid's history and favorites
func (h *KidHandler) ShowYourStuff(w http.ResponseWriter, r *http.Request) {
	screen := screens.NewYourStuff(GetSessionFromContext(r.Context()), h.overlayService, h.log)
	snapshotView(w, r, h.log, screen, screen.Holder)
}

// StreamYourStuff streams the selected kid's history and favorites
func (h *KidHandler) StreamYourStuff(w http.ResponseWriter, r *http.Request) {
	screen := screens.NewYourStuff(GetSessionFromContext(r.Context()), h.overlayService, h.log)
	defer screen.Close()
	streamUpdates(w, h.log, screen.Updates(r.Context()))
}

// ShowBlocked returns the videos hidden from the selected kid
func (h *KidHandler) ShowBlocked(w http.ResponseWriter, r *http.Request) {
	screen := screens.NewBlocked(GetSessionFromContext(r.Context()), h.contentService, h.overlayService, h.log)
	snapshotView(w, r, h.log, screen, screen.Holder)
}

// PlayVideo hands a playable video to the player and records the viewing
func (h *KidHandler) PlayVideo(w http.ResponseWriter, r *http.Request) {
	videoID, ok := pathID(w, r, h.log)
	if !ok {
		return
	}

	player := screens.NewPlayer(GetSessionFromContext(r.Context()), h.playbackService, h.log)
	state, err := player.Load(r.Context(), videoID)
	if err != nil {
		respondWithServiceError(w, h.log, "failed to play video", err)
		return
	}
	respondWithJSON(w, http.StatusOK, state)
}

type progressRequest struct {
	Seconds int `json:"seconds"`
}

// RecordProgress stores the playback position of a video for the selected kid
func (h *KidHandler) RecordProgress(w http.ResponseWriter, r *http.Request) {
	videoID, ok := pathID(w, r, h.log)
	if !ok {
		return
	}
	var in progressRequest
	if !decodeJSON(w, r, h.log, &in) {
		return
	}

	kidID := GetSessionFromContext(r.Context()).State().SelectedKidID
	if err := h.playbackService.RecordProgress(r.Context(), kidID, videoID, in.Seconds); err != nil {
		respondWithServiceError(w, h.log, "failed to record progress", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
