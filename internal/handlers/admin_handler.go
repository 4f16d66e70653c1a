package handlers

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"kidsvids/internal/security"
	"kidsvids/internal/service"
)

// multipartMemory is the part of an upload kept in memory before spilling to disk
const multipartMemory = 32 << 20

// AdminHandler handles the content management panel
type AdminHandler struct {
	adminService  *service.AdminService
	reportService *service.ReportService
	mediaService  *service.MediaService
	backupService *service.BackupService
	tokens        *security.TokenIssuer
	maxUpload     int64
	log           *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService *service.AdminService, reportService *service.ReportService, mediaService *service.MediaService, backupService *service.BackupService, tokens *security.TokenIssuer, maxUpload int64, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		adminService:  adminService,
		reportService: reportService,
		mediaService:  mediaService,
		backupService: backupService,
		tokens:        tokens,
		maxUpload:     maxUpload,
		log:           log.With(zap.String("handler", "admin")),
	}
}

// Login exchanges the admin credentials for an admin token
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if !decodeJSON(w, r, h.log, &in) {
		return
	}

	if err := h.adminService.Authenticate(in.Email, in.Password); err != nil {
		h.log.Warn("admin login failed", zap.String("ip", security.GetClientIP(r)))
		respondWithServiceError(w, h.log, "", err)
		return
	}

	token, err := h.tokens.Issue("admin-"+security.GenerateSessionKey(), security.RoleAdmin)
	if err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "failed to issue admin token", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"token": token})
}

// ListVideos lists every video in the library
func (h *AdminHandler) ListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.adminService.ListVideos(r.Context())
	if err != nil {
		respondWithServiceError(w, h.log, "failed to list videos", err)
		return
	}
	respondWithJSON(w, http.StatusOK, videos)
}

// GetVideo returns one video
func (h *AdminHandler) GetVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.log)
	if !ok {
		return
	}
	video, err := h.adminService.GetVideo(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.log, "failed to get video", err)
		return
	}
	respondWithJSON(w, http.StatusOK, video)
}

// CreateVideo adds a video to the library
func (h *AdminHandler) CreateVideo(w http.ResponseWriter, r *http.Request) {
	var in service.VideoInput
	if !decodeJSON(w, r, h.log, &in) {
		return
	}
	video, err := h.adminService.CreateVideo(r.Context(), in)
	if err != nil {
		respondWithServiceError(w, h.log, "failed to create video", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, video)
}

// UpdateVideo edits a video
func (h *AdminHandler) UpdateVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.log)
	if !ok {
		return
	}
	var in service.VideoInput
	if !decodeJSON(w, r, h.log, &in) {
		return
	}
	video, err := h.adminService.UpdateVideo(r.Context(), id, in)
	if err != nil {
		respondWithServiceError(w, h.log, "failed to update video", err)
		return
	}
	respondWithJSON(w, http.StatusOK, video)
}

// DeleteVideo removes a video together with its favorites, blocks and history
func (h *AdminHandler) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.log)
	if !ok {
		return
	}
	if err := h.adminService.DeleteVideo(r.Context(), id); err != nil {
		respondWithServiceError(w, h.log, "failed to delete video", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type categoryRequest struct {
	Name string `json:"name"`
}

// ListCategories lists the content categories
func (h *AdminHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.adminService.ListCategories(r.Context())
	if err != nil {
		respondWithServiceError(w, h.log, "failed to list categories", err)
		return
	}
	respondWithJSON(w, http.StatusOK, categories)
}

// CreateCategory adds a content category
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryRequest
	if !decodeJSON(w, r, h.log, &in) {
		return
	}
	category, err := h.adminService.CreateCategory(r.Context(), in.Name)
	if err != nil {
		respondWithServiceError(w, h.log, "failed to create category", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, category)
}

// UpdateCategory renames a content category
func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.log)
	if !ok {
		return
	}
	var in categoryRequest
	if !decodeJSON(w, r, h.log, &in) {
		return
	}
	category, err := h.adminService.UpdateCategory(r.Context(), id, in.Name)
	if err != nil {
		respondWithServiceError(w, h.log, "failed to update category", err)
		return
	}
	respondWithJSON(w, http.StatusOK, category)
}

// DeleteCategory removes a content category
func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.log)
	if !ok {
		return
	}
	if err := h.adminService.DeleteCategory(r.Context(), id); err != nil {
		respondWithServiceError(w, h.log, "failed to delete category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListParents lists every parent account
func (h *AdminHandler) ListParents(w http.ResponseWriter, r *http.Request) {
	parents, err := h.adminService.ListParents(r.Context())
	if err != nil {
		respondWithServiceError(w, h.log, "failed to list parents", err)
		return
	}
	respondWithJSON(w, http.StatusOK, parents)
}

// ToggleParentActive enables or disables a parent account
func (h *AdminHandler) ToggleParentActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.log)
	if !ok {
		return
	}
	active, err := h.adminService.ToggleParentActive(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.log, "failed to toggle parent", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"id": id, "is_active": active})
}

// DeleteParent removes a parent account and all of its kid profiles
func (h *AdminHandler) DeleteParent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.log)
	if !ok {
		return
	}
	if err := h.adminService.DeleteParent(r.Context(), id); err != nil {
		respondWithServiceError(w, h.log, "failed to delete parent", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ShowReports returns the dashboard statistics
func (h *AdminHandler) ShowReports(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportService.Build(r.Context())
	if err != nil {
		respondWithServiceError(w, h.log, "failed to build report", err)
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}

// UploadMedia stores a video file or thumbnail and returns its public URL.
// The multipart form carries the file in "file" and its kind in "kind".
func (h *AdminHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	if !h.mediaService.IsEnabled() {
		respondWithServiceError(w, h.log, "", service.ErrStorageDisabled)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		respondWithError(w, h.log, http.StatusRequestEntityTooLarge, "Upload is too large or malformed", "", nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, "Missing file", "", nil)
		return
	}
	defer file.Close()

	kind := r.FormValue("kind")
	if kind != service.MediaVideo && kind != service.MediaThumbnail {
		respondWithError(w, h.log, http.StatusBadRequest, "Kind must be videos or thumbnails", "", nil)
		return
	}

	url, err := h.mediaService.Upload(r.Context(), kind, header.Filename, file, header.Size)
	if err != nil {
		respondWithServiceError(w, h.log, "failed to upload media", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{"url": url})
}

// ExportDatabase exports the library to JSON for download
func (h *AdminHandler) ExportDatabase(w http.ResponseWriter, r *http.Request) {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("kidsvids_backup_%s.json", timestamp)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	// Export directly to response writer
	if _, err := h.backupService.ExportToWriter(r.Context(), w); err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, "Failed to export database", "error exporting database", err)
		return
	}

	h.log.Info("database exported")
}

// ImportDatabase replaces the library with an uploaded JSON backup
func (h *AdminHandler) ImportDatabase(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	backup, err := h.backupService.ImportFromReader(r.Context(), r.Body)
	if err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, "Failed to import backup", "error importing database", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"parents": len(backup.Parents),
		"kids":    len(backup.Kids),
		"videos":  len(backup.Videos),
	})
}
