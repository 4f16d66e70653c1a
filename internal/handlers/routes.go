package handlers

import "net/http"

// Routes registers every API route on a new mux
func Routes(m *Middleware, auth *AuthHandler, parent *ParentHandler, kid *KidHandler, admin *AdminHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public routes
	mux.HandleFunc("POST /api/signup", m.RateLimit(auth.Signup))
	mux.HandleFunc("POST /api/login", m.RateLimit(auth.Login))
	mux.HandleFunc("POST /api/pin/reset", m.RateLimit(auth.ResetPIN))
	mux.HandleFunc("POST /api/logout", m.RequireSession(auth.Logout))

	// Parent area
	mux.HandleFunc("GET /api/profiles", m.RequireSession(parent.ListProfiles))
	mux.HandleFunc("GET /api/profiles/stream", m.RequireSession(parent.StreamProfiles))
	mux.HandleFunc("POST /api/profiles", m.RequireSession(parent.CreateProfile))
	mux.HandleFunc("PUT /api/profiles/{id}", m.RequireSession(parent.UpdateProfile))
	mux.HandleFunc("DELETE /api/profiles/{id}", m.RequireSession(parent.DeleteProfile))
	mux.HandleFunc("POST /api/profiles/{id}/select", m.RequireSession(parent.SelectProfile))
	mux.HandleFunc("GET /api/account", m.RequireSession(parent.ShowAccount))
	mux.HandleFunc("POST /api/account/pin", m.RequireSession(m.RateLimit(parent.CheckPIN)))

	// Kid screens
	mux.HandleFunc("GET /api/home", m.RequireSession(kid.ShowHome))
	mux.HandleFunc("GET /api/home/stream", m.RequireSession(kid.StreamHome))
	mux.HandleFunc("GET /api/your-stuff", m.RequireSession(kid.ShowYourStuff))
	mux.HandleFunc("GET /api/your-stuff/stream", m.RequireSession(kid.StreamYourStuff))
	mux.HandleFunc("GET /api/blocked", m.RequireSession(kid.ShowBlocked))
	mux.HandleFunc("POST /api/videos/{id}/favorite", m.RequireSession(kid.ToggleFavorite))
	mux.HandleFunc("POST /api/videos/{id}/block", m.RequireSession(kid.BlockVideo))
	mux.HandleFunc("POST /api/videos/{id}/unblock", m.RequireSession(kid.UnblockVideo))
	mux.HandleFunc("GET /api/videos/{id}/play", m.RequireSession(kid.PlayVideo))
	mux.HandleFunc("POST /api/videos/{id}/progress", m.RequireSession(kid.RecordProgress))

	// Admin routes
	mux.HandleFunc("POST /api/admin/login", m.RateLimit(admin.Login))
	mux.HandleFunc("GET /api/admin/videos", m.RequireAdmin(admin.ListVideos))
	mux.HandleFunc("POST /api/admin/videos", m.RequireAdmin(admin.CreateVideo))
	mux.HandleFunc("GET /api/admin/videos/{id}", m.RequireAdmin(admin.GetVideo))
	mux.HandleFunc("PUT /api/admin/videos/{id}", m.RequireAdmin(admin.UpdateVideo))
	mux.HandleFunc("DELETE /api/admin/videos/{id}", m.RequireAdmin(admin.DeleteVideo))
	mux.HandleFunc("GET /api/admin/categories", m.RequireAdmin(admin.ListCategories))
	mux.HandleFunc("POST /api/admin/categories", m.RequireAdmin(admin.CreateCategory))
	mux.HandleFunc("PUT /api/admin/categories/{id}", m.RequireAdmin(admin.UpdateCategory))
	mux.HandleFunc("DELETE /api/admin/categories/{id}", m.RequireAdmin(admin.DeleteCategory))
	mux.HandleFunc("GET /api/admin/parents", m.RequireAdmin(admin.ListParents))
	mux.HandleFunc("POST /api/admin/parents/{id}/toggle-active", m.RequireAdmin(admin.ToggleParentActive))
	mux.HandleFunc("DELETE /api/admin/parents/{id}", m.RequireAdmin(admin.DeleteParent))
	mux.HandleFunc("GET /api/admin/reports", m.RequireAdmin(admin.ShowReports))
	mux.HandleFunc("POST /api/admin/uploads", m.RequireAdmin(admin.UploadMedia))
	mux.HandleFunc("GET /api/admin/backup", m.RequireAdmin(admin.ExportDatabase))
	mux.HandleFunc("POST /api/admin/backup", m.RequireAdmin(admin.ImportDatabase))

	return mux
}
