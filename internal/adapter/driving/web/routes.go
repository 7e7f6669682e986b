package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// Web routes serve HTML at / and /app/* paths.
// Static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Static assets (embedded via go:embed).
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	// Page routes.
	mux.HandleFunc("GET /{$}", h.Cartography)
	mux.HandleFunc("GET /app/delays", h.Delays)
	mux.HandleFunc("GET /app/installations", h.Installations)
	mux.HandleFunc("GET /app/installations/{mantis}", h.InstallationDetail)

	// Form posts (CSRF protected).
	mux.HandleFunc("POST /app/installations/{mantis}/advance", h.AdvanceInstallation)
	mux.HandleFunc("POST /app/installations/{mantis}/lots", h.AttachLot)
}
