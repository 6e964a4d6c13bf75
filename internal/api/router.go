package api

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/uphproperties/uphsite/internal/auth"
	"github.com/uphproperties/uphsite/internal/catalog"
	"github.com/uphproperties/uphsite/internal/inquiry"
)

// Deps are the services the router dispatches to.
type Deps struct {
	Catalog        *catalog.Service
	Inquiry        *inquiry.Service
	Sessions       *auth.Authenticator
	Admin          auth.Credentials
	CookieSecure   bool
	MaxUploadBytes int64
	// CORSOrigins lists the origins allowed to call the public API. Empty
	// means same-origin only.
	CORSOrigins []string
	// Uploads serves stored media under /uploads/. Nil when media lives
	// elsewhere.
	Uploads http.Handler
}

// NewRouter creates the HTTP router with all endpoints registered.
func NewRouter(d Deps) http.Handler {
	authHandler := &AuthHandler{Sessions: d.Sessions, Admin: d.Admin, CookieSecure: d.CookieSecure}
	propertiesHandler := &PropertiesHandler{Catalog: d.Catalog, MaxUploadBytes: d.MaxUploadBytes}
	unitsHandler := &UnitsHandler{Catalog: d.Catalog}
	mediaHandler := &MediaHandler{Catalog: d.Catalog, MaxUploadBytes: d.MaxUploadBytes}
	publicHandler := &PublicHandler{Catalog: d.Catalog}
	inquiriesHandler := &InquiriesHandler{Inquiry: d.Inquiry, MaxUploadBytes: d.MaxUploadBytes}

	// Admin: every route requires a session except login.
	admin := http.NewServeMux()
	admin.HandleFunc("POST /api/admin/login", authHandler.Login)
	admin.HandleFunc("POST /api/admin/logout", authHandler.Logout)
	admin.HandleFunc("GET /api/admin/session", authHandler.Session)

	admin.HandleFunc("GET /api/admin/properties", propertiesHandler.List)
	admin.HandleFunc("POST /api/admin/properties", propertiesHandler.Create)
	admin.HandleFunc("GET /api/admin/properties/{id}", propertiesHandler.Get)
	admin.HandleFunc("PATCH /api/admin/properties/{id}", propertiesHandler.Update)
	admin.HandleFunc("DELETE /api/admin/properties/{id}", propertiesHandler.Delete)

	admin.HandleFunc("POST /api/admin/properties/{id}/hero", mediaHandler.SetHero)
	admin.HandleFunc("DELETE /api/admin/properties/{id}/hero", mediaHandler.ClearHero)
	admin.HandleFunc("POST /api/admin/properties/{id}/gallery", mediaHandler.AddGallery)
	admin.HandleFunc("DELETE /api/admin/properties/{id}/gallery/{imageId}", mediaHandler.RemoveGalleryImage)

	admin.HandleFunc("POST /api/admin/properties/{id}/units", unitsHandler.Create)
	admin.HandleFunc("PATCH /api/admin/properties/{id}/units/{unitId}", unitsHandler.Update)
	admin.HandleFunc("DELETE /api/admin/properties/{id}/units/{unitId}", unitsHandler.Delete)
	admin.HandleFunc("POST /api/admin/properties/{id}/units/{unitId}/cover", mediaHandler.SetUnitCover)
	admin.HandleFunc("DELETE /api/admin/properties/{id}/units/{unitId}/cover", mediaHandler.ClearUnitCover)
	admin.HandleFunc("POST /api/admin/properties/{id}/units/{unitId}/gallery", mediaHandler.AddUnitGallery)
	admin.HandleFunc("DELETE /api/admin/properties/{id}/units/{unitId}/gallery/{imageId}", mediaHandler.RemoveUnitGalleryImage)

	admin.HandleFunc("GET /api/admin/maintenance", inquiriesHandler.ListMaintenance)

	gate := SessionGate(d.Sessions, d.CookieSecure, "POST /api/admin/login")

	// Public site API.
	public := http.NewServeMux()
	public.HandleFunc("GET /api/properties", publicHandler.List)
	public.HandleFunc("GET /api/properties/{slug}", publicHandler.Get)
	public.HandleFunc("POST /api/contact", inquiriesHandler.Contact)
	public.HandleFunc("POST /api/maintenance", inquiriesHandler.Maintenance)

	var publicAPI http.Handler = public
	if len(d.CORSOrigins) > 0 {
		publicAPI = cors.New(cors.Options{
			AllowedOrigins:   d.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
		}).Handler(public)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/admin/", gate(admin))
	mux.Handle("/api/", publicAPI)
	if d.Uploads != nil {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", d.Uploads))
	}
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return mux
}
