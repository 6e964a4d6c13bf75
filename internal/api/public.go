package api

import (
	"net/http"

	"github.com/uphproperties/uphsite/internal/catalog"
)

// PublicHandler serves the listings shown on the public site.
type PublicHandler struct {
	Catalog *catalog.Service
}

// List handles GET /api/properties.
func (h *PublicHandler) List(w http.ResponseWriter, r *http.Request) {
	props, err := h.Catalog.PublicListings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"properties": props})
}

// Get handles GET /api/properties/{slug}.
func (h *PublicHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Catalog.PublicListing(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"property": p})
}
