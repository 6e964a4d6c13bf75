package api

import (
	"net/http"

	"github.com/uphproperties/uphsite/internal/catalog"
)

// UnitsHandler handles the admin unit endpoints.
type UnitsHandler struct {
	Catalog *catalog.Service
}

// Create handles POST /api/admin/properties/{id}/units.
func (h *UnitsHandler) Create(w http.ResponseWriter, r *http.Request) {
	fields, ok := readFields(w, r)
	if !ok {
		return
	}
	u, err := h.Catalog.CreateUnit(r.Context(), r.PathValue("id"), fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, map[string]any{"unit": u})
}

// Update handles PATCH /api/admin/properties/{id}/units/{unitId}.
func (h *UnitsHandler) Update(w http.ResponseWriter, r *http.Request) {
	patch, ok := readFields(w, r)
	if !ok {
		return
	}
	u, err := h.Catalog.UpdateUnit(r.Context(), r.PathValue("id"), r.PathValue("unitId"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"unit": u})
}

// Delete handles DELETE /api/admin/properties/{id}/units/{unitId}.
func (h *UnitsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteUnit(r.Context(), r.PathValue("id"), r.PathValue("unitId")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
