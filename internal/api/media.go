package api

import (
	"net/http"

	"github.com/uphproperties/uphsite/internal/catalog"
	"github.com/uphproperties/uphsite/internal/storage"
)

// MediaHandler handles hero, cover and gallery uploads.
type MediaHandler struct {
	Catalog        *catalog.Service
	MaxUploadBytes int64
}

// singleFile parses the form and returns the "file" field. It writes the
// error response itself and reports whether the caller should continue.
func (h *MediaHandler) singleFile(w http.ResponseWriter, r *http.Request) (storage.File, bool) {
	if err := parseMultipart(w, r, h.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return storage.File{}, false
	}
	f, err := formFile(r, "file")
	if err != nil {
		writeError(w, r, err)
		return storage.File{}, false
	}
	if f == nil {
		jsonResponse(w, http.StatusBadRequest, fieldError{Error: "file is required", Fields: []string{"file"}})
		return storage.File{}, false
	}
	return *f, true
}

func (h *MediaHandler) multipleFiles(w http.ResponseWriter, r *http.Request) ([]storage.File, bool) {
	if err := parseMultipart(w, r, h.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	files, err := formFiles(r, "files")
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return files, true
}

// SetHero handles POST /api/admin/properties/{id}/hero.
func (h *MediaHandler) SetHero(w http.ResponseWriter, r *http.Request) {
	f, ok := h.singleFile(w, r)
	if !ok {
		return
	}
	p, err := h.Catalog.SetHero(r.Context(), r.PathValue("id"), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"property": p})
}

// ClearHero handles DELETE /api/admin/properties/{id}/hero.
func (h *MediaHandler) ClearHero(w http.ResponseWriter, r *http.Request) {
	p, err := h.Catalog.ClearHero(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"property": p})
}

// AddGallery handles POST /api/admin/properties/{id}/gallery.
func (h *MediaHandler) AddGallery(w http.ResponseWriter, r *http.Request) {
	files, ok := h.multipleFiles(w, r)
	if !ok {
		return
	}
	images, err := h.Catalog.AddGallery(r.Context(), r.PathValue("id"), files)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, map[string]any{"images": images})
}

// RemoveGalleryImage handles DELETE /api/admin/properties/{id}/gallery/{imageId}.
func (h *MediaHandler) RemoveGalleryImage(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.RemoveGalleryImage(r.Context(), r.PathValue("id"), r.PathValue("imageId")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetUnitCover handles POST /api/admin/properties/{id}/units/{unitId}/cover.
func (h *MediaHandler) SetUnitCover(w http.ResponseWriter, r *http.Request) {
	f, ok := h.singleFile(w, r)
	if !ok {
		return
	}
	u, err := h.Catalog.SetUnitCover(r.Context(), r.PathValue("id"), r.PathValue("unitId"), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"unit": u})
}

// ClearUnitCover handles DELETE /api/admin/properties/{id}/units/{unitId}/cover.
func (h *MediaHandler) ClearUnitCover(w http.ResponseWriter, r *http.Request) {
	u, err := h.Catalog.ClearUnitCover(r.Context(), r.PathValue("id"), r.PathValue("unitId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"unit": u})
}

// AddUnitGallery handles POST /api/admin/properties/{id}/units/{unitId}/gallery.
func (h *MediaHandler) AddUnitGallery(w http.ResponseWriter, r *http.Request) {
	files, ok := h.multipleFiles(w, r)
	if !ok {
		return
	}
	images, err := h.Catalog.AddUnitGallery(r.Context(), r.PathValue("id"), r.PathValue("unitId"), files)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, map[string]any{"images": images})
}

// RemoveUnitGalleryImage handles DELETE /api/admin/properties/{id}/units/{unitId}/gallery/{imageId}.
func (h *MediaHandler) RemoveUnitGalleryImage(w http.ResponseWriter, r *http.Request) {
	err := h.Catalog.RemoveUnitGalleryImage(r.Context(), r.PathValue("id"), r.PathValue("unitId"), r.PathValue("imageId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
