package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/uphproperties/uphsite/internal/catalog"
	"github.com/uphproperties/uphsite/internal/storage"
)

// PropertiesHandler handles the admin property endpoints.
type PropertiesHandler struct {
	Catalog        *catalog.Service
	MaxUploadBytes int64
}

// createPayload names the multipart fields that carry each image. The
// remaining payload keys are property fields.
type createPayload struct {
	HeroImageField string            `json:"heroImageField"`
	GalleryFields  []string          `json:"galleryFields"`
	Units          []json.RawMessage `json:"units"`
}

type unitPayload struct {
	CoverImageField string   `json:"coverImageField"`
	GalleryFields   []string `json:"galleryFields"`
}

var transportKeys = []string{"heroImageField", "galleryFields", "coverImageField", "units"}

// List handles GET /api/admin/properties.
func (h *PropertiesHandler) List(w http.ResponseWriter, r *http.Request) {
	props, err := h.Catalog.ListProperties(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"properties": props})
}

// Get handles GET /api/admin/properties/{id}.
func (h *PropertiesHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Catalog.GetProperty(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"property": p})
}

// Create handles POST /api/admin/properties. The body is a multipart form
// with a JSON "payload" field and the image files it names.
func (h *PropertiesHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r, h.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	raw := r.FormValue("payload")
	if raw == "" {
		jsonError(w, http.StatusBadRequest, "missing payload")
		return
	}
	var payload createPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid payload JSON")
		return
	}
	fields, err := catalog.ParseFields([]byte(raw))
	if err != nil {
		writeError(w, r, err)
		return
	}
	stripTransportKeys(fields)

	in := catalog.NewProperty{Fields: fields}
	if in.Hero, err = formFile(r, payload.HeroImageField); err != nil {
		writeError(w, r, err)
		return
	}
	if in.Gallery, err = namedFiles(r, payload.GalleryFields); err != nil {
		writeError(w, r, err)
		return
	}

	for _, rawUnit := range payload.Units {
		unit, err := h.newUnit(r, rawUnit)
		if err != nil {
			writeError(w, r, err)
			return
		}
		in.Units = append(in.Units, unit)
	}

	p, err := h.Catalog.CreateProperty(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, map[string]any{"property": p})
}

func (h *PropertiesHandler) newUnit(r *http.Request, raw json.RawMessage) (catalog.NewUnit, error) {
	fields, err := catalog.ParseFields(raw)
	if err != nil {
		return catalog.NewUnit{}, err
	}
	var up unitPayload
	if err := json.Unmarshal(raw, &up); err != nil {
		return catalog.NewUnit{}, &catalog.ValidationError{Message: "invalid unit image fields"}
	}
	stripTransportKeys(fields)

	unit := catalog.NewUnit{Fields: fields}
	if unit.Cover, err = formFile(r, up.CoverImageField); err != nil {
		return catalog.NewUnit{}, err
	}
	if unit.Gallery, err = namedFiles(r, up.GalleryFields); err != nil {
		return catalog.NewUnit{}, err
	}
	return unit, nil
}

// namedFiles collects the first file of each named form field, skipping
// names with no file attached.
func namedFiles(r *http.Request, names []string) ([]storage.File, error) {
	var files []storage.File
	for _, name := range names {
		f, err := formFile(r, name)
		if err != nil {
			return nil, err
		}
		if f != nil {
			files = append(files, *f)
		}
	}
	return files, nil
}

func stripTransportKeys(f catalog.Fields) {
	for _, k := range transportKeys {
		delete(f, k)
	}
}

// Update handles PATCH /api/admin/properties/{id}.
func (h *PropertiesHandler) Update(w http.ResponseWriter, r *http.Request) {
	patch, ok := readFields(w, r)
	if !ok {
		return
	}
	p, err := h.Catalog.UpdateProperty(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"property": p})
}

// Delete handles DELETE /api/admin/properties/{id}.
func (h *PropertiesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteProperty(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// readFields reads a JSON object body. It writes the error response itself
// and reports whether the caller should continue.
func readFields(w http.ResponseWriter, r *http.Request) (catalog.Fields, bool) {
	defer r.Body.Close()
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		slog.Warn("reading request body", "path", r.URL.Path, "error", err)
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	fields, err := catalog.ParseFields(data)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return fields, true
}
