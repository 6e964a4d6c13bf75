package api

import (
	"net/http"

	"github.com/uphproperties/uphsite/internal/inquiry"
)

// InquiriesHandler handles contact and maintenance submissions.
type InquiriesHandler struct {
	Inquiry        *inquiry.Service
	MaxUploadBytes int64
}

// Contact handles POST /api/contact.
func (h *InquiriesHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var req inquiry.ContactRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.Inquiry.SubmitContact(r.Context(), req); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})
}

type maintenanceResponse struct {
	Success  bool   `json:"success"`
	TicketID string `json:"ticketId"`
}

// Maintenance handles POST /api/maintenance. The form carries the request
// fields and an optional "media" attachment.
func (h *InquiriesHandler) Maintenance(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r, h.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	sub := inquiry.MaintenanceSubmission{
		Name:            r.FormValue("name"),
		Phone:           r.FormValue("phone"),
		Address:         r.FormValue("address"),
		IssueType:       r.FormValue("issueType"),
		EntryPermission: r.FormValue("entryPermission"),
		Description:     r.FormValue("description"),
	}
	attachment, err := formFile(r, "media")
	if err != nil {
		writeError(w, r, err)
		return
	}

	req, err := h.Inquiry.SubmitMaintenance(r.Context(), sub, attachment)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, maintenanceResponse{Success: true, TicketID: req.ID})
}

// ListMaintenance handles GET /api/admin/maintenance.
func (h *InquiriesHandler) ListMaintenance(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Inquiry.ListMaintenance(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"requests": reqs})
}
