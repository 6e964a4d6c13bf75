// Package inquiry accepts contact messages and maintenance requests from
// tenants and prospects.
package inquiry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/uphproperties/uphsite/internal/model"
	"github.com/uphproperties/uphsite/internal/notify"
	"github.com/uphproperties/uphsite/internal/storage"
	"github.com/uphproperties/uphsite/internal/store"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError lists the request fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid or missing fields: " + strings.Join(e.Fields, ", ")
}

// UnavailableError reports that a downstream service (mail, storage) failed.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *UnavailableError) Unwrap() error { return e.Err }

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &ValidationError{Fields: fields}
}

// Service handles tenant submissions.
type Service struct {
	db            *sql.DB
	storage       storage.Storage
	notifier      notify.Notifier
	contactTo     string
	maintenanceTo string
	logger        *slog.Logger
}

// Options configures a Service.
type Options struct {
	ContactTo     string
	MaintenanceTo string
	Logger        *slog.Logger
}

func NewService(db *sql.DB, st storage.Storage, n notify.Notifier, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:            db,
		storage:       st,
		notifier:      n,
		contactTo:     opts.ContactTo,
		maintenanceTo: opts.MaintenanceTo,
		logger:        logger,
	}
}

// ContactRequest is a message from the website contact form.
type ContactRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	Email         string `json:"email" validate:"required,email,max=254"`
	Phone         string `json:"phone" validate:"max=50"`
	Message       string `json:"message" validate:"required,max=5000"`
	AboutProperty string `json:"aboutProperty" validate:"max=200"`
	AboutUnit     string `json:"aboutUnit" validate:"max=200"`
}

func (r *ContactRequest) trim() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Message = strings.TrimSpace(r.Message)
	r.AboutProperty = strings.TrimSpace(r.AboutProperty)
	r.AboutUnit = strings.TrimSpace(r.AboutUnit)
}

// ContactSubject builds the subject line for a contact message.
func ContactSubject(r ContactRequest) string {
	parts := []string{"UPH Website Inquiry"}
	if r.AboutProperty != "" {
		parts = append(parts, "Property: "+r.AboutProperty)
	}
	if r.AboutUnit != "" {
		parts = append(parts, "Unit: "+r.AboutUnit)
	}
	parts = append(parts, r.Name)
	return strings.Join(parts, " — ")
}

func contactText(r ContactRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\nEmail: %s\n", r.Name, r.Email)
	phone := r.Phone
	if phone == "" {
		phone = "N/A"
	}
	fmt.Fprintf(&b, "Phone: %s\n", phone)
	if r.AboutProperty != "" {
		fmt.Fprintf(&b, "Property: %s\n", r.AboutProperty)
	}
	if r.AboutUnit != "" {
		fmt.Fprintf(&b, "Unit: %s\n", r.AboutUnit)
	}
	fmt.Fprintf(&b, "\nMessage:\n%s", r.Message)
	return b.String()
}

// SubmitContact validates a contact message and forwards it to the office.
func (s *Service) SubmitContact(ctx context.Context, r ContactRequest) error {
	r.trim()
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}

	err := s.notifier.Notify(ctx, notify.Message{
		To:      s.contactTo,
		ReplyTo: r.Email,
		Subject: ContactSubject(r),
		Text:    contactText(r),
	})
	if err != nil {
		return &UnavailableError{Op: "sending inquiry", Err: err}
	}

	s.logger.Info("contact inquiry sent", "property", r.AboutProperty, "unit", r.AboutUnit)
	return nil
}

// MaintenanceSubmission is a repair request from the maintenance form.
type MaintenanceSubmission struct {
	Name            string `json:"name" validate:"required,max=200"`
	Phone           string `json:"phone" validate:"required,max=50"`
	Address         string `json:"address" validate:"required,max=300"`
	IssueType       string `json:"issueType" validate:"required,max=100"`
	EntryPermission string `json:"entryPermission" validate:"max=50"`
	Description     string `json:"description" validate:"required,max=5000"`
}

func (m *MaintenanceSubmission) normalize() {
	m.Name = strings.TrimSpace(m.Name)
	m.Phone = strings.TrimSpace(m.Phone)
	m.Address = strings.TrimSpace(m.Address)
	m.IssueType = strings.TrimSpace(m.IssueType)
	m.EntryPermission = strings.TrimSpace(m.EntryPermission)
	if m.EntryPermission == "" {
		m.EntryPermission = "yes"
	}
	m.Description = strings.TrimSpace(m.Description)
}

// SubmitMaintenance stores a maintenance request with its optional
// attachment and notifies the office. Notification failures are logged; the
// request is still accepted.
func (s *Service) SubmitMaintenance(ctx context.Context, m MaintenanceSubmission, attachment *storage.File) (*model.MaintenanceRequest, error) {
	m.normalize()
	if err := validate.Struct(m); err != nil {
		return nil, validationError(err)
	}

	req := &model.MaintenanceRequest{
		Name:            m.Name,
		Phone:           m.Phone,
		Address:         m.Address,
		IssueType:       m.IssueType,
		EntryPermission: m.EntryPermission,
		Description:     m.Description,
	}

	var uploaded string
	if attachment != nil && len(attachment.Data) > 0 {
		f := *attachment
		if f.ContentType == "" || f.ContentType == "application/octet-stream" {
			f.ContentType = http.DetectContentType(f.Data)
		}
		obj, err := s.storage.Upload(ctx, fmt.Sprintf("maintenance/%d", time.Now().UnixMilli()), f)
		if err != nil {
			return nil, &UnavailableError{Op: "uploading attachment", Err: err}
		}
		uploaded = obj.Key
		req.AttachmentURL = &obj.URL
		req.AttachmentKey = &obj.Key
	}

	created, err := store.CreateMaintenanceRequest(ctx, s.db, req)
	if err != nil {
		if uploaded != "" {
			if derr := s.storage.Delete(context.WithoutCancel(ctx), uploaded); derr != nil {
				s.logger.Warn("failed to delete stored object", "key", uploaded, "error", derr)
			}
		}
		return nil, err
	}

	s.logger.Info("maintenance request received", "ticket_id", created.ID, "issue_type", created.IssueType)

	if err := s.notifier.Notify(ctx, notify.Message{
		To:      s.maintenanceTo,
		Subject: fmt.Sprintf("Maintenance Request — %s — %s", created.IssueType, created.Name),
		Text:    maintenanceText(created),
	}); err != nil {
		s.logger.Warn("failed to send maintenance notification", "ticket_id", created.ID, "error", err)
	}

	return created, nil
}

func maintenanceText(m *model.MaintenanceRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ticket: %s\nName: %s\nPhone: %s\nAddress: %s\nIssue: %s\nEntry permission: %s\n",
		m.ID, m.Name, m.Phone, m.Address, m.IssueType, m.EntryPermission)
	if m.AttachmentURL != nil {
		fmt.Fprintf(&b, "Attachment: %s\n", *m.AttachmentURL)
	}
	fmt.Fprintf(&b, "\nDescription:\n%s", m.Description)
	return b.String()
}

// ListMaintenance returns stored maintenance requests, newest first.
func (s *Service) ListMaintenance(ctx context.Context) ([]model.MaintenanceRequest, error) {
	return store.ListMaintenanceRequests(ctx, s.db)
}
