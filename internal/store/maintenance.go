package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/uphproperties/uphsite/internal/model"
)

// CreateMaintenanceRequest stores a maintenance ticket and returns it.
func CreateMaintenanceRequest(ctx context.Context, db *sql.DB, m *model.MaintenanceRequest) (*model.MaintenanceRequest, error) {
	m.ID = uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO maintenance_requests (id, name, phone, address, issue_type, entry_permission,
		     description, attachment_url, attachment_key)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.Phone, m.Address, m.IssueType, m.EntryPermission, m.Description,
		m.AttachmentURL, m.AttachmentKey,
	)
	if err != nil {
		return nil, fmt.Errorf("creating maintenance request: %w", err)
	}
	return GetMaintenanceRequest(ctx, db, m.ID)
}

// GetMaintenanceRequest returns a ticket by ID, or nil if it does not exist.
func GetMaintenanceRequest(ctx context.Context, db *sql.DB, id string) (*model.MaintenanceRequest, error) {
	m, err := scanMaintenanceRequest(db.QueryRowContext(ctx,
		`SELECT id, name, phone, address, issue_type, entry_permission, description,
		        attachment_url, attachment_key, created_at
		 FROM maintenance_requests WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting maintenance request: %w", err)
	}
	return m, nil
}

// ListMaintenanceRequests returns tickets, newest first.
func ListMaintenanceRequests(ctx context.Context, db *sql.DB) ([]model.MaintenanceRequest, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, phone, address, issue_type, entry_permission, description,
		        attachment_url, attachment_key, created_at
		 FROM maintenance_requests ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing maintenance requests: %w", err)
	}
	defer rows.Close()

	var requests []model.MaintenanceRequest
	for rows.Next() {
		m, err := scanMaintenanceRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning maintenance request: %w", err)
		}
		requests = append(requests, *m)
	}
	return requests, rows.Err()
}

func scanMaintenanceRequest(row rowScanner) (*model.MaintenanceRequest, error) {
	m := &model.MaintenanceRequest{}
	var url, key sql.NullString
	err := row.Scan(&m.ID, &m.Name, &m.Phone, &m.Address, &m.IssueType, &m.EntryPermission,
		&m.Description, &url, &key, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.AttachmentURL = nullString(url)
	m.AttachmentKey = nullString(key)
	return m, nil
}
