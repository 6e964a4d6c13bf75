package model

import "time"

// MaintenanceRequest is a repair ticket submitted by a tenant.
type MaintenanceRequest struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Phone           string    `json:"phone"`
	Address         string    `json:"address"`
	IssueType       string    `json:"issueType"`
	EntryPermission string    `json:"entryPermission"`
	Description     string    `json:"description"`
	AttachmentURL   *string   `json:"attachmentUrl"`
	AttachmentKey   *string   `json:"attachmentKey"`
	CreatedAt       time.Time `json:"createdAt"`
}
