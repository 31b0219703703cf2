package models

import (
	"time"
)

// InquiryStatus is the lifecycle status of an inquiry
type InquiryStatus string

const (
	InquiryStatusNew       InquiryStatus = "new"
	InquiryStatusPending   InquiryStatus = "pending"
	InquiryStatusActive    InquiryStatus = "active"
	InquiryStatusResponded InquiryStatus = "responded"
	InquiryStatusAssigned  InquiryStatus = "assigned"
	InquiryStatusClosed    InquiryStatus = "closed"
)

// Inquiry represents one tenant-to-manager conversation scoped to a listing.
//
// Older inquiries store their conversation as a single free-text blob in
// LegacyBody, newer ones as rows in Messages. Both shapes are served
// indefinitely; old rows are never migrated in place. Mail intake still
// appends to LegacyBody, so the blob format remains a live producer.
type Inquiry struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	PropertyID uint          `gorm:"not null;index" json:"property_id"`
	UnitID     *uint         `json:"unit_id,omitempty"`
	TenantID   uint          `gorm:"not null;index" json:"tenant_id"`
	ManagerID  uint          `gorm:"not null;index" json:"manager_id"`
	Status     InquiryStatus `gorm:"not null;size:20;default:new" json:"status"`
	LegacyBody string        `json:"message,omitempty"`
	CreatedAt  time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time     `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Property    Property     `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"-"`
	Messages    []Message    `gorm:"foreignKey:InquiryID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
	Attachments []Attachment `gorm:"foreignKey:InquiryID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for Inquiry
func (Inquiry) TableName() string {
	return "inquiries"
}

// HasStructuredMessages reports whether the inquiry carries a structured
// message list rather than only a legacy blob.
func (i *Inquiry) HasStructuredMessages() bool {
	return len(i.Messages) > 0
}

// InquiryListItem is a lightweight version for list views
type InquiryListItem struct {
	ID           uint          `json:"id"`
	PropertyID   uint          `json:"property_id"`
	UnitID       *uint         `json:"unit_id,omitempty"`
	TenantID     uint          `json:"tenant_id"`
	Status       InquiryStatus `json:"status"`
	UpdatedAt    time.Time     `json:"updated_at"`
	MessageCount int           `json:"message_count"`
}
