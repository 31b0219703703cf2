package models

import (
	"time"
)

// SenderRole identifies which party of an inquiry sent a message
type SenderRole string

const (
	SenderTenant  SenderRole = "tenant"
	SenderManager SenderRole = "manager"
)

// Message represents one entry of an inquiry conversation
type Message struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	InquiryID uint       `gorm:"not null;index" json:"inquiry_id"`
	SenderID  uint       `gorm:"not null" json:"sender_id"`
	Sender    SenderRole `gorm:"size:10" json:"sender,omitempty"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	Inquiry Inquiry `gorm:"foreignKey:InquiryID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for Message
func (Message) TableName() string {
	return "messages"
}
