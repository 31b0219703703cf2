package models

import (
	"time"
)

// Attachment represents a file uploaded to an inquiry.
//
// Attachments belong to an inquiry, never directly to a message; their
// association with the message they accompany is derived at read time from
// wall-clock proximity and never persisted.
type Attachment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	InquiryID  uint      `gorm:"not null;index" json:"inquiry_id"`
	FileName   string    `gorm:"size:255" json:"file_name"`
	FileType   string    `gorm:"size:100" json:"file_type"`
	FileSize   int64     `json:"file_size"`
	FilePath   string    `gorm:"size:500" json:"-"`
	UploadedBy uint      `json:"uploaded_by"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	Inquiry Inquiry `gorm:"foreignKey:InquiryID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for Attachment
func (Attachment) TableName() string {
	return "attachments"
}
