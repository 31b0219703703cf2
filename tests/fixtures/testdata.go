package fixtures

import (
	"fmt"
	"time"

	"github.com/rumahkita/rumahkita-backend/internal/models"
)

// PropertyBuilder creates test Property instances with fluent API
type PropertyBuilder struct {
	property models.Property
}

// NewPropertyBuilder creates a new PropertyBuilder with sensible defaults
func NewPropertyBuilder() *PropertyBuilder {
	return &PropertyBuilder{
		property: models.Property{
			ID:        1,
			ManagerID: 1,
			Name:      "Kos Melati",
			Address:   "Jl. Melati No. 5",
			City:      "Bandung",
			IsActive:  true,
			CreatedAt: time.Now(),
		},
	}
}

// WithID sets the property ID
func (b *PropertyBuilder) WithID(id uint) *PropertyBuilder {
	b.property.ID = id
	return b
}

// WithManagerID sets the owning manager
func (b *PropertyBuilder) WithManagerID(managerID uint) *PropertyBuilder {
	b.property.ManagerID = managerID
	return b
}

// WithName sets the property name
func (b *PropertyBuilder) WithName(name string) *PropertyBuilder {
	b.property.Name = name
	return b
}

// WithUnits sets the property's units
func (b *PropertyBuilder) WithUnits(units ...models.Unit) *PropertyBuilder {
	b.property.Units = units
	return b
}

// Build returns the constructed Property
func (b *PropertyBuilder) Build() *models.Property {
	return &b.property
}

// BuildValue returns the constructed Property as a value (not pointer)
func (b *PropertyBuilder) BuildValue() models.Property {
	return b.property
}

// UnitBuilder creates test Unit instances with fluent API
type UnitBuilder struct {
	unit models.Unit
}

// NewUnitBuilder creates a new UnitBuilder with sensible defaults
func NewUnitBuilder() *UnitBuilder {
	return &UnitBuilder{
		unit: models.Unit{
			ID:         1,
			PropertyID: 1,
			Label:      "A-1",
			MonthlyFee: 1500000,
		},
	}
}

// WithID sets the unit ID
func (b *UnitBuilder) WithID(id uint) *UnitBuilder {
	b.unit.ID = id
	return b
}

// WithPropertyID sets the owning property
func (b *UnitBuilder) WithPropertyID(propertyID uint) *UnitBuilder {
	b.unit.PropertyID = propertyID
	return b
}

// WithLabel sets the unit label
func (b *UnitBuilder) WithLabel(label string) *UnitBuilder {
	b.unit.Label = label
	return b
}

// Occupied marks the unit as occupied by a tenant
func (b *UnitBuilder) Occupied(tenantID uint) *UnitBuilder {
	b.unit.IsOccupied = true
	b.unit.TenantID = &tenantID
	return b
}

// Build returns the constructed Unit
func (b *UnitBuilder) Build() *models.Unit {
	return &b.unit
}

// BuildValue returns the constructed Unit as a value (not pointer)
func (b *UnitBuilder) BuildValue() models.Unit {
	return b.unit
}

// InquiryBuilder creates test Inquiry instances with fluent API
type InquiryBuilder struct {
	inquiry models.Inquiry
}

// NewInquiryBuilder creates a new InquiryBuilder with sensible defaults
func NewInquiryBuilder() *InquiryBuilder {
	now := time.Now()
	return &InquiryBuilder{
		inquiry: models.Inquiry{
			ID:         1,
			PropertyID: 1,
			TenantID:   100,
			ManagerID:  1,
			Status:     models.InquiryStatusActive,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
	}
}

// WithID sets the inquiry ID
func (b *InquiryBuilder) WithID(id uint) *InquiryBuilder {
	b.inquiry.ID = id
	return b
}

// WithPropertyID sets the listing the inquiry is about
func (b *InquiryBuilder) WithPropertyID(propertyID uint) *InquiryBuilder {
	b.inquiry.PropertyID = propertyID
	return b
}

// WithTenantID sets the inquiring tenant
func (b *InquiryBuilder) WithTenantID(tenantID uint) *InquiryBuilder {
	b.inquiry.TenantID = tenantID
	return b
}

// WithManagerID sets the addressed manager
func (b *InquiryBuilder) WithManagerID(managerID uint) *InquiryBuilder {
	b.inquiry.ManagerID = managerID
	return b
}

// WithStatus sets the lifecycle status
func (b *InquiryBuilder) WithStatus(status models.InquiryStatus) *InquiryBuilder {
	b.inquiry.Status = status
	return b
}

// WithLegacyBody sets the raw legacy text blob
func (b *InquiryBuilder) WithLegacyBody(body string) *InquiryBuilder {
	b.inquiry.LegacyBody = body
	return b
}

// WithMessages sets the structured message list
func (b *InquiryBuilder) WithMessages(messages ...models.Message) *InquiryBuilder {
	b.inquiry.Messages = messages
	return b
}

// WithUpdatedAt sets the updated timestamp
func (b *InquiryBuilder) WithUpdatedAt(t time.Time) *InquiryBuilder {
	b.inquiry.UpdatedAt = t
	return b
}

// Build returns the constructed Inquiry
func (b *InquiryBuilder) Build() *models.Inquiry {
	return &b.inquiry
}

// BuildValue returns the constructed Inquiry as a value (not pointer)
func (b *InquiryBuilder) BuildValue() models.Inquiry {
	return b.inquiry
}

// MessageBuilder creates test Message instances with fluent API
type MessageBuilder struct {
	message models.Message
}

// NewMessageBuilder creates a new MessageBuilder with sensible defaults
func NewMessageBuilder() *MessageBuilder {
	return &MessageBuilder{
		message: models.Message{
			ID:        1,
			InquiryID: 1,
			SenderID:  100,
			Sender:    models.SenderTenant,
			Body:      "Is the unit still available?",
			CreatedAt: time.Now(),
		},
	}
}

// WithID sets the message ID
func (b *MessageBuilder) WithID(id uint) *MessageBuilder {
	b.message.ID = id
	return b
}

// WithInquiryID sets the owning inquiry
func (b *MessageBuilder) WithInquiryID(inquiryID uint) *MessageBuilder {
	b.message.InquiryID = inquiryID
	return b
}

// FromManager marks the message as sent by the manager
func (b *MessageBuilder) FromManager(managerID uint) *MessageBuilder {
	b.message.SenderID = managerID
	b.message.Sender = models.SenderManager
	return b
}

// WithBody sets the message body
func (b *MessageBuilder) WithBody(body string) *MessageBuilder {
	b.message.Body = body
	return b
}

// WithCreatedAt sets the creation timestamp
func (b *MessageBuilder) WithCreatedAt(t time.Time) *MessageBuilder {
	b.message.CreatedAt = t
	return b
}

// Build returns the constructed Message
func (b *MessageBuilder) Build() *models.Message {
	return &b.message
}

// BuildValue returns the constructed Message as a value (not pointer)
func (b *MessageBuilder) BuildValue() models.Message {
	return b.message
}

// AttachmentBuilder creates test Attachment instances with fluent API
type AttachmentBuilder struct {
	attachment models.Attachment
}

// NewAttachmentBuilder creates a new AttachmentBuilder with sensible defaults
func NewAttachmentBuilder() *AttachmentBuilder {
	return &AttachmentBuilder{
		attachment: models.Attachment{
			ID:         1,
			InquiryID:  1,
			FileName:   "photo.jpg",
			FileType:   "image/jpeg",
			FileSize:   2048,
			FilePath:   "attachments/photo.jpg",
			UploadedBy: 100,
			CreatedAt:  time.Now(),
		},
	}
}

// WithID sets the attachment ID
func (b *AttachmentBuilder) WithID(id uint) *AttachmentBuilder {
	b.attachment.ID = id
	return b
}

// WithInquiryID sets the owning inquiry
func (b *AttachmentBuilder) WithInquiryID(inquiryID uint) *AttachmentBuilder {
	b.attachment.InquiryID = inquiryID
	return b
}

// WithFileName sets the display file name
func (b *AttachmentBuilder) WithFileName(name string) *AttachmentBuilder {
	b.attachment.FileName = name
	return b
}

// WithCreatedAt sets the upload timestamp
func (b *AttachmentBuilder) WithCreatedAt(t time.Time) *AttachmentBuilder {
	b.attachment.CreatedAt = t
	return b
}

// Build returns the constructed Attachment
func (b *AttachmentBuilder) Build() *models.Attachment {
	return &b.attachment
}

// BuildValue returns the constructed Attachment as a value (not pointer)
func (b *AttachmentBuilder) BuildValue() models.Attachment {
	return b.attachment
}

// LegacyFragment is one timestamped fragment of a legacy blob
type LegacyFragment struct {
	At   time.Time
	Text string
}

// LegacyBody joins text fragments into the stored blob shape. The first
// fragment has no marker; each later fragment is preceded by a marker
// carrying its timestamp.
func LegacyBody(first string, rest ...LegacyFragment) string {
	body := first
	for _, frag := range rest {
		body += fmt.Sprintf("\n\n--- New Message [%d] ---\n%s", frag.At.UnixMilli(), frag.Text)
	}
	return body
}
