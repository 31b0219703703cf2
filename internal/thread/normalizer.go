package thread

import (
	"fmt"
	"time"

	"github.com/rumahkita/rumahkita-backend/internal/models"
)

// DisplayTimeFormat is the human-readable timestamp attached to every
// normalized message.
const DisplayTimeFormat = "2 Jan 2006 15:04"

// Message is one canonical conversation entry, independent of which storage
// shape it came from. IDs are strings because optimistic local entries carry
// a client-issued identifier until a reconcile replaces them with the
// server-issued row.
type Message struct {
	ID          string              `json:"id"`
	Sender      models.SenderRole   `json:"sender"`
	Body        string              `json:"body"`
	CreatedAt   time.Time           `json:"created_at"`
	DisplayTime string              `json:"display_time"`
	// Pending marks an optimistic local entry not yet confirmed by the server.
	Pending bool `json:"pending,omitempty"`
	// Attachments claimed by this message; derived by the correlator,
	// never persisted.
	Attachments []models.Attachment `json:"attachments,omitempty"`
}

// Normalize turns a raw inquiry record into its canonical ordered message
// list. The structured message list is preferred when present; otherwise the
// legacy blob is decoded. Source order is assumed chronological and is never
// re-sorted; only missing timestamps use the decode time as a tie-break.
func Normalize(inquiry *models.Inquiry) []Message {
	return NormalizeAt(inquiry, time.Now())
}

// NormalizeAt is Normalize with a pinned decode time for legacy fragments
// that carry no timestamp of their own.
func NormalizeAt(inquiry *models.Inquiry, decodeTime time.Time) []Message {
	if inquiry == nil {
		return nil
	}

	if inquiry.HasStructuredMessages() {
		out := make([]Message, 0, len(inquiry.Messages))
		for _, m := range inquiry.Messages {
			createdAt := m.CreatedAt
			if createdAt.IsZero() {
				createdAt = decodeTime
			}
			out = append(out, Message{
				ID:          fmt.Sprintf("%d", m.ID),
				Sender:      senderOf(&m, inquiry),
				Body:        m.Body,
				CreatedAt:   createdAt,
				DisplayTime: createdAt.Format(DisplayTimeFormat),
			})
		}
		return out
	}

	// Legacy blobs only ever recorded the tenant's side; manager replies of
	// that era went through a channel this system does not model. Every
	// fragment is therefore attributed to the tenant. Accepted limitation,
	// not one to silently correct.
	fragments := DecodeAt(inquiry.LegacyBody, decodeTime)
	out := make([]Message, 0, len(fragments))
	for i, frag := range fragments {
		out = append(out, Message{
			ID:          fmt.Sprintf("legacy-%d-%d", inquiry.ID, i),
			Sender:      models.SenderTenant,
			Body:        frag.Text,
			CreatedAt:   frag.Timestamp,
			DisplayTime: frag.Timestamp.Format(DisplayTimeFormat),
		})
	}
	return out
}

// senderOf resolves the sender role of a structured message, preferring the
// explicit field and falling back to comparing the sender against the
// inquiry's manager.
func senderOf(m *models.Message, inquiry *models.Inquiry) models.SenderRole {
	if m.Sender != "" {
		return m.Sender
	}
	if m.SenderID == inquiry.ManagerID {
		return models.SenderManager
	}
	return models.SenderTenant
}
