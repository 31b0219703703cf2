package thread

import (
	"sort"
	"time"

	"github.com/rumahkita/rumahkita-backend/internal/models"
)

// DefaultWindow is how long after an attachment finishes uploading a
// subsequent message is presumed to be its caption. The backend records no
// explicit message-attachment link, so proximity is all there is. The value
// is a heuristic with no deeper justification; treat it as tunable, not as a
// domain constant.
const DefaultWindow = 2 * time.Second

// EntryKind discriminates timeline entries.
type EntryKind string

const (
	EntryMessage    EntryKind = "message"
	EntryAttachment EntryKind = "attachment"
)

// Entry is one row of the rendered timeline: a message with its claimed
// attachments, or a standalone attachment no message claimed.
type Entry struct {
	Kind       EntryKind          `json:"kind"`
	Message    *Message           `json:"message,omitempty"`
	Attachment *models.Attachment `json:"attachment,omitempty"`
	At         time.Time          `json:"at"`
}

// Timeline is the correlated view of one inquiry.
type Timeline struct {
	Messages  []Message           `json:"messages"`
	Unmatched []models.Attachment `json:"unmatched,omitempty"`
	Entries   []Entry             `json:"entries"`
}

// Correlate assigns each attachment to the message it accompanies, or leaves
// it unmatched for standalone display.
//
// An attachment matches a message iff
//
//	0 <= message.CreatedAt - attachment.CreatedAt < window
//
// i.e. the message was sent at or after the upload, within the window. The
// window is half-open: a gap of exactly `window` does not match. When several
// messages qualify, the earliest one (smallest positive gap) wins. With no
// messages at all, every attachment is unmatched by definition. A
// non-positive window falls back to DefaultWindow.
//
// Message order is taken as given and never changed; unmatched attachments
// are interleaved by their own CreatedAt.
func Correlate(messages []Message, attachments []models.Attachment, window time.Duration) Timeline {
	if window <= 0 {
		window = DefaultWindow
	}

	out := Timeline{Messages: make([]Message, len(messages))}
	copy(out.Messages, messages)
	for i := range out.Messages {
		out.Messages[i].Attachments = nil
	}

	for _, att := range attachments {
		idx := -1
		for i := range out.Messages {
			gap := out.Messages[i].CreatedAt.Sub(att.CreatedAt)
			if gap < 0 || gap >= window {
				continue
			}
			if idx == -1 || out.Messages[i].CreatedAt.Before(out.Messages[idx].CreatedAt) {
				idx = i
			}
		}
		if idx >= 0 {
			out.Messages[idx].Attachments = append(out.Messages[idx].Attachments, att)
		} else {
			out.Unmatched = append(out.Unmatched, att)
		}
	}

	out.Entries = buildEntries(out.Messages, out.Unmatched)
	return out
}

// buildEntries merges messages (in source order) with unmatched attachments
// (by upload time) into one render sequence.
func buildEntries(messages []Message, unmatched []models.Attachment) []Entry {
	standalone := make([]models.Attachment, len(unmatched))
	copy(standalone, unmatched)
	sort.SliceStable(standalone, func(i, j int) bool {
		return standalone[i].CreatedAt.Before(standalone[j].CreatedAt)
	})

	entries := make([]Entry, 0, len(messages)+len(standalone))
	ai := 0
	for mi := range messages {
		for ai < len(standalone) && !standalone[ai].CreatedAt.After(messages[mi].CreatedAt) {
			att := standalone[ai]
			entries = append(entries, Entry{Kind: EntryAttachment, Attachment: &att, At: att.CreatedAt})
			ai++
		}
		msg := messages[mi]
		entries = append(entries, Entry{Kind: EntryMessage, Message: &msg, At: msg.CreatedAt})
	}
	for ; ai < len(standalone); ai++ {
		att := standalone[ai]
		entries = append(entries, Entry{Kind: EntryAttachment, Attachment: &att, At: att.CreatedAt})
	}
	return entries
}
