package thread

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rumahkita/rumahkita-backend/internal/models"
)

// localIDPrefix marks client-issued message identifiers pending server
// confirmation.
const localIDPrefix = "local-"

// Store holds the reconciled per-inquiry state an open console renders from.
// It is the only writer of that state: optimistic sends go through Append,
// authoritative reloads through Reconcile, and nothing else mutates a thread.
// Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	threads  map[uint]*threadState
	selected uint // 0 = no inquiry open
	window   time.Duration
	logger   *slog.Logger
}

type threadState struct {
	messages    []Message
	attachments []models.Attachment
	timeline    Timeline
}

// NewStore creates a Store using the given correlation window
// (DefaultWindow when non-positive).
func NewStore(window time.Duration, logger *slog.Logger) *Store {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Store{
		threads: make(map[uint]*threadState),
		window:  window,
		logger:  logger,
	}
}

// Select marks an inquiry as the open one, creating empty state for it if
// this is the first time it is opened.
func (s *Store) Select(inquiryID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.threads[inquiryID]; !ok {
		s.threads[inquiryID] = &threadState{}
	}
	s.selected = inquiryID
}

// Selected returns the currently open inquiry, if any.
func (s *Store) Selected() (uint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected, s.selected != 0
}

// Close discards an inquiry's view state. If it was the open one, selection
// is cleared.
func (s *Store) Close(inquiryID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.threads, inquiryID)
	if s.selected == inquiryID {
		s.selected = 0
	}
}

// Append records an optimistic local message: a temporary identifier, the
// current time, always at the tail (it represents "now"). It never blocks on
// the network; the caller fires the send afterwards and reconciles when the
// server answers. A failed send leaves the entry in place; the error is
// surfaced, not rolled back. Known UX gap.
func (s *Store) Append(inquiryID uint, sender models.SenderRole, body string) Message {
	now := time.Now()
	msg := Message{
		ID:          localIDPrefix + uuid.New().String(),
		Sender:      sender,
		Body:        body,
		CreatedAt:   now,
		DisplayTime: now.Format(DisplayTimeFormat),
		Pending:     true,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.threads[inquiryID]
	if !ok {
		st = &threadState{}
		s.threads[inquiryID] = st
	}
	st.messages = append(st.messages, msg)
	st.timeline = Correlate(st.messages, st.attachments, s.window)
	return msg
}

// Reconcile replaces the whole message and attachment state of one inquiry
// with freshly normalized and correlated server data. Optimistic local
// entries whose content the server now represents are discarded; the rest
// are kept at the tail until a later reconcile includes them. Legacy decode
// time is pinned to the record's UpdatedAt, so reconciling the same payload
// twice yields identical state.
func (s *Store) Reconcile(inquiry *models.Inquiry, attachments []models.Attachment) Timeline {
	if inquiry == nil {
		return Timeline{}
	}
	normalized := NormalizeAt(inquiry, inquiry.UpdatedAt)

	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.threads[inquiry.ID]
	if !ok {
		st = &threadState{}
		s.threads[inquiry.ID] = st
	}

	merged := normalized
	for _, m := range st.messages {
		if m.Pending && !represented(m, normalized) {
			merged = append(merged, m)
		}
	}

	st.messages = merged
	st.attachments = make([]models.Attachment, len(attachments))
	copy(st.attachments, attachments)
	st.timeline = Correlate(st.messages, st.attachments, s.window)

	if s.logger != nil {
		s.logger.Debug("thread reconciled",
			slog.Uint64("inquiry_id", uint64(inquiry.ID)),
			slog.Int("messages", len(st.messages)),
			slog.Int("attachments", len(st.attachments)),
		)
	}
	return st.timeline
}

// SelectAfterReconcile re-establishes which inquiry is open once a reload
// lands. A reconcile for inquiry A may resolve after the user switched to
// inquiry B, so the currently selected identifier is checked before anything
// is mutated; a stale completion must not steal selection. Selection is
// retained iff the inquiry still exists after the reload, cleared otherwise.
// Reports whether the inquiry is (still) the selected one.
func (s *Store) SelectAfterReconcile(inquiryID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected != inquiryID {
		return false
	}
	if _, ok := s.threads[inquiryID]; ok {
		return true
	}
	s.selected = 0
	return false
}

// Timeline returns the current correlated view of an inquiry.
func (s *Store) Timeline(inquiryID uint) (Timeline, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.threads[inquiryID]
	if !ok {
		return Timeline{}, false
	}
	return st.timeline, true
}

// represented reports whether a server-confirmed counterpart of an optimistic
// local message exists: same sender, same body, confirmed at or after the
// optimistic append. Matching on content is all that is possible, since the
// send acknowledgement does not return the stored message.
func represented(local Message, server []Message) bool {
	for _, m := range server {
		if m.Sender == local.Sender && m.Body == local.Body && !m.CreatedAt.Before(local.CreatedAt.Truncate(time.Second)) {
			return true
		}
	}
	return false
}
