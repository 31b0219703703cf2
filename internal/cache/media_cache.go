package cache

import (
	"sync"
)

// MediaBlob is a downloaded attachment body held for the session.
type MediaBlob struct {
	Data     []byte
	MimeType string
	FileName string
}

// MediaCache holds attachment blobs for the lifetime of one console session
// so the same attachment is never downloaded twice. A blob arriving after the
// session closed is discarded rather than applied to torn-down state.
type MediaCache struct {
	mu     sync.RWMutex
	blobs  map[uint]MediaBlob
	closed bool
}

// NewMediaCache creates an empty session cache.
func NewMediaCache() *MediaCache {
	return &MediaCache{
		blobs: make(map[uint]MediaBlob),
	}
}

// Get returns the cached blob for an attachment, if present.
func (c *MediaCache) Get(attachmentID uint) (MediaBlob, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	blob, ok := c.blobs[attachmentID]
	return blob, ok
}

// Put stores a fetched blob. It returns false when the session has already
// closed; the caller must treat the blob as dropped.
func (c *MediaCache) Put(attachmentID uint, blob MediaBlob) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	c.blobs[attachmentID] = blob
	return true
}

// Close marks the session as ended and releases all cached blobs. Further
// puts are rejected.
func (c *MediaCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.blobs = nil
}

// Closed reports whether the session has ended.
func (c *MediaCache) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}
