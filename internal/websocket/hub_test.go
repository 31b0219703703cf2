package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSecureUpgrader_ValidOrigin(t *testing.T) {
	os.Setenv("ALLOWED_ORIGINS", "http://localhost:3000,http://portal.rumahkita.id")
	defer os.Unsetenv("ALLOWED_ORIGINS")

	upgrader := NewSecureUpgrader(nil)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://portal.rumahkita.id")

	assert.True(t, upgrader.CheckOrigin(req))
}

func TestNewSecureUpgrader_InvalidOrigin(t *testing.T) {
	os.Setenv("ALLOWED_ORIGINS", "http://localhost:3000")
	defer os.Unsetenv("ALLOWED_ORIGINS")

	upgrader := NewSecureUpgrader(nil)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://malicious.com")

	assert.False(t, upgrader.CheckOrigin(req))
}

func TestNewSecureUpgrader_EmptyOrigin(t *testing.T) {
	os.Setenv("ALLOWED_ORIGINS", "http://localhost:3000")
	defer os.Unsetenv("ALLOWED_ORIGINS")

	upgrader := NewSecureUpgrader(nil)

	// Same-origin requests have empty Origin header
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)

	assert.True(t, upgrader.CheckOrigin(req))
}

func TestNewSecureUpgrader_DefaultsToLocalhost(t *testing.T) {
	os.Unsetenv("ALLOWED_ORIGINS")

	upgrader := NewSecureUpgrader(nil)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://localhost:3000")

	assert.True(t, upgrader.CheckOrigin(req))
}

func TestNewSecureUpgrader_TrimsAndFiltersEntries(t *testing.T) {
	os.Setenv("ALLOWED_ORIGINS", "  http://localhost:3000 ,, http://portal.rumahkita.id ,")
	defer os.Unsetenv("ALLOWED_ORIGINS")

	upgrader := NewSecureUpgrader(nil)

	tests := []struct {
		origin   string
		expected bool
	}{
		{"http://localhost:3000", true},
		{"http://portal.rumahkita.id", true},
		{"http://other.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			req.Header.Set("Origin", tt.origin)

			assert.Equal(t, tt.expected, upgrader.CheckOrigin(req))
		})
	}
}

func TestNewSecureUpgrader_CaseSensitive(t *testing.T) {
	os.Setenv("ALLOWED_ORIGINS", "http://localhost:3000")
	defer os.Unsetenv("ALLOWED_ORIGINS")

	upgrader := NewSecureUpgrader(nil)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "HTTP://LOCALHOST:3000")

	assert.False(t, upgrader.CheckOrigin(req))
}

func TestDefaultUpgrader_AllowsAll(t *testing.T) {
	upgrader := DefaultUpgrader()

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://anywhere.example")

	assert.True(t, upgrader.CheckOrigin(req))
}

func TestHub_NewHub(t *testing.T) {
	hub := NewHub(nil)

	assert.NotNil(t, hub)
	assert.NotNil(t, hub.clients)
	assert.NotNil(t, hub.subscriptions)
	assert.NotNil(t, hub.register)
	assert.NotNil(t, hub.unregister)
}

func TestHub_BroadcastThreadUpdated_NoSubscribers(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	payload := &ThreadUpdatedPayload{
		InquiryID: 1,
		Status:    "responded",
		UpdatedAt: "2025-06-01T10:00:00Z",
	}

	// Must not panic or block when nobody is listening
	hub.BroadcastThreadUpdated(1, payload)
}

func TestHub_BroadcastThreadUpdated_DeliversToSubscriber(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	client := NewClient(hub, nil, nil)
	hub.Register(client)
	hub.Subscribe(client, 42)

	hub.BroadcastThreadUpdated(42, &ThreadUpdatedPayload{
		InquiryID: 42,
		Status:    "active",
		UpdatedAt: "2025-06-01T10:00:00Z",
	})

	select {
	case data := <-client.send:
		var msg WSMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, MessageTypeThreadUpdated, msg.Type)
		assert.Equal(t, uint(42), msg.InquiryID)
	case <-time.After(time.Second):
		t.Fatal("expected thread_updated to be delivered")
	}
}

func TestHub_BroadcastThreadUpdated_SkipsOtherInquiries(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	client := NewClient(hub, nil, nil)
	hub.Register(client)
	hub.Subscribe(client, 42)

	hub.BroadcastThreadUpdated(99, &ThreadUpdatedPayload{InquiryID: 99})

	select {
	case <-client.send:
		t.Fatal("client subscribed to inquiry 42 must not receive updates for 99")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_UnregisterRemovesSubscriptions(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	client := NewClient(hub, nil, nil)
	hub.Register(client)
	hub.Subscribe(client, 42)
	hub.Unregister(client)
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	_, exists := hub.subscriptions[42]
	hub.mu.RUnlock()

	assert.False(t, exists)
}
