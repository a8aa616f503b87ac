package realtime

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"channelhub/domain/model"
)

// AlertEvent represents an SSE payload for a freshly raised alert.
type AlertEvent struct {
	Type     string `json:"type"`
	AlertID  string `json:"alert_id"`
	Platform string `json:"platform,omitempty"`
	Severity string `json:"severity"`
	Title    string `json:"title"`
	Message  string `json:"message"`
}

// Hub maintains per-user subscribers listening for alert events.
type Hub struct {
	mu    sync.RWMutex
	users map[string]map[chan AlertEvent]struct{}
}

func NewAlertHub() *Hub {
	return &Hub{users: make(map[string]map[chan AlertEvent]struct{})}
}

// Serve registers an SSE stream for the authenticated user (user_id set by middleware).
func (h *Hub) Serve(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.Status(http.StatusUnauthorized)
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // disable nginx buffering

	ch := make(chan AlertEvent, 8)
	h.addSubscriber(userID, ch)
	defer h.removeSubscriber(userID, ch)

	// Initial comment to keep connection open
	c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	notify := c.Writer.CloseNotify()
	for {
		select {
		case <-notify:
			return
		case evt := <-ch:
			data, _ := json.Marshal(evt)
			_, _ = c.Writer.Write([]byte("event: alert\n"))
			_, _ = c.Writer.Write([]byte("data: "))
			_, _ = c.Writer.Write(data)
			_, _ = c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}

func (h *Hub) addSubscriber(userID string, ch chan AlertEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[chan AlertEvent]struct{})
	}
	h.users[userID][ch] = struct{}{}
}

func (h *Hub) removeSubscriber(userID string, ch chan AlertEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.users[userID]; subs != nil {
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(h.users, userID)
		}
	}
}

// BroadcastAlert broadcasts to all subscribers of the alert's owner.
func (h *Hub) BroadcastAlert(alert *model.Alert) {
	if alert == nil {
		return
	}
	evt := AlertEvent{
		Type:     "alert",
		AlertID:  alert.ID.Hex(),
		Platform: alert.Platform,
		Severity: alert.Severity,
		Title:    alert.Title,
		Message:  alert.Message,
	}
	h.mu.RLock()
	subs := h.users[alert.UserID]
	for ch := range subs {
		select { // non-blocking
		case ch <- evt:
		default:
		}
	}
	h.mu.RUnlock()
}
