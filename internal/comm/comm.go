package comm

import (
	"encoding/json"
	"time"
)

type WSMessage struct {
	Type string          `json:"type"` // e.g. "lock-prompt", "dialog"
	Data json.RawMessage `json:"data"`
}

// UIEvent is pushed to connected operator UIs over the websocket feed.
type UIEvent struct {
	Type      string `json:"type"`     // "lock-prompt", "dismiss-prompt", "dialog", "state"
	AppName   string `json:"app_name"` // guarded app the event belongs to, if any
	Level     string `json:"level"`    // "info", "warning", "error"
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

type RegisterRequest struct {
	AppName string `json:"app_name"`
}

type RemoveRequest struct {
	AppName string `json:"app_name"`
}

type Res struct {
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
}

type ServiceHeartbeat struct {
	ID        string    `json:"id"` // service instance id
	Timestamp time.Time `json:"timestamp"`
}

func NewUIEvent(evType, appName, level, message string) UIEvent {
	return UIEvent{
		Type:      evType,
		AppName:   appName,
		Level:     level,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	}
}
