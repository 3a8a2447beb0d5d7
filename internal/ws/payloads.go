package ws

import "taskmanager/internal/domain"

// client → server
type InboundMessage struct {
	Type string `json:"type"`
}

// server → client
type ReadyPayload struct {
	Type     string `json:"type"`
	UserID   string `json:"user_id"`
	MineOnly bool   `json:"mine_only"`
}

type EventPayload struct {
	Type  string       `json:"type"`
	Event domain.Event `json:"event"`
}

type ErrorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
