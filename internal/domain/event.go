package domain

import "time"

// EventType - тип события
type EventType string

const (
	EventTaskCreated EventType = "task.created"
	EventTaskUpdated EventType = "task.updated"
	EventUserDeleted EventType = "user.deleted"
)

// Event is what the task service announces to subscribers after a write.
type Event struct {
	Type    EventType `json:"type"`
	Task    *TaskView `json:"task,omitempty"`
	UserID  string    `json:"user_id,omitempty"`
	ActorID string    `json:"actor_id"`
	At      time.Time `json:"at"`
}
