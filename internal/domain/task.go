package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// TaskStatus - статус задачи
type TaskStatus string

const (
	StatusToDo       TaskStatus = "To Do"
	StatusInProgress TaskStatus = "In Progress"
	StatusDone       TaskStatus = "Done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

// TaskPriority - приоритет задачи
type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// DueDateLayout is how read endpoints render due dates ("Mon Jan 01 2024").
const DueDateLayout = "Mon Jan 02 2006"

// InvalidDate is rendered for a task whose due date could not be parsed.
const InvalidDate = "Invalid Date"

// Task is the stored record. A zero DueDate means the submitted date could not be parsed.
type Task struct {
	ID          string       `db:"id" bson:"_id" json:"id"`
	Title       string       `db:"title" bson:"title" json:"title"`
	Description string       `db:"description" bson:"description" json:"description"`
	Status      TaskStatus   `db:"status" bson:"status" json:"status"`
	Priority    TaskPriority `db:"priority" bson:"priority" json:"priority"`
	DueDate     time.Time    `db:"due_date" bson:"due_date" json:"-"`
	UserID      string       `db:"user_id" bson:"user_id" json:"user"`
	CreatedAt   time.Time    `db:"created_at" bson:"created_at" json:"-"`
}

// MarshalJSON renders due_date as RFC3339, or null when the date is unknown.
func (t Task) MarshalJSON() ([]byte, error) {
	type plain Task
	var due *string
	if !t.DueDate.IsZero() {
		s := t.DueDate.UTC().Format(time.RFC3339)
		due = &s
	}
	return json.Marshal(struct {
		plain
		DueDate *string `json:"due_date"`
	}{plain: plain(t), DueDate: due})
}

// TaskView is the read-side representation of a task with its owner populated.
type TaskView struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     string       `json:"due_date"`
	User        *UserSummary `json:"user"`
}

func NewTaskView(t *Task, owner *User) *TaskView {
	return &TaskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     FormatDueDate(t.DueDate),
		User:        owner.Summary(),
	}
}

func FormatDueDate(t time.Time) string {
	if t.IsZero() {
		return InvalidDate
	}
	return t.UTC().Format(DueDateLayout)
}

var dueDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	time.RFC1123,
	time.RFC1123Z,
	DueDateLayout,
}

// ParseDueDate accepts the common ISO-ish shapes. Anything else yields the zero time.
func ParseDueDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
