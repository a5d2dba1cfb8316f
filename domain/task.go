package domain

import "time"

// Priority keeps the literal localized labels the mobile clients already
// persist, so records written by older app builds stay readable.
type Priority string

const (
	PriorityHigh   Priority = "ALTA"
	PriorityMedium Priority = "MÉDIA"
	PriorityLow    Priority = "BAIXA"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Subtask is a checklist item owned exclusively by one Task. It has no
// storage key of its own; it only exists inside its parent's Subtasks slice.
type Subtask struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	IsCompleted bool   `json:"isCompleted"`
}

// Task represents a user-owned unit of work. Field names mirror the JSON
// record format shared with the mobile clients.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     string    `json:"dueDate"`
	Priority    Priority  `json:"priority"`
	Tags        []string  `json:"tags"`
	Subtasks    []Subtask `json:"subtasks"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	NeedsSync   bool      `json:"needsSync"`
	IsDeleted   bool      `json:"isDeleted,omitempty"`
}

// SubtaskIndex returns the position of the subtask with the given id, or -1.
func (t *Task) SubtaskIndex(subtaskID string) int {
	if t == nil {
		return -1
	}
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == subtaskID {
			return i
		}
	}
	return -1
}

// AllSubtasksCompleted reports whether every subtask is done. A task with no
// subtasks counts as all-complete.
func (t *Task) AllSubtasksCompleted() bool {
	if t == nil {
		return false
	}
	for i := range t.Subtasks {
		if !t.Subtasks[i].IsCompleted {
			return false
		}
	}
	return true
}
