package repository

import (
	"context"
	"time"

	"github.com/taskvault/backend/domain"
)

// TaskRepository is the durable contract over per-user Task records. Absent
// records surface as NOT_FOUND-coded domain errors; storage malfunctions
// surface as PERSISTENCE-coded errors so callers can tell the two apart.
type TaskRepository interface {
	// Save upserts the full record, refreshing UpdatedAt and raising
	// NeedsSync. It is the sole write primitive; all mutations funnel
	// through it.
	Save(ctx context.Context, userID string, task *domain.Task) error

	// GetByID loads a live record. Soft-deleted records are invisible.
	GetByID(ctx context.Context, userID, taskID string) (*domain.Task, error)

	// List returns every live record of the user, newest first by CreatedAt.
	// Never returns nil; corrupt records are skipped and logged.
	List(ctx context.Context, userID string) ([]domain.Task, error)

	// SetCompletion flips the task flag. Completing a task force-completes
	// every subtask; un-completing leaves subtasks untouched.
	SetCompletion(ctx context.Context, userID, taskID string, completed bool) error

	// Delete soft-deletes the record. Terminal: nothing un-deletes.
	Delete(ctx context.Context, userID, taskID string) error

	// AddSubtask appends a checklist item with the trimmed text.
	AddSubtask(ctx context.Context, userID, taskID, text string) (*domain.Subtask, error)

	// UpdateSubtaskText replaces a subtask's text in place.
	UpdateSubtaskText(ctx context.Context, userID, taskID, subtaskID, text string) error

	// SetSubtaskCompletion flips one subtask flag and re-derives the parent:
	// any incomplete subtask forces the parent incomplete, and completing
	// the last pending subtask completes the parent.
	SetSubtaskCompletion(ctx context.Context, userID, taskID, subtaskID string, completed bool) error

	// DeleteSubtask removes the checklist item, preserving sibling order.
	DeleteSubtask(ctx context.Context, userID, taskID, subtaskID string) error

	// ListDirty returns records still waiting on the sync collaborator,
	// including soft-deleted ones so deletions propagate.
	ListDirty(ctx context.Context, userID string) ([]domain.Task, error)

	// MarkSynced clears NeedsSync without touching UpdatedAt. It is the
	// sync collaborator's acknowledgment, not a user mutation.
	MarkSynced(ctx context.Context, userID, taskID string) error

	// PurgeDeleted physically removes records soft-deleted before the
	// cutoff and returns how many were reclaimed.
	PurgeDeleted(ctx context.Context, userID string, olderThan time.Time) (int, error)
}

// DirtyRecord pairs a pending record with its owner for the sync outbox.
type DirtyRecord struct {
	UserID string
	Task   domain.Task
}
