package usecase

import (
	"context"

	"github.com/taskvault/backend/domain"
)

// TaskSyncer pushes a locally mutated record to the remote account backend.
// Implementations live outside this module; the outbox only enumerates dirty
// records and acknowledges the ones a syncer accepted.
type TaskSyncer interface {
	SyncTask(ctx context.Context, userID string, task *domain.Task) error
}
