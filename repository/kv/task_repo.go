package kv

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskvault/backend/domain"
	"github.com/taskvault/backend/internal/infrastructure/kvstore"
	"github.com/taskvault/backend/pkg/clock"
	"github.com/taskvault/backend/repository"
)

type Repository struct {
	store  kvstore.Store
	logger *zap.Logger
	clock  clock.Clock
	newID  func() string
	locks  keyedMutex
}

// Option customizes repository collaborators, mainly for tests.
type Option func(*Repository)

// WithClock overrides the timestamp source.
func WithClock(c clock.Clock) Option {
	return func(r *Repository) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithIDGenerator overrides the subtask id source. The generator is called
// outside the key lock and must be safe for concurrent use.
func WithIDGenerator(fn func() string) Option {
	return func(r *Repository) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// NewTaskRepository returns a task repository backed by the embedded store.
func NewTaskRepository(store kvstore.Store, logger *zap.Logger, opts ...Option) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Repository{
		store:  store,
		logger: logger,
		clock:  clock.System(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) Save(ctx context.Context, userID string, task *domain.Task) error {
	if task == nil || task.ID == "" {
		return domain.NewError(domain.ErrCodeInvalid, "task with empty id")
	}
	key, err := TaskKey(userID, task.ID)
	if err != nil {
		return err
	}

	unlock := r.locks.lock(key)
	defer unlock()

	if task.CreatedAt.IsZero() {
		task.CreatedAt = r.clock.Now()
	}
	return r.put(key, task)
}

func (r *Repository) GetByID(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	key, err := TaskKey(userID, taskID)
	if err != nil {
		return nil, err
	}
	return r.loadLive(key)
}

func (r *Repository) List(ctx context.Context, userID string) ([]domain.Task, error) {
	return r.scan(userID, func(t *domain.Task) bool { return !t.IsDeleted })
}

func (r *Repository) SetCompletion(ctx context.Context, userID, taskID string, completed bool) error {
	return r.mutate(userID, taskID, func(task *domain.Task) error {
		task.IsCompleted = completed
		if completed {
			// completing a task force-completes its whole checklist
			for i := range task.Subtasks {
				task.Subtasks[i].IsCompleted = true
			}
		}
		return nil
	})
}

func (r *Repository) Delete(ctx context.Context, userID, taskID string) error {
	return r.mutate(userID, taskID, func(task *domain.Task) error {
		task.IsDeleted = true
		return nil
	})
}

func (r *Repository) AddSubtask(ctx context.Context, userID, taskID, text string) (*domain.Subtask, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "empty subtask text")
	}

	subtask := domain.Subtask{
		ID:   r.newID(),
		Text: trimmed,
	}
	err := r.mutate(userID, taskID, func(task *domain.Task) error {
		task.Subtasks = append(task.Subtasks, subtask)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &subtask, nil
}

func (r *Repository) UpdateSubtaskText(ctx context.Context, userID, taskID, subtaskID, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return domain.NewError(domain.ErrCodeInvalid, "empty subtask text")
	}

	return r.mutate(userID, taskID, func(task *domain.Task) error {
		idx := task.SubtaskIndex(subtaskID)
		if idx < 0 {
			return domain.ErrSubtaskNotFound
		}
		task.Subtasks[idx].Text = trimmed
		return nil
	})
}

func (r *Repository) SetSubtaskCompletion(ctx context.Context, userID, taskID, subtaskID string, completed bool) error {
	return r.mutate(userID, taskID, func(task *domain.Task) error {
		idx := task.SubtaskIndex(subtaskID)
		if idx < 0 {
			return domain.ErrSubtaskNotFound
		}
		task.Subtasks[idx].IsCompleted = completed

		// an incomplete subtask forces the parent incomplete; completing
		// the last pending one completes the parent
		if !completed {
			task.IsCompleted = false
		} else if task.AllSubtasksCompleted() {
			task.IsCompleted = true
		}
		return nil
	})
}

func (r *Repository) DeleteSubtask(ctx context.Context, userID, taskID, subtaskID string) error {
	return r.mutate(userID, taskID, func(task *domain.Task) error {
		idx := task.SubtaskIndex(subtaskID)
		if idx < 0 {
			return domain.ErrSubtaskNotFound
		}
		// sibling order preserved; parent completion is NOT re-derived
		// after removal (long-standing client behavior, kept as is)
		task.Subtasks = append(task.Subtasks[:idx], task.Subtasks[idx+1:]...)
		return nil
	})
}

func (r *Repository) ListDirty(ctx context.Context, userID string) ([]domain.Task, error) {
	return r.scan(userID, func(t *domain.Task) bool { return t.NeedsSync })
}

func (r *Repository) MarkSynced(ctx context.Context, userID, taskID string) error {
	key, err := TaskKey(userID, taskID)
	if err != nil {
		return err
	}

	unlock := r.locks.lock(key)
	defer unlock()

	// soft-deleted records stay acknowledgeable so deletions propagate
	task, err := r.loadAny(key)
	if err != nil {
		return err
	}
	task.NeedsSync = false

	// direct write: an acknowledgment must not refresh UpdatedAt or
	// re-raise the dirty flag
	payload, err := json.Marshal(task)
	if err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "encode task record", err)
	}
	if err := r.store.Set(key, payload); err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "write task record", err)
	}
	return nil
}

func (r *Repository) PurgeDeleted(ctx context.Context, userID string, olderThan time.Time) (int, error) {
	prefix, err := TaskPrefix(userID)
	if err != nil {
		return 0, err
	}

	keys, err := r.store.Keys()
	if err != nil {
		return 0, domain.WrapError(domain.ErrCodePersistence, "list store keys", err)
	}

	purged := 0
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if r.purgeOne(key, olderThan) {
			purged++
		}
	}
	return purged, nil
}

func (r *Repository) purgeOne(key string, olderThan time.Time) bool {
	unlock := r.locks.lock(key)
	defer unlock()

	task, err := r.loadAny(key)
	if err != nil {
		return false
	}
	if !task.IsDeleted || !task.UpdatedAt.Before(olderThan) {
		return false
	}
	if err := r.store.Delete(key); err != nil {
		r.logger.Warn("failed to purge task record", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// ListDirtyAll enumerates pending records across every user, oldest change
// first, for the sync outbox. Soft-deleted dirty records are included.
func (r *Repository) ListDirtyAll(ctx context.Context) ([]repository.DirtyRecord, error) {
	keys, err := r.store.Keys()
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodePersistence, "list store keys", err)
	}

	records := []repository.DirtyRecord{}
	for _, key := range keys {
		userID, _, ok := SplitTaskKey(key)
		if !ok {
			continue
		}
		task, err := r.loadAny(key)
		if err != nil {
			if !domain.IsNotFound(err) {
				r.logger.Warn("skipping undecodable task record", zap.String("key", key), zap.Error(err))
			}
			continue
		}
		if task.NeedsSync {
			records = append(records, repository.DirtyRecord{UserID: userID, Task: *task})
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Task.UpdatedAt.Before(records[j].Task.UpdatedAt)
	})
	return records, nil
}

// Users lists every user id owning at least one record.
func (r *Repository) Users(ctx context.Context) ([]string, error) {
	keys, err := r.store.Keys()
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodePersistence, "list store keys", err)
	}

	seen := map[string]bool{}
	users := []string{}
	for _, key := range keys {
		userID, _, ok := SplitTaskKey(key)
		if !ok || seen[userID] {
			continue
		}
		seen[userID] = true
		users = append(users, userID)
	}
	sort.Strings(users)
	return users, nil
}

// mutate runs the read-modify-write cycle under the record's key lock. The
// apply callback sees a live (non-deleted) record; its changes are persisted
// through put so UpdatedAt and NeedsSync refresh uniformly.
func (r *Repository) mutate(userID, taskID string, apply func(*domain.Task) error) error {
	key, err := TaskKey(userID, taskID)
	if err != nil {
		return err
	}

	unlock := r.locks.lock(key)
	defer unlock()

	task, err := r.loadLive(key)
	if err != nil {
		return err
	}
	if err := apply(task); err != nil {
		return err
	}
	return r.put(key, task)
}

// put is the sole write path for user mutations.
func (r *Repository) put(key string, task *domain.Task) error {
	task.UpdatedAt = r.clock.Now()
	task.NeedsSync = true

	payload, err := json.Marshal(task)
	if err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "encode task record", err)
	}
	if err := r.store.Set(key, payload); err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "write task record", err)
	}
	return nil
}

// loadAny reads a record regardless of its soft-delete flag. A record that
// fails to decode is a storage fault, not an absence.
func (r *Repository) loadAny(key string) (*domain.Task, error) {
	payload, found, err := r.store.Get(key)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodePersistence, "read task record", err)
	}
	if !found {
		return nil, domain.ErrTaskNotFound
	}
	var task domain.Task
	if err := json.Unmarshal(payload, &task); err != nil {
		return nil, domain.WrapError(domain.ErrCodePersistence, "decode task record", err)
	}
	return &task, nil
}

func (r *Repository) loadLive(key string) (*domain.Task, error) {
	task, err := r.loadAny(key)
	if err != nil {
		return nil, err
	}
	if task.IsDeleted {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

// scan collects the user's records passing the filter, newest first.
func (r *Repository) scan(userID string, keep func(*domain.Task) bool) ([]domain.Task, error) {
	tasks := []domain.Task{}

	prefix, err := TaskPrefix(userID)
	if err != nil {
		return tasks, err
	}

	keys, err := r.store.Keys()
	if err != nil {
		return tasks, domain.WrapError(domain.ErrCodePersistence, "list store keys", err)
	}

	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		payload, found, err := r.store.Get(key)
		if err != nil {
			return tasks, domain.WrapError(domain.ErrCodePersistence, "read task record", err)
		}
		if !found {
			continue
		}
		var task domain.Task
		if err := json.Unmarshal(payload, &task); err != nil {
			r.logger.Warn("skipping undecodable task record", zap.String("key", key), zap.Error(err))
			continue
		}
		if keep(&task) {
			tasks = append(tasks, task)
		}
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// keyedMutex serializes read-modify-write cycles per storage key so two
// concurrent mutations of the same record cannot clobber each other.
// Disjoint keys proceed without coordination.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}

var _ repository.TaskRepository = (*Repository)(nil)
