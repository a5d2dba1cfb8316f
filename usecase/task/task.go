package task

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskvault/backend/domain"
	"github.com/taskvault/backend/repository"
)

// UseCase is the screen-facing façade over the task repository. It owns the
// caller-side conventions the repository deliberately does not enforce: a
// non-empty title, a valid priority, and an id assigned before first save.
type UseCase struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		logger: logger,
	}
}

func (uc *UseCase) ListTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	return uc.tasks.List(ctx, userID)
}

func (uc *UseCase) GetTask(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, userID, taskID)
}

func (uc *UseCase) CreateTask(ctx context.Context, userID string, task *domain.Task) (*domain.Task, error) {
	if err := validate(task); err != nil {
		return nil, err
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if err := uc.tasks.Save(ctx, userID, task); err != nil {
		return nil, err
	}
	uc.logger.Debug("task created", zap.String("task_id", task.ID))
	return task, nil
}

// UpdateTask applies an edit to the descriptive fields of an existing task.
// Completion state and subtasks are managed through their dedicated
// operations and survive the edit untouched.
func (uc *UseCase) UpdateTask(ctx context.Context, userID string, task *domain.Task) (*domain.Task, error) {
	if err := validate(task); err != nil {
		return nil, err
	}
	current, err := uc.tasks.GetByID(ctx, userID, task.ID)
	if err != nil {
		return nil, err
	}

	current.Title = task.Title
	current.Description = task.Description
	current.DueDate = task.DueDate
	current.Priority = task.Priority
	current.Tags = task.Tags

	if err := uc.tasks.Save(ctx, userID, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (uc *UseCase) SetTaskCompletion(ctx context.Context, userID, taskID string, completed bool) error {
	return uc.tasks.SetCompletion(ctx, userID, taskID, completed)
}

func (uc *UseCase) DeleteTask(ctx context.Context, userID, taskID string) error {
	return uc.tasks.Delete(ctx, userID, taskID)
}

func (uc *UseCase) AddSubtask(ctx context.Context, userID, taskID, text string) (*domain.Subtask, error) {
	return uc.tasks.AddSubtask(ctx, userID, taskID, text)
}

func (uc *UseCase) UpdateSubtaskText(ctx context.Context, userID, taskID, subtaskID, text string) error {
	return uc.tasks.UpdateSubtaskText(ctx, userID, taskID, subtaskID, text)
}

func (uc *UseCase) SetSubtaskCompletion(ctx context.Context, userID, taskID, subtaskID string, completed bool) error {
	return uc.tasks.SetSubtaskCompletion(ctx, userID, taskID, subtaskID, completed)
}

func (uc *UseCase) DeleteSubtask(ctx context.Context, userID, taskID, subtaskID string) error {
	return uc.tasks.DeleteSubtask(ctx, userID, taskID, subtaskID)
}

func validate(task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	if strings.TrimSpace(task.Title) == "" {
		return domain.NewError(domain.ErrCodeInvalid, "empty title")
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}
	if !task.Priority.Valid() {
		return domain.NewError(domain.ErrCodeInvalid, "unknown priority")
	}
	return nil
}
