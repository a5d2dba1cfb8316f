package transport

// TaskRequest carries the caller-owned fields of a task. Completion state
// and subtasks travel through their dedicated endpoints.
type TaskRequest struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     string   `json:"dueDate"`
	Priority    string   `json:"priority"`
	Tags        []string `json:"tags"`
}

type CompletionRequest struct {
	IsCompleted bool `json:"isCompleted"`
}

type SubtaskRequest struct {
	Text string `json:"text"`
}

type SubtaskCompletionRequest struct {
	IsCompleted bool `json:"isCompleted"`
}

type AuthLoginRequest struct {
	UserID string `json:"user_id"`
	TTL    int    `json:"ttl_seconds"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
	TTL       int    `json:"ttl_seconds"`
}
