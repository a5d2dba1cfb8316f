package domain

import "testing"

func TestPriorityValid(t *testing.T) {
	tests := []struct {
		name     string
		priority Priority
		want     bool
	}{
		{name: "high", priority: PriorityHigh, want: true},
		{name: "medium", priority: PriorityMedium, want: true},
		{name: "low", priority: PriorityLow, want: true},
		{name: "empty", priority: Priority(""), want: false},
		{name: "unlocalized", priority: Priority("HIGH"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.priority.Valid(); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.priority, got, tt.want)
			}
		})
	}
}

func TestSubtaskIndex(t *testing.T) {
	task := &Task{
		Subtasks: []Subtask{
			{ID: "a"},
			{ID: "b"},
			{ID: "c"},
		},
	}

	if got := task.SubtaskIndex("b"); got != 1 {
		t.Errorf("SubtaskIndex(b) = %d, want 1", got)
	}
	if got := task.SubtaskIndex("missing"); got != -1 {
		t.Errorf("SubtaskIndex(missing) = %d, want -1", got)
	}

	var nilTask *Task
	if got := nilTask.SubtaskIndex("a"); got != -1 {
		t.Errorf("nil task SubtaskIndex = %d, want -1", got)
	}
}

func TestAllSubtasksCompleted(t *testing.T) {
	tests := []struct {
		name string
		task *Task
		want bool
	}{
		{
			name: "no subtasks",
			task: &Task{},
			want: true,
		},
		{
			name: "all done",
			task: &Task{Subtasks: []Subtask{{ID: "a", IsCompleted: true}, {ID: "b", IsCompleted: true}}},
			want: true,
		},
		{
			name: "one pending",
			task: &Task{Subtasks: []Subtask{{ID: "a", IsCompleted: true}, {ID: "b"}}},
			want: false,
		},
		{
			name: "nil task",
			task: nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.AllSubtasksCompleted(); got != tt.want {
				t.Errorf("AllSubtasksCompleted() = %v, want %v", got, tt.want)
			}
		})
	}
}
