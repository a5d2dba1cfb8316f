package kv

import (
	"errors"
	"strings"
	"testing"

	"github.com/taskvault/backend/domain"
)

func TestTaskKey(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		taskID     string
		want       string
		wantErr    bool
		wantArgErr bool
	}{
		{name: "simple", userID: "u1", taskID: "t1", want: "user_u1_task_t1"},
		{name: "uuid ids", userID: "3f2a", taskID: "9b7c", want: "user_3f2a_task_9b7c"},
		{name: "empty user", userID: "", taskID: "t1", wantErr: true, wantArgErr: true},
		{name: "empty task", userID: "u1", taskID: "", wantErr: true, wantArgErr: true},
		{name: "both empty", userID: "", taskID: "", wantErr: true, wantArgErr: true},
		{name: "separator in user id", userID: "u_1", taskID: "t1", wantErr: true},
		{name: "task infix in user id", userID: "a_task_b", taskID: "t1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TaskKey(tt.userID, tt.taskID)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("TaskKey(%q, %q) = %q, want error", tt.userID, tt.taskID, got)
				}
				if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
					t.Errorf("error code = %v, want INVALID", err)
				}
				if tt.wantArgErr && !errors.Is(err, domain.ErrInvalidArgument) {
					t.Errorf("error = %v, want ErrInvalidArgument for empty ids", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("TaskKey failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("TaskKey = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTaskPrefixIsStrictPrefixOfKey(t *testing.T) {
	prefix, err := TaskPrefix("u1")
	if err != nil {
		t.Fatalf("TaskPrefix failed: %v", err)
	}
	key, err := TaskKey("u1", "t1")
	if err != nil {
		t.Fatalf("TaskKey failed: %v", err)
	}
	if !strings.HasPrefix(key, prefix) || key == prefix {
		t.Errorf("key %q must start with but not equal prefix %q", key, prefix)
	}
}

func TestTaskPrefixCannotCrossUsers(t *testing.T) {
	// "ab"+"c" and "a"+"bc" overlap textually; keys must still differ and
	// neither user's prefix may match the other's keys.
	keyAB, err := TaskKey("ab", "c")
	if err != nil {
		t.Fatalf("TaskKey failed: %v", err)
	}
	keyA, err := TaskKey("a", "bc")
	if err != nil {
		t.Fatalf("TaskKey failed: %v", err)
	}
	if keyAB == keyA {
		t.Fatalf("distinct (user, task) pairs collided on key %q", keyAB)
	}

	prefixA, _ := TaskPrefix("a")
	if strings.HasPrefix(keyAB, prefixA) {
		t.Errorf("prefix %q of user a matches key %q of user ab", prefixA, keyAB)
	}
	prefixAB, _ := TaskPrefix("ab")
	if strings.HasPrefix(keyA, prefixAB) {
		t.Errorf("prefix %q of user ab matches key %q of user a", prefixAB, keyA)
	}
}

func TestTaskPrefixEmptyUser(t *testing.T) {
	if _, err := TaskPrefix(""); err == nil {
		t.Fatal("expected error for empty user id")
	}
}
