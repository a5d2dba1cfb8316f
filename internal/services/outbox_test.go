package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taskvault/backend/domain"
	"github.com/taskvault/backend/internal/infrastructure/kvstore"
	"github.com/taskvault/backend/repository/kv"
)

type recordingSyncer struct {
	synced []string
	fail   map[string]bool
}

func (s *recordingSyncer) SyncTask(ctx context.Context, userID string, task *domain.Task) error {
	if s.fail[task.ID] {
		return errors.New("remote rejected")
	}
	s.synced = append(s.synced, task.ID)
	return nil
}

type alwaysOnline struct{}

func (alwaysOnline) IsOnline() bool { return true }

type alwaysOffline struct{}

func (alwaysOffline) IsOnline() bool { return false }

func newOutboxFixture(t *testing.T, syncer *recordingSyncer, health ConnectionHealth) (*SyncOutbox, *kv.Repository) {
	t.Helper()
	repo := kv.NewTaskRepository(kvstore.NewMemory(), nil)
	ob := NewSyncOutbox(repo, syncer, health, nil, OutboxConfig{
		Interval:  time.Minute,
		BatchSize: 10,
	})
	return ob, repo
}

func seed(t *testing.T, repo *kv.Repository, userID, taskID string) {
	t.Helper()
	err := repo.Save(context.Background(), userID, &domain.Task{ID: taskID, Title: taskID})
	if err != nil {
		t.Fatalf("seed save failed: %v", err)
	}
}

func TestDrainAcknowledgesSyncedRecords(t *testing.T) {
	syncer := &recordingSyncer{}
	ob, repo := newOutboxFixture(t, syncer, alwaysOnline{})
	ctx := context.Background()

	seed(t, repo, "u1", "t1")
	seed(t, repo, "u2", "t2")

	if err := ob.Drain(ctx); err != nil {
		t.Fatalf("Drain failed: %v", err)
	}
	if len(syncer.synced) != 2 {
		t.Fatalf("synced %v, want both records", syncer.synced)
	}

	dirty, err := repo.ListDirtyAll(ctx)
	if err != nil {
		t.Fatalf("ListDirtyAll failed: %v", err)
	}
	if len(dirty) != 0 {
		t.Errorf("records still dirty after drain: %+v", dirty)
	}
}

func TestDrainKeepsRejectedRecordsDirty(t *testing.T) {
	syncer := &recordingSyncer{fail: map[string]bool{"bad": true}}
	ob, repo := newOutboxFixture(t, syncer, alwaysOnline{})
	ctx := context.Background()

	seed(t, repo, "u1", "good")
	seed(t, repo, "u1", "bad")

	if err := ob.Drain(ctx); err != nil {
		t.Fatalf("Drain failed: %v", err)
	}

	dirty, err := repo.ListDirtyAll(ctx)
	if err != nil {
		t.Fatalf("ListDirtyAll failed: %v", err)
	}
	if len(dirty) != 1 || dirty[0].Task.ID != "bad" {
		t.Errorf("dirty = %+v, want only the rejected record", dirty)
	}
}

func TestDrainSkipsWhileOffline(t *testing.T) {
	syncer := &recordingSyncer{}
	ob, repo := newOutboxFixture(t, syncer, alwaysOffline{})
	ctx := context.Background()

	seed(t, repo, "u1", "t1")

	if err := ob.Drain(ctx); err != nil {
		t.Fatalf("Drain failed: %v", err)
	}
	if len(syncer.synced) != 0 {
		t.Errorf("synced %v while offline", syncer.synced)
	}
}

func TestDrainWithoutSyncerIsNoop(t *testing.T) {
	repo := kv.NewTaskRepository(kvstore.NewMemory(), nil)
	ob := NewSyncOutbox(repo, nil, alwaysOnline{}, nil, OutboxConfig{})

	seed(t, repo, "u1", "t1")
	if err := ob.Drain(context.Background()); err != nil {
		t.Fatalf("Drain failed: %v", err)
	}

	dirty, _ := repo.ListDirtyAll(context.Background())
	if len(dirty) != 1 {
		t.Errorf("record lost without a syncer: %+v", dirty)
	}
}

func TestPurgeReclaimsAcrossUsers(t *testing.T) {
	syncer := &recordingSyncer{}
	ob, repo := newOutboxFixture(t, syncer, alwaysOnline{})
	ctx := context.Background()

	seed(t, repo, "u1", "t1")
	seed(t, repo, "u2", "t2")
	if err := repo.Delete(ctx, "u1", "t1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := repo.Delete(ctx, "u2", "t2"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// retention defaulted to 30 days; nothing should go yet
	if err := ob.Purge(ctx); err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	users, _ := repo.Users(ctx)
	if len(users) != 2 {
		t.Errorf("records purged before retention elapsed: users=%v", users)
	}

	// shrink the window so both deletions fall past the cutoff
	ob.cfg.PurgeRetention = -time.Second
	if err := ob.Purge(ctx); err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	users, _ = repo.Users(ctx)
	if len(users) != 0 {
		t.Errorf("soft-deleted records survived purge: users=%v", users)
	}
}

func TestNewSyncOutboxRegistersBothSchedules(t *testing.T) {
	ob, _ := newOutboxFixture(t, &recordingSyncer{}, alwaysOnline{})

	// both the drain and the purge job must have been accepted by the
	// scheduler; a rejected schedule would silently disable one of them
	if got := len(ob.cron.Entries()); got != 2 {
		t.Fatalf("scheduler holds %d entries, want drain and purge", got)
	}
}
