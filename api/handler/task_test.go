package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/valyala/fasthttp"

	"github.com/taskvault/backend/api/transport"
	"github.com/taskvault/backend/domain"
	"github.com/taskvault/backend/internal/infrastructure/kvstore"
	"github.com/taskvault/backend/repository/kv"
	taskUC "github.com/taskvault/backend/usecase/task"
)

func newTaskHandlerFixture(t *testing.T) *TaskHandler {
	t.Helper()
	repo := kv.NewTaskRepository(kvstore.NewMemory(), nil)
	return NewTaskHandler(taskUC.New(repo, nil), nil, nil)
}

func seedHandlerTask(t *testing.T, h *TaskHandler, userID, title string) *domain.Task {
	t.Helper()
	created, err := h.uc.CreateTask(context.Background(), userID, &domain.Task{Title: title})
	if err != nil {
		t.Fatalf("seeding task failed: %v", err)
	}
	return created
}

func newRequestCtx(userID string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	if userID != "" {
		ctx.Request.Header.Set("X-User-ID", userID)
	}
	return ctx
}

func decodeEnvelope(t *testing.T, ctx *fasthttp.RequestCtx) transport.Envelope {
	t.Helper()
	var envelope transport.Envelope
	if err := json.Unmarshal(ctx.Response.Body(), &envelope); err != nil {
		t.Fatalf("response body is not an envelope: %v", err)
	}
	return envelope
}

func TestDeleteTaskRespondsOKWithEnvelope(t *testing.T) {
	h := newTaskHandlerFixture(t)
	task := seedHandlerTask(t, h, "u1", "groceries")

	ctx := newRequestCtx("u1")
	ctx.SetUserValue("id", task.ID)
	h.DeleteTask(ctx)

	// a body-carrying status: 204 forbids one
	if got := ctx.Response.StatusCode(); got != http.StatusOK {
		t.Fatalf("status = %d, want %d", got, http.StatusOK)
	}
	if envelope := decodeEnvelope(t, ctx); envelope.Status != "success" {
		t.Fatalf("envelope status = %q, want success", envelope.Status)
	}
}

func TestDeleteSubtaskRespondsOKWithEnvelope(t *testing.T) {
	h := newTaskHandlerFixture(t)
	task := seedHandlerTask(t, h, "u1", "chores")
	sub, err := h.uc.AddSubtask(context.Background(), "u1", task.ID, "sweep")
	if err != nil {
		t.Fatalf("AddSubtask failed: %v", err)
	}

	ctx := newRequestCtx("u1")
	ctx.SetUserValue("id", task.ID)
	ctx.SetUserValue("subtaskId", sub.ID)
	h.DeleteSubtask(ctx)

	if got := ctx.Response.StatusCode(); got != http.StatusOK {
		t.Fatalf("status = %d, want %d", got, http.StatusOK)
	}
	if envelope := decodeEnvelope(t, ctx); envelope.Status != "success" {
		t.Fatalf("envelope status = %q, want success", envelope.Status)
	}
}

func TestMissingUserIDRespondsUnauthorized(t *testing.T) {
	h := newTaskHandlerFixture(t)

	ctx := newRequestCtx("")
	h.GetTasks(ctx)

	if got := ctx.Response.StatusCode(); got != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", got, http.StatusUnauthorized)
	}
	if envelope := decodeEnvelope(t, ctx); envelope.Code != string(domain.ErrCodeUnauthorized) {
		t.Fatalf("envelope code = %q, want %q", envelope.Code, domain.ErrCodeUnauthorized)
	}
}

func TestDeleteTaskNotFound(t *testing.T) {
	h := newTaskHandlerFixture(t)

	ctx := newRequestCtx("u1")
	ctx.SetUserValue("id", "ghost")
	h.DeleteTask(ctx)

	if got := ctx.Response.StatusCode(); got != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", got, http.StatusNotFound)
	}
}
