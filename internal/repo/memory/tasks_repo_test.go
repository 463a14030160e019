package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/vedang-raul/taskhub/internal/domain/task"
	"github.com/vedang-raul/taskhub/internal/repo/memory"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestTasksRepoPartialUpdate(t *testing.T) {
	repo := memory.NewTasksRepo()
	ctx := context.Background()

	created, err := repo.Create(ctx, task.CreateTaskRequest{
		Title:       "Write report",
		Description: "Quarterly numbers",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// a patch assigning only completed must leave the other fields alone
	updated, err := repo.Update(ctx, created.ID, task.UpdateTaskRequest{
		Completed: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if !updated.Completed {
		t.Error("completed not applied")
	}

	if updated.Title != "Write report" || updated.Description != "Quarterly numbers" {
		t.Errorf("absent fields were touched: %+v", updated)
	}

	// and the reverse: a title-only patch leaves completed alone
	updated, err = repo.Update(ctx, created.ID, task.UpdateTaskRequest{
		Title: strPtr("Write the report"),
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if updated.Title != "Write the report" {
		t.Errorf("got title %q", updated.Title)
	}

	if !updated.Completed {
		t.Error("completed flag lost on unrelated patch")
	}
}

func TestTasksRepoUpdateNotFound(t *testing.T) {
	repo := memory.NewTasksRepo()

	_, err := repo.Update(context.Background(), "7b2d39a2-96c3-4f0e-8f61-111111111111", task.UpdateTaskRequest{
		Completed: boolPtr(true),
	})

	if !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestTasksRepoDelete(t *testing.T) {
	repo := memory.NewTasksRepo()
	ctx := context.Background()

	created, err := repo.Create(ctx, task.CreateTaskRequest{Title: "abc", Description: "d"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if err := repo.Delete(ctx, created.ID); !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestUsersRepoDuplicateEmail(t *testing.T) {
	repo := memory.NewUsersRepo()
	ctx := context.Background()

	_, err := repo.Create(ctx, "alice", "alice@example.com", "hash", "user")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = repo.Create(ctx, "alice2", "alice@example.com", "hash2", "user")

	if err == nil {
		t.Fatal("duplicate email accepted")
	}
}
