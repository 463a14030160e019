package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vedang-raul/taskhub/internal/cache"
	"github.com/vedang-raul/taskhub/internal/config"
	"github.com/vedang-raul/taskhub/internal/domain/task"
	"github.com/vedang-raul/taskhub/internal/domain/user"
	"github.com/vedang-raul/taskhub/internal/http/middlewares"
)

type TaskStore interface {
	Create(ctx context.Context, req task.CreateTaskRequest) (task.Task, error)
	List(ctx context.Context) ([]task.Task, error)
	Update(ctx context.Context, id string, patch task.UpdateTaskRequest) (task.Task, error)
	Delete(ctx context.Context, id string) error
}

const taskListKey = "tasks:all"

type TasksHandler struct {
	repo    TaskStore
	listing *cache.Cache[[]task.Task]
}

func NewTasksHandler(repo TaskStore, listing *cache.Cache[[]task.Task]) *TasksHandler {
	return &TasksHandler{repo: repo, listing: listing}
}

// CreateTask is admin-only (enforced on the route).
func (h *TasksHandler) CreateTask(ctx *gin.Context) {
	var req task.CreateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	t, err := h.repo.Create(cctx, req)

	if err != nil {
		RespondInternal(ctx, "Could not create task")
		return
	}

	h.listing.Delete(taskListKey)

	ctx.JSON(http.StatusCreated, t)
}

// ListTasks returns every task to any authenticated caller; there is no
// ownership scoping.
func (h *TasksHandler) ListTasks(ctx *gin.Context) {
	if tasks, ok := h.listing.Get(taskListKey); ok {
		ctx.JSON(http.StatusOK, gin.H{
			"items": tasks,
			"count": len(tasks),
		})
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	tasks, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list tasks")
		return
	}

	h.listing.Set(taskListKey, tasks)

	ctx.JSON(http.StatusOK, gin.H{
		"items": tasks,
		"count": len(tasks),
	})
}

// UpdateTask applies a sparse patch. Non-admins may only flip the completed
// flag: a patch that assigns title or description anywhere is rejected whole,
// nothing is applied.
func (h *TasksHandler) UpdateTask(ctx *gin.Context) {
	id := ctx.Param("id")

	if !isWellFormedID(id) {
		RespondBadRequest(ctx, "invalid_id", "task id must be a valid UUID", nil)
		return
	}

	var patch task.UpdateTaskRequest

	if !BindJSON(ctx, &patch) {
		return
	}

	role, _ := middlewares.RoleFromContext(ctx)

	if role != user.RoleAdmin && patch.TouchesAdminFields() {
		RespondForbidden(ctx, "You can only update the completion status of a task")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	t, err := h.repo.Update(cctx, id, patch)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found")
			return
		}

		RespondInternal(ctx, "Could not update task")
		return
	}

	h.listing.Delete(taskListKey)

	ctx.JSON(http.StatusOK, t)
}

// DeleteTask is admin-only (enforced on the route).
func (h *TasksHandler) DeleteTask(ctx *gin.Context) {
	id := ctx.Param("id")

	if !isWellFormedID(id) {
		RespondBadRequest(ctx, "invalid_id", "task id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found")
			return
		}

		RespondInternal(ctx, "Could not delete task")
		return
	}

	h.listing.Delete(taskListKey)

	ctx.Status(http.StatusNoContent)
}
