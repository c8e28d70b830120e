package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/taskforge/taskforge/internal/application"
	"github.com/taskforge/taskforge/internal/domain/entity"
	"github.com/taskforge/taskforge/internal/domain/repository"
	"github.com/taskforge/taskforge/internal/interface/middleware"
	"github.com/taskforge/taskforge/pkg/response"
	"github.com/taskforge/taskforge/pkg/validation"
)

type TaskHandler struct {
	Svc    *application.TaskService
	Logger *logrus.Logger
}

func NewTaskHandler(svc *application.TaskService, logger *logrus.Logger) *TaskHandler {
	return &TaskHandler{Svc: svc, Logger: logger}
}

type createTaskRequest struct {
	Description string `json:"description" binding:"required"`
	Completed   bool   `json:"completed"`
}

type updateTaskRequest struct {
	Description *string `json:"description" binding:"omitempty,min=1"`
	Completed   *bool   `json:"completed"`
}

var taskAllowList = []string{"description", "completed"}

// sortFields maps API sort field names onto repository sort columns.
var sortFields = map[string]string{
	"description": repository.SortDescription,
	"completed":   repository.SortCompleted,
	"createdAt":   repository.SortCreatedAt,
	"updatedAt":   repository.SortUpdatedAt,
}

const defaultListLimit = 10

func taskJSON(t *entity.Task) gin.H {
	return gin.H{
		"id":          t.ID,
		"description": t.Description,
		"completed":   t.Completed,
		"owner":       t.OwnerID,
		"created_at":  t.CreatedAt,
		"updated_at":  t.UpdatedAt,
	}
}

func tasksJSON(tasks []entity.Task) []gin.H {
	out := make([]gin.H, 0, len(tasks))
	for i := range tasks {
		out = append(out, taskJSON(&tasks[i]))
	}
	return out
}

// Create POST /tasks
func (h *TaskHandler) Create(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	t, err := h.Svc.Create(c.Request.Context(), uid, req.Description, req.Completed)
	if err != nil {
		h.Logger.WithError(err).Error("task create failed")
		response.Fail(c, http.StatusInternalServerError, "failed to create task", nil)
		return
	}
	response.JSON(c, http.StatusCreated, taskJSON(t), "task created", nil)
}

// parseListOptions reads completed/limit/skip/sortBy query params.
// sortBy has the form field:asc or field:desc with exactly one field.
func parseListOptions(c *gin.Context) (repository.ListOptions, map[string]string) {
	opts := repository.ListOptions{Limit: defaultListLimit}

	if v := c.Query("completed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, map[string]string{"completed": "must be a boolean value"}
		}
		opts.Completed = &b
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, map[string]string{"limit": "must be a non-negative integer"}
		}
		opts.Limit = n
	}
	if v := c.Query("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, map[string]string{"skip": "must be a non-negative integer"}
		}
		opts.Skip = n
	}
	if v := c.Query("sortBy"); v != "" {
		parts := strings.SplitN(v, ":", 2)
		col, ok := sortFields[parts[0]]
		if !ok {
			return opts, map[string]string{"sortBy": "unknown sort field"}
		}
		opts.SortBy = col
		if len(parts) == 2 {
			switch parts[1] {
			case "asc":
			case "desc":
				opts.SortDesc = true
			default:
				return opts, map[string]string{"sortBy": "direction must be asc or desc"}
			}
		}
	}
	return opts, nil
}

// List GET /tasks?completed=&limit=&skip=&sortBy=field:asc|desc
func (h *TaskHandler) List(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	opts, details := parseListOptions(c)
	if details != nil {
		response.Fail(c, http.StatusBadRequest, "invalid query", details)
		return
	}
	tasks, err := h.Svc.List(c.Request.Context(), uid, opts)
	if err != nil {
		h.Logger.WithError(err).Error("task list failed")
		response.Fail(c, http.StatusInternalServerError, "failed to list tasks", nil)
		return
	}
	response.JSON(c, http.StatusOK, tasksJSON(tasks), "tasks", gin.H{"count": len(tasks), "limit": opts.Limit, "skip": opts.Skip})
}

// taskID extracts and validates the :id param. A malformed id is reported
// like a missing task.
func taskID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// Get GET /tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	id, ok := taskID(c)
	if !ok {
		response.Fail(c, http.StatusNotFound, "task not found", nil)
		return
	}
	t, err := h.Svc.Get(c.Request.Context(), uid, id)
	if err != nil {
		h.respondTaskErr(c, err)
		return
	}
	response.JSON(c, http.StatusOK, taskJSON(t), "task", nil)
}

// Update PATCH /tasks/:id applies an allow-listed partial update.
func (h *TaskHandler) Update(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	id, ok := taskID(c)
	if !ok {
		response.Fail(c, http.StatusNotFound, "task not found", nil)
		return
	}
	var req updateTaskRequest
	if details, ok := bindPatch(c, &req, taskAllowList...); !ok {
		response.Fail(c, http.StatusBadRequest, "invalid updates", details)
		return
	}
	t, err := h.Svc.Update(c.Request.Context(), uid, id, application.UpdateTaskInput{
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		h.respondTaskErr(c, err)
		return
	}
	response.JSON(c, http.StatusOK, taskJSON(t), "task updated", nil)
}

// Delete DELETE /tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	id, ok := taskID(c)
	if !ok {
		response.Fail(c, http.StatusNotFound, "task not found", nil)
		return
	}
	t, err := h.Svc.Delete(c.Request.Context(), uid, id)
	if err != nil {
		h.respondTaskErr(c, err)
		return
	}
	response.JSON(c, http.StatusOK, taskJSON(t), "task deleted", nil)
}

// Search GET /tasks/search?q= runs the Elasticsearch description search.
func (h *TaskHandler) Search(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.Fail(c, http.StatusBadRequest, "invalid query", map[string]string{"q": "is required"})
		return
	}
	size, _ := strconv.Atoi(c.Query("size"))
	hits, err := h.Svc.Search(c.Request.Context(), uid, q, size)
	if err != nil {
		h.Logger.WithError(err).Error("task search failed")
		response.Fail(c, http.StatusInternalServerError, "failed to search tasks", nil)
		return
	}
	response.JSON(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits)})
}

// respondTaskErr maps service errors: a task that is missing or owned by
// someone else is always a 404, never a 403.
func (h *TaskHandler) respondTaskErr(c *gin.Context, err error) {
	if errors.Is(err, application.ErrTaskNotFound) {
		response.Fail(c, http.StatusNotFound, "task not found", nil)
		return
	}
	h.Logger.WithError(err).Error("task operation failed")
	response.Fail(c, http.StatusInternalServerError, "unexpected error", nil)
}
