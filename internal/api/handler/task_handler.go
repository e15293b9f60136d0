package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tasktracker/task-api/internal/core/ports"
)

// HeaderIdempotencyKey lets clients retry POST /task safely.
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotentReplay is set on responses served from an earlier request.
const HeaderIdempotentReplay = "Idempotent-Replayed"

// TaskHandler handles HTTP requests for task operations.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// List handles GET /task.
//
// @Summary      List all tasks
// @Tags         task
// @Produce      json
// @Success      200  {array}   taskResponse
// @Failure      500  {object}  httperr.Response
// @Router       /task [get]
func (h *TaskHandler) List(c echo.Context) error {
	tasks, err := h.service.ListTasks(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskListResponse(tasks))
}

// Create handles POST /task.
//
// @Summary      Create a task
// @Tags         task
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        Idempotency-Key  header    string             false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      createTaskRequest  true   "Task"
// @Success      201              {object}  taskResponse
// @Failure      400              {object}  httperr.Response
// @Failure      401              {object}  httperr.Response
// @Failure      500              {object}  httperr.Response
// @Router       /task [post]
func (h *TaskHandler) Create(c echo.Context) error {
	if _, _, err := ctxAccount(c); err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.service.CreateTask(c.Request().Context(), ports.CreateTaskInput{
		Description:    req.Description,
		IdempotencyKey: c.Request().Header.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return err
	}

	if result.AlreadyExisted {
		c.Response().Header().Set(HeaderIdempotentReplay, "true")
	}
	return c.JSON(http.StatusCreated, toTaskResponse(result.Task))
}

// Delete handles DELETE /task/:id.
//
// @Summary      Delete a task
// @Tags         task
// @Produce      json
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  deleteTaskResponse
// @Failure      400  {object}  httperr.Response
// @Failure      404  {object}  httperr.Response
// @Failure      500  {object}  httperr.Response
// @Router       /task/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid task id")
	}

	if err := h.service.DeleteTask(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deleteTaskResponse{ID: id})
}
