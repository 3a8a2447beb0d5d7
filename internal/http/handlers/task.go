package handlers

import (
	"net/http"

	"taskmanager/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateTask(c *gin.Context) {
	var in service.TaskInput
	if !bind(c, &in) {
		return
	}

	t, err := h.Tasks.Create(c.Request.Context(), identity(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) UpdateTask(c *gin.Context) {
	var in service.TaskInput
	if !bind(c, &in) {
		return
	}

	t, err := h.Tasks.Update(c.Request.Context(), identity(c), c.Param("task_id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) GetTasks(c *gin.Context) {
	tasks, err := h.Tasks.List(c.Request.Context())
	respond(c, tasks, err)
}

func (h *Handler) GetTaskByID(c *gin.Context) {
	v, err := h.Tasks.GetByID(c.Request.Context(), c.Param("task_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) GetTasksByUser(c *gin.Context) {
	tasks, err := h.Tasks.ListByUser(c.Request.Context(), c.Param("user_id"))
	respond(c, tasks, err)
}

func (h *Handler) GetTasksByStatus(c *gin.Context) {
	tasks, err := h.Tasks.ListByStatus(c.Request.Context(), c.Query("status"))
	respond(c, tasks, err)
}

func (h *Handler) GetTasksByPriority(c *gin.Context) {
	tasks, err := h.Tasks.ListByPriority(c.Request.Context(), c.Query("priority"))
	respond(c, tasks, err)
}

func (h *Handler) GetTasksByDate(c *gin.Context) {
	tasks, err := h.Tasks.ListByDueDate(c.Request.Context())
	respond(c, tasks, err)
}

// respond writes a 200 list or records the error.
func respond[T any](c *gin.Context, items []T, err error) {
	if err != nil {
		fail(c, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, items)
}
