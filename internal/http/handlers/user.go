package handlers

import (
	"net/http"

	"taskmanager/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context())
	respond(c, users, err)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var in service.UpdateUserInput
	if !bind(c, &in) {
		return
	}

	u, err := h.Users.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.Users.Delete(c.Request.Context(), identity(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
