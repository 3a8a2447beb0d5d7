package handlers

import (
	"time"

	"taskmanager/internal/domain"
	"taskmanager/internal/service"

	"github.com/gin-gonic/gin"
)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Domain string
	Secure bool
	MaxAge time.Duration
}

type Handler struct {
	Auth   *service.AuthService
	Tasks  *service.TaskService
	Users  *service.UserService
	Cookie CookieConfig
}

func NewHandler(auth *service.AuthService, tasks *service.TaskService, users *service.UserService, cookie CookieConfig) *Handler {
	return &Handler{Auth: auth, Tasks: tasks, Users: users, Cookie: cookie}
}

// fail records err for the error responder and stops the chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// bind decodes the JSON body. A missing or malformed body is Invalid Input.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, domain.InvalidInput(domain.MsgInvalidInput))
		return false
	}
	return true
}

// identity извлекает identity из контекста запроса
func identity(c *gin.Context) domain.Identity {
	id, _ := domain.IdentityFrom(c.Request.Context())
	return id
}
