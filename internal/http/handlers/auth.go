package handlers

import (
	"net/http"

	"taskmanager/internal/domain"
	"taskmanager/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Register(c *gin.Context) {
	var in service.RegisterInput
	if !bind(c, &in) {
		return
	}

	u, err := h.Auth.Register(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *Handler) Login(c *gin.Context) {
	var in service.LoginInput
	if !bind(c, &in) {
		return
	}

	u, token, err := h.Auth.Login(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}

	h.setSessionCookie(c, token, int(h.Cookie.MaxAge.Seconds()))
	c.JSON(http.StatusOK, u)
}

// Logout clears the cookie. The token stored on the user record stays valid
// until it expires.
func (h *Handler) Logout(c *gin.Context) {
	token, err := c.Cookie(h.Cookie.Name)
	if err != nil || token == "" {
		c.Status(http.StatusNoContent)
		return
	}

	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"msg": domain.MsgLogoutSuccessfully})
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.Cookie.Name, value, maxAge, "/", h.Cookie.Domain, h.Cookie.Secure, true)
}
