package ws

import (
	"net/http"
	"net/url"
	"strings"

	"taskmanager/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// HandleWS upgrades an authenticated request to the task event stream.
// ?mine=1 limits the stream to events about the caller's own tasks.
func HandleWS(hub *Hub, allowedOrigins []string, allowAll bool, log *zap.Logger) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowAll {
				return true
			}
			if _, ok := allowed[origin]; ok {
				return true
			}
			return sameOrigin(origin, r.Host)
		},
	}

	return func(c *gin.Context) {
		id, ok := domain.IdentityFrom(c.Request.Context())
		if !ok {
			_ = c.Error(domain.InvalidInput(domain.MsgInvalidSession))
			c.Abort()
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Debug("ws upgrade failed", zap.Error(err))
			return
		}

		mine := c.Query("mine") == "1" || c.Query("mine") == "true"
		client := NewClient(id, mine, conn, hub, log)
		go client.Run()
	}
}

func sameOrigin(origin, host string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, host)
}
