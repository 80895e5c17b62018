package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/lumiskin/skincare-backend/internal/middleware"
	ws "github.com/lumiskin/skincare-backend/internal/websocket"
)

// WebSocketController upgrades authenticated requests into hub sessions
type WebSocketController struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketController accepts upgrades from the given origins. An empty
// list or "*" allows any origin.
func NewWebSocketController(hub *ws.Hub, allowedOrigins []string) *WebSocketController {
	origins := make(map[string]bool, len(allowedOrigins))
	allowAll := len(allowedOrigins) == 0
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		origins[o] = true
	}

	return &WebSocketController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAll || origin == "" || origins[origin]
			},
		},
	}
}

// Connect opens a realtime session. Token comes from ?token= since browsers
// cannot set headers on websocket requests.
// GET /ws
func (ctrl *WebSocketController) Connect(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err, map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	client := ws.NewClient(ctrl.hub, &ws.Conn{Conn: conn}, userID, currentRole(c).IsBackoffice())
	ctrl.hub.Register(client)

	go client.StreamEvents()
	go client.ReceiveFrames()

	log.Info("WebSocket connection established", map[string]interface{}{
		"user_id": userID,
	})
}
