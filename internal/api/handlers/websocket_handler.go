package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"fleet-dispatch-api-server/internal/auth"
	"fleet-dispatch-api-server/internal/identity"
	"fleet-dispatch-api-server/internal/socket"
)

// Maximum wait for any message from the client before the connection is
// considered dead.
const pongWait = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	Hub      *socket.Hub
	AuthMode string
}

// ServeWs upgrades the request to a WebSocket and parks it on the hub,
// which replays the latest snapshots immediately after registration.
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	// Browsers cannot set headers on WebSocket upgrades, so direct mode
	// carries the JWT as a query parameter. Session mode relies on the
	// upstream cookie and skips the check.
	clientID := uuid.NewString()
	if h.AuthMode == identity.ModeDirect {
		tokenString := c.Query("token")
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
			return
		}

		claims, err := auth.ParseToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		clientID = claims.Username + ":" + clientID
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("Failed to upgrade connection")
		return
	}

	h.Hub.Register(clientID, conn)

	defer func() {
		h.Hub.Unregister(clientID)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	// A PING from the client extends the deadline; gorilla replies with
	// the PONG on its own.
	conn.SetPingHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// The dashboard never sends data frames; the read loop only exists to
	// notice the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).Debug("WebSocket closed unexpectedly")
			}
			break
		}
	}
}
