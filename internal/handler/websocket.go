package handler

import (
	"github.com/labstack/echo/v4"

	ws "github.com/zizouhuweidi/slidequiz/internal/websocket"
)

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	server *ws.Handler
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		server: ws.NewHandler(hub),
	}
}

// HandleWebSocket subscribes the connection to pool events
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	h.server.ServeWS(c.Response(), c.Request())
	return nil
}
