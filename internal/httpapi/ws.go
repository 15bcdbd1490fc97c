package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from arbitrary origins; the stream is
	// read-only and carries no credentials.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleLogSocket streams hub events to one WebSocket client. The connection
// closes when the client goes away, falls too far behind, or the server
// shuts down.
func (s *Server) handleLogSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	events, cancel := s.hub.Subscribe()
	defer cancel()

	// Discard client frames, but notice disconnects.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	done := c.Request().Context().Done()
	if s.baseCtx != nil {
		done = s.baseCtx.Done()
	}

	for {
		select {
		case event, open := <-events:
			if !open {
				// Dropped as a slow subscriber.
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if writeErr := conn.WriteJSON(event); writeErr != nil {
				return nil
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if writeErr := conn.WriteMessage(websocket.PingMessage, nil); writeErr != nil {
				return nil
			}
		case <-clientGone:
			return nil
		case <-done:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return nil
		}
	}
}
