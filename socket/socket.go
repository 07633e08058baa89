/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package socket

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/salvavita/salvavita-console/logs"
	"github.com/salvavita/salvavita-console/middleware"
)

const (
	EventPanel    = "panel"
	EventWorkflow = "workflow"
	EventBackend  = "backend"
)

// Greeting returns the events sent to a connection right after upgrade.
type Greeting func(sessionID string) []Event

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WsHandler upgrades the request and keeps the connection registered until
// the browser goes away. Browsers only receive; anything they send is
// ignored.
func WsHandler(greeting Greeting) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := middleware.SessionID(c)

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logs.Log(fmt.Sprintf("[ERROR][WS] WebSocket upgrade failed: %v", err))
			return
		}
		defer conn.Close()

		cc := connManager.AddConnection(conn, sessionID)
		defer connManager.RemoveConnection(conn)

		if greeting != nil {
			for _, event := range greeting(sessionID) {
				payload, err := json.Marshal(event)
				if err != nil {
					continue
				}
				if err := cc.write(payload); err != nil {
					return
				}
			}
		}

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
