/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package socket

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salvavita/salvavita-console/backend"
	"github.com/salvavita/salvavita-console/configuration"
	"github.com/salvavita/salvavita-console/logs"
	"github.com/salvavita/salvavita-console/middleware"
	"github.com/salvavita/salvavita-console/store"
)

func init() {
	logs.Init("salvavita-console-test")
}

func startServer(t *testing.T, sessions chan string) *httptest.Server {
	gin.SetMode(gin.TestMode)
	configuration.Config.SessionSecret = "socket-test-secret"
	middleware.InitSessions()
	store.ConsoleSessionInit(func() *backend.Client {
		return backend.New("http://127.0.0.1:1", 0)
	})

	router := gin.New()
	router.Use(middleware.ConsoleSession())
	router.GET("/ws", WsHandler(func(sessionID string) []Event {
		sessions <- sessionID
		return []Event{{Type: EventBackend, Data: gin.H{"connected": true}}}
	}))

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	var event Event
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func TestGreetingIsSentFirst(t *testing.T) {
	sessions := make(chan string, 1)
	server := startServer(t, sessions)

	conn := dial(t, server)
	event := readEvent(t, conn)

	assert.Equal(t, EventBackend, event.Type)
	assert.NotEmpty(t, <-sessions)
}

func TestBroadcastToSessionReachesOnlyThatSession(t *testing.T) {
	sessions := make(chan string, 2)
	server := startServer(t, sessions)

	first := dial(t, server)
	readEvent(t, first)
	firstID := <-sessions

	second := dial(t, server)
	readEvent(t, second)
	secondID := <-sessions
	require.NotEqual(t, firstID, secondID)

	manager := GetConnectionManager()
	assert.GreaterOrEqual(t, manager.Count(), 2)

	manager.BroadcastToSession(firstID, EventWorkflow, gin.H{"type": "opened"})
	manager.BroadcastGlobal(EventPanel, gin.H{"name": "tasks"})

	// the second browser only ever sees the global event
	assert.Equal(t, EventPanel, readEvent(t, second).Type)

	received := []string{readEvent(t, first).Type, readEvent(t, first).Type}
	assert.ElementsMatch(t, []string{EventWorkflow, EventPanel}, received)
}

func TestBroadcastKeepsFrameOrder(t *testing.T) {
	sessions := make(chan string, 1)
	server := startServer(t, sessions)

	conn := dial(t, server)
	readEvent(t, conn)
	sessionID := <-sessions

	const frames = 200
	go func() {
		for i := 0; i < frames; i++ {
			GetConnectionManager().BroadcastToSession(sessionID, EventPanel, gin.H{"seq": i})
		}
	}()

	for i := 0; i < frames; i++ {
		event := readEvent(t, conn)
		data, ok := event.Data.(map[string]interface{})
		require.True(t, ok)
		require.Equal(t, float64(i), data["seq"], "frame %d arrived out of order", i)
	}
}

func TestBroadcastToEmptySessionIsIgnored(t *testing.T) {
	manager := NewConnectionManager()
	manager.BroadcastToSession("", EventWorkflow, nil)
	assert.Equal(t, 0, manager.Count())
}

func TestRemoveConnection(t *testing.T) {
	sessions := make(chan string, 1)
	server := startServer(t, sessions)

	conn := dial(t, server)
	readEvent(t, conn)
	<-sessions
	before := GetConnectionManager().Count()

	conn.Close()
	assert.Eventually(t, func() bool {
		return GetConnectionManager().Count() < before
	}, 5*time.Second, 20*time.Millisecond)
}
