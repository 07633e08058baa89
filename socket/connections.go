/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package socket

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/salvavita/salvavita-console/logs"
)

// Event is the frame pushed to console browsers.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ConsoleConnection is a live websocket of one console session.
type ConsoleConnection struct {
	Conn      *websocket.Conn
	SessionID string

	// gorilla allows one concurrent writer per connection
	writeMutex sync.Mutex
}

// writeWait bounds how long a slow browser can hold up a broadcast.
const writeWait = 10 * time.Second

func (cc *ConsoleConnection) write(payload []byte) error {
	cc.writeMutex.Lock()
	defer cc.writeMutex.Unlock()
	cc.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return cc.Conn.WriteMessage(websocket.TextMessage, payload)
}

// ConnectionManager tracks every open console websocket.
type ConnectionManager struct {
	connections map[*websocket.Conn]*ConsoleConnection
	mutex       sync.RWMutex
}

var connManager = NewConnectionManager()

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[*websocket.Conn]*ConsoleConnection),
	}
}

// GetConnectionManager returns the global connection manager instance
func GetConnectionManager() *ConnectionManager {
	return connManager
}

func (cm *ConnectionManager) AddConnection(conn *websocket.Conn, sessionID string) *ConsoleConnection {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	cc := &ConsoleConnection{Conn: conn, SessionID: sessionID}
	cm.connections[conn] = cc
	return cc
}

func (cm *ConnectionManager) RemoveConnection(conn *websocket.Conn) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	delete(cm.connections, conn)
}

// Count returns the number of open connections.
func (cm *ConnectionManager) Count() int {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	return len(cm.connections)
}

func (cm *ConnectionManager) targets(sessionID string) []*ConsoleConnection {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	result := make([]*ConsoleConnection, 0, len(cm.connections))
	for _, cc := range cm.connections {
		if sessionID == "" || cc.SessionID == sessionID {
			result = append(result, cc)
		}
	}
	return result
}

// BroadcastGlobal sends an event to every connected console.
func (cm *ConnectionManager) BroadcastGlobal(eventType string, data interface{}) {
	cm.broadcast("", eventType, data)
}

// BroadcastToSession sends an event to the connections of one console session.
func (cm *ConnectionManager) BroadcastToSession(sessionID string, eventType string, data interface{}) {
	if sessionID == "" {
		return
	}
	cm.broadcast(sessionID, eventType, data)
}

func (cm *ConnectionManager) broadcast(sessionID string, eventType string, data interface{}) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		logs.Log(fmt.Sprintf("[ERROR][BROADCAST] Failed to marshal %s event: %v", eventType, err))
		return
	}

	// frames from one caller reach each browser in the order they were sent;
	// failed connections are removed by their reader
	for _, cc := range cm.targets(sessionID) {
		if err := cc.write(payload); err != nil {
			logs.Log(fmt.Sprintf("[WARN][BROADCAST] Failed to send %s event: %v", eventType, err))
		}
	}
}
