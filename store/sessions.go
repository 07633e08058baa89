/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package store

import (
	"sync"
	"time"

	"github.com/salvavita/salvavita-console/backend"
	"github.com/salvavita/salvavita-console/workflow"
)

// ConsoleSession is the server side state of one browser. Its backend client
// carries the cookies of the backend session that owns staged transactions.
type ConsoleSession struct {
	ID        string
	Client    *backend.Client
	Workflow  *workflow.Workflow
	CreatedAt time.Time
	LastSeen  time.Time
}

// ClientFactory creates the backend client of a new session.
type ClientFactory func() *backend.Client

var (
	ConsoleSessions map[string]*ConsoleSession
	sessionsMutex   sync.Mutex
	newClient       ClientFactory = backend.NewFromConfig
	onOpen          []func(*ConsoleSession)
)

// ConsoleSessionInit resets the session map. A nil factory keeps the
// configured backend.
func ConsoleSessionInit(factory ClientFactory) map[string]*ConsoleSession {
	sessionsMutex.Lock()
	defer sessionsMutex.Unlock()

	ConsoleSessions = make(map[string]*ConsoleSession)
	if factory != nil {
		newClient = factory
	} else {
		newClient = backend.NewFromConfig
	}
	return ConsoleSessions
}

// OnSessionOpen registers fn to run on every newly created session, before
// it is returned to the caller.
func OnSessionOpen(fn func(*ConsoleSession)) {
	sessionsMutex.Lock()
	onOpen = append(onOpen, fn)
	sessionsMutex.Unlock()
}

// GetOrCreate returns the session with the given id, creating it on first
// use.
func GetOrCreate(id string) *ConsoleSession {
	sessionsMutex.Lock()
	if ConsoleSessions == nil {
		ConsoleSessions = make(map[string]*ConsoleSession)
	}

	now := time.Now()
	if session, ok := ConsoleSessions[id]; ok {
		session.LastSeen = now
		sessionsMutex.Unlock()
		return session
	}

	client := newClient()
	session := &ConsoleSession{
		ID:        id,
		Client:    client,
		Workflow:  workflow.New(client),
		CreatedAt: now,
		LastSeen:  now,
	}
	ConsoleSessions[id] = session
	hooks := append([]func(*ConsoleSession){}, onOpen...)
	sessionsMutex.Unlock()

	for _, hook := range hooks {
		hook(session)
	}
	return session
}

// Get returns an existing session.
func Get(id string) (*ConsoleSession, bool) {
	sessionsMutex.Lock()
	defer sessionsMutex.Unlock()
	session, ok := ConsoleSessions[id]
	return session, ok
}

// Expire drops sessions not seen for longer than ttl and returns how many
// were removed. A pending transaction of an expired session is left to the
// backend's own timeout.
func Expire(ttl time.Duration) int {
	sessionsMutex.Lock()
	defer sessionsMutex.Unlock()

	cutoff := time.Now().Add(-ttl)
	removed := 0
	for id, session := range ConsoleSessions {
		if session.LastSeen.Before(cutoff) {
			delete(ConsoleSessions, id)
			removed++
		}
	}
	return removed
}
