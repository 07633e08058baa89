/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/salvavita/salvavita-console/configuration"
	"github.com/salvavita/salvavita-console/logs"
	"github.com/salvavita/salvavita-console/store"
)

const (
	SessionCookie = "salvavita-console"

	sessionIDKey = "session_id"
	consoleKey   = "console_session"
)

var (
	cookieStore *sessions.CookieStore
	storeMutex  sync.Mutex
)

// InitSessions creates the cookie store from the current configuration.
func InitSessions() *sessions.CookieStore {
	storeMutex.Lock()
	defer storeMutex.Unlock()

	cookieStore = sessions.NewCookieStore([]byte(configuration.Config.SessionSecret))
	cookieStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   configuration.Config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	return cookieStore
}

func cookies() *sessions.CookieStore {
	storeMutex.Lock()
	current := cookieStore
	storeMutex.Unlock()
	if current == nil {
		return InitSessions()
	}
	return current
}

// ConsoleSession binds every request to a console session, issuing a signed
// cookie on the first visit.
func ConsoleSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := cookies().Get(c.Request, SessionCookie)
		if err != nil {
			// tampered or signed with an old secret, start over
			logs.Log("[WARN][SESSION] Discarding invalid session cookie: " + err.Error())
		}

		id, _ := session.Values[sessionIDKey].(string)
		if id == "" {
			id = uuid.NewString()
			session.Values[sessionIDKey] = id
			if err := session.Save(c.Request, c.Writer); err != nil {
				logs.Log("[ERROR][SESSION] Failed to save session cookie: " + err.Error())
			}
			logs.Log("[INFO][SESSION] New console session " + id)
		}

		c.Set(sessionIDKey, id)
		c.Set(consoleKey, store.GetOrCreate(id))
		c.Next()
	}
}

// SessionID returns the console session id bound to the request.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}

// Console returns the console session bound to the request, nil outside
// ConsoleSession.
func Console(c *gin.Context) *store.ConsoleSession {
	value, ok := c.Get(consoleKey)
	if !ok {
		return nil
	}
	session, _ := value.(*store.ConsoleSession)
	return session
}
