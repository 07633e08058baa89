/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salvavita/salvavita-console/backend"
	"github.com/salvavita/salvavita-console/configuration"
	"github.com/salvavita/salvavita-console/logs"
	"github.com/salvavita/salvavita-console/store"
)

func init() {
	logs.Init("salvavita-console-test")
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	configuration.Config.SessionSecret = "test-session-secret"
	configuration.Config.SecureCookies = false
	InitSessions()
	store.ConsoleSessionInit(func() *backend.Client {
		return backend.New("http://127.0.0.1:1", 0)
	})

	router := gin.New()
	router.Use(ConsoleSession())
	router.GET("/whoami", func(c *gin.Context) {
		console := Console(c)
		c.JSON(http.StatusOK, gin.H{"id": SessionID(c), "bound": console != nil && console.ID == SessionID(c)})
	})
	return router
}

func TestConsoleSessionIssuesCookie(t *testing.T) {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/whoami", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"bound":true`)
	require.NotEmpty(t, w.Result().Cookies())
	assert.Equal(t, SessionCookie, w.Result().Cookies()[0].Name)
	assert.Len(t, store.ConsoleSessions, 1)
}

func TestConsoleSessionReusesCookie(t *testing.T) {
	router := setupRouter()

	first := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/whoami", nil)
	router.ServeHTTP(first, req)
	cookie := first.Result().Cookies()[0]

	second := httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/whoami", nil)
	req.AddCookie(cookie)
	router.ServeHTTP(second, req)

	assert.Empty(t, second.Result().Cookies())
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Len(t, store.ConsoleSessions, 1)
}

func TestConsoleSessionRejectsForgedCookie(t *testing.T) {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "forged"})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Result().Cookies())
	assert.Len(t, store.ConsoleSessions, 1)
}

func TestSeparateBrowsersGetSeparateSessions(t *testing.T) {
	router := setupRouter()

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/whoami", nil)
		router.ServeHTTP(w, req)
	}

	assert.Len(t, store.ConsoleSessions, 2)
}
