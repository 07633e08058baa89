/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package methods

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fatih/structs"
	"github.com/gin-gonic/gin"

	"github.com/salvavita/salvavita-console/actions"
	"github.com/salvavita/salvavita-console/backend"
	"github.com/salvavita/salvavita-console/db"
	"github.com/salvavita/salvavita-console/logs"
	"github.com/salvavita/salvavita-console/middleware"
	"github.com/salvavita/salvavita-console/models"
	"github.com/salvavita/salvavita-console/panel"
)

var (
	panels   *panel.Set
	triggers *actions.Triggers
)

// Init wires the handlers to the dashboard panels.
func Init(set *panel.Set) {
	panels = set
	triggers = &actions.Triggers{
		Protocolli: set.Get(panel.NameProtocolli),
		Tasks:      set.Get(panel.NameTasks),
	}
}

// Panels returns the panels the handlers operate on.
func Panels() *panel.Set {
	return panels
}

// Dashboard renders the console page. Panels never loaded are fetched
// before rendering.
func Dashboard(c *gin.Context) {
	for _, p := range panels.All() {
		if p.Snapshot().State == panel.StateIdle {
			p.Refresh(c.Request.Context())
		}
	}

	status := CurrentBackendStatus()
	data := gin.H{
		"BackendConnected": status.Connected,
		"BackendStatus":    status.Label(),
		"Panels":           panels.Snapshots(),
	}
	if console := middleware.Console(c); console != nil {
		if pending, ok := console.Workflow.Pending(); ok {
			data["Pending"] = pending
		}
	}

	c.HTML(http.StatusOK, "dashboard", data)
}

// Health reports console liveness and the state of the audit database.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "healthy",
		"status":  "ok",
		"audit":   auditStatus(),
	})
}

func auditStatus() string {
	if !db.Enabled() {
		return "disabled"
	}
	if err := db.HealthCheck(); err != nil {
		logs.Log("[WARN][HEALTH] Audit database ping failed: " + err.Error())
		return "unreachable"
	}
	return "ok"
}

// wantsJSON tells API clients apart from browser form posts.
func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json") ||
		c.ContentType() == "application/json"
}

// redirectHome ends a browser form post by going back to the dashboard.
func redirectHome(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}

func respondOK(c *gin.Context, message string, data interface{}) {
	if !wantsJSON(c) {
		redirectHome(c)
		return
	}
	c.JSON(http.StatusOK, structs.Map(models.StatusOK{
		Code:    200,
		Message: message,
		Data:    data,
	}))
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, structs.Map(models.StatusBadRequest{
		Code:    400,
		Message: message,
		Data:    nil,
	}))
}

func respondNotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, structs.Map(models.StatusNotFound{
		Code:    404,
		Message: message,
		Data:    nil,
	}))
}

// respondOutcome answers an operation that reached or tried to reach the
// backend. Browsers always go back to the dashboard, where the panel or the
// transaction dialog shows the failure.
func respondOutcome(c *gin.Context, result actions.Result, err error, data interface{}) {
	if !wantsJSON(c) {
		redirectHome(c)
		return
	}

	switch {
	case errors.Is(err, backend.ErrCommunication):
		c.JSON(http.StatusBadGateway, structs.Map(models.StatusBadGateway{
			Code:    502,
			Message: err.Error(),
			Data:    data,
		}))
	case err != nil:
		logs.Log("[ERROR][CONSOLE] " + err.Error())
		c.JSON(http.StatusInternalServerError, structs.Map(models.StatusInternalServerError{
			Code:    500,
			Message: err.Error(),
			Data:    data,
		}))
	case !result.Success:
		c.JSON(http.StatusUnprocessableEntity, structs.Map(models.StatusUnprocessableEntity{
			Code:    422,
			Message: result.Message,
			Data:    data,
		}))
	default:
		c.JSON(http.StatusOK, structs.Map(models.StatusOK{
			Code:    200,
			Message: result.Message,
			Data:    data,
		}))
	}
}
