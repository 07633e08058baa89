/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package methods

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/structs"
	"github.com/gin-gonic/gin"

	"github.com/salvavita/salvavita-console/audit"
	"github.com/salvavita/salvavita-console/db"
	"github.com/salvavita/salvavita-console/models"
)

// GetAudits lists the destructive actions recorded in the audit database.
// Query params: session, action (comma separated), data, from, to (RFC 3339)
// and limit.
func GetAudits(c *gin.Context) {
	if !db.Enabled() {
		c.JSON(http.StatusBadRequest, structs.Map(models.StatusBadRequest{
			Code:    400,
			Message: "audit is disabled. AUDIT_MARIADB_HOST is not set in the environment",
			Data:    gin.H{"audits": nil},
		}))
		return
	}

	filter := audit.Filter{
		Session: c.Query("session"),
		Data:    c.Query("data"),
	}
	if action := c.Query("action"); action != "" {
		filter.Actions = strings.Split(action, ",")
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = limit
	}
	for param, target := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		value := c.Query(param)
		if value == "" {
			continue
		}
		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			respondBadRequest(c, "invalid "+param+" date")
			return
		}
		*target = &parsed
	}

	results, err := audit.Query(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, structs.Map(models.StatusInternalServerError{
			Code:    500,
			Message: err.Error(),
			Data:    nil,
		}))
		return
	}

	c.JSON(http.StatusOK, structs.Map(models.StatusOK{
		Code:    200,
		Message: "success",
		Data:    gin.H{"audits": results},
	}))
}
