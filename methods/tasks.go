/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package methods

import (
	"github.com/gin-gonic/gin"

	"github.com/salvavita/salvavita-console/middleware"
)

// AvviaProcessi stages the restart of the scheduled processes.
func AvviaProcessi(c *gin.Context) {
	console := middleware.Console(c)

	result, err := triggers.RestartProcesses(c.Request.Context(), console.Client, console.Workflow, console.ID)
	respondOutcome(c, result, err, gin.H{"transaction": result.Pending})
}
