/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package methods

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salvavita/salvavita-console/actions"
	"github.com/salvavita/salvavita-console/audit"
	"github.com/salvavita/salvavita-console/middleware"
	"github.com/salvavita/salvavita-console/models"
	"github.com/salvavita/salvavita-console/workflow"
)

// GetTransaction returns the pending transaction of the caller's session.
func GetTransaction(c *gin.Context) {
	console := middleware.Console(c)

	pending, ok := console.Workflow.Pending()
	if !ok {
		respondNotFound(c, workflow.ErrNothingPending.Error())
		return
	}

	if wantsJSON(c) {
		respondOK(c, pending.Subject, pending)
		return
	}
	c.HTML(http.StatusOK, "transaction-modal", pending)
}

// CommitTransaction commits the pending transaction and reloads the panel
// that staged it.
func CommitTransaction(c *gin.Context) {
	resolveTransaction(c, true)
}

// RollbackTransaction rolls the pending transaction back. No panel reloads.
func RollbackTransaction(c *gin.Context) {
	resolveTransaction(c, false)
}

// CloseTransaction hides the dialog and forgets the pending transaction
// without telling the backend.
func CloseTransaction(c *gin.Context) {
	console := middleware.Console(c)

	pending, ok := console.Workflow.Discard()
	if ok {
		audit.Store(models.Audit{
			Session: console.ID,
			Action:  models.AuditDiscard,
			Data:    pending.Subject,
			Outcome: "ok",
		})
	}
	respondOK(c, "closed", nil)
}

func resolveTransaction(c *gin.Context, commit bool) {
	console := middleware.Console(c)

	pending, _ := console.Workflow.Pending()
	action := models.AuditRollback
	resolve := console.Workflow.Rollback
	if commit {
		action = models.AuditCommit
		resolve = console.Workflow.Commit
	}

	outcome, err := resolve(c.Request.Context())
	if errors.Is(err, workflow.ErrNothingPending) {
		if wantsJSON(c) {
			respondNotFound(c, err.Error())
		} else {
			redirectHome(c)
		}
		return
	}

	result := actions.Result{Success: outcome.Success, Message: outcome.Message}
	auditOutcome := "ok"
	switch {
	case err != nil:
		auditOutcome = "error: " + err.Error()
	case !outcome.Success:
		auditOutcome = "failed: " + outcome.Message
	default:
		if origin := panels.Get(pending.Origin); origin != nil {
			origin.SetNotice("✅ " + outcome.Message)
		}
	}
	audit.Store(models.Audit{
		Session: console.ID,
		Action:  action,
		Data:    pending.Subject,
		Outcome: auditOutcome,
	})

	respondOutcome(c, result, err, gin.H{"subject": pending.Subject})
}
