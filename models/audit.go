/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package models

import (
	"time"
)

// Audit is one destructive action issued from the console.
type Audit struct {
	ID        int       `json:"id" structs:"id"`
	Session   string    `json:"session" structs:"session"`
	Action    string    `json:"action" structs:"action"`
	Data      string    `json:"data" structs:"data"`
	Outcome   string    `json:"outcome" structs:"outcome"`
	Timestamp time.Time `json:"timestamp" structs:"timestamp,omitnested"`
}

const (
	AuditDeleteByEnte     = "delete-protocolli"
	AuditStageDelete      = "delete-proto-temporaneo"
	AuditRestartProcesses = "avvia-processi"
	AuditCommit           = "commit-transaction"
	AuditRollback         = "rollback-transaction"
	AuditDiscard          = "discard-transaction"
)
