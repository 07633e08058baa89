/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

// Package audit records the destructive actions issued from the console.
package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/salvavita/salvavita-console/db"
	"github.com/salvavita/salvavita-console/logs"
	"github.com/salvavita/salvavita-console/models"
)

const defaultLimit = 500

// Filter narrows an audit query. Empty fields match everything.
type Filter struct {
	Session string
	Actions []string
	Data    string
	From    *time.Time
	To      *time.Time
	Limit   int
}

// Store writes one audit row. Every entry is also logged, so the trail
// exists even when no audit database is configured.
func Store(entry models.Audit) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	logs.Logf("[INFO][AUDIT] session=%s action=%s data=%s outcome=%s", entry.Session, entry.Action, entry.Data, entry.Outcome)

	if !db.Enabled() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := db.DB.ExecContext(ctx,
		"INSERT INTO audit (session, action, data, outcome, timestamp) VALUES (?, ?, ?, ?, ?)",
		entry.Session, entry.Action, entry.Data, truncate(entry.Outcome, 512), entry.Timestamp,
	)
	if err != nil {
		logs.Log("[ERROR][AUDIT] Failed to store audit entry: " + err.Error())
	}
}

// BuildQuery returns the SELECT statement and arguments for filter.
func BuildQuery(filter Filter) (string, []interface{}) {
	query := "SELECT id, session, action, data, outcome, timestamp FROM audit WHERE true"
	args := []interface{}{}

	if filter.Session != "" {
		query += " AND session = ?"
		args = append(args, filter.Session)
	}
	if len(filter.Actions) > 0 {
		query += " AND action IN (?" + strings.Repeat(",?", len(filter.Actions)-1) + ")"
		for _, action := range filter.Actions {
			args = append(args, action)
		}
	}
	if filter.Data != "" {
		query += " AND data LIKE ?"
		args = append(args, "%"+filter.Data+"%")
	}
	if filter.From != nil {
		query += " AND timestamp >= ?"
		args = append(args, filter.From.UTC())
	}
	if filter.To != nil {
		query += " AND timestamp <= ?"
		args = append(args, filter.To.UTC())
	}

	limit := filter.Limit
	if limit <= 0 || limit > defaultLimit {
		limit = defaultLimit
	}
	query += fmt.Sprintf(" ORDER BY id DESC LIMIT %d", limit)

	return query, args
}

// Query returns the audit rows matching filter, newest first.
func Query(ctx context.Context, filter Filter) ([]models.Audit, error) {
	if !db.Enabled() {
		return nil, fmt.Errorf("audit is disabled")
	}

	query, args := BuildQuery(filter)
	rows, err := db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit: %w", err)
	}
	defer rows.Close()

	results := []models.Audit{}
	for rows.Next() {
		var entry models.Audit
		var data *string
		if err := rows.Scan(&entry.ID, &entry.Session, &entry.Action, &data, &entry.Outcome, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		if data != nil {
			entry.Data = *data
		}
		results = append(results, entry)
	}
	return results, rows.Err()
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max])
}
