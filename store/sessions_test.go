/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salvavita/salvavita-console/backend"
	"github.com/salvavita/salvavita-console/workflow"
)

func testFactory() *backend.Client {
	return backend.New("http://127.0.0.1:1/salvavita", 0)
}

func TestGetOrCreateReturnsSameSession(t *testing.T) {
	ConsoleSessionInit(testFactory)

	first := GetOrCreate("a")
	second := GetOrCreate("a")

	assert.Same(t, first, second)
	assert.Len(t, ConsoleSessions, 1)
}

func TestSessionsAreIsolated(t *testing.T) {
	ConsoleSessionInit(testFactory)

	a := GetOrCreate("a")
	b := GetOrCreate("b")
	a.Workflow.Open(workflow.PendingTransaction{Subject: "ENTRATE (ID: 1)"}, nil)

	assert.NotSame(t, a.Client, b.Client)
	_, pending := b.Workflow.Pending()
	assert.False(t, pending)
}

func TestOnSessionOpenRunsOnce(t *testing.T) {
	ConsoleSessionInit(testFactory)
	opened := 0
	OnSessionOpen(func(s *ConsoleSession) {
		if s.ID == "hooked" {
			opened++
		}
	})

	GetOrCreate("hooked")
	GetOrCreate("hooked")

	assert.Equal(t, 1, opened)
}

func TestExpire(t *testing.T) {
	ConsoleSessionInit(testFactory)

	old := GetOrCreate("old")
	old.LastSeen = time.Now().Add(-2 * time.Hour)
	GetOrCreate("fresh")

	assert.Equal(t, 1, Expire(time.Hour))
	_, ok := Get("old")
	assert.False(t, ok)
	_, ok = Get("fresh")
	require.True(t, ok)
}
