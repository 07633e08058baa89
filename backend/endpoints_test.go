/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package backend

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueriesAcceptsCountAndStatements(t *testing.T) {
	var envelope Envelope

	require.NoError(t, json.Unmarshal([]byte(`{"success":true,"queries":7}`), &envelope))
	assert.Equal(t, Queries{Count: 7}, envelope.Queries)
	assert.Equal(t, "7", envelope.Queries.String())

	envelope = Envelope{}
	require.NoError(t, json.Unmarshal([]byte(`{"success":true,"queries":["DELETE A","DELETE B"]}`), &envelope))
	assert.Equal(t, 2, envelope.Queries.Count)
	assert.Equal(t, "DELETE A,DELETE B", envelope.Queries.String())

	envelope = Envelope{}
	require.NoError(t, json.Unmarshal([]byte(`{"success":true,"queries":null}`), &envelope))
	assert.Equal(t, "0", envelope.Queries.String())
}

func TestFailureMessagePrefersMessage(t *testing.T) {
	assert.Equal(t, "m", (&Envelope{Message: "m", Error: "e"}).FailureMessage())
	assert.Equal(t, "e", (&Envelope{Error: "e"}).FailureMessage())
	assert.Equal(t, "", (&Envelope{}).FailureMessage())
}

func TestTokenQuery(t *testing.T) {
	assert.Nil(t, tokenQuery(""))
	assert.Equal(t, "transactionId=abc", tokenQuery("abc").Encode())
}
