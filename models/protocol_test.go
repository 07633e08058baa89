/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampForms(t *testing.T) {
	cases := map[string]Timestamp{
		`null`:                          "",
		`"2025-05-06T10:30:00"`:         "2025-05-06T10:30:00",
		`[2025,5,6,10,30]`:              "2025-05-06T10:30:00",
		`[2025,5,6,10,30,15,500000000]`: "2025-05-06T10:30:15",
		`[2025,5]`:                      "",
		`1746527400000`:                 "2025-05-06T10:30:00Z",
	}
	for raw, want := range cases {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(raw), &ts), raw)
		assert.Equal(t, want, ts, raw)
	}

	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`true`), &ts))
}

func TestProtocolRecordDecode(t *testing.T) {
	raw := `{"ente":"ENTRATE","sequLongId":101,"aooUfficio":null,"idTransizionePresente":1,"dataInserimento":[2025,5,6,10,30,0]}`

	var record ProtocolRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &record))

	assert.Equal(t, int64(101), record.SequLongID)
	assert.Equal(t, "", record.AooUfficio)
	assert.True(t, record.HasOpenTransition())
	assert.Equal(t, "2025-05-06T10:30:00", record.DataInserimento.String())
	assert.Nil(t, record.PresaVisione)
}

func TestProtocolRecordChronicleID(t *testing.T) {
	// the backend may send the key as ichronicleId
	var record ProtocolRecord
	require.NoError(t, json.Unmarshal([]byte(`{"ente":"AAMS","sequLongId":7,"idAtmos":"a-1","ichronicleId":"0900abc"}`), &record))

	assert.Equal(t, "a-1", record.IDAtmos)
	assert.Equal(t, "0900abc", record.IChronicleID)
}

func TestHasOpenTransition(t *testing.T) {
	zero, two := 0, 2
	assert.False(t, ProtocolRecord{}.HasOpenTransition())
	assert.False(t, ProtocolRecord{IDTransizionePresente: &zero}.HasOpenTransition())
	assert.False(t, ProtocolRecord{IDTransizionePresente: &two}.HasOpenTransition())
}

func TestNormalizeEnte(t *testing.T) {
	assert.Equal(t, "ENTRATE", NormalizeEnte(" entrate "))
	assert.Equal(t, "DPF", NormalizeEnte("dpf"))
	assert.Equal(t, "Altro", NormalizeEnte("Altro"))
	assert.Equal(t, "", NormalizeEnte("  "))
}
