/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salvavita/salvavita-console/models"
)

func intPtr(v int) *int {
	return &v
}

func TestEmptyState(t *testing.T) {
	assert.Contains(t, string(EmptyState()), "Nessun record trovato")
}

func TestProtocolTableRowsInOrder(t *testing.T) {
	rows := []models.ProtocolRecord{
		{Ente: "ENTRATE", SequLongID: 3},
		{Ente: "DEMANIO", SequLongID: 1},
		{Ente: "AAMS", SequLongID: 2},
	}

	out, err := ProtocolTable(3, rows)
	require.NoError(t, err)
	html := string(out)

	assert.Equal(t, 3, strings.Count(html, `class="record-row"`))
	assert.Contains(t, html, "📊 Totale: 3 record")
	first := strings.Index(html, "<strong>ENTRATE</strong>")
	second := strings.Index(html, "<strong>DEMANIO</strong>")
	third := strings.Index(html, "<strong>AAMS</strong>")
	assert.True(t, first < second && second < third)
}

func TestProtocolTableTransizioneCell(t *testing.T) {
	rows := []models.ProtocolRecord{
		{Ente: "ENTRATE", SequLongID: 1, IDTransizionePresente: intPtr(1)},
		{Ente: "DEMANIO", SequLongID: 2, IDTransizionePresente: intPtr(0)},
		{Ente: "SOGEI", SequLongID: 3},
	}

	out, err := ProtocolTable(3, rows)
	require.NoError(t, err)
	html := string(out)

	assert.Equal(t, 1, strings.Count(html, `class="transizione-link"`))
	assert.Contains(t, html, `href="/protocolli/confirm-delete?ente=ENTRATE"`)
	assert.NotContains(t, html, "ente=DEMANIO\"")
}

func TestProtocolTableFallbacks(t *testing.T) {
	out, err := ProtocolTable(1, []models.ProtocolRecord{{Ente: "ADER", SequLongID: 9}})
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "<td><small>-</small></td>")
	assert.Contains(t, html, `<td class="errore">-</td>`)
	// recuperi, presa visione and transizione fall back to 0
	assert.Equal(t, 3, strings.Count(html, "<td>0</td>"))
}

func TestProtocolTableEscapesFields(t *testing.T) {
	rows := []models.ProtocolRecord{{
		Ente:           "ENTRATE",
		SequLongID:     1,
		UtenteCreatore: `<script>alert("x")</script>`,
		Errore:         `<img src=x onerror=alert(1)>`,
	}}

	out, err := ProtocolTable(1, rows)
	require.NoError(t, err)
	html := string(out)

	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, "<img")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestTaskTable(t *testing.T) {
	rows := []models.ScheduledTask{
		{Name: "recupero", ProssimoRun: "2025-05-06T10:30:00"},
		{Name: "pulizia"},
	}

	out, err := TaskTable(2, rows)
	require.NoError(t, err)
	html := string(out)

	assert.Equal(t, 2, strings.Count(html, `class="record-row"`))
	assert.Contains(t, html, "<td>-</td>")
	assert.Contains(t, html, "<strong>recupero</strong>")
}

func TestStaticFS(t *testing.T) {
	static, err := StaticFS()
	require.NoError(t, err)

	f, err := static.Open("console.css")
	require.NoError(t, err)
	f.Close()
}
