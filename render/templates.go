/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

// Package render builds the console markup. Every record field goes through
// html/template, so values coming from the backend are always escaped.
package render

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"

	"github.com/salvavita/salvavita-console/models"
)

//go:embed templates static
var content embed.FS

var templates = template.Must(
	template.New("console").Funcs(Funcs()).ParseFS(content, "templates/*.tmpl"),
)

// Funcs returns the helpers available to console templates.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"formatDate": FormatDate,
		"orDash":     orDash,
		"intOrZero":  intOrZero,
		"intOrDash":  intOrDash,
	}
}

// Templates returns the parsed console templates, ready for gin's HTML
// renderer.
func Templates() *template.Template {
	return templates
}

// StaticFS returns the embedded stylesheet directory.
func StaticFS() (fs.FS, error) {
	return fs.Sub(content, "static")
}

type tableData[T any] struct {
	Total int
	Rows  []T
}

// EmptyState is the marker shown instead of a table when a list is empty.
func EmptyState() template.HTML {
	out, err := execute("empty-state", nil)
	if err != nil {
		return template.HTML("")
	}
	return out
}

// ProtocolTable renders suspended protocols in the order given.
func ProtocolTable(total int, rows []models.ProtocolRecord) (template.HTML, error) {
	return execute("protocolli-table", tableData[models.ProtocolRecord]{Total: total, Rows: rows})
}

// TaskTable renders scheduled tasks in the order given.
func TaskTable(total int, rows []models.ScheduledTask) (template.HTML, error) {
	return execute("tasks-table", tableData[models.ScheduledTask]{Total: total, Rows: rows})
}

func execute(name string, data interface{}) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	// output of html/template is already escaped
	return template.HTML(buf.String()), nil
}
