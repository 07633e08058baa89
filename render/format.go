/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package render

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// Placeholder is shown for absent or unreadable values.
const Placeholder = "-"

// italianLayout matches what it-IT toLocaleString produces.
const italianLayout = "2/1/2006, 15:04:05"

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var (
	locationMutex sync.RWMutex
	location      = defaultLocation()
)

func defaultLocation() *time.Location {
	loc, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		return time.Local
	}
	return loc
}

// SetLocation changes the time zone dates are displayed in.
func SetLocation(loc *time.Location) {
	if loc == nil {
		return
	}
	locationMutex.Lock()
	location = loc
	locationMutex.Unlock()
}

func currentLocation() *time.Location {
	locationMutex.RLock()
	defer locationMutex.RUnlock()
	return location
}

// FormatDate renders a backend date for display, or Placeholder when the
// value is absent or cannot be parsed. It never fails.
func FormatDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return Placeholder
	}

	loc := currentLocation()

	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.In(loc).Format(italianLayout)
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.Format(italianLayout)
		}
	}
	return Placeholder
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return Placeholder
	}
	return value
}

// intOrZero renders nullable counters, absent means 0.
func intOrZero(value *int) string {
	if value == nil {
		return "0"
	}
	return strconv.Itoa(*value)
}

// intOrDash renders nullable codes where 0 carries no information.
func intOrDash(value *int) string {
	if value == nil || *value == 0 {
		return Placeholder
	}
	return strconv.Itoa(*value)
}
