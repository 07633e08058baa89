/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

// Package panel implements the list views of the console. A panel fetches a
// list from the backend and moves between idle, loading, success and error.
package panel

import (
	"context"
	"fmt"
	"html/template"
	"sync"
	"time"
)

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateSuccess State = "success"
	StateError   State = "error"
)

// Result is the outcome of a fetch that reached the backend.
type Result struct {
	Success bool
	Message string
	Total   int
	Content template.HTML
}

// Loader fetches and renders a panel's list. A returned error means the
// backend could not be reached or understood.
type Loader func(ctx context.Context) (Result, error)

// Snapshot is the rendered state of a panel at one point in time.
type Snapshot struct {
	Name      string        `json:"name" structs:"name"`
	Title     string        `json:"title" structs:"title"`
	State     State         `json:"state" structs:"state"`
	Busy      bool          `json:"busy" structs:"busy"`
	Success   string        `json:"success,omitempty" structs:"success"`
	Error     string        `json:"error,omitempty" structs:"error"`
	Notice    string        `json:"notice,omitempty" structs:"notice"`
	Total     int           `json:"totalRecords" structs:"totalRecords"`
	Content   template.HTML `json:"content,omitempty" structs:"content"`
	UpdatedAt time.Time     `json:"updatedAt" structs:"updatedAt,omitnested"`
}

// Panel owns the state of one list view. Concurrent refreshes are not
// sequenced: whichever fetch resolves last decides what is shown.
type Panel struct {
	name  string
	title string
	load  Loader

	mutex     sync.RWMutex
	snapshot  Snapshot
	listeners []func(Snapshot)
}

func New(name, title string, load Loader) *Panel {
	return &Panel{
		name:  name,
		title: title,
		load:  load,
		snapshot: Snapshot{
			Name:  name,
			Title: title,
			State: StateIdle,
		},
	}
}

func (p *Panel) Name() string {
	return p.name
}

// OnChange registers fn to receive every new snapshot.
func (p *Panel) OnChange(fn func(Snapshot)) {
	p.mutex.Lock()
	p.listeners = append(p.listeners, fn)
	p.mutex.Unlock()
}

// Snapshot returns the current state.
func (p *Panel) Snapshot() Snapshot {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.snapshot
}

// Refresh runs one fetch-and-render cycle and returns the state it produced.
func (p *Panel) Refresh(ctx context.Context) Snapshot {
	p.update(func(s *Snapshot) {
		s.State = StateLoading
		s.Busy = false
		s.Success = ""
		s.Error = ""
		s.Total = 0
		s.Content = ""
	})

	result, err := p.load(ctx)

	return p.update(func(s *Snapshot) {
		switch {
		case err != nil:
			s.State = StateError
			s.Error = "❌ Errore di comunicazione: " + err.Error()
		case !result.Success:
			message := result.Message
			if message == "" {
				message = "Errore sconosciuto"
			}
			s.State = StateError
			s.Error = "❌ Errore: " + message
		default:
			s.State = StateSuccess
			s.Total = result.Total
			s.Success = fmt.Sprintf("✓ Caricati %d record", result.Total)
			s.Content = result.Content
		}
	})
}

// ShowLoading marks the panel busy while an action runs on its records.
// The current content stays visible.
func (p *Panel) ShowLoading() {
	p.update(func(s *Snapshot) {
		s.Busy = true
		s.Error = ""
	})
}

// HideLoading clears the busy marker.
func (p *Panel) HideLoading() {
	p.update(func(s *Snapshot) {
		s.Busy = false
	})
}

// ShowError shows an inline error without touching the content.
func (p *Panel) ShowError(message string) {
	p.update(func(s *Snapshot) {
		s.Busy = false
		s.Error = message
	})
}

// SetNotice shows a dismissable success notice.
func (p *Panel) SetNotice(message string) {
	p.update(func(s *Snapshot) {
		s.Notice = message
	})
}

func (p *Panel) DismissNotice() {
	p.update(func(s *Snapshot) {
		s.Notice = ""
	})
}

func (p *Panel) update(change func(*Snapshot)) Snapshot {
	p.mutex.Lock()
	change(&p.snapshot)
	p.snapshot.UpdatedAt = time.Now()
	snapshot := p.snapshot
	listeners := append([]func(Snapshot){}, p.listeners...)
	p.mutex.Unlock()

	for _, listener := range listeners {
		listener(snapshot)
	}
	return snapshot
}
