/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package panel

import (
	"context"
	"fmt"
	"html/template"

	"github.com/salvavita/salvavita-console/backend"
	"github.com/salvavita/salvavita-console/models"
	"github.com/salvavita/salvavita-console/render"
)

const (
	NameProtocolli = "protocolli"
	NameTasks      = "tasks"
)

type ProtocolSource interface {
	ProtocolliSospesi(ctx context.Context) (*backend.ListResult[models.ProtocolRecord], error)
}

type TaskSource interface {
	ScheduledTasks(ctx context.Context) (*backend.ListResult[models.ScheduledTask], error)
}

// NewProtocolli creates the suspended protocols panel.
func NewProtocolli(source ProtocolSource) *Panel {
	return New(NameProtocolli, "Protocolli Sospesi", func(ctx context.Context) (Result, error) {
		list, err := source.ProtocolliSospesi(ctx)
		if err != nil {
			return Result{}, err
		}
		return tableResult(list, render.ProtocolTable)
	})
}

// NewTasks creates the scheduled tasks panel.
func NewTasks(source TaskSource) *Panel {
	return New(NameTasks, "Task Schedulati", func(ctx context.Context) (Result, error) {
		list, err := source.ScheduledTasks(ctx)
		if err != nil {
			return Result{}, err
		}
		return tableResult(list, render.TaskTable)
	})
}

func tableResult[T any](list *backend.ListResult[T], table func(int, []T) (template.HTML, error)) (Result, error) {
	if !list.Success {
		return Result{Message: list.FailureMessage()}, nil
	}

	result := Result{Success: true, Total: list.Total()}
	if len(list.Records) == 0 {
		result.Content = render.EmptyState()
		return result, nil
	}

	content, err := table(result.Total, list.Records)
	if err != nil {
		return Result{}, fmt.Errorf("render table: %w", err)
	}
	result.Content = content
	return result, nil
}

// Set is the ordered collection of panels shown on the dashboard.
type Set struct {
	panels []*Panel
}

func NewSet(panels ...*Panel) *Set {
	return &Set{panels: panels}
}

// Get returns the panel called name, nil when there is none.
func (s *Set) Get(name string) *Panel {
	for _, p := range s.panels {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

func (s *Set) All() []*Panel {
	return s.panels
}

// Snapshots returns the current state of every panel in display order.
func (s *Set) Snapshots() []Snapshot {
	snapshots := make([]Snapshot, 0, len(s.panels))
	for _, p := range s.panels {
		snapshots = append(snapshots, p.Snapshot())
	}
	return snapshots
}

// RefreshAll refreshes every panel one after the other.
func (s *Set) RefreshAll(ctx context.Context) {
	for _, p := range s.panels {
		p.Refresh(ctx)
	}
}
