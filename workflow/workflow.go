/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

// Package workflow holds the operation staged on the backend and waiting for
// the operator to commit or roll it back.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/salvavita/salvavita-console/backend"
)

// ErrNothingPending is returned when commit or rollback find an empty slot.
var ErrNothingPending = errors.New("nessuna transazione in sospeso")

// Refresher is invoked once after a successful commit.
type Refresher func(ctx context.Context)

// Resolver closes backend transactions.
type Resolver interface {
	CommitTransaction(ctx context.Context, token string) (*backend.Envelope, error)
	RollbackTransaction(ctx context.Context, token string) (*backend.Envelope, error)
}

// PendingTransaction describes one staged operation.
type PendingTransaction struct {
	Ente       string    `json:"ente" structs:"ente"`
	SequLongID int64     `json:"sequLongId" structs:"sequLongId"`
	Records    int       `json:"records" structs:"records"`
	Queries    string    `json:"queries" structs:"queries"`
	Subject    string    `json:"subject" structs:"subject"`
	Token      string    `json:"transactionId,omitempty" structs:"transactionId"`
	Origin     string    `json:"origin,omitempty" structs:"origin"`
	OpenedAt   time.Time `json:"openedAt" structs:"openedAt,omitnested"`
	Error      string    `json:"error,omitempty" structs:"error"`

	refresh Refresher
}

// Subject formats the line shown in the confirmation dialog.
func Subject(ente string, id interface{}) string {
	return fmt.Sprintf("%s (ID: %v)", ente, id)
}

// Outcome is what the backend answered to a commit or rollback.
type Outcome struct {
	Success bool
	Message string
}

// Event reports a change of the slot to listeners.
type Event struct {
	Type        string              `json:"type"`
	Transaction *PendingTransaction `json:"transaction,omitempty"`
	Message     string              `json:"message,omitempty"`
}

const (
	EventOpened     = "opened"
	EventCommitted  = "committed"
	EventRolledBack = "rolled-back"
	EventDiscarded  = "discarded"
	EventFailed     = "failed"
)

// Workflow is a single slot. Opening while occupied replaces the previous
// transaction without touching the backend.
type Workflow struct {
	resolver Resolver

	mutex     sync.Mutex
	pending   *PendingTransaction
	listeners []func(Event)
}

func New(resolver Resolver) *Workflow {
	return &Workflow{resolver: resolver}
}

// OnEvent registers fn to receive every slot change.
func (w *Workflow) OnEvent(fn func(Event)) {
	w.mutex.Lock()
	w.listeners = append(w.listeners, fn)
	w.mutex.Unlock()
}

// Open stores tx in the slot. refresh runs after a successful commit and
// may be nil.
func (w *Workflow) Open(tx PendingTransaction, refresh Refresher) PendingTransaction {
	if tx.OpenedAt.IsZero() {
		tx.OpenedAt = time.Now()
	}
	tx.Error = ""
	tx.refresh = refresh

	w.mutex.Lock()
	stored := tx
	w.pending = &stored
	w.mutex.Unlock()

	w.emit(Event{Type: EventOpened, Transaction: &tx})
	return tx
}

// Pending returns a copy of the slot content.
func (w *Workflow) Pending() (PendingTransaction, bool) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.pending == nil {
		return PendingTransaction{}, false
	}
	return *w.pending, true
}

// Commit commits the pending transaction. On success the slot is cleared and
// the origin panel refreshed once. On any failure the slot stays as it is,
// with the failure recorded for display.
func (w *Workflow) Commit(ctx context.Context) (Outcome, error) {
	return w.resolve(ctx, true)
}

// Rollback discards the staged operation on the backend. It never refreshes.
func (w *Workflow) Rollback(ctx context.Context) (Outcome, error) {
	return w.resolve(ctx, false)
}

// Discard empties the slot without calling the backend.
func (w *Workflow) Discard() (PendingTransaction, bool) {
	w.mutex.Lock()
	pending := w.pending
	w.pending = nil
	w.mutex.Unlock()

	if pending == nil {
		return PendingTransaction{}, false
	}
	w.emit(Event{Type: EventDiscarded, Transaction: pending})
	return *pending, true
}

func (w *Workflow) resolve(ctx context.Context, commit bool) (Outcome, error) {
	tx, ok := w.Pending()
	if !ok {
		return Outcome{}, ErrNothingPending
	}

	var envelope *backend.Envelope
	var err error
	if commit {
		envelope, err = w.resolver.CommitTransaction(ctx, tx.Token)
	} else {
		envelope, err = w.resolver.RollbackTransaction(ctx, tx.Token)
	}

	if err != nil {
		w.fail(tx, "❌ Errore: "+err.Error())
		return Outcome{}, err
	}
	if !envelope.Success {
		message := envelope.FailureMessage()
		if message == "" {
			message = "Errore sconosciuto"
		}
		w.fail(tx, "❌ Errore: "+message)
		return Outcome{Message: message}, nil
	}

	w.mutex.Lock()
	if w.pending != nil && w.pending.OpenedAt.Equal(tx.OpenedAt) && w.pending.Subject == tx.Subject {
		w.pending = nil
	}
	w.mutex.Unlock()

	eventType := EventRolledBack
	if commit {
		eventType = EventCommitted
		if tx.refresh != nil {
			tx.refresh(ctx)
		}
	}
	w.emit(Event{Type: eventType, Transaction: &tx, Message: envelope.Message})

	return Outcome{Success: true, Message: envelope.Message}, nil
}

func (w *Workflow) fail(tx PendingTransaction, message string) {
	w.mutex.Lock()
	if w.pending != nil {
		w.pending.Error = message
	}
	w.mutex.Unlock()

	tx.Error = message
	w.emit(Event{Type: EventFailed, Transaction: &tx, Message: message})
}

func (w *Workflow) emit(event Event) {
	w.mutex.Lock()
	listeners := append([]func(Event){}, w.listeners...)
	w.mutex.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}
