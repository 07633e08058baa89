/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

// Package actions runs the destructive operations offered by the panels.
package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/salvavita/salvavita-console/audit"
	"github.com/salvavita/salvavita-console/backend"
	"github.com/salvavita/salvavita-console/models"
	"github.com/salvavita/salvavita-console/panel"
	"github.com/salvavita/salvavita-console/workflow"
)

// SystemEnte and RestartSubject identify the process restart in the
// transaction dialog.
const (
	SystemEnte     = "SYSTEM"
	RestartSubject = "Riavvio Tasks"
)

var ErrMissingEnte = errors.New("ente mancante")

// Confirmer asks the operator to approve a destructive operation.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

var (
	Approve = ConfirmFunc(func(context.Context, string) bool { return true })
	Decline = ConfirmFunc(func(context.Context, string) bool { return false })
)

// Backend is the part of the backend API the triggers call.
type Backend interface {
	DeleteProtocolli(ctx context.Context, ente string) (*backend.Envelope, error)
	DeleteProtoTemporaneo(ctx context.Context, ente string, sequLongID int64) (*backend.Envelope, error)
	AvviaProcessi(ctx context.Context) (*backend.Envelope, error)
}

// Result reports what a trigger did.
type Result struct {
	Declined bool
	Success  bool
	Message  string
	Pending  *workflow.PendingTransaction
}

// Triggers binds the destructive operations to the panels they act on.
type Triggers struct {
	Protocolli *panel.Panel
	Tasks      *panel.Panel
}

// ConfirmPrompt is the question asked before the bulk delete.
func ConfirmPrompt(ente string) string {
	return fmt.Sprintf("Sei sicuro di voler eliminare i protocolli in transizione per l'ente: %s?", ente)
}

// DeleteByEnte deletes every in-transition protocol of ente after the
// operator confirms. Declining issues no backend call.
func (t *Triggers) DeleteByEnte(ctx context.Context, client Backend, sessionID, ente string, confirmer Confirmer) (Result, error) {
	ente = models.NormalizeEnte(ente)
	if ente == "" {
		return Result{}, ErrMissingEnte
	}
	if !confirmer.Confirm(ctx, ConfirmPrompt(ente)) {
		return Result{Declined: true}, nil
	}

	t.Protocolli.ShowLoading()
	envelope, err := client.DeleteProtocolli(ctx, ente)
	result, err := t.settle(t.Protocolli, envelope, err)
	record(sessionID, models.AuditDeleteByEnte, "ente="+ente, result, err)
	if err != nil || !result.Success {
		return result, err
	}

	t.Protocolli.SetNotice("✅ " + result.Message)
	t.Protocolli.Refresh(ctx)
	return result, nil
}

// StageRecordDelete stages the deletion of one protocol and opens the
// transaction dialog. Nothing is deleted until commit.
func (t *Triggers) StageRecordDelete(ctx context.Context, client Backend, flow *workflow.Workflow, sessionID, ente string, sequLongID int64) (Result, error) {
	ente = models.NormalizeEnte(ente)
	if ente == "" {
		return Result{}, ErrMissingEnte
	}

	t.Protocolli.ShowLoading()
	envelope, err := client.DeleteProtoTemporaneo(ctx, ente, sequLongID)
	result, err := t.settle(t.Protocolli, envelope, err)
	record(sessionID, models.AuditStageDelete, fmt.Sprintf("ente=%s sequLongId=%d", ente, sequLongID), result, err)
	if err != nil || !result.Success {
		return result, err
	}

	pending := flow.Open(workflow.PendingTransaction{
		Ente:       ente,
		SequLongID: sequLongID,
		Records:    envelope.Affected(),
		Queries:    envelope.Queries.String(),
		Subject:    workflow.Subject(ente, sequLongID),
		Token:      envelope.TransactionID,
		Origin:     t.Protocolli.Name(),
	}, refresher(t.Protocolli))
	result.Pending = &pending
	return result, nil
}

// RestartProcesses stages the scheduler reset and opens the transaction
// dialog. Tasks are relaunched by the backend on commit.
func (t *Triggers) RestartProcesses(ctx context.Context, client Backend, flow *workflow.Workflow, sessionID string) (Result, error) {
	t.Tasks.ShowLoading()
	envelope, err := client.AvviaProcessi(ctx)
	result, err := t.settle(t.Tasks, envelope, err)
	record(sessionID, models.AuditRestartProcesses, "", result, err)
	if err != nil || !result.Success {
		return result, err
	}

	pending := flow.Open(workflow.PendingTransaction{
		Ente:    SystemEnte,
		Records: envelope.Affected(),
		Queries: envelope.Queries.String(),
		Subject: workflow.Subject(SystemEnte, RestartSubject),
		Token:   envelope.TransactionID,
		Origin:  t.Tasks.Name(),
	}, refresher(t.Tasks))
	result.Pending = &pending
	return result, nil
}

// settle turns a backend answer into a Result and updates the panel's
// inline error or busy marker accordingly.
func (t *Triggers) settle(p *panel.Panel, envelope *backend.Envelope, err error) (Result, error) {
	if err != nil {
		p.ShowError("❌ Errore nella comunicazione: " + err.Error())
		return Result{}, err
	}
	if !envelope.Success {
		message := envelope.FailureMessage()
		if message == "" {
			message = "Errore sconosciuto"
		}
		p.ShowError("❌ Errore: " + message)
		return Result{Message: message}, nil
	}
	p.HideLoading()
	return Result{Success: true, Message: envelope.Message}, nil
}

func refresher(p *panel.Panel) workflow.Refresher {
	return func(ctx context.Context) {
		p.Refresh(ctx)
	}
}

func record(sessionID, action, data string, result Result, err error) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error: " + err.Error()
	case !result.Success:
		outcome = "failed: " + result.Message
	}
	audit.Store(models.Audit{
		Session: sessionID,
		Action:  action,
		Data:    data,
		Outcome: outcome,
	})
}
