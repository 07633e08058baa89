/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/salvavita/salvavita-console/models"
)

const (
	PathHealth                = "/api/health"
	PathProtocolliSospesi     = "/api/protocolli-sospesi"
	PathScheduledTasks        = "/api/scheduled-tasks"
	PathDeleteProtocolli      = "/api/delete-protocolli"
	PathDeleteProtoTemporaneo = "/api/delete-proto-temporaneo"
	PathAvviaProcessi         = "/api/avvia-processi"
	PathCommitTransaction     = "/api/commit-transaction"
	PathRollbackTransaction   = "/api/rollback-transaction"
)

// Envelope is the loose response shape shared by backend endpoints. Which
// fields are filled depends on the endpoint.
type Envelope struct {
	Success         bool            `json:"success"`
	Message         string          `json:"message,omitempty"`
	Error           string          `json:"error,omitempty"`
	Data            json.RawMessage `json:"data,omitempty"`
	TotalRecords    *int            `json:"totalRecords,omitempty"`
	RecordsAffected *int            `json:"recordsAffected,omitempty"`
	Queries         Queries         `json:"queries,omitempty"`
	Note            string          `json:"note,omitempty"`
	TransactionID   string          `json:"transactionId,omitempty"`
}

// FailureMessage returns what the backend said about a failure, empty when
// it said nothing.
func (e *Envelope) FailureMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// Affected returns recordsAffected, zero when absent.
func (e *Envelope) Affected() int {
	if e.RecordsAffected == nil {
		return 0
	}
	return *e.RecordsAffected
}

// Queries holds the staged operations of a pending transaction. The backend
// sends either a plain count or the list of statements.
type Queries struct {
	Count      int
	Statements []string
}

func (q *Queries) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*q = Queries{}
		return nil
	}

	switch b[0] {
	case '[':
		var statements []string
		if err := json.Unmarshal(b, &statements); err != nil {
			return err
		}
		*q = Queries{Count: len(statements), Statements: statements}
	case '"':
		var statement string
		if err := json.Unmarshal(b, &statement); err != nil {
			return err
		}
		*q = Queries{Count: 1, Statements: []string{statement}}
	default:
		var count int
		if err := json.Unmarshal(b, &count); err != nil {
			return err
		}
		*q = Queries{Count: count}
	}
	return nil
}

func (q Queries) MarshalJSON() ([]byte, error) {
	if q.Statements != nil {
		return json.Marshal(q.Statements)
	}
	return json.Marshal(q.Count)
}

// String renders the queries the way the confirmation modal shows them.
func (q Queries) String() string {
	if len(q.Statements) > 0 {
		return strings.Join(q.Statements, ",")
	}
	return strconv.Itoa(q.Count)
}

// ListResult is a list endpoint response with its records decoded.
type ListResult[T any] struct {
	Envelope
	Records []T
}

// Total returns totalRecords, or the number of decoded records when the
// backend omitted it.
func (r *ListResult[T]) Total() int {
	if r.TotalRecords != nil {
		return *r.TotalRecords
	}
	return len(r.Records)
}

func list[T any](ctx context.Context, c *Client, path string) (*ListResult[T], error) {
	result := &ListResult[T]{}
	if err := c.Do(ctx, http.MethodGet, path, nil, &result.Envelope); err != nil {
		return nil, err
	}

	result.Records = []T{}
	if result.Success && len(result.Data) > 0 && !bytes.Equal(result.Data, []byte("null")) {
		if err := json.Unmarshal(result.Data, &result.Records); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCommunication, err)
		}
	}
	return result, nil
}

func (c *Client) post(ctx context.Context, path string, query url.Values) (*Envelope, error) {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	envelope := &Envelope{}
	if err := c.Do(ctx, http.MethodPost, path, nil, envelope); err != nil {
		return nil, err
	}
	return envelope, nil
}

// Health probes the backend; any JSON answer counts as reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.Do(ctx, http.MethodGet, PathHealth, nil, nil)
}

func (c *Client) ProtocolliSospesi(ctx context.Context) (*ListResult[models.ProtocolRecord], error) {
	return list[models.ProtocolRecord](ctx, c, PathProtocolliSospesi)
}

func (c *Client) ScheduledTasks(ctx context.Context) (*ListResult[models.ScheduledTask], error) {
	return list[models.ScheduledTask](ctx, c, PathScheduledTasks)
}

// DeleteProtocolli deletes the in-transition protocols of an organisation.
// The backend commits this one immediately.
func (c *Client) DeleteProtocolli(ctx context.Context, ente string) (*Envelope, error) {
	return c.post(ctx, PathDeleteProtocolli, url.Values{"ente": {ente}})
}

// DeleteProtoTemporaneo stages the deletion of one record. The backend keeps
// the transaction open until commit or rollback.
func (c *Client) DeleteProtoTemporaneo(ctx context.Context, ente string, sequLongID int64) (*Envelope, error) {
	return c.post(ctx, PathDeleteProtoTemporaneo, url.Values{
		"ente":       {ente},
		"sequLongId": {strconv.FormatInt(sequLongID, 10)},
	})
}

// AvviaProcessi stages the scheduler reset; tasks are relaunched on commit.
func (c *Client) AvviaProcessi(ctx context.Context) (*Envelope, error) {
	return c.post(ctx, PathAvviaProcessi, nil)
}

// CommitTransaction commits the staged operation. The token is sent only
// when the staging response carried one.
func (c *Client) CommitTransaction(ctx context.Context, token string) (*Envelope, error) {
	return c.post(ctx, PathCommitTransaction, tokenQuery(token))
}

func (c *Client) RollbackTransaction(ctx context.Context, token string) (*Envelope, error) {
	return c.post(ctx, PathRollbackTransaction, tokenQuery(token))
}

func tokenQuery(token string) url.Values {
	if token == "" {
		return nil
	}
	return url.Values{"transactionId": {token}}
}
