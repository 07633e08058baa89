/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

// Package backend wraps the JSON REST API of the salvavita backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/salvavita/salvavita-console/configuration"
	"github.com/salvavita/salvavita-console/logs"
)

// ErrCommunication marks transport and parse failures, as opposed to the
// backend answering with success=false.
var ErrCommunication = errors.New("backend non raggiungibile")

// Client issues JSON requests against one backend base URL. Every client has
// its own cookie jar, so the backend session that owns a staged transaction
// stays bound to the client that staged it.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for baseURL. A zero timeout means requests never time
// out on their own; the caller's context still cancels them.
func New(baseURL string, timeout time.Duration) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}
}

// NewFromConfig creates a client for the configured backend.
func NewFromConfig() *Client {
	return New(configuration.BackendBaseURL(), configuration.Config.BackendTimeout)
}

// Do sends a JSON request and decodes the JSON response into out. An empty
// method means GET and the payload is only serialised for other methods.
// The status code is not inspected: any parseable body is a success here.
func (c *Client) Do(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if payload != nil && method != http.MethodGet {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode payload for %s: %w", path, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCommunication, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		logs.Logf("[ERROR][BACKEND] request failed method=%s path=%s err=%v", method, path, err)
		return fmt.Errorf("%w: %v", ErrCommunication, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		logs.Logf("[ERROR][BACKEND] failed to read response method=%s path=%s err=%v", method, path, err)
		return fmt.Errorf("%w: %v", ErrCommunication, err)
	}

	if out == nil {
		if !json.Valid(raw) {
			logs.Logf("[ERROR][BACKEND] invalid JSON method=%s path=%s status=%d", method, path, resp.StatusCode)
			return fmt.Errorf("%w: risposta non JSON (HTTP %d)", ErrCommunication, resp.StatusCode)
		}
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		logs.Logf("[ERROR][BACKEND] invalid JSON method=%s path=%s status=%d err=%v", method, path, resp.StatusCode, err)
		return fmt.Errorf("%w: %v", ErrCommunication, err)
	}

	return nil
}
