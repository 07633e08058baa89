/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package utils

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
)

// BackendPath is the context path the mock backend serves under.
const BackendPath = "/salvavita"

// Call is a request received by the mock backend.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Cookie string
}

// MockBackend is an in-process salvavita backend for tests. Every endpoint
// answers with a canned success body unless overridden with SetResponse.
type MockBackend struct {
	Server *httptest.Server

	mutex     sync.Mutex
	calls     []Call
	responses map[string]mockResponse
	sessions  int
}

type mockResponse struct {
	status int
	body   string
}

var defaultResponses = map[string]string{
	"/api/health":                  `{"status":"UP"}`,
	"/api/protocolli-sospesi":      `{"success":true,"data":[{"ente":"ENTRATE","sequLongId":101,"aooUfficio":"AOO-1","countRecuperiEjb":2,"presaVisione":0,"idTransizionePresente":1,"utenteCreatore":"mrossi","dataInserimento":"2025-05-06T10:30:00","statoDocumento":3,"esitoDocumento":0,"errore":null},{"ente":"DEMANIO","sequLongId":102,"aooUfficio":null,"countRecuperiEjb":null,"presaVisione":null,"idTransizionePresente":0,"utenteCreatore":null,"dataInserimento":null,"statoDocumento":null,"esitoDocumento":null,"errore":"timeout"}],"totalRecords":2}`,
	"/api/scheduled-tasks":         `{"success":true,"data":[{"name":"recuperoProtocolli","prossimoRun":"2025-05-06T11:00:00"},{"name":"pulizia","prossimoRun":null}],"totalRecords":2}`,
	"/api/delete-protocolli":       `{"success":true,"message":"Eliminati 3 protocolli","recordsAffected":3}`,
	"/api/delete-proto-temporaneo": `{"success":true,"message":"Operazione preparata","recordsAffected":2,"queries":4,"transactionId":"tx-proto"}`,
	"/api/avvia-processi":          `{"success":true,"message":"Operazione preparata","recordsAffected":5,"queries":7,"transactionId":"tx-tasks"}`,
	"/api/commit-transaction":      `{"success":true,"message":"Transazione confermata"}`,
	"/api/rollback-transaction":    `{"success":true,"message":"Transazione annullata"}`,
}

// NewMockBackend starts the mock backend.
func NewMockBackend() *MockBackend {
	m := &MockBackend{responses: map[string]mockResponse{}}
	m.Server = httptest.NewServer(http.HandlerFunc(m.serve))
	return m
}

// URL returns the base URL clients should be configured with.
func (m *MockBackend) URL() string {
	return m.Server.URL + BackendPath
}

// Endpoint returns host:port, the form the configuration expects.
func (m *MockBackend) Endpoint() string {
	return strings.TrimPrefix(m.Server.URL, "http://")
}

func (m *MockBackend) Close() {
	m.Server.Close()
}

// SetResponse overrides the body and status of an endpoint, e.g.
// SetResponse("/api/commit-transaction", 500, `{"success":false}`).
func (m *MockBackend) SetResponse(path string, status int, body string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.responses[path] = mockResponse{status: status, body: body}
}

// Reset forgets overrides and recorded calls.
func (m *MockBackend) Reset() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.responses = map[string]mockResponse{}
	m.calls = nil
}

// Calls returns the requests received so far, optionally only those for path.
func (m *MockBackend) Calls(path string) []Call {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	result := []Call{}
	for _, call := range m.calls {
		if path == "" || call.Path == path {
			result = append(result, call)
		}
	}
	return result
}

func (m *MockBackend) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, BackendPath)

	m.mutex.Lock()
	cookie := ""
	if c, err := r.Cookie("JSESSIONID"); err == nil {
		cookie = c.Value
	} else {
		// one backend session per client, as the servlet container does
		m.sessions++
		cookie = fmt.Sprintf("backend-session-%d", m.sessions)
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: cookie, Path: "/"})
	}
	m.calls = append(m.calls, Call{Method: r.Method, Path: path, Query: r.URL.Query(), Cookie: cookie})
	override, hasOverride := m.responses[path]
	m.mutex.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if hasOverride {
		w.WriteHeader(override.status)
		w.Write([]byte(override.body))
		return
	}
	body, ok := defaultResponses[path]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Not Found","message":"No endpoint ` + path + `"}`))
		return
	}
	w.Write([]byte(body))
}
