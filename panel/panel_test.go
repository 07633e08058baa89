/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package panel

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salvavita/salvavita-console/backend"
	"github.com/salvavita/salvavita-console/utils"
)

func TestRefreshEmptyList(t *testing.T) {
	mock := utils.NewMockBackend()
	defer mock.Close()
	mock.SetResponse("/api/protocolli-sospesi", http.StatusOK, `{"success":true,"data":[],"totalRecords":0}`)

	p := NewProtocolli(backend.New(mock.URL(), 0))
	snapshot := p.Refresh(context.Background())

	assert.Equal(t, StateSuccess, snapshot.State)
	assert.Equal(t, "✓ Caricati 0 record", snapshot.Success)
	assert.Contains(t, string(snapshot.Content), "Nessun record trovato")
	assert.NotContains(t, string(snapshot.Content), "record-row")
}

func TestRefreshRendersRowsInOrder(t *testing.T) {
	mock := utils.NewMockBackend()
	defer mock.Close()

	p := NewProtocolli(backend.New(mock.URL(), 0))
	snapshot := p.Refresh(context.Background())

	require.Equal(t, StateSuccess, snapshot.State)
	content := string(snapshot.Content)
	assert.Equal(t, 2, strings.Count(content, `class="record-row"`))
	assert.Less(t, strings.Index(content, "ENTRATE"), strings.Index(content, "DEMANIO"))
	assert.Equal(t, "✓ Caricati 2 record", snapshot.Success)
}

func TestRefreshIsIdempotent(t *testing.T) {
	mock := utils.NewMockBackend()
	defer mock.Close()

	p := NewTasks(backend.New(mock.URL(), 0))
	first := p.Refresh(context.Background())
	second := p.Refresh(context.Background())

	assert.Equal(t, first.Content, second.Content)
	assert.Equal(t, first.Success, second.Success)
	assert.Len(t, mock.Calls("/api/scheduled-tasks"), 2)
}

func TestRefreshApplicationFailure(t *testing.T) {
	mock := utils.NewMockBackend()
	defer mock.Close()

	mock.SetResponse("/api/scheduled-tasks", http.StatusInternalServerError, `{"success":false,"message":"ORA-00942"}`)
	p := NewTasks(backend.New(mock.URL(), 0))
	snapshot := p.Refresh(context.Background())
	assert.Equal(t, StateError, snapshot.State)
	assert.Equal(t, "❌ Errore: ORA-00942", snapshot.Error)
	assert.Empty(t, snapshot.Content)

	mock.SetResponse("/api/scheduled-tasks", http.StatusOK, `{"success":false}`)
	snapshot = p.Refresh(context.Background())
	assert.Equal(t, "❌ Errore: Errore sconosciuto", snapshot.Error)
}

func TestFailureAfterSuccessClearsTotal(t *testing.T) {
	mock := utils.NewMockBackend()
	defer mock.Close()

	p := NewProtocolli(backend.New(mock.URL(), 0))
	require.Equal(t, 2, p.Refresh(context.Background()).Total)

	loadingTotal := -1
	p.OnChange(func(s Snapshot) {
		if s.State == StateLoading {
			loadingTotal = s.Total
		}
	})
	mock.SetResponse("/api/protocolli-sospesi", http.StatusOK, `{"success":false,"message":"ORA-01017"}`)
	snapshot := p.Refresh(context.Background())

	assert.Equal(t, StateError, snapshot.State)
	assert.Equal(t, 0, snapshot.Total)
	assert.Equal(t, 0, loadingTotal)
}

func TestRefreshCommunicationFailure(t *testing.T) {
	mock := utils.NewMockBackend()
	mock.SetResponse("/api/protocolli-sospesi", http.StatusBadGateway, "<html>proxy error</html>")
	defer mock.Close()

	p := NewProtocolli(backend.New(mock.URL(), 0))
	snapshot := p.Refresh(context.Background())

	assert.Equal(t, StateError, snapshot.State)
	assert.True(t, strings.HasPrefix(snapshot.Error, "❌ Errore di comunicazione: "))
}

func TestStateTransitionsAreNotified(t *testing.T) {
	p := New("test", "Test", func(ctx context.Context) (Result, error) {
		return Result{Success: true, Total: 1, Content: "<p>x</p>"}, nil
	})

	var states []State
	p.OnChange(func(s Snapshot) {
		states = append(states, s.State)
	})

	assert.Equal(t, StateIdle, p.Snapshot().State)
	p.Refresh(context.Background())

	assert.Equal(t, []State{StateLoading, StateSuccess}, states)
}

func TestLastResolvedRefreshWins(t *testing.T) {
	release := make(chan struct{})
	var calls int
	var mutex sync.Mutex

	p := New("test", "Test", func(ctx context.Context) (Result, error) {
		mutex.Lock()
		calls++
		n := calls
		mutex.Unlock()
		if n == 1 {
			<-release
		}
		return Result{Success: true, Total: n, Content: "call"}, nil
	})

	done := make(chan struct{})
	go func() {
		p.Refresh(context.Background())
		close(done)
	}()

	// wait for the slow fetch to start
	for {
		mutex.Lock()
		started := calls == 1
		mutex.Unlock()
		if started {
			break
		}
	}

	p.Refresh(context.Background())
	assert.Equal(t, 2, p.Snapshot().Total)

	close(release)
	<-done
	assert.Equal(t, 1, p.Snapshot().Total)
	assert.Equal(t, fmt.Sprintf("✓ Caricati %d record", 1), p.Snapshot().Success)
}

func TestInlineErrorAndNotice(t *testing.T) {
	p := New("test", "Test", func(ctx context.Context) (Result, error) {
		return Result{Success: true, Content: "<p>x</p>"}, nil
	})
	p.Refresh(context.Background())

	p.ShowLoading()
	assert.True(t, p.Snapshot().Busy)

	p.ShowError("❌ Errore: boom")
	snapshot := p.Snapshot()
	assert.False(t, snapshot.Busy)
	assert.Equal(t, "❌ Errore: boom", snapshot.Error)
	assert.Equal(t, StateSuccess, snapshot.State)
	assert.NotEmpty(t, snapshot.Content)

	p.SetNotice("✅ fatto")
	assert.Equal(t, "✅ fatto", p.Snapshot().Notice)
	p.Refresh(context.Background())
	assert.Equal(t, "✅ fatto", p.Snapshot().Notice)
	assert.Empty(t, p.Snapshot().Error)
	p.DismissNotice()
	assert.Empty(t, p.Snapshot().Notice)
}

func TestSet(t *testing.T) {
	mock := utils.NewMockBackend()
	defer mock.Close()
	client := backend.New(mock.URL(), 0)

	set := NewSet(NewProtocolli(client), NewTasks(client))
	assert.NotNil(t, set.Get(NameTasks))
	assert.Nil(t, set.Get("missing"))

	set.RefreshAll(context.Background())
	snapshots := set.Snapshots()
	require.Len(t, snapshots, 2)
	assert.Equal(t, NameProtocolli, snapshots[0].Name)
	assert.Equal(t, StateSuccess, snapshots[1].State)
}
