/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package methods

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/fatih/structs"
	"github.com/gin-gonic/gin"

	"github.com/salvavita/salvavita-console/logs"
	"github.com/salvavita/salvavita-console/models"
)

// BackendStatus is the result of the last backend health probe.
type BackendStatus struct {
	Connected bool      `json:"connected" structs:"connected"`
	Error     string    `json:"error,omitempty" structs:"error"`
	CheckedAt time.Time `json:"checkedAt" structs:"checkedAt,omitnested"`
}

// Label is the text of the status indicator.
func (s BackendStatus) Label() string {
	if s.Connected {
		return "Connesso"
	}
	return "Disconnesso"
}

// HealthProber is satisfied by backend.Client.
type HealthProber interface {
	Health(ctx context.Context) error
}

var (
	statusMutex    sync.RWMutex
	backendStatus  BackendStatus
	statusChangeFn func(BackendStatus)
)

// OnBackendStatusChange registers fn to run when connectivity flips.
func OnBackendStatusChange(fn func(BackendStatus)) {
	statusMutex.Lock()
	statusChangeFn = fn
	statusMutex.Unlock()
}

// CheckBackendHealth probes the backend and records the outcome.
func CheckBackendHealth(ctx context.Context, prober HealthProber) BackendStatus {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	status := BackendStatus{Connected: true, CheckedAt: time.Now()}
	if err := prober.Health(ctx); err != nil {
		status.Connected = false
		status.Error = err.Error()
	}

	statusMutex.Lock()
	changed := backendStatus.CheckedAt.IsZero() || backendStatus.Connected != status.Connected
	backendStatus = status
	notify := statusChangeFn
	statusMutex.Unlock()

	if changed {
		if status.Connected {
			logs.Log("[INFO][HEALTH] Backend reachable")
		} else {
			logs.Log("[WARN][HEALTH] Backend unreachable: " + status.Error)
		}
		if notify != nil {
			notify(status)
		}
	}
	return status
}

// CurrentBackendStatus returns the last recorded probe.
func CurrentBackendStatus() BackendStatus {
	statusMutex.RLock()
	defer statusMutex.RUnlock()
	return backendStatus
}

// GetBackendStatus serves the last backend probe.
func GetBackendStatus(c *gin.Context) {
	status := CurrentBackendStatus()
	c.JSON(http.StatusOK, structs.Map(models.StatusOK{
		Code:    200,
		Message: status.Label(),
		Data:    status,
	}))
}
