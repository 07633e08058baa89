/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package methods

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salvavita/salvavita-console/panel"
)

func lookupPanel(c *gin.Context) *panel.Panel {
	p := panels.Get(c.Param("name"))
	if p == nil {
		respondNotFound(c, "panel not found")
	}
	return p
}

// GetPanel serves one panel as HTML fragment or JSON snapshot.
func GetPanel(c *gin.Context) {
	p := lookupPanel(c)
	if p == nil {
		return
	}

	snapshot := p.Snapshot()
	if wantsJSON(c) {
		respondOK(c, string(snapshot.State), snapshot)
		return
	}
	c.HTML(http.StatusOK, "panel", snapshot)
}

// RefreshPanel runs one fetch-and-render cycle. A failed fetch is not an
// HTTP error: the panel itself carries the error banner.
func RefreshPanel(c *gin.Context) {
	p := lookupPanel(c)
	if p == nil {
		return
	}

	snapshot := p.Refresh(c.Request.Context())
	respondOK(c, string(snapshot.State), snapshot)
}

func DismissNotice(c *gin.Context) {
	p := lookupPanel(c)
	if p == nil {
		return
	}

	p.DismissNotice()
	respondOK(c, "notice dismissed", nil)
}
