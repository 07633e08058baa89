/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package methods

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/fatih/structs"
	"github.com/gin-gonic/gin"

	"github.com/salvavita/salvavita-console/actions"
	"github.com/salvavita/salvavita-console/middleware"
	"github.com/salvavita/salvavita-console/models"
)

// ConfirmDeletePage asks the operator to confirm the bulk delete of an
// organisation.
func ConfirmDeletePage(c *gin.Context) {
	ente := models.NormalizeEnte(c.Query("ente"))
	if ente == "" {
		respondBadRequest(c, actions.ErrMissingEnte.Error())
		return
	}

	prompt := actions.ConfirmPrompt(ente)
	if wantsJSON(c) {
		respondOK(c, prompt, gin.H{"ente": ente, "prompt": prompt})
		return
	}
	c.HTML(http.StatusOK, "confirm-delete", gin.H{"Ente": ente, "Prompt": prompt})
}

// DeleteEnte deletes the in-transition protocols of an organisation. The
// request must carry confirm=true; without it nothing reaches the backend.
func DeleteEnte(c *gin.Context) {
	console := middleware.Console(c)
	ente := models.NormalizeEnte(c.PostForm("ente"))
	if ente == "" {
		ente = models.NormalizeEnte(c.Query("ente"))
	}
	confirmed, _ := strconv.ParseBool(firstNonEmpty(c.PostForm("confirm"), c.Query("confirm")))

	confirmer := actions.ConfirmFunc(func(context.Context, string) bool {
		return confirmed
	})

	result, err := triggers.DeleteByEnte(c.Request.Context(), console.Client, console.ID, ente, confirmer)
	if errors.Is(err, actions.ErrMissingEnte) {
		respondBadRequest(c, err.Error())
		return
	}

	if result.Declined {
		if !wantsJSON(c) {
			c.Redirect(http.StatusSeeOther, "/protocolli/confirm-delete?ente="+url.QueryEscape(ente))
			return
		}
		prompt := actions.ConfirmPrompt(ente)
		c.JSON(http.StatusConflict, structs.Map(models.StatusConflict{
			Code:    409,
			Message: "confirmation required",
			Data:    gin.H{"ente": ente, "prompt": prompt},
		}))
		return
	}

	respondOutcome(c, result, err, gin.H{"ente": ente})
}

// DeleteProto stages the deletion of a single protocol.
func DeleteProto(c *gin.Context) {
	console := middleware.Console(c)
	ente := firstNonEmpty(c.PostForm("ente"), c.Query("ente"))
	rawID := firstNonEmpty(c.PostForm("sequLongId"), c.Query("sequLongId"))

	sequLongID, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil {
		respondBadRequest(c, "sequLongId non valido")
		return
	}

	result, err := triggers.StageRecordDelete(c.Request.Context(), console.Client, console.Workflow, console.ID, ente, sequLongID)
	if errors.Is(err, actions.ErrMissingEnte) {
		respondBadRequest(c, err.Error())
		return
	}

	respondOutcome(c, result, err, gin.H{"transaction": result.Pending})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
