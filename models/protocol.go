/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ProtocolRecord is a suspended protocol as listed by the backend.
// Numeric fields are pointers because the backend sends nulls.
type ProtocolRecord struct {
	Ente                  string    `json:"ente" structs:"ente"`
	SequLongID            int64     `json:"sequLongId" structs:"sequLongId"`
	AooUfficio            string    `json:"aooUfficio" structs:"aooUfficio"`
	CountRecuperiEjb      *int      `json:"countRecuperiEjb" structs:"countRecuperiEjb"`
	PresaVisione          *int      `json:"presaVisione" structs:"presaVisione"`
	IDTransizionePresente *int      `json:"idTransizionePresente" structs:"idTransizionePresente"`
	UtenteCreatore        string    `json:"utenteCreatore" structs:"utenteCreatore"`
	DataInserimento       Timestamp `json:"dataInserimento" structs:"dataInserimento"`
	StatoDocumento        *int      `json:"statoDocumento" structs:"statoDocumento"`
	EsitoDocumento        *int      `json:"esitoDocumento" structs:"esitoDocumento"`
	Errore                string    `json:"errore" structs:"errore"`
	IDAtmos               string    `json:"idAtmos,omitempty" structs:"idAtmos"`
	IChronicleID          string    `json:"iChronicleId,omitempty" structs:"iChronicleId"`
	NomeDocumento         string    `json:"nomeDocumento,omitempty" structs:"nomeDocumento"`
	SeqDocumento          *int64    `json:"seqDocumento,omitempty" structs:"seqDocumento"`
}

// HasOpenTransition reports whether the record can trigger the bulk delete
// for its organisation.
func (p ProtocolRecord) HasOpenTransition() bool {
	return p.IDTransizionePresente != nil && *p.IDTransizionePresente == 1
}

// ScheduledTask is a row of the backend scheduler table.
type ScheduledTask struct {
	Name        string    `json:"name" structs:"name"`
	ProssimoRun Timestamp `json:"prossimoRun" structs:"prossimoRun"`
}

// Ente is an organisation code known to the backend.
type Ente string

const (
	EnteEntrate Ente = "ENTRATE"
	EnteDemanio Ente = "DEMANIO"
	EnteAAMS    Ente = "AAMS"
	EnteSogei   Ente = "SOGEI"
	EnteAder    Ente = "ADER"
	EnteACN     Ente = "ACN"
	EnteEqui    Ente = "EQUI"
	EnteConsip  Ente = "CONSIP"
	EnteDPF     Ente = "DPF"
)

var knownEnti = []Ente{
	EnteEntrate, EnteDemanio, EnteAAMS, EnteSogei, EnteAder,
	EnteACN, EnteEqui, EnteConsip, EnteDPF,
}

// NormalizeEnte trims the code and upper-cases it when it matches a known
// organisation. Unknown codes are returned trimmed, the backend decides.
func NormalizeEnte(code string) string {
	code = strings.TrimSpace(code)
	for _, e := range knownEnti {
		if strings.EqualFold(string(e), code) {
			return string(e)
		}
	}
	return code
}

// Timestamp is a date as sent by the backend. Besides ISO strings the backend
// may serialise dates as epoch milliseconds or as [y,m,d,h,m,s,ns] arrays;
// both are normalised to an ISO local date-time. Empty means absent.
type Timestamp string

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Timestamp(s)
	case '[':
		var parts []int
		if err := json.Unmarshal(b, &parts); err != nil {
			return err
		}
		if len(parts) < 3 || parts[0] == 0 {
			*t = ""
			return nil
		}
		for len(parts) < 7 {
			parts = append(parts, 0)
		}
		local := time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], parts[6], time.UTC)
		*t = Timestamp(local.Format("2006-01-02T15:04:05"))
	default:
		var millis float64
		if err := json.Unmarshal(b, &millis); err != nil {
			return fmt.Errorf("unsupported timestamp %s: %w", string(b), err)
		}
		*t = Timestamp(time.UnixMilli(int64(millis)).UTC().Format(time.RFC3339))
	}
	return nil
}

func (t Timestamp) String() string {
	return string(t)
}
