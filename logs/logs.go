/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package logs

import (
	"fmt"
	"io"
	"log"
	"os"
)

var Logs *log.Logger

func Init(name string) {
	InitWithWriter(name, os.Stderr)
}

// InitWithWriter lets tests capture console logs.
func InitWithWriter(name string, w io.Writer) {
	Logs = log.New(w, name+" ", log.Ldate|log.Ltime|log.Lshortfile)
}

func Log(message string) {
	if Logs == nil {
		Init("salvavita-console")
	}
	Logs.Output(2, message)
}

// Logf formats like fmt.Sprintf, messages keep the "[LEVEL][AREA] text" shape.
func Logf(format string, args ...interface{}) {
	if Logs == nil {
		Init("salvavita-console")
	}
	Logs.Output(2, fmt.Sprintf(format, args...))
}
