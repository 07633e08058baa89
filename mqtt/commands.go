/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package mqtt

import (
	"encoding/json"
	"strings"

	"github.com/salvavita/salvavita-console/logs"
)

// RefreshCommand asks the console to reload a panel. An empty panel means
// every panel.
type RefreshCommand struct {
	Panel string `json:"panel"`
}

// InitRefreshSubscription listens for refresh requests published by other
// systems, e.g. the backend after a scheduled run.
func InitRefreshSubscription() error {
	return SubscribeToTopic(Topic("refresh"), handleRefreshMessage)
}

func handleRefreshMessage(topic string, payload []byte) interface{} {
	command := RefreshCommand{}
	if len(strings.TrimSpace(string(payload))) == 0 {
		return command
	}
	if err := json.Unmarshal(payload, &command); err != nil {
		logs.Log("[ERROR][MQTT] Failed to parse refresh command: " + err.Error())
		return nil
	}
	command.Panel = strings.TrimSpace(command.Panel)
	return command
}
