/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/salvavita/salvavita-console/configuration"
	"github.com/salvavita/salvavita-console/logs"
)

// MessageHandler turns a received payload into a Message, nil drops it.
type MessageHandler func(topic string, payload []byte) interface{}

// Message is a received MQTT message handed to the console.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

var (
	client   mqtt.Client
	messages chan Message
	handlers = map[string]MessageHandler{}
	mutex    sync.RWMutex
)

// Init creates the MQTT client and connects in background. It returns the
// channel of received messages, nil when MQTT is disabled.
func Init() chan Message {
	if !configuration.Config.MQTTEnabled {
		logs.Log("[INFO][MQTT] MQTT disabled - no broker configured")
		return nil
	}

	mutex.Lock()
	messages = make(chan Message, 100)
	out := messages
	mutex.Unlock()

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%s", configuration.Config.MQTTHost, configuration.Config.MQTTPort))
	opts.SetClientID("salvavita-console")
	opts.SetUsername(configuration.Config.MQTTUsername)
	opts.SetPassword(configuration.Config.MQTTPassword)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)

	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		logs.Log(fmt.Sprintf("[WARNING][MQTT] Connection lost: %v", err))
	})

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		logs.Log("[INFO][MQTT] Connected to MQTT broker")

		// subscriptions are lost with the session
		mutex.RLock()
		topics := make([]string, 0, len(handlers))
		for topic := range handlers {
			topics = append(topics, topic)
		}
		mutex.RUnlock()
		for _, topic := range topics {
			subscribeToTopic(topic)
		}
	})

	client = mqtt.NewClient(opts)

	// never block startup on the broker
	token := client.Connect()
	go func() {
		if token.Wait() && token.Error() != nil {
			logs.Log(fmt.Sprintf("[ERROR][MQTT] Failed to connect to MQTT broker: %v", token.Error()))
			logs.Log("[INFO][MQTT] Will retry connection in background...")
		}
	}()

	logs.Log("[INFO][MQTT] MQTT client initialized - connecting in background")
	return out
}

// Topic returns the full topic for a console sub-topic.
func Topic(sub string) string {
	return configuration.Config.MQTTTopic + "/" + sub
}

// SubscribeToTopic registers handler for topic. When the client is not yet
// connected the subscription happens on connect.
func SubscribeToTopic(topic string, handler MessageHandler) error {
	mutex.Lock()
	handlers[topic] = handler
	mutex.Unlock()

	if client == nil || !client.IsConnected() {
		return nil
	}
	return subscribeToTopic(topic)
}

func subscribeToTopic(topic string) error {
	token := client.Subscribe(topic, 0, func(client mqtt.Client, msg mqtt.Message) {
		handleMessage(msg.Topic(), msg.Payload())
	})

	if token.Wait() && token.Error() != nil {
		logs.Log(fmt.Sprintf("[ERROR][MQTT] Failed to subscribe to %s: %v", topic, token.Error()))
		return token.Error()
	}

	logs.Log(fmt.Sprintf("[INFO][MQTT] Subscribed to topic: %s", topic))
	return nil
}

func handleMessage(topic string, payload []byte) {
	mutex.RLock()
	handler, exists := handlers[topic]
	mutex.RUnlock()
	if !exists {
		logs.Log(fmt.Sprintf("[WARNING][MQTT] No handler found for topic: %s", topic))
		return
	}

	data := handler(topic, payload)
	if data == nil {
		return
	}

	// the read lock keeps Close from closing the channel under this send
	mutex.RLock()
	defer mutex.RUnlock()
	if messages == nil {
		return
	}
	select {
	case messages <- Message{Type: topic, Data: data}:
	default:
		logs.Log(fmt.Sprintf("[ERROR][MQTT] Message channel full, dropping message from topic: %s", topic))
	}
}

// Publish sends payload as JSON on a console sub-topic. It is a no-op when
// MQTT is disabled.
func Publish(sub string, payload interface{}) error {
	if client == nil {
		return nil
	}
	if !client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mqtt payload: %w", err)
	}

	token := client.Publish(Topic(sub), 0, false, body)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish on %s timed out", Topic(sub))
	}
	return token.Error()
}

func Close() {
	if client != nil && client.IsConnected() {
		client.Disconnect(250)
		logs.Log("[INFO][MQTT] MQTT client disconnected")
	}

	mutex.Lock()
	defer mutex.Unlock()
	if messages != nil {
		close(messages)
		messages = nil
	}
}
