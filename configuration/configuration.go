/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package configuration

import (
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const envPrefix = "SALVAVITA_CONSOLE_"

type Configuration struct {
	ListenAddress   string        `json:"listen_address"`
	BackendProtocol string        `json:"backend_protocol"`
	BackendEndpoint string        `json:"backend_endpoint"`
	BackendPath     string        `json:"backend_path"`
	BackendTimeout  time.Duration `json:"backend_timeout"`
	SessionSecret   string        `json:"session_secret"`
	SecureCookies   bool          `json:"secure_cookies"`
	TimeZone        string        `json:"time_zone"`
	HealthSchedule  string        `json:"health_schedule"`
	RefreshSchedule string        `json:"refresh_schedule"`

	AuditMariaDBHost     string `json:"audit_mariadb_host"`
	AuditMariaDBPort     string `json:"audit_mariadb_port"`
	AuditMariaDBUser     string `json:"audit_mariadb_user"`
	AuditMariaDBPassword string `json:"audit_mariadb_password"`
	AuditMariaDBDatabase string `json:"audit_mariadb_database"`

	MQTTEnabled  bool   `json:"mqtt_enabled"`
	MQTTHost     string `json:"mqtt_host"`
	MQTTPort     string `json:"mqtt_port"`
	MQTTUsername string `json:"mqtt_username"`
	MQTTPassword string `json:"mqtt_password"`
	MQTTTopic    string `json:"mqtt_topic"`
}

var Config = Configuration{}

func Init() {
	// load optional env file, real environment always wins
	envFile := os.Getenv(envPrefix + "ENV_FILE")
	if envFile == "" {
		envFile = "salvavita-console.env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			os.Stderr.WriteString("failed to load " + envFile + ": " + err.Error() + "\n")
		}
	}

	Config.ListenAddress = getEnv("LISTEN_ADDRESS", "127.0.0.1:8080")

	// backend the console talks to
	Config.BackendProtocol = getEnv("BACKEND_PROTOCOL", "http")
	Config.BackendEndpoint = getEnv("BACKEND_ENDPOINT", "127.0.0.1:8081")
	Config.BackendPath = getEnv("BACKEND_PATH", "/salvavita")

	// zero means no timeout on backend calls
	Config.BackendTimeout = time.Duration(getEnvInt("BACKEND_TIMEOUT_SEC", 0)) * time.Second

	// session cookie signing key; a random one invalidates sessions on restart
	Config.SessionSecret = getEnv("SESSION_SECRET", "")
	if Config.SessionSecret == "" {
		Config.SessionSecret = uuid.NewString() + uuid.NewString()
	}
	Config.SecureCookies = getEnvBool("SECURE_COOKIES", false)

	Config.TimeZone = getEnv("TIME_ZONE", "Europe/Rome")

	// cron specs, empty disables the job
	Config.HealthSchedule = getEnv("HEALTH_SCHEDULE", "@every 1m")
	Config.RefreshSchedule = getEnv("REFRESH_SCHEDULE", "")

	// audit database, disabled when host is empty
	Config.AuditMariaDBHost = getEnv("AUDIT_MARIADB_HOST", "")
	Config.AuditMariaDBPort = getEnv("AUDIT_MARIADB_PORT", "3306")
	Config.AuditMariaDBUser = getEnv("AUDIT_MARIADB_USER", "salvavita")
	Config.AuditMariaDBPassword = getEnv("AUDIT_MARIADB_PASSWORD", "")
	Config.AuditMariaDBDatabase = getEnv("AUDIT_MARIADB_DATABASE", "salvavita_console")

	// mqtt event publishing
	Config.MQTTHost = getEnv("MQTT_HOST", "")
	Config.MQTTPort = getEnv("MQTT_PORT", "1883")
	Config.MQTTUsername = getEnv("MQTT_USERNAME", "")
	Config.MQTTPassword = getEnv("MQTT_PASSWORD", "")
	Config.MQTTTopic = getEnv("MQTT_TOPIC", "salvavita/console/events")
	Config.MQTTEnabled = Config.MQTTHost != ""
}

// BackendBaseURL returns the URL prefix every backend endpoint is relative to.
func BackendBaseURL() string {
	return Config.BackendProtocol + "://" + Config.BackendEndpoint + Config.BackendPath
}

// AuditEnabled reports whether the audit database is configured.
func AuditEnabled() bool {
	return Config.AuditMariaDBHost != ""
}

// Location returns the configured time zone, falling back to local time.
func Location() *time.Location {
	loc, err := time.LoadLocation(Config.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(envPrefix + key))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(os.Getenv(envPrefix + key))
	if err != nil {
		return fallback
	}
	return value
}
