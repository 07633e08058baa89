/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/salvavita/salvavita-console/configuration"
	"github.com/salvavita/salvavita-console/logs"
)

var (
	DB          *sql.DB
	sqlOpenFunc = sql.Open
)

//go:embed create.sql
var createSchema string

// DSN builds the MariaDB connection string for the audit database.
func DSN() string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC",
		configuration.Config.AuditMariaDBUser,
		configuration.Config.AuditMariaDBPassword,
		configuration.Config.AuditMariaDBHost,
		configuration.Config.AuditMariaDBPort,
		configuration.Config.AuditMariaDBDatabase,
	)
}

// Init opens the audit database pool and creates the schema. It does nothing
// when no audit host is configured.
func Init() error {
	if !configuration.AuditEnabled() {
		logs.Log("[INFO][DB] Audit database not configured, audit trail disabled")
		return nil
	}

	var err error
	DB, err = sqlOpenFunc("mysql", DSN())
	if err != nil {
		logs.Log("[CRITICAL][DB] Failed to open database connection: " + err.Error())
		return err
	}

	DB.SetMaxOpenConns(10)
	DB.SetMaxIdleConns(2)
	DB.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := DB.PingContext(ctx); err != nil {
		logs.Log("[CRITICAL][DB] Failed to ping database: " + err.Error())
		return err
	}

	logs.Log("[INFO][DB] Database connection established successfully")

	if err := loadCreateSchema(); err != nil {
		logs.Log("[CRITICAL][DB] Failed to create schema: " + err.Error())
		return err
	}
	return nil
}

// Enabled reports whether a pool is open.
func Enabled() bool {
	return DB != nil
}

func Close() error {
	if DB != nil {
		err := DB.Close()
		DB = nil
		return err
	}
	return nil
}

func loadCreateSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := DB.ExecContext(ctx, createSchema); err != nil {
		return err
	}

	logs.Log("[INFO][DB] Schema created/verified successfully")
	return nil
}

// HealthCheck pings the audit database.
func HealthCheck() error {
	if DB == nil {
		return fmt.Errorf("audit database not initialized")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return DB.PingContext(ctx)
}
