/*
 * Copyright (C) 2025 Nethesis S.r.l.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package main

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/salvavita/salvavita-console/backend"
	"github.com/salvavita/salvavita-console/configuration"
	"github.com/salvavita/salvavita-console/db"
	"github.com/salvavita/salvavita-console/logs"
	"github.com/salvavita/salvavita-console/methods"
	"github.com/salvavita/salvavita-console/middleware"
	"github.com/salvavita/salvavita-console/mqtt"
	"github.com/salvavita/salvavita-console/panel"
	"github.com/salvavita/salvavita-console/render"
	"github.com/salvavita/salvavita-console/socket"
	"github.com/salvavita/salvavita-console/store"
	"github.com/salvavita/salvavita-console/workflow"
)

// sessionTTL bounds how long an idle browser keeps its console session.
const sessionTTL = 12 * time.Hour

func main() {
	// init logger
	logs.Init("salvavita-console")

	// init configuration
	configuration.Init()
	render.SetLocation(configuration.Location())

	// audit trail is optional, a broken database must not stop the console
	if err := db.Init(); err != nil {
		logs.Log("[ERROR][MAIN] Audit database unavailable, continuing without audit: " + err.Error())
		db.Close()
	}
	defer db.Close()

	// init store
	store.ConsoleSessionInit(nil)
	middleware.InitSessions()

	// panels share one backend client, listing needs no session affinity
	shared := backend.NewFromConfig()
	panels := panel.NewSet(panel.NewProtocolli(shared), panel.NewTasks(shared))
	methods.Init(panels)

	wireEvents(panels)

	// mqtt refresh requests from other systems
	if messages := mqtt.Init(); messages != nil {
		if err := mqtt.InitRefreshSubscription(); err != nil {
			logs.Log("[ERROR][MQTT] Failed to subscribe to refresh requests: " + err.Error())
		}
		go handleRefreshCommands(messages, panels)
	}
	defer mqtt.Close()

	// create router
	router := createRouter()

	// background jobs
	c := createCron(shared, panels)
	c.Start()
	defer c.Stop()

	// first probe now, so the status indicator is right from the start
	go methods.CheckBackendHealth(context.Background(), shared)

	// run server
	if err := router.Run(configuration.Config.ListenAddress); err != nil {
		logs.Log("[CRITICAL][MAIN] Server stopped: " + err.Error())
	}
}

// wireEvents forwards panel and workflow changes to websocket clients and
// to the MQTT broker.
func wireEvents(panels *panel.Set) {
	connections := socket.GetConnectionManager()

	for _, p := range panels.All() {
		p.OnChange(func(snapshot panel.Snapshot) {
			connections.BroadcastGlobal(socket.EventPanel, snapshot)
		})
	}

	store.OnSessionOpen(func(session *store.ConsoleSession) {
		sessionID := session.ID
		session.Workflow.OnEvent(func(event workflow.Event) {
			connections.BroadcastToSession(sessionID, socket.EventWorkflow, event)
			if err := mqtt.Publish("workflow", gin.H{"session": sessionID, "event": event}); err != nil {
				logs.Log("[WARN][MQTT] Failed to publish workflow event: " + err.Error())
			}
		})
	})

	methods.OnBackendStatusChange(func(status methods.BackendStatus) {
		connections.BroadcastGlobal(socket.EventBackend, status)
		if err := mqtt.Publish("backend", status); err != nil {
			logs.Log("[WARN][MQTT] Failed to publish backend status: " + err.Error())
		}
	})
}

func handleRefreshCommands(messages chan mqtt.Message, panels *panel.Set) {
	for msg := range messages {
		command, ok := msg.Data.(mqtt.RefreshCommand)
		if !ok {
			continue
		}
		if command.Panel == "" {
			panels.RefreshAll(context.Background())
			continue
		}
		if p := panels.Get(command.Panel); p != nil {
			p.Refresh(context.Background())
		} else {
			logs.Log("[WARN][MQTT] Refresh requested for unknown panel " + command.Panel)
		}
	}
}

func createCron(prober methods.HealthProber, panels *panel.Set) *cron.Cron {
	c := cron.New()

	if spec := configuration.Config.HealthSchedule; spec != "" {
		if _, err := c.AddFunc(spec, func() {
			methods.CheckBackendHealth(context.Background(), prober)
		}); err != nil {
			logs.Log("[ERROR][CRON] Invalid health schedule " + spec + ": " + err.Error())
		}
	}

	// periodic refresh is off unless configured
	if spec := configuration.Config.RefreshSchedule; spec != "" {
		if _, err := c.AddFunc(spec, func() {
			panels.RefreshAll(context.Background())
		}); err != nil {
			logs.Log("[ERROR][CRON] Invalid refresh schedule " + spec + ": " + err.Error())
		}
	}

	if _, err := c.AddFunc("@hourly", func() {
		if removed := store.Expire(sessionTTL); removed > 0 {
			logs.Logf("[INFO][SESSION] Expired %d idle console sessions", removed)
		}
	}); err != nil {
		logs.Log("[ERROR][CRON] Invalid session expiry schedule: " + err.Error())
	}

	return c
}

func createRouter() *gin.Engine {
	// disable log to stdout when running in release mode
	if gin.Mode() == gin.ReleaseMode {
		gin.DefaultWriter = io.Discard
	}

	// init routers
	router := gin.New()
	router.RedirectTrailingSlash = false
	router.Use(
		gin.LoggerWithWriter(gin.DefaultWriter),
		gin.Recovery(),
	)

	// add default compression
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/ws"})))

	// cors configuration only in debug mode GIN_MODE=debug (default)
	if gin.Mode() == gin.DebugMode {
		corsConf := cors.DefaultConfig()
		corsConf.AllowHeaders = []string{"Content-Type", "Accept"}
		corsConf.AllowAllOrigins = true
		router.Use(cors.New(corsConf))
	}

	router.SetHTMLTemplate(render.Templates())
	if static, err := render.StaticFS(); err == nil {
		router.StaticFS("/static", http.FS(static))
	}

	// Test endpoint (no session)
	router.GET("/health", methods.Health)

	api := router.Group("/")
	api.Use(middleware.ConsoleSession())
	{
		api.GET("/", methods.Dashboard)
		api.GET("/backend/status", methods.GetBackendStatus)

		api.GET("/panels/:name", methods.GetPanel)
		api.POST("/panels/:name/refresh", methods.RefreshPanel)
		api.POST("/panels/:name/notice/dismiss", methods.DismissNotice)

		api.GET("/protocolli/confirm-delete", methods.ConfirmDeletePage)
		api.POST("/protocolli/delete-ente", methods.DeleteEnte)
		api.POST("/protocolli/delete-proto", methods.DeleteProto)

		api.POST("/tasks/avvia-processi", methods.AvviaProcessi)

		api.GET("/transaction", methods.GetTransaction)
		api.POST("/transaction/commit", methods.CommitTransaction)
		api.POST("/transaction/rollback", methods.RollbackTransaction)
		api.POST("/transaction/close", methods.CloseTransaction)

		api.GET("/audit", methods.GetAudits)

		api.GET("/ws", socket.WsHandler(greeting))
	}

	return router
}

// greeting sends a new websocket the current state of its console.
func greeting(sessionID string) []socket.Event {
	events := []socket.Event{
		{Type: socket.EventBackend, Data: methods.CurrentBackendStatus()},
	}
	for _, snapshot := range methods.Panels().Snapshots() {
		events = append(events, socket.Event{Type: socket.EventPanel, Data: snapshot})
	}
	if session, ok := store.Get(sessionID); ok {
		if pending, ok := session.Workflow.Pending(); ok {
			events = append(events, socket.Event{
				Type: socket.EventWorkflow,
				Data: workflow.Event{Type: workflow.EventOpened, Transaction: &pending},
			})
		}
	}
	return events
}
