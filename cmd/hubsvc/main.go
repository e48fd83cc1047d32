package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	log "github.com/sirupsen/logrus"

	config "github.com/lexiduel/vocab-services/configs"
	"github.com/lexiduel/vocab-services/internal/game/db"
	"github.com/lexiduel/vocab-services/internal/game/service"
	"github.com/lexiduel/vocab-services/internal/game/store"
	"github.com/lexiduel/vocab-services/internal/hubsvc/broker"
	"github.com/lexiduel/vocab-services/internal/hubsvc/handlers"
	"github.com/lexiduel/vocab-services/internal/hubsvc/routes"
	"github.com/lexiduel/vocab-services/internal/hubsvc/ws"
	natscli "github.com/lexiduel/vocab-services/internal/nats"
)

const SERVICE_NAME = "hub"

func init() {
	instanceId := "001"
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	// pg connection
	dbpool, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.ClosePool()
	log.Printf("pg connection established successfully")

	userStore := store.NewUserStore(dbpool)
	userService := service.NewUserService(userStore)

	sessionStore := store.NewSessionStore(dbpool)
	answerStore := store.NewAnswerStore(dbpool)
	gameService := service.NewGameService(sessionStore, answerStore)

	jobStore := store.NewJobStore(dbpool)
	scheduleService := service.NewScheduleService(jobStore)

	// Connect to NATS
	n, err := natscli.Connect()
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}

	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	// Wire the hub
	registry := ws.NewRegistry()
	presence := ws.NewPresence(registry, userService)
	games := ws.NewCoordinator(gameService, userService, scheduleService, registry)
	hub := ws.NewHub(registry, presence, games)

	// subscribe to the job runner loopback
	b := broker.NewBroker(n.Conn, hub)
	sub, err := b.Subscribe(natscli.TopicHubLoopback)
	if err != nil {
		log.Errorf("Error: unable to subscribe to loopback topic %v", err)
		os.Exit(0)
	}

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(c.Handler)

	// to protect the service api from any over requests
	rateLimitStr := os.Getenv("RATE_LIMIT")
	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil {
		log.Fatalf("Invalid RATE_LIMIT value: %v", err)
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Initialize routes
	h := handlers.NewHandler(hub)
	routes.InitAuth()
	routes.SetRoutes(r, h)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + os.Getenv("HUB_SERVICE_PORT"),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	sub.Unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
