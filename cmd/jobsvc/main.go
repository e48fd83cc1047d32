package main

import (
	"context"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"

	config "github.com/lexiduel/vocab-services/configs"
	"github.com/lexiduel/vocab-services/internal/game/db"
	"github.com/lexiduel/vocab-services/internal/game/store"
	"github.com/lexiduel/vocab-services/internal/jobsvc"
	natscli "github.com/lexiduel/vocab-services/internal/nats"
)

const SERVICE_NAME = "job"

func init() {
	instanceId := config.CreateUniqueInstance(SERVICE_NAME)
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

	jobStore := store.NewJobStore(dbpool)
	sessionStore := store.NewSessionStore(dbpool)

	// Connect to NATS
	n, err := natscli.Connect()
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}

	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	runner := jobsvc.NewRunner(jobStore, sessionStore, n.Conn)

	ctx, cancel := context.WithCancel(context.Background())
	go runner.Run(ctx)
	log.Infof("%s service polling for due jobs", SERVICE_NAME)

	// Wait for interrupt signal to gracefully stop the runner
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	cancel()
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
