package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pulsemetrics/internal"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("pulsemetrics: %v", err)
	}
}

func run() error {
	app, err := internal.NewApp()
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	log.Println("Applying database migrations")
	if err := app.DBManager.MigrateDatabase(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	if err := app.StartAsync(); err != nil {
		return fmt.Errorf("start application: %w", err)
	}
	log.Println("pulsemetrics is up")

	// Block until the process is told to stop, then drain in-flight work.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	sig := <-stop
	log.Printf("Caught %v, shutting down", sig)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Println("Shutdown complete")
	return nil
}
