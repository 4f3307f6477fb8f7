package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dukerupert/bywater/internal/backup"
	"github.com/dukerupert/bywater/internal/database"
	"github.com/dukerupert/bywater/internal/logging"
	"github.com/dukerupert/bywater/internal/server"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	godotenv.Load()

	logger := logging.Setup(os.Getenv("BYWATER_LOG_LEVEL"))

	port := os.Getenv("BYWATER_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("BYWATER_DB_PATH")
	if dbPath == "" {
		dbPath = "bywater.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	subscriber := os.Getenv("BYWATER_PUSH_SUBSCRIBER")
	if subscriber == "" {
		subscriber = "mailto:admin@localhost"
	}

	scheduleHour := 3
	if raw := os.Getenv("BYWATER_BACKUP_HOUR"); raw != "" {
		if h, err := strconv.Atoi(raw); err == nil && h >= 0 && h < 24 {
			scheduleHour = h
		}
	}

	cfg := server.Config{
		VAPIDPublicKey:  os.Getenv("BYWATER_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("BYWATER_VAPID_PRIVATE_KEY"),
		PushSubscriber:  subscriber,
		Backup: backup.Config{
			S3: backup.S3Config{
				Endpoint:  os.Getenv("BYWATER_S3_ENDPOINT"),
				Bucket:    os.Getenv("BYWATER_S3_BUCKET"),
				Region:    os.Getenv("BYWATER_S3_REGION"),
				AccessKey: os.Getenv("BYWATER_S3_ACCESS_KEY"),
				SecretKey: os.Getenv("BYWATER_S3_SECRET_KEY"),
			},
			DBPath:       dbPath,
			Passphrase:   os.Getenv("BYWATER_BACKUP_PASSPHRASE"),
			ScheduleHour: scheduleHour,
		},
	}

	srv := server.New(db, cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sched := srv.PushScheduler(); sched != nil {
		sched.Start(ctx)
		defer sched.Stop()
	}
	if mgr := srv.BackupManager(); mgr.Enabled() {
		mgr.Start(ctx)
		defer mgr.Stop()
	}

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("bywater listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
