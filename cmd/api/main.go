package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"fleet-dispatch-api-server/config"
	"fleet-dispatch-api-server/internal/api/routes"
	"fleet-dispatch-api-server/internal/auth"
	"fleet-dispatch-api-server/internal/cache"
	"fleet-dispatch-api-server/internal/database"
	"fleet-dispatch-api-server/internal/dispatch"
	"fleet-dispatch-api-server/internal/identity"
	"fleet-dispatch-api-server/internal/logger"
	"fleet-dispatch-api-server/internal/s3"
	"fleet-dispatch-api-server/internal/socket"
	"fleet-dispatch-api-server/internal/store"
	"fleet-dispatch-api-server/internal/watch"
)

func main() {
	// 1. Load configuration (.env first so Viper can pick the vars up)
	godotenv.Load()
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		logrus.Fatalf("Could not load config: %v", err)
	}

	logger.Setup(cfg.Log)
	auth.SetSecret(cfg.JWT.Secret)

	jwtExpiration, err := time.ParseDuration(cfg.JWT.Expiration)
	if err != nil {
		logrus.Fatalf("Invalid jwt.expiration %q: %v", cfg.JWT.Expiration, err)
	}

	// 2. Connect to MongoDB
	db, err := store.Connect(cfg.Mongo.URI, cfg.Mongo.DBName)
	if err != nil {
		logrus.Fatalf("Could not connect to MongoDB: %v", err)
	}
	defer db.Client().Disconnect(context.Background())
	st := store.New(db)

	// 3. Pick the identity provider
	var provider identity.Provider
	switch cfg.Auth.Mode {
	case identity.ModeSession:
		provider = identity.NewSessionProvider(cfg.Auth.SessionEndpoint)
	default:
		provider = identity.NewDirectProvider(st, jwtExpiration)
		if err := database.SeedDefaultAdmin(db, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
			logrus.Fatalf("Could not seed default admin: %v", err)
		}
	}

	// 4. Redis snapshot cache (optional; the dashboard works without it)
	var snapshots *cache.Snapshots
	if cfg.Redis.Addr != "" {
		snapshots, err = cache.Connect(cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			logrus.Warnf("Redis unavailable, snapshot cache disabled: %v", err)
			snapshots = nil
		} else {
			defer snapshots.Close()
		}
	}

	// 5. WebSocket hub, seeded with the cached snapshots so the first
	// client does not have to wait for a change event
	wsHub := socket.NewHub()
	if snapshots != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		for _, t := range []string{socket.DriversSnapshotType, socket.OrdersSnapshotType} {
			if data, err := snapshots.Get(ctx, t); err == nil && data != nil {
				wsHub.Seed(t, data)
			}
		}
		cancel()
	}

	// 6. S3 uploader for report archiving (optional)
	var s3Uploader *s3.Uploader
	if cfg.S3.Bucket != "" {
		s3Uploader, err = s3.NewUploader(cfg.S3)
		if err != nil {
			logrus.Fatalf("Could not create S3 uploader: %v", err)
		}
	}

	// 7. Dispatch service and the change watcher
	dsp := dispatch.NewService(st, nil)

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	watcher := watch.New(st, wsHub, snapshots)
	go watcher.Run(watchCtx)

	// 8. HTTP server with graceful shutdown
	router := routes.SetupRouter(cfg, st, dsp, provider, s3Uploader, wsHub)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logrus.Infof("Starting API server on port %s (auth mode: %s)", cfg.Server.Port, provider.Mode())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("Failed to run server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	stopWatch()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
