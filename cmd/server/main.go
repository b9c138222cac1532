// Package main starts the habit service HTTP server, wiring
// configuration, logging, the database, repositories, services, and
// handlers together.
package main

import (
	"cmp"
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/inhabitapp/inhabit/internal/config"
	"github.com/inhabitapp/inhabit/internal/db"
	"github.com/inhabitapp/inhabit/internal/logger"
	"github.com/inhabitapp/inhabit/internal/repository"
	"github.com/inhabitapp/inhabit/internal/server/handler/http"
	"github.com/inhabitapp/inhabit/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	options := config.Parse()
	addr := options.Port

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Purge expired tokens and soft-deleted habits in the background.
	db.StartCleaner(context.Background(), postgresDB,
		time.Hour,       // interval
		30*24*time.Hour, // retention: 30 days
		zapLogger,
	)

	authRepo := repository.NewPostgresAuthRepository(postgresDB)
	habitRepo := repository.NewPostgresHabitRepository(postgresDB)

	authService := service.NewAuthService(authRepo)
	habitService := service.NewHabitService(habitRepo)

	authHandler := &http.AuthHandler{AuthService: authService}
	habitsHandler := &http.HabitsHandler{HabitService: habitService}

	router := http.NewRouter(authHandler, habitsHandler, zapLogger)

	server := &nethttp.Server{
		Addr:    addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
