package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mkovalev/accounts-api/internal/config"
	"github.com/mkovalev/accounts-api/internal/events"
	"github.com/mkovalev/accounts-api/internal/httpserver"
	"github.com/mkovalev/accounts-api/internal/middleware"
	"github.com/mkovalev/accounts-api/internal/repo"
	"github.com/mkovalev/accounts-api/internal/search"
	"github.com/mkovalev/accounts-api/internal/service"
	"github.com/mkovalev/accounts-api/internal/tokens"
	"github.com/mkovalev/accounts-api/pkg/db"
	"github.com/mkovalev/accounts-api/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.Env)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	database, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	searchClient, err := search.New(cfg)
	if err != nil {
		log.Fatalf("search init error: %v", err)
	}

	producer := events.NewProducer(cfg.KafkaBrokers)
	defer producer.Close()

	codec := tokens.NewCodec(cfg)
	svc := &service.AuthService{
		Repo:       &repo.GormRepo{DB: database},
		Codec:      codec,
		BcryptCost: cfg.BcryptCost,
		Producer:   producer,
		Search:     searchClient,
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(middleware.RequestLogger(logger))

	dev := cfg.IsDevelopment()
	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: svc, Dev: dev},
		UserHandler: &httpserver.UserHTTP{Svc: svc, Search: searchClient, Dev: dev},
		Gate:        middleware.NewAuthGate(codec),
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.ServerPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo shutdown", "error", err)
	}
}
