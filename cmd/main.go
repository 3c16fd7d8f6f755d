package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bakeshop/internal/adapter/auth"
	httpadapter "bakeshop/internal/adapter/http"
	"bakeshop/internal/adapter/logger"
	"bakeshop/internal/adapter/postgres"
	"bakeshop/internal/adapter/rabbitmq"
	"bakeshop/internal/adapter/rediscache"
	"bakeshop/internal/app/menu"
	"bakeshop/internal/app/orders"
	"bakeshop/internal/app/reports"
	"bakeshop/internal/app/session"
	"bakeshop/internal/config"
	"bakeshop/internal/domain"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the configuration file")
	port := flag.Int("port", 0, "HTTP port, overrides the configured one")
	flag.Parse()

	lgr := logger.New("bakeshop")

	cfg, err := config.Load(*configPath)
	if err != nil {
		lgr.Error("config_load_failed", "Could not load configuration", nil, err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.HTTP.Port = *port
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		lgr.Error("db_connect_failed", "Could not connect to PostgreSQL", nil, err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		lgr.Error("db_migrate_failed", "Could not run migrations", nil, err)
		os.Exit(1)
	}

	rabbitConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		lgr.Error("rabbitmq_connect_failed", "Could not connect to RabbitMQ", nil, err)
		os.Exit(1)
	}
	defer rabbitConn.Close()

	redisClient, err := rediscache.Connect(ctx, cfg.Redis)
	if err != nil {
		lgr.Error("redis_connect_failed", "Could not connect to Redis", nil, err)
		os.Exit(1)
	}
	defer redisClient.Close()

	feed := rabbitmq.NewFeed(rabbitConn, lgr)
	gateway := postgres.NewGateway(db, feed, lgr)

	ordersRepo := orders.New(gateway, lgr)
	menuRepo := menu.New(gateway, lgr)

	limiter := rediscache.NewLimiter(redisClient, cfg.Auth.SignInAttempts,
		time.Duration(cfg.Auth.SignInWindowSeconds)*time.Second)
	tokens := rediscache.NewTokenStore(redisClient,
		time.Duration(cfg.Auth.ResetTokenTTLHours)*time.Hour)
	provider := auth.NewProvider(postgres.NewUserStore(db), limiter, tokens, lgr, cfg.Auth.RequireVerified)

	controller := session.NewController(provider, ordersRepo, menuRepo, lgr)
	controller.Start(ctx)

	reportService := reports.NewService(ordersRepo, menuRepo, domain.DefaultClassifier())

	orderHandler := httpadapter.NewOrderHandler(ordersRepo, lgr)
	menuHandler := httpadapter.NewMenuHandler(menuRepo, lgr)
	authHandler := httpadapter.NewAuthHandler(provider, controller, lgr)
	reportHandler := httpadapter.NewReportHandler(reportService, lgr)

	mux := http.NewServeMux()
	mux.HandleFunc("/orders", orderHandler.HandleCollection)
	mux.HandleFunc("/orders/", orderHandler.HandleItem)
	mux.HandleFunc("/orders/export", orderHandler.HandleExport)
	mux.HandleFunc("/orders/import", orderHandler.HandleImport)
	mux.HandleFunc("/menu", menuHandler.HandleCollection)
	mux.HandleFunc("/menu/", menuHandler.HandleItem)
	mux.HandleFunc("/menu/export", menuHandler.HandleExport)
	mux.HandleFunc("/menu/import", menuHandler.HandleImport)
	mux.HandleFunc("/auth/signup", authHandler.HandleSignUp)
	mux.HandleFunc("/auth/signin", authHandler.HandleSignIn)
	mux.HandleFunc("/auth/signout", authHandler.HandleSignOut)
	mux.HandleFunc("/auth/reset", authHandler.HandlePasswordReset)
	mux.HandleFunc("/auth/reset/confirm", authHandler.HandlePasswordResetConfirm)
	mux.HandleFunc("/session", authHandler.HandleSession)
	mux.HandleFunc("/reports/summary", reportHandler.HandleSummary)

	handler := httpadapter.LoggingMiddleware(lgr)(httpadapter.RecoveryMiddleware(lgr)(mux))

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: handler,
	}

	go func() {
		lgr.Info("server_started", "HTTP server listening", map[string]interface{}{
			"port": cfg.HTTP.Port,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lgr.Error("server_failed", "HTTP server stopped", nil, err)
			stop()
		}
	}()

	<-ctx.Done()
	lgr.Info("shutdown_started", "Shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		lgr.Error("shutdown_failed", "HTTP server did not stop cleanly", nil, err)
	}

	ordersRepo.Unsubscribe()
	menuRepo.Unsubscribe()
	ordersRepo.Wait()
	menuRepo.Wait()

	lgr.Info("shutdown_complete", "Goodbye", nil)
}
