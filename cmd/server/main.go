package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quizroyale/internal/config"
	"quizroyale/internal/game"
	"quizroyale/internal/questionbank"
	"quizroyale/internal/transport/rest"
	"quizroyale/internal/transport/ws"
)

func main() {
	godotenv.Load()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()

	bank, err := loadBank(cfg, logger)
	if err != nil {
		logger.Error("question bank load failed", "error", err)
		os.Exit(1)
	}
	logger.Info("question bank loaded", "questions", bank.Size())

	registry := game.NewRegistry()
	svc := game.NewService(registry, bank, cfg.Game, logger)

	hub := ws.NewHub(logger)
	svc.SetBroadcaster(hub)

	wsHandler := ws.NewHandler(hub, svc, logger)
	router := rest.NewRouter(&rest.Container{
		GameService: svc,
		WSHandler:   wsHandler,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server exited")
}

// loadBank prefers MongoDB when MONGO_URI is set and falls back to the
// bundled JSON file otherwise.
func loadBank(cfg *config.Config, logger *slog.Logger) (*questionbank.Bank, error) {
	if cfg.MongoURI == "" {
		return questionbank.LoadFile(cfg.QuestionsFile)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, err
	}
	defer client.Disconnect(ctx)

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	logger.Info("connected to MongoDB")

	return questionbank.LoadMongo(ctx, client)
}
