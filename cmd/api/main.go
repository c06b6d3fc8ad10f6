package main

import (
	"net/http"
	"os"

	"vira-api/internal"
	"vira-api/internal/config"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Optional .env file for local development
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.LoadAndValidate()
	if err != nil {
		logger.Fatal("configuration error", zap.Error(err))
	}

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		logger.Fatal("DB_DSN environment variable is required")
	}

	srv := internal.NewServer(dsn, cfg, logger)

	logger.Info("starting ViRA API server",
		zap.String("addr", cfg.ListenAddr),
		zap.String("jwt_issuer", cfg.JWTIssuer),
		zap.String("jwt_audience", cfg.JWTAudience),
		zap.Duration("jwt_expiry", cfg.JWTExpiry),
	)

	if err := http.ListenAndServe(cfg.ListenAddr, srv.Router); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
