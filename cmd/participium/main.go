package main

import (
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/MontelAle/participium-sub002/internal/app"
	"github.com/MontelAle/participium-sub002/internal/config"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}
	if err := app.Run(cfg, logger); err != nil {
		logger.Fatal("app", zap.Error(err))
	}
}
