package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"gowelch/internal"
	"gowelch/internal/config"
	"gowelch/internal/container"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	logger := internal.NewDefaultLogger().Named("main")

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	if err := appContainer.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	logger.Info("reporting level %s, fan levels %v, p-value mode %s",
		appConfig.Analysis.ReportingLevel.Percent(), appConfig.Analysis.FanLevels, appConfig.Analysis.PValueMode)

	addr := net.JoinHostPort("", appConfig.Server.Port)
	if err := appContainer.UI.Serve(ctx, addr); err != nil {
		logger.Error("server stopped: %v", err)
		appContainer.Shutdown(context.Background())
		os.Exit(1)
	}
}
