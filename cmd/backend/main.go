package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Entropy136/intention-test-extension/internal/common/config"
	"github.com/Entropy136/intention-test-extension/internal/dataset"
	"github.com/Entropy136/intention-test-extension/internal/generator"
	"github.com/Entropy136/intention-test-extension/internal/server"
	"github.com/Entropy136/intention-test-extension/internal/session"
	"github.com/Entropy136/intention-test-extension/pkg/llm"
	"github.com/Entropy136/intention-test-extension/pkg/logger"
	"github.com/Entropy136/intention-test-extension/pkg/metrics"
	"github.com/Entropy136/intention-test-extension/pkg/version"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of backend",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("backend version %s\n", version.Get())
		},
	}

	rootCmd = &cobra.Command{
		Use:   "backend",
		Short: "Intention Test Extension backend",
		Long:  `HTTP backend that turns natural-language test intentions into JUnit tests and streams generation progress to the client`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "conf", "backend.yaml", "path to configuration file")
	rootCmd.AddCommand(versionCmd)
}

func run() {
	cfg, cfgPath, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration from %s: %v", cfgPath, err)
	}

	lg, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	lg.Info("starting backend",
		zap.String("version", version.Get()),
		zap.String("config", cfgPath),
		zap.Int("port", cfg.Server.Port))

	registry := session.NewRegistry(lg)
	m := metrics.New(cfg.Metrics, registry.Len)
	client := llm.NewClient(&cfg.OpenAI)
	runner := generator.NewRunner(lg, client, dataset.NewBuilder(lg), cfg.Generator.MaxRounds)
	srv := server.NewServer(lg, registry, runner, m, cfg.Generator.DefaultJUnitVersion)

	if cfg.Logger.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	srv.RegisterRoutes(router)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		lg.Error("forced shutdown", zap.Error(err))
	}
	lg.Info("server exited")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
