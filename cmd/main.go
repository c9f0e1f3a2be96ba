// cmd/main.go - Program entry
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"upgrade-analyzer/internal/config"
	"upgrade-analyzer/internal/daemon"
	"upgrade-analyzer/internal/database"
	"upgrade-analyzer/internal/handler"
	"upgrade-analyzer/internal/job"
	"upgrade-analyzer/internal/llm"
	"upgrade-analyzer/internal/repository"
	"upgrade-analyzer/internal/server"
	"upgrade-analyzer/internal/service"
	"upgrade-analyzer/internal/utils"
	"upgrade-analyzer/pkg/logger"
)

var (
	// set by the linker during build
	osName   string
	archName string
	version  string
)

func main() {
	appName := flag.String("appname", "upgrade-analyzer", "app name")
	httpServer := flag.String("http", "localhost:11390", "HTTP server address")
	logLevel := flag.String("loglevel", "info", "log level (debug, info, warn, error)")
	configPath := flag.String("config", "", "path to the TOML config file")
	flag.Parse()

	if err := utils.InitDirs(*appName); err != nil {
		fmt.Printf("failed to initialize directories: %v\n", err)
		return
	}

	if err := initConfig(*appName, *configPath); err != nil {
		fmt.Printf("failed to initialize configuration: %v\n", err)
		return
	}
	clientConfig := config.GetClientConfig()

	appLogger, err := logger.NewLogger(utils.LogsDir, *logLevel, *appName)
	if err != nil {
		fmt.Printf("failed to initialize logging system: %v\n", err)
		return
	}
	appLogger.Info("OS: %s, Arch: %s, App: %s, Version: %s, Starting...", osName, archName, *appName, version)

	// Infrastructure layer
	stateStore, err := repository.NewStateStore(utils.StateDir, appLogger)
	if err != nil {
		appLogger.Fatal("failed to initialize state store: %v", err)
		return
	}
	defer func() {
		if err := stateStore.Close(); err != nil {
			appLogger.Error("failed to close state store: %v", err)
		}
	}()

	dbConfig := config.DefaultDatabaseConfig(utils.DataDir)
	dbManager := database.NewSQLiteManager(dbConfig, appLogger)
	if err := dbManager.Initialize(); err != nil {
		appLogger.Fatal("failed to initialize database manager: %v", err)
		return
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			appLogger.Error("failed to close database: %v", err)
		}
	}()

	// Repository layer
	patchRepo := repository.NewPatchRepository(dbManager, appLogger)
	backupRepo := repository.NewBackupRepository(dbManager, appLogger)
	selector := repository.NewFileSelector(appLogger)
	selector.SetSelectorConfig(&clientConfig.Scan)

	// AI client
	analyzerClient, err := llm.NewAnalyzerClient(clientConfig.API, appLogger)
	if err != nil {
		appLogger.Fatal("failed to initialize analyzer client: %v", err)
		return
	}
	defer analyzerClient.Close()
	if !analyzerClient.Available() {
		appLogger.Warn("API credential missing or malformed, analysis endpoints will report unavailable")
	}

	// Service layer
	aggregateService := service.NewAggregateService()
	analysisService := service.NewAnalysisService(selector, analyzerClient, stateStore, aggregateService, appLogger)
	patchService := service.NewPatchService(patchRepo, backupRepo, utils.BackupsDir, appLogger)

	// Job layer
	batchRunnerJob := job.NewBatchRunnerJob(analysisService,
		time.Duration(clientConfig.Batch.StepIntervalSec)*time.Second, appLogger)
	cleanupJob := job.NewCleanupJob(backupRepo, stateStore,
		clientConfig.Patch.BackupRetentionDays,
		time.Duration(clientConfig.Batch.StaleRunHours)*time.Hour, appLogger)

	// Handler layer
	analysisHandler := handler.NewAnalysisHandler(analysisService, appLogger)
	patchHandler := handler.NewPatchHandler(patchService, appLogger)

	httpServerInstance := server.NewServer(analysisHandler, patchHandler, appLogger)

	daemonProcess := daemon.NewDaemon(batchRunnerJob, cleanupJob, appLogger)
	daemonProcess.Start()

	httpErrChan := make(chan error, 1)
	go func() {
		if err := httpServerInstance.Start(*httpServer); err != nil && err != http.ErrServerClosed {
			httpErrChan <- err
		}
		close(httpErrChan)
	}()

	select {
	case err := <-httpErrChan:
		if err != nil {
			appLogger.Error("HTTP server failed to start: %v", err)
			daemonProcess.Stop()
			return
		}
	case <-time.After(2 * time.Second):
		appLogger.Info("HTTP server started successfully on %s", *httpServer)
	}

	appLogger.Info("application started successfully")

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals

	appLogger.Info("received shutdown signal, shutting down gracefully...")
	daemonProcess.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServerInstance.Shutdown(ctx); err != nil {
		appLogger.Error("HTTP server shutdown error: %v", err)
	}

	appLogger.Info("application has been successfully closed")
}

// initConfig sets app metadata and loads the configuration file
func initConfig(appName, configPath string) error {
	config.SetAppInfo(config.AppInfo{
		AppName:  appName,
		ArchName: archName,
		OSName:   osName,
		Version:  version,
	})

	if configPath == "" {
		configPath = filepath.Join(utils.RootDir, "config.toml")
	}
	return config.LoadConfigFile(configPath)
}
