package main

import (
	"chat-relay/contract"
	httpserver "chat-relay/infrastructure/http/server"
	"chat-relay/infrastructure/processor"
	"chat-relay/infrastructure/storage"
	wsserver "chat-relay/infrastructure/ws/server"
	"chat-relay/internal"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// Exit codes reported to the service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const (
	debugPort     = 8081
	debugEndpoint = "/inspect"
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and blocks until a signal arrives.
// Deferred cleanups run before the exit code is returned to main.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.ServerConfig
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Storage
	repository, closeStorage, err := openRepository(ctx, config, log)
	if err != nil {
		return exitRuntime, err
	}
	defer closeStorage()

	var index *storage.MessageIndex
	if config.BlugeFilepath != "" {
		writer, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
		if err != nil {
			return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
		}
		defer func() {
			log.Info("Closing Bluge...")
			_ = writer.Close()
		}()
		index = storage.NewMessageIndex(writer, log)
		repository = storage.NewIndexedMessageRepository(repository, index, log)
	}

	// 3. Pipeline
	registry := runtime.NewRegistry(log)
	processorClient := processor.NewClient(log, processor.Config{
		Endpoint: config.ProcessorEndpoint,
		APIKey:   config.ProcessorAPIKey,
		Timeout:  config.ProcessorTimeout,
	})
	if !processorClient.Enabled() {
		log.Warn("PROCESSOR_ENDPOINT is empty, messages are stored unprocessed")
	}
	orchestrator := runtime.NewOrchestrator(log, repository, processorClient, registry)
	if index != nil {
		orchestrator.WithIndex(index)
	}

	// 4. Surfaces
	chatService := services.NewChatService(log, registry, orchestrator)
	gateway := wsserver.NewGateway(log, chatService, wsserver.Config{
		ConnectionBufferSize: config.ConnectionBufferSize,
		WriteTimeout:         config.WriteTimeout,
		ReadLimit:            config.ReadLimit,
	})
	messageServer := httpserver.NewMessageServer(log, orchestrator, registry, config.StorageDriver, gateway).
		WithVersion(version)

	// 5. Supervision
	httpWorker := workers.NewHTTPServerWorker(log, internal.Addr(config.Host, config.Port), messageServer, config.ShutdownTimeout).
		OnShutdown(gateway.Shutdown)
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(
		httpWorker,
		workers.NewGRPCHealthWorker(log, internal.Addr(config.Host, config.GRPCHealthPort)),
		workers.NewReporterWorker(log, registry, config.ReportInterval),
	)

	log.Info("Chat relay starting",
		"port", config.Port,
		"storage", config.StorageDriver,
		"search", index != nil,
		"processor", processorClient.Enabled())
	sup.Run(ctx)

	log.Info("Program stopped cleanly")
	return exitOK, nil
}

// openRepository opens the configured driver. The returned func releases it.
func openRepository(ctx context.Context, config internal.ServerConfig, log *slog.Logger) (contract.IMessageRepository, func(), error) {
	switch config.StorageDriver {
	case internal.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(config.SQLiteFilepath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
		db, err := gorm.Open(sqlite.Open(config.SQLiteFilepath), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("database opening failed: %w", err)
		}
		repository := storage.NewSQLMessageRepository(db, log)
		if err := repository.Migrate(); err != nil {
			return nil, nil, fmt.Errorf("database migration failed: %w", err)
		}
		return repository, func() {
			log.Info("Closing SQLite...")
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}, nil

	default:
		db, err := badger.Open(buildBadgerOpts(ctx, config, log))
		if err != nil {
			return nil, nil, fmt.Errorf("database opening failed: %w", err)
		}
		if log.Enabled(ctx, slog.LevelDebug) {
			log.Info("Debug Badger inspector available", "url", fmt.Sprintf("http://localhost:%d%s", debugPort, debugEndpoint))
			database.StartDebugServer(db, debugPort, debugEndpoint, MessageMapper)
		}
		return storage.NewMessageRepository(db, log), func() {
			log.Info("Closing BadgerDB...")
			_ = db.Close()
		}, nil
	}
}

func buildBadgerOpts(ctx context.Context, config internal.ServerConfig, log *slog.Logger) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if log.Enabled(ctx, slog.LevelDebug) {
		return options.WithLoggingLevel(badger.DEBUG)
	}
	return options.WithLoggingLevel(badger.WARNING)
}

// MessageMapper renders stored messages in the debug inspector.
func MessageMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)
	if !storage.IsMessageKey([]byte(key)) {
		row.Type = "INDEX"
		return row
	}
	message, err := storage.DecodeMessage(val)
	if err != nil {
		row.Detail = "Error: decode failed"
		return row
	}
	row.Type = "MESSAGE"
	row.Detail = fmt.Sprintf("[%s] %s: %s", message.Room, message.UserID, message.Content)
	return row
}
