package main

import (
	httpserver "chat-relay/infrastructure/http/server"
	"chat-relay/internal"
	"chat-relay/moderation"
	"chat-relay/runtime/workers"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Processor terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	_ = godotenv.Load()
	var config internal.ProcessorConfig
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)
	if config.APIKey == "" {
		log.Warn("API_KEY is empty, every request is accepted")
	}

	data, err := moderation.NewCensoredLoader(moderation.Dictionaries).LoadAll(moderation.DictionariesDir)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to load dictionaries: %w", err)
	}
	sanitizer, err := moderation.NewSanitizer(log, data, charReplacement)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to build sanitizer: %w", err)
	}
	log.Info("Dictionaries loaded", "languages", data.Languages, "words", len(data.Words))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := httpserver.NewProcessorServer(log, sanitizer, config.APIKey)
	sup := workers.NewSupervisor(log, time.Second)
	sup.Add(workers.NewHTTPServerWorker(log, internal.Addr(config.Host, config.Port), handler, config.ShutdownTimeout))
	sup.Run(ctx)

	log.Info("Program stopped cleanly")
	return exitOK, nil
}
