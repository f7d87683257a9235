package main

import (
	"chat-hub/infrastructure/api"
	"chat-hub/infrastructure/ws"
	"chat-hub/internal"
	"chat-hub/moderation"
	"chat-hub/observability"
	"chat-hub/repositories"
	"chat-hub/runtime"
	"chat-hub/runtime/workers"
	"chat-hub/services"
	"chat-hub/sink"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2

	shutdownTimeout = 10 * time.Second
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
	}
	os.Exit(code)
}

// run owns every resource so that the deferred closes happen before the exit code is returned.
func run() (int, error) {
	// 1. Configuration & Logger
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	censorChar, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Storage: badger for rooms and messages, bluge for search
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = writer.Close()
	}()

	roomRepository, err := repositories.NewRoomRepository(db, log)
	if err != nil {
		return exitRuntime, err
	}
	messageRepository := repositories.NewMessageRepository(db, log)
	searchIndex := repositories.NewSearchIndex(writer, log)

	sanitizer, err := newSanitizer(config, censorChar, log)
	if err != nil {
		return exitConfig, err
	}

	// 3. Engine, transport and background pipeline
	wsServer := ws.NewServer(log, ws.Config{
		ConnectionBufferSize: config.ConnectionBufferSize,
		WriteTimeout:         config.WriteTimeout,
		PongTimeout:          config.PongTimeout,
		AllowedOrigins:       config.Origins(),
	})
	fanout := workers.NewEventFanout(log, config.BufferSize, config.SinkTimeout,
		sink.NewSearchSink(searchIndex, log))
	monitor := observability.NewProcessMonitor(log, config.MetricInterval)
	capacity := workers.NewChannelCapacityWorker(log, []workers.NamedChannel{fanout.Queue()},
		config.LowCapacityThreshold, config.MetricInterval)

	hub := runtime.NewHub(log, roomRepository, messageRepository, wsServer, fanout, sanitizer, runtime.HubConfig{
		RoomHistoryLimit:    config.RoomHistoryLimit,
		PrivateHistoryLimit: config.PrivateHistoryLimit,
		TypingQuietPeriod:   config.TypingQuietPeriod,
		MaxContentLength:    config.MaxContentLength,
	})
	wsServer.Attach(hub)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(fanout, monitor, capacity)
	supervisorDone := make(chan struct{})
	go func() {
		defer close(supervisorDone)
		sup.Run(ctx)
	}()

	// 5. HTTP server
	service := services.NewChatService(hub, roomRepository, searchIndex, monitor, fanout, capacity)
	server := api.NewServer(log, service, wsServer, config.Origins()).HTTPServer(config.Address())

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", server.Addr, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	code, runErr := exitOK, error(nil)
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case runErr = <-errChan:
		code = exitRuntime
	}

	// 7. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown", "error", err)
	}
	wsServer.Close()
	stop()
	sup.Stop()
	<-supervisorDone
	log.Info("Program stopped cleanly")

	return code, runErr
}

// newSanitizer censors nothing when CENSORED_WORDS is empty, but still tags languages.
func newSanitizer(config internal.Config, censorChar rune, log *slog.Logger) (*moderation.Sanitizer, error) {
	words := config.Words()
	if len(words) == 0 {
		return moderation.NewSanitizer(nil, log), nil
	}
	moderator, err := moderation.NewModerator(words, censorChar, log)
	if err != nil {
		return nil, fmt.Errorf("moderation setup failed: %w", err)
	}
	return moderation.NewSanitizer(moderator, log), nil
}
