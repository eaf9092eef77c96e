package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-kit/log"
	"github.com/philippseith/signalr"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/philippseith/signalrx/chatsample/middleware"
	"github.com/philippseith/signalrx/chatsample/public"
)

var (
	addr      string
	redisAddr string
	debug     bool
)

var rootCmd = &cobra.Command{
	Use:          "chatsample",
	Short:        "Web chat server with a SignalR hub at /chat",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	rootCmd.Flags().StringVar(&addr, "addr", "localhost:8086", "listen address")
	rootCmd.Flags().StringVar(&redisAddr, "redis", "", "redis address for the chat history (empty for in-memory)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "verbose hub logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer() error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	history, err := newHistoryStore(logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	hub := newChatHub(history, logger)
	server, err := signalr.NewServer(ctx,
		signalr.HubFactory(func() signalr.HubInterface { return hub }),
		signalr.KeepAliveInterval(2*time.Second),
		signalr.Logger(log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr)), debug))
	if err != nil {
		return err
	}

	router := http.NewServeMux()
	server.MapHTTP(signalr.WithHTTPServeMux(router), "/chat")
	router.Handle("/", http.FileServer(http.FS(public.FS)))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: middleware.LogRequests(logger, router),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.SetKeepAlivesEnabled(false)
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", addr).Msg("listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newHistoryStore(logger zerolog.Logger) (HistoryStore, error) {
	if redisAddr == "" {
		logger.Info().Msg("chat history in memory")
		return NewMemoryHistory(historyDepth), nil
	}
	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis at %v: %w", redisAddr, err)
	}
	logger.Info().Str("addr", redisAddr).Msg("chat history in redis")
	return NewRedisHistory(client, "chat:history", historyDepth), nil
}
