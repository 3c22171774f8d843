package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/persona-chat/backend/internal/config"
	"github.com/zhouzirui/persona-chat/backend/internal/handler"
	"github.com/zhouzirui/persona-chat/backend/internal/logging"
	"github.com/zhouzirui/persona-chat/backend/internal/model/persona"
	"github.com/zhouzirui/persona-chat/backend/internal/service/ai"
	"github.com/zhouzirui/persona-chat/backend/internal/service/chat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env is optional; the process environment always wins.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Setup(cfg.Log)
	if envErr != nil {
		log.Debug().Err(envErr).Msg("no .env file loaded, using process environment only")
	}

	personaStore, err := persona.NewRegistry(persona.Seed(), persona.HumorBot)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid persona table")
	}

	backend := "none"
	engine, err := ai.NewEngine(ctx, cfg.AI)
	if err != nil {
		// Keep serving; every submission records the failure as an error entry.
		log.Error().Err(err).Str("backend", cfg.AI.Backend).Msg("inference engine unavailable")
		engine = nil
	} else {
		backend = engine.Backend()
		log.Info().Str("backend", backend).Str("base_url", cfg.AI.BaseURL).Msg("inference engine ready")
	}

	defaultPersona, ok := personaStore.ParseID(cfg.Chat.DefaultPersona)
	if !ok {
		log.Warn().Str("persona", cfg.Chat.DefaultPersona).Msg("unknown default persona, using fallback")
		defaultPersona = personaStore.Fallback()
	}

	chatService := chat.NewService(personaStore, engine, chat.Config{
		Settings: chat.Settings{
			Temperature:   cfg.Chat.Temperature,
			TopP:          cfg.Chat.TopP,
			MaxTokens:     cfg.Chat.MaxTokens,
			UserName:      cfg.Chat.UserName,
			AssistantName: cfg.Chat.AssistantName,
			Persona:       defaultPersona,
		},
		Rotation: chat.DefaultRotation(),
		Timeout:  cfg.AI.Timeout,
	})

	router := handler.NewRouter(personaStore, chatService, backend)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", addr).Bool("share", serverCfg.Share).Msg("persona chat backend listening")
	if err := runServer(ctx, srv); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
