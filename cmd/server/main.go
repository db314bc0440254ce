package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"livraria/internal/api"
	"livraria/internal/config"
	"livraria/internal/debounce"
	"livraria/internal/handlers"
	"livraria/internal/logger"
	"livraria/internal/lookup"
	"livraria/internal/metrics"
	"livraria/internal/middleware"
	"livraria/internal/session"
)

func main() {
	// Configuração (.env + variáveis de ambiente)
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Configuração inválida")
	}
	logger.Init(cfg.App.Environment, cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Cliente do backend de livros
	books := api.New(cfg.API.BaseURL, cfg.API.Timeout,
		api.WithObserver(m.ObserveBackend),
		api.WithLogger(log.With().Str("componente", "api").Logger()),
	)

	// Busca no Google Books, com cache no Redis quando configurado
	lookupOpts := []lookup.Option{
		lookup.WithObserver(m.ObserveLookup),
		lookup.WithLogger(log.With().Str("componente", "lookup").Logger()),
	}
	if cfg.Redis.Addr != "" {
		rdb, err := lookup.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis indisponível - buscas sem cache")
		} else {
			defer rdb.Close()
			lookupOpts = append(lookupOpts, lookup.WithCache(lookup.NewRedisCache(rdb)))
			log.Info().Str("addr", cfg.Redis.Addr).Msg("Cache de buscas no Redis ativado")
		}
	}
	meta := lookup.New(lookup.Config{
		BaseURL:  cfg.Lookup.BaseURL,
		APIKey:   cfg.Lookup.APIKey,
		Timeout:  cfg.Lookup.Timeout,
		Rate:     cfg.Lookup.Rate,
		CacheTTL: cfg.Lookup.CacheTTL,
	}, lookupOpts...)

	// Sessões (avisos entre redirecionamentos)
	sessions := session.NewManager()
	sessions.Start(ctx)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	r.Use(m.Middleware)
	r.Use(middleware.Session(sessions, !cfg.IsDevelopment()))

	r.Handle("/metrics", m.Handler())
	handlers.Mount(r, books, meta, debounce.New(cfg.Lookup.Debounce))

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().
			Str("porta", cfg.App.Port).
			Str("api", books.BaseURL()).
			Str("ambiente", cfg.App.Environment).
			Msg("Servidor iniciado")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Não foi possível iniciar o servidor")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Encerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Erro ao encerrar o servidor")
	}
}
