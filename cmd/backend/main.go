// Backend REST de referência da Livraria: o contrato de /livros com
// armazenamento em memória, no Firestore ou no PostgreSQL.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"livraria/internal/backend"
	"livraria/internal/config"
	"livraria/internal/firebase"
	"livraria/internal/logger"
	"livraria/internal/middleware"
	"livraria/internal/postgres"
	"livraria/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Configuração inválida")
	}
	logger.Init(cfg.App.Environment, cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	books, err := openStore(ctx, cfg.Backend)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Backend.Store).Msg("Não foi possível abrir o armazenamento")
	}
	defer books.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Backend.Port,
		Handler:           backend.NewServer(books).Routes(middleware.Logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("porta", cfg.Backend.Port).Str("store", cfg.Backend.Store).Msg("Backend iniciado")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Não foi possível iniciar o backend")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Encerrando backend...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Erro ao encerrar o backend")
	}
}

func openStore(ctx context.Context, cfg config.BackendConfig) (store.BookStore, error) {
	switch cfg.Store {
	case "firestore":
		client, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseCredentialsJSON)
		if err != nil {
			return nil, err
		}
		return firebase.NewStore(client), nil

	case "postgres":
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		books := postgres.NewStore(pool)
		if err := books.Migrate(ctx); err != nil {
			books.Close()
			return nil, err
		}
		return books, nil

	default:
		return store.NewMemory(), nil
	}
}
