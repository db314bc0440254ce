package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"livraria/internal/api"
	"livraria/internal/config"
	"livraria/internal/logger"
	"livraria/internal/models"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Configuração inválida")
	}
	logger.Init(cfg.App.Environment, cfg.App.LogLevel)

	client := api.New(cfg.API.BaseURL, cfg.API.Timeout)
	ctx := context.Background()

	info, err := client.Info(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("api", client.BaseURL()).Msg("Backend indisponível")
	}
	log.Info().Str("api", client.BaseURL()).Str("versao", info.Versao).Msg("Adicionando livros de exemplo...")

	books := []models.BookInput{
		{
			Titulo:        "Dom Casmurro",
			Autor:         "Machado de Assis",
			Editora:       "Penguin-Companhia",
			Preco:         models.NewPreco(29.9),
			Paginas:       256,
			AnoPublicacao: models.IntPtr(1899),
			ISBN:          "978-85-8285-010-8",
		},
		{
			Titulo:        "Memórias Póstumas de Brás Cubas",
			Autor:         "Machado de Assis",
			Editora:       "Penguin-Companhia",
			Preco:         models.NewPreco(34.9),
			Paginas:       368,
			AnoPublicacao: models.IntPtr(1881),
			ISBN:          "978-85-8285-039-9",
		},
		{
			Titulo:        "Grande Sertão: Veredas",
			Autor:         "João Guimarães Rosa",
			Editora:       "Companhia das Letras",
			Preco:         models.NewPreco(89.9),
			Paginas:       560,
			AnoPublicacao: models.IntPtr(1956),
			ISBN:          "978-85-359-2914-7",
		},
		{
			Titulo:        "Vidas Secas",
			Autor:         "Graciliano Ramos",
			Editora:       "Record",
			Preco:         models.NewPreco(39.9),
			Paginas:       176,
			AnoPublicacao: models.IntPtr(1938),
			ISBN:          "978-85-01-11484-2",
		},
		{
			Titulo:        "A Hora da Estrela",
			Autor:         "Clarice Lispector",
			Editora:       "Rocco",
			Preco:         models.NewPreco(32.5),
			Paginas:       88,
			AnoPublicacao: models.IntPtr(1977),
			ISBN:          "978-85-325-0812-6",
		},
		{
			Titulo:        "Capitães da Areia",
			Autor:         "Jorge Amado",
			Editora:       "Companhia das Letras",
			Preco:         models.NewPreco(44.9),
			Paginas:       280,
			AnoPublicacao: models.IntPtr(1937),
			ISBN:          "978-85-359-1106-7",
		},
		{
			Titulo:        "O Cortiço",
			Autor:         "Aluísio Azevedo",
			Editora:       "Ática",
			Preco:         models.NewPreco(24.9),
			Paginas:       232,
			AnoPublicacao: models.IntPtr(1890),
		},
		{
			Titulo:        "Dune",
			Autor:         "Frank Herbert",
			Editora:       "Aleph",
			Preco:         models.NewPreco(79.9),
			Paginas:       680,
			AnoPublicacao: models.IntPtr(1965),
			ISBN:          "978-85-7657-313-5",
		},
	}

	added := 0
	for _, in := range books {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)

		if existing, err := client.FindByISBN(ctx, in.ISBN); err == nil && existing != nil {
			log.Info().Str("titulo", in.Titulo).Msg("Já cadastrado, pulando")
			cancel()
			continue
		}

		book, err := client.CreateBook(ctx, in)
		cancel()
		if err != nil {
			log.Error().Err(err).Str("titulo", in.Titulo).Msg("Erro ao adicionar livro")
			continue
		}
		added++
		log.Info().Str("id", book.ID).Str("titulo", book.Titulo).Msg("Livro adicionado")
	}

	log.Info().Int("adicionados", added).Int("total", len(books)).Msg("Concluído")
}
