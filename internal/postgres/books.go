// Package postgres guarda os livros do backend de referência no PostgreSQL.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"livraria/internal/models"
	"livraria/internal/store"
)

//go:embed schema.sql
var schema string

const columns = `id, titulo, autor, editora, preco::text, paginas, ano_publicacao,
	isbn, capa_url, desenvolvedor, created_at, updated_at`

// sortColumns traduz os campos de ordenação da API para expressões SQL.
// Preço e ano ausentes ordenam como zero.
var sortColumns = map[string]string{
	"titulo":        "lower(titulo)",
	"autor":         "lower(autor)",
	"anoPublicacao": "COALESCE(ano_publicacao, 0)",
	"preco":         "COALESCE(preco, 0)",
	"paginas":       "paginas",
	"createdAt":     "created_at",
}

// Connect abre o pool de conexões e confere se o banco responde.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("DATABASE_URL inválida: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar o pool do PostgreSQL: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("PostgreSQL não respondeu: %w", err)
	}

	log.Info().Str("host", cfg.ConnConfig.Host).Str("banco", cfg.ConnConfig.Database).Msg("PostgreSQL conectado")
	return pool, nil
}

// Store implementa store.BookStore sobre uma tabela "livros".
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

var _ store.BookStore = (*Store)(nil)

// NewStore cria o store sobre um pool já conectado.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, now: time.Now}
}

// Migrate cria a tabela e os índices, se ainda não existirem.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("erro ao criar o esquema: %w", err)
	}
	return nil
}

// List devolve uma página ordenada e o total de livros.
func (s *Store) List(ctx context.Context, q store.ListQuery) ([]*models.Book, int, error) {
	q = q.Normalize()

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM livros`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("erro ao contar os livros: %w", err)
	}

	query := `SELECT ` + columns + ` FROM livros ORDER BY ` + orderClause(q.Sort, q.Direction) + ` LIMIT $1 OFFSET $2`
	books, err := s.query(ctx, query, q.Limit, q.Offset())
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

// Get busca um livro pelo id.
func (s *Store) Get(ctx context.Context, id string) (*models.Book, error) {
	b, err := scanBook(s.pool.QueryRow(ctx, `SELECT `+columns+` FROM livros WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar o livro: %w", err)
	}
	return b, nil
}

// Create grava um novo livro com id e timestamps gerados.
func (s *Store) Create(ctx context.Context, in models.BookInput) (*models.Book, error) {
	now := s.now().UTC().Truncate(time.Microsecond)
	b := &models.Book{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	b.Apply(in)

	_, err := s.pool.Exec(ctx, `
		INSERT INTO livros (id, titulo, autor, editora, preco, paginas, ano_publicacao,
			isbn, capa_url, desenvolvedor, created_at, updated_at)
		VALUES ($1, $2, $3, $4, CAST($5 AS TEXT)::numeric, $6, $7, $8, $9, $10, $11, $12)`,
		b.ID, b.Titulo, b.Autor, b.Editora, priceParam(b.Preco), b.Paginas, b.AnoPublicacao,
		b.ISBN, b.CapaURL, b.Desenvolvedor, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("erro ao gravar o livro: %w", err)
	}
	return b, nil
}

// Update substitui todos os campos editáveis; created_at é preservado.
func (s *Store) Update(ctx context.Context, id string, in models.BookInput) (*models.Book, error) {
	b := &models.Book{ID: id, UpdatedAt: s.now().UTC().Truncate(time.Microsecond)}
	b.Apply(in)

	err := s.pool.QueryRow(ctx, `
		UPDATE livros SET titulo = $2, autor = $3, editora = $4, preco = CAST($5 AS TEXT)::numeric,
			paginas = $6, ano_publicacao = $7, isbn = $8, capa_url = $9, desenvolvedor = $10,
			updated_at = $11
		WHERE id = $1
		RETURNING created_at`,
		b.ID, b.Titulo, b.Autor, b.Editora, priceParam(b.Preco), b.Paginas, b.AnoPublicacao,
		b.ISBN, b.CapaURL, b.Desenvolvedor, b.UpdatedAt,
	).Scan(&b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao atualizar o livro: %w", err)
	}
	return b, nil
}

// Delete remove o livro.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM livros WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("erro ao excluir o livro: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Search procura term no título, autor, editora ou ISBN, sem diferenciar maiúsculas.
func (s *Store) Search(ctx context.Context, term string) ([]*models.Book, error) {
	term = strings.TrimSpace(term)
	clean := models.CleanISBN(term)

	query := `SELECT ` + columns + ` FROM livros
		WHERE titulo ILIKE $1 OR autor ILIKE $1 OR editora ILIKE $1
			OR ($2 <> '' AND replace(replace(isbn, '-', ''), ' ', '') ILIKE $3)
		ORDER BY ` + orderClause("titulo", "asc")
	return s.query(ctx, query, likePattern(term), clean, likePattern(clean))
}

// Close fecha o pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) query(ctx context.Context, sql string, args ...any) ([]*models.Book, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao consultar os livros: %w", err)
	}
	books, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Book, error) {
		return scanBook(row)
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao ler os livros: %w", err)
	}
	if books == nil {
		books = []*models.Book{}
	}
	return books, nil
}

func scanBook(row pgx.Row) (*models.Book, error) {
	var (
		b     models.Book
		preco *string
	)
	err := row.Scan(&b.ID, &b.Titulo, &b.Autor, &b.Editora, &preco, &b.Paginas, &b.AnoPublicacao,
		&b.ISBN, &b.CapaURL, &b.Desenvolvedor, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if preco != nil {
		d, err := decimal.NewFromString(*preco)
		if err != nil {
			return nil, fmt.Errorf("preço inválido no banco (%q): %w", *preco, err)
		}
		b.Preco = &models.Preco{Decimal: d}
	}
	return &b, nil
}

// orderClause monta o ORDER BY. Campos e direções vêm de listas fixas; o id
// desempata para a paginação ser estável.
func orderClause(field, direction string) string {
	col, ok := sortColumns[field]
	if !ok {
		col = sortColumns["titulo"]
	}
	dir := "ASC"
	if direction == "desc" {
		dir = "DESC"
	}
	return col + " " + dir + ", id ASC"
}

// likePattern escapa os curingas do LIKE e envolve term em %.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

// priceParam converte o preço para o texto enviado ao banco; nil vira NULL.
func priceParam(p *models.Preco) *string {
	if p == nil {
		return nil
	}
	v := p.String()
	return &v
}
