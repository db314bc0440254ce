package store

import (
	"context"
	"errors"
	"sort"
	"strings"

	"livraria/internal/models"
)

// ErrNotFound é devolvido quando o livro não existe.
var ErrNotFound = errors.New("livro não encontrado")

// SortFields são os campos aceitos para ordenação da listagem.
var SortFields = []string{"titulo", "autor", "anoPublicacao", "preco", "paginas", "createdAt"}

// ListQuery descreve uma página da listagem.
type ListQuery struct {
	Page      int
	Limit     int
	Sort      string
	Direction string // asc | desc
}

// Normalize aplica os valores padrão e limites da listagem.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 12
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if !IsSortField(q.Sort) {
		q.Sort = "titulo"
	}
	if q.Direction != "desc" {
		q.Direction = "asc"
	}
	return q
}

// Offset devolve quantos registros pular.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// IsSortField informa se field é um campo ordenável.
func IsSortField(field string) bool {
	for _, f := range SortFields {
		if f == field {
			return true
		}
	}
	return false
}

// BookStore é a persistência de livros usada pelo backend de referência.
type BookStore interface {
	List(ctx context.Context, q ListQuery) ([]*models.Book, int, error)
	Get(ctx context.Context, id string) (*models.Book, error)
	Create(ctx context.Context, in models.BookInput) (*models.Book, error)
	Update(ctx context.Context, id string, in models.BookInput) (*models.Book, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, term string) ([]*models.Book, error)
	Close() error
}

// Matches informa se o livro contém term no título, autor, editora ou ISBN
// (sem diferenciar maiúsculas).
func Matches(b *models.Book, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	cleanTerm := strings.ToLower(models.CleanISBN(term))

	return strings.Contains(strings.ToLower(b.Titulo), term) ||
		strings.Contains(strings.ToLower(b.Autor), term) ||
		strings.Contains(strings.ToLower(b.Editora), term) ||
		(cleanTerm != "" && strings.Contains(strings.ToLower(models.CleanISBN(b.ISBN)), cleanTerm))
}

// SortBooks ordena books no lugar pelo campo e direção de q.
// Empates são desfeitos pelo id para a paginação ser estável.
func SortBooks(books []*models.Book, field, direction string) {
	less := func(a, b *models.Book) int {
		switch field {
		case "autor":
			return strings.Compare(strings.ToLower(a.Autor), strings.ToLower(b.Autor))
		case "anoPublicacao":
			return compareInt(yearOf(a), yearOf(b))
		case "preco":
			return priceOf(a).Cmp(priceOf(b).Decimal)
		case "paginas":
			return compareInt(a.Paginas, b.Paginas)
		case "createdAt":
			return a.CreatedAt.Compare(b.CreatedAt)
		default:
			return strings.Compare(strings.ToLower(a.Titulo), strings.ToLower(b.Titulo))
		}
	}

	sort.SliceStable(books, func(i, j int) bool {
		c := less(books[i], books[j])
		if c == 0 {
			return books[i].ID < books[j].ID
		}
		if direction == "desc" {
			return c > 0
		}
		return c < 0
	})
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func yearOf(b *models.Book) int {
	if b.AnoPublicacao == nil {
		return 0
	}
	return *b.AnoPublicacao
}

func priceOf(b *models.Book) *models.Preco {
	if b.Preco == nil {
		return models.NewPreco(0)
	}
	return b.Preco
}
