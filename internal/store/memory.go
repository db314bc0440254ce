package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"livraria/internal/models"
)

// Memory guarda os livros em memória. Serve ao desenvolvimento local e aos testes.
type Memory struct {
	mu    sync.RWMutex
	books map[string]*models.Book
	now   func() time.Time
}

// NewMemory cria um store vazio.
func NewMemory() *Memory {
	return &Memory{
		books: make(map[string]*models.Book),
		now:   time.Now,
	}
}

// List devolve uma página ordenada e o total de registros.
func (m *Memory) List(ctx context.Context, q ListQuery) ([]*models.Book, int, error) {
	q = q.Normalize()

	m.mu.RLock()
	all := m.snapshot()
	m.mu.RUnlock()

	SortBooks(all, q.Sort, q.Direction)

	total := len(all)
	start := q.Offset()
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

// Get busca um livro pelo id.
func (m *Memory) Get(ctx context.Context, id string) (*models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.books[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

// Create grava um novo livro com id e timestamps gerados.
func (m *Memory) Create(ctx context.Context, in models.BookInput) (*models.Book, error) {
	now := m.now().UTC()
	b := &models.Book{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.Apply(in)

	m.mu.Lock()
	m.books[b.ID] = b
	m.mu.Unlock()

	cp := *b
	return &cp, nil
}

// Update substitui todos os campos editáveis do livro.
func (m *Memory) Update(ctx context.Context, id string, in models.BookInput) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.books[id]
	if !ok {
		return nil, ErrNotFound
	}
	b.Apply(in)
	b.UpdatedAt = m.now().UTC()

	cp := *b
	return &cp, nil
}

// Delete remove o livro.
func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.books[id]; !ok {
		return ErrNotFound
	}
	delete(m.books, id)
	return nil
}

// Search devolve todos os livros que contêm term, ordenados por título.
func (m *Memory) Search(ctx context.Context, term string) ([]*models.Book, error) {
	m.mu.RLock()
	all := m.snapshot()
	m.mu.RUnlock()

	results := make([]*models.Book, 0)
	for _, b := range all {
		if Matches(b, term) {
			results = append(results, b)
		}
	}
	SortBooks(results, "titulo", "asc")
	return results, nil
}

// Close não faz nada; existe para satisfazer BookStore.
func (m *Memory) Close() error {
	return nil
}

// snapshot copia os livros; chamar com o lock de leitura.
func (m *Memory) snapshot() []*models.Book {
	out := make([]*models.Book, 0, len(m.books))
	for _, b := range m.books {
		cp := *b
		out = append(out, &cp)
	}
	return out
}
