package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livraria/internal/models"
)

func seed(t *testing.T, m *Memory, inputs ...models.BookInput) []*models.Book {
	t.Helper()
	out := make([]*models.Book, 0, len(inputs))
	for _, in := range inputs {
		b, err := m.Create(context.Background(), in)
		require.NoError(t, err)
		out = append(out, b)
	}
	return out
}

func TestMemory_CreateGetRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	created, err := m.Create(ctx, models.BookInput{
		Titulo: "Dune", Autor: "Frank Herbert", Preco: models.NewPreco(49.9),
		Paginas: 412, AnoPublicacao: models.IntPtr(1965),
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := m.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestMemory_UpdateAndDelete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	b := seed(t, m, models.BookInput{Titulo: "Antigo", Autor: "A", Paginas: 10, Editora: "X"})[0]

	updated, err := m.Update(ctx, b.ID, models.BookInput{Titulo: "Novo", Autor: "B", Paginas: 20})
	require.NoError(t, err)
	assert.Equal(t, "Novo", updated.Titulo)
	assert.Empty(t, updated.Editora)
	assert.Equal(t, b.CreatedAt, updated.CreatedAt)

	require.NoError(t, m.Delete(ctx, b.ID))
	_, err = m.Get(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.Delete(ctx, b.ID), ErrNotFound)

	_, err = m.Update(ctx, "nao-existe", models.BookInput{Titulo: "X"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_ListPagesAndSorts(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for i := 1; i <= 25; i++ {
		seed(t, m, models.BookInput{Titulo: fmt.Sprintf("Livro %02d", i), Autor: "A", Paginas: i})
	}

	page, total, err := m.List(ctx, ListQuery{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	require.Len(t, page, 5)
	assert.Equal(t, "Livro 21", page[0].Titulo)

	desc, _, err := m.List(ctx, ListQuery{Page: 1, Limit: 3, Sort: "paginas", Direction: "desc"})
	require.NoError(t, err)
	assert.Equal(t, []int{25, 24, 23}, []int{desc[0].Paginas, desc[1].Paginas, desc[2].Paginas})

	beyond, total, err := m.List(ctx, ListQuery{Page: 9, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Empty(t, beyond)
}

func TestMemory_SortByPriceTreatsMissingAsZero(t *testing.T) {
	m := NewMemory()
	seed(t, m,
		models.BookInput{Titulo: "Caro", Autor: "A", Paginas: 1, Preco: models.NewPreco(99)},
		models.BookInput{Titulo: "Sem preço", Autor: "A", Paginas: 1},
		models.BookInput{Titulo: "Barato", Autor: "A", Paginas: 1, Preco: models.NewPreco(5)},
	)

	books, _, err := m.List(context.Background(), ListQuery{Sort: "preco"})
	require.NoError(t, err)
	assert.Equal(t, "Sem preço", books[0].Titulo)
	assert.Equal(t, "Barato", books[1].Titulo)
	assert.Equal(t, "Caro", books[2].Titulo)
}

func TestMemory_Search(t *testing.T) {
	m := NewMemory()
	seed(t, m,
		models.BookInput{Titulo: "Dom Casmurro", Autor: "Machado de Assis", Paginas: 256, ISBN: "978-85-359-0277-5"},
		models.BookInput{Titulo: "Memórias Póstumas", Autor: "Machado de Assis", Paginas: 200, Editora: "Ática"},
		models.BookInput{Titulo: "Dune", Autor: "Frank Herbert", Paginas: 412},
	)
	ctx := context.Background()

	byAuthor, err := m.Search(ctx, "machado")
	require.NoError(t, err)
	assert.Len(t, byAuthor, 2)
	assert.Equal(t, "Dom Casmurro", byAuthor[0].Titulo)

	byISBN, err := m.Search(ctx, "9788535902775")
	require.NoError(t, err)
	require.Len(t, byISBN, 1)
	assert.Equal(t, "Dom Casmurro", byISBN[0].Titulo)

	byPublisher, err := m.Search(ctx, "ÁTICA")
	require.NoError(t, err)
	assert.Len(t, byPublisher, 1)

	none, err := m.Search(ctx, "tolkien")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestListQuery_Normalize(t *testing.T) {
	q := ListQuery{Page: -1, Limit: 0, Sort: "; drop", Direction: "sideways"}.Normalize()

	assert.Equal(t, ListQuery{Page: 1, Limit: 12, Sort: "titulo", Direction: "asc"}, q)
	assert.Equal(t, 100, ListQuery{Limit: 1000}.Normalize().Limit)
}
