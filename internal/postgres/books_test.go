package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livraria/internal/models"
	"livraria/internal/store"
)

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "lower(titulo) ASC, id ASC", orderClause("titulo", "asc"))
	assert.Equal(t, "COALESCE(preco, 0) DESC, id ASC", orderClause("preco", "desc"))
	assert.Equal(t, "created_at DESC, id ASC", orderClause("createdAt", "desc"))

	// Campo desconhecido nunca chega ao SQL.
	assert.Equal(t, "lower(titulo) ASC, id ASC", orderClause("titulo; DROP TABLE livros", "sideways"))
}

func TestOrderClause_CoversEverySortField(t *testing.T) {
	for field := range sortColumns {
		assert.True(t, store.IsSortField(field), field)
	}
}

func TestLikePattern_EscapesWildcards(t *testing.T) {
	assert.Equal(t, "%machado%", likePattern("machado"))
	assert.Equal(t, `%100\%%`, likePattern("100%"))
	assert.Equal(t, `%a\_b%`, likePattern("a_b"))
	assert.Equal(t, "%%", likePattern(""))
}

func TestPriceParam(t *testing.T) {
	assert.Nil(t, priceParam(nil))

	p := priceParam(models.NewPreco(49.9))
	require.NotNil(t, p)
	assert.Equal(t, "49.9", *p)
}

// Os testes abaixo precisam de um PostgreSQL descartável.
func testStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("LIVRARIA_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("LIVRARIA_TEST_DATABASE_URL não definida")
	}

	ctx := context.Background()
	pool, err := Connect(ctx, url)
	require.NoError(t, err)

	s := NewStore(pool)
	require.NoError(t, s.Migrate(ctx))
	_, err = pool.Exec(ctx, `TRUNCATE livros`)
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_CRUD(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, models.BookInput{
		Titulo: "Dune", Autor: "Frank Herbert", Preco: models.NewPreco(49.9),
		Paginas: 412, AnoPublicacao: models.IntPtr(1965), ISBN: "978-0441172719",
	})
	require.NoError(t, err)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Titulo, got.Titulo)
	assert.Equal(t, "49.9", got.Preco.String())
	assert.Equal(t, 1965, *got.AnoPublicacao)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

	updated, err := s.Update(ctx, created.ID, models.BookInput{Titulo: "Duna", Autor: "Frank Herbert", Paginas: 680})
	require.NoError(t, err)
	assert.Nil(t, updated.Preco)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))

	require.NoError(t, s.Delete(ctx, created.ID))
	_, err = s.Get(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, created.ID), store.ErrNotFound)

	_, err = s.Update(ctx, "nao-existe", models.BookInput{Titulo: "X"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_ListAndSearch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	for _, in := range []models.BookInput{
		{Titulo: "Dom Casmurro", Autor: "Machado de Assis", Paginas: 256, ISBN: "978-85-359-0277-5"},
		{Titulo: "Memórias Póstumas", Autor: "Machado de Assis", Paginas: 200, Preco: models.NewPreco(30)},
		{Titulo: "Dune", Autor: "Frank Herbert", Paginas: 412, Preco: models.NewPreco(5)},
	} {
		_, err := s.Create(ctx, in)
		require.NoError(t, err)
	}

	page, total, err := s.List(ctx, store.ListQuery{Page: 1, Limit: 2, Sort: "paginas", Direction: "desc"})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "Dune", page[0].Titulo)

	byPrice, _, err := s.List(ctx, store.ListQuery{Sort: "preco"})
	require.NoError(t, err)
	assert.Equal(t, "Dom Casmurro", byPrice[0].Titulo)

	byAuthor, err := s.Search(ctx, "machado")
	require.NoError(t, err)
	assert.Len(t, byAuthor, 2)

	byISBN, err := s.Search(ctx, "9788535902775")
	require.NoError(t, err)
	require.Len(t, byISBN, 1)
	assert.Equal(t, "Dom Casmurro", byISBN[0].Titulo)

	none, err := s.Search(ctx, "tolkien")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
