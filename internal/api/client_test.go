package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livraria/internal/backend"
	"livraria/internal/models"
	"livraria/internal/store"
)

func newBackend(t *testing.T) *Client {
	t.Helper()
	ts := httptest.NewServer(backend.NewServer(store.NewMemory()).Routes())
	t.Cleanup(ts.Close)
	return New(ts.URL, 5*time.Second)
}

func dune() models.BookInput {
	return models.BookInput{
		Titulo:        "Dune",
		Autor:         "Frank Herbert",
		Preco:         models.NewPreco(49.9),
		Paginas:       412,
		AnoPublicacao: models.IntPtr(1965),
	}
}

func TestCreateThenGet_RoundTrip(t *testing.T) {
	c := newBackend(t)
	ctx := context.Background()

	created, err := c.CreateBook(ctx, dune())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := c.GetBook(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Titulo)
	assert.Equal(t, "Frank Herbert", got.Autor)
	assert.True(t, got.Preco.Equal(decimal.RequireFromString("49.9")))
	assert.Equal(t, 412, got.Paginas)
	require.NotNil(t, got.AnoPublicacao)
	assert.Equal(t, 1965, *got.AnoPublicacao)
}

func TestDeleteThenList_NeverShowsDeletedID(t *testing.T) {
	c := newBackend(t)
	ctx := context.Background()

	var ids []string
	for _, title := range []string{"Dune", "Duna", "Neuromancer"} {
		in := dune()
		in.Titulo = title
		b, err := c.CreateBook(ctx, in)
		require.NoError(t, err)
		ids = append(ids, b.ID)
	}

	msg, err := c.DeleteBook(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, "Livro deletado com sucesso", msg)

	page, err := c.ListBooks(ctx, ListParams{Page: 1, Limit: 12})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Pagination.Total)
	for _, b := range page.Books {
		assert.NotEqual(t, ids[1], b.ID)
	}
}

func TestGetBook_NotFound(t *testing.T) {
	c := newBackend(t)

	_, err := c.GetBook(context.Background(), "nao-existe")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, MsgNotFound, UserMessage(err))
}

func TestCreateBook_ValidationDetails(t *testing.T) {
	c := newBackend(t)

	_, err := c.CreateBook(context.Background(), models.BookInput{Titulo: "Dune", Paginas: 10})

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, MsgValidation, apiErr.Message)
	assert.Equal(t, []string{"O autor é obrigatório"}, apiErr.Details)
}

func TestSearchAndFindByISBN(t *testing.T) {
	c := newBackend(t)
	ctx := context.Background()

	in := dune()
	in.ISBN = "978-0-441-17271-9"
	_, err := c.CreateBook(ctx, in)
	require.NoError(t, err)

	books, n, err := c.SearchBooks(ctx, "frank herbert")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, books, 1)

	found, err := c.FindByISBN(ctx, "9780441172719")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Dune", found.Titulo)

	missing, err := c.FindByISBN(ctx, "9788535902775")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSearchBooks_TermWithSlashOrPercent(t *testing.T) {
	c := newBackend(t)
	ctx := context.Background()

	for _, title := range []string{"AC/DC Biografia", "100% Machado"} {
		in := dune()
		in.Titulo = title
		_, err := c.CreateBook(ctx, in)
		require.NoError(t, err)
	}

	for term, want := range map[string]string{
		"AC/DC":     "AC/DC Biografia",
		"100%":      "100% Machado",
		"ac/dc bio": "AC/DC Biografia",
	} {
		books, n, err := c.SearchBooks(ctx, term)
		require.NoError(t, err, term)
		require.Equal(t, 1, n, term)
		assert.Equal(t, want, books[0].Titulo, term)
	}
}

func TestStatusAndInfo(t *testing.T) {
	c := newBackend(t)

	s, err := c.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, s.Online())

	info, err := c.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, backend.Version, info.Versao)
}

func TestStatusMessages(t *testing.T) {
	cases := map[int]string{
		400: MsgBadRequest,
		404: MsgNotFound,
		409: MsgConflict,
		422: MsgValidation,
		500: MsgServerError,
		503: MsgServerGeneric,
		418: MsgRequest,
	}

	for status, want := range cases {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		_, err := New(ts.URL, time.Second).GetBook(context.Background(), "x")
		ts.Close()

		var apiErr *Error
		require.True(t, errors.As(err, &apiErr), "status %d", status)
		assert.Equal(t, status, apiErr.Status)
		assert.Equal(t, want, apiErr.Message, "status %d", status)
	}
}

func TestNetworkErrors(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()

	_, err := New(slow.URL, 50*time.Millisecond).Status(context.Background())
	assert.Equal(t, MsgTimeout, UserMessage(err))

	closed := httptest.NewServer(http.NotFoundHandler())
	addr := closed.URL
	closed.Close()

	_, err = New(addr, time.Second).Status(context.Background())
	assert.Equal(t, MsgConnection, UserMessage(err))
}

func TestCanceledContext(t *testing.T) {
	c := newBackend(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListBooks(ctx, ListParams{})
	assert.True(t, IsCanceled(err))
}

func TestObserver(t *testing.T) {
	var statuses []int
	ts := httptest.NewServer(backend.NewServer(store.NewMemory()).Routes())
	defer ts.Close()
	c := New(ts.URL, time.Second, WithObserver(func(method string, status int, d time.Duration) {
		statuses = append(statuses, status)
	}))

	_, _ = c.Status(context.Background())
	_, _ = c.GetBook(context.Background(), "x")

	assert.Equal(t, []int{200, 404}, statuses)
}

func TestListParamsQuery(t *testing.T) {
	assert.Equal(t, "", ListParams{}.query())
	assert.Equal(t, "?direcao=desc&limite=24&ordenar=preco&pagina=2",
		ListParams{Page: 2, Limit: 24, Sort: "preco", Direction: "desc"}.query())
}
