package firebase

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livraria/internal/models"
)

func TestBookDocument_RoundTrip(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	b := &models.Book{
		ID:            "abc",
		Titulo:        "Dune",
		Autor:         "Frank Herbert",
		Preco:         models.NewPreco(49.9),
		Paginas:       412,
		AnoPublicacao: models.IntPtr(1965),
		CreatedAt:     created,
		UpdatedAt:     created,
	}

	doc := toDocument(b)
	require.NotNil(t, doc.Preco)
	assert.InDelta(t, 49.9, *doc.Preco, 0.0001)

	back := doc.book("abc")
	assert.Equal(t, "abc", back.ID)
	assert.Equal(t, b.Titulo, back.Titulo)
	assert.Equal(t, 1965, *back.AnoPublicacao)
	assert.True(t, back.Preco.Equal(decimal.RequireFromString("49.9")))
	assert.Equal(t, created, back.CreatedAt)
}

func TestBookDocument_MissingPriceStaysMissing(t *testing.T) {
	doc := toDocument(&models.Book{Titulo: "Sem preço"})

	assert.Nil(t, doc.Preco)
	assert.Nil(t, doc.book("x").Preco)
}
