package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		in   *Preco
		want string
	}{
		{NewPreco(49.9), "R$ 49,90"},
		{nil, "R$ 0,00"},
		{NewPreco(0), "R$ 0,00"},
		{NewPreco(1234.5), "R$ 1.234,50"},
		{NewPreco(1234567.891), "R$ 1.234.567,89"},
		{NewPreco(999), "R$ 999,00"},
		{NewPreco(-3.5), "-R$ 3,50"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatCurrency(tc.in))
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "Data não disponível", FormatDate(time.Time{}, false))

	d := time.Date(2024, 3, 9, 14, 5, 0, 0, time.Local)
	assert.Equal(t, "09/03/2024", FormatDate(d, false))
	assert.Equal(t, "09/03/2024 14:05", FormatDate(d, true))
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "curto", TruncateText("curto", 10))
	assert.Equal(t, "ação...", TruncateText("ação rápida", 4))
}

func TestIsValidISBN(t *testing.T) {
	assert.True(t, IsValidISBN(""))
	assert.True(t, IsValidISBN("9788535902775"))
	assert.True(t, IsValidISBN("978 85 359 0277 5"))
	assert.True(t, IsValidISBN("0-439-42089-x"))
	assert.False(t, IsValidISBN("978853590277"))
	assert.False(t, IsValidISBN("abcdefghij"))
}

func TestStringToColor_IsStable(t *testing.T) {
	c := StringToColor("Dom Casmurro")

	assert.Equal(t, c, StringToColor("Dom Casmurro"))
	assert.Contains(t, placeholderColors, c)
	assert.Contains(t, placeholderColors, StringToColor(""))
}

func TestSummary(t *testing.T) {
	b := &Book{Titulo: "Dune", Autor: "Frank Herbert", Paginas: 412, AnoPublicacao: IntPtr(1965), Preco: NewPreco(49.9)}

	assert.Equal(t,
		"Dune por Frank Herbert é um livro publicado por editora desconhecida em 1965. Com 412 páginas, está disponível por R$ 49,90.",
		Summary(b))
}
