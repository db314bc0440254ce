package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livraria/internal/models"
)

func TestWindow(t *testing.T) {
	cases := []struct {
		current, total int
		want           []int
	}{
		{7, 12, []int{5, 6, 7, 8, 9}},
		{1, 12, []int{1, 2, 3, 4, 5}},
		{2, 12, []int{1, 2, 3, 4, 5}},
		{12, 12, []int{8, 9, 10, 11, 12}},
		{11, 12, []int{8, 9, 10, 11, 12}},
		{2, 3, []int{1, 2, 3}},
		{1, 1, []int{1}},
		{40, 12, []int{8, 9, 10, 11, 12}},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Window(tc.current, tc.total, WindowSize), "current=%d total=%d", tc.current, tc.total)
	}
	assert.Empty(t, Window(1, 0, WindowSize))
}

func TestFromQuery(t *testing.T) {
	s := FromQuery(url.Values{
		"pagina":  {"3"},
		"limite":  {"24"},
		"ordenar": {"preco"},
		"direcao": {"desc"},
		"busca":   {"  machado "},
	})
	assert.Equal(t, State{Page: 3, Limit: 24, Sort: "preco", Direction: "desc", Term: "machado"}, s)

	bad := FromQuery(url.Values{"pagina": {"-2"}, "limite": {"7"}, "ordenar": {"senha"}, "direcao": {"x"}})
	assert.Equal(t, Default(), bad)
}

func TestQuery_RoundTrip(t *testing.T) {
	s := State{Page: 2, Limit: 48, Sort: "autor", Direction: "desc"}

	u, err := url.Parse("/livros" + s.Query())
	require.NoError(t, err)
	assert.Equal(t, s, FromQuery(u.Query()))
	assert.Equal(t, "", Default().Query())
}

func TestTransitions(t *testing.T) {
	s := State{Page: 4, Limit: 12, Sort: "titulo", Direction: "asc"}

	assert.Equal(t, 1, s.WithLimit(24).Page)
	assert.Equal(t, 24, s.WithLimit(24).Limit)

	sorted := s.WithSort("preco", "desc")
	assert.Equal(t, 4, sorted.Page)
	assert.Equal(t, "preco", sorted.Sort)
	assert.Equal(t, "desc", sorted.Direction)

	assert.Equal(t, 1, s.WithPage(0).Page)

	searching := s.WithTerm("dune")
	assert.True(t, searching.Searching())
	assert.Equal(t, 1, searching.Page)
}

func TestNewPager(t *testing.T) {
	s := State{Page: 7, Limit: 12, Sort: "titulo", Direction: "asc"}
	pg := NewPager("/livros", s, models.NewPagination(7, 12, 140))

	require.True(t, pg.Visible)
	assert.Equal(t, 12, pg.TotalPages)
	numbers := make([]int, 0, len(pg.Pages))
	for _, p := range pg.Pages {
		numbers = append(numbers, p.Number)
		assert.Equal(t, p.Number == 7, p.Current)
	}
	assert.Equal(t, []int{5, 6, 7, 8, 9}, numbers)
	assert.Equal(t, "/livros?pagina=6", pg.Prev)
	assert.Equal(t, "/livros", pg.First)
	assert.Equal(t, "/livros?pagina=12", pg.Last)
	assert.Equal(t, "/livros?limite=24", pg.Limits[2].URL)
}

func TestNewPager_HiddenInSearchMode(t *testing.T) {
	s := State{Page: 1, Limit: 12, Sort: "titulo", Direction: "asc", Term: "dune"}

	pg := NewPager("/livros", s, models.NewPagination(1, 12, 500))
	assert.False(t, pg.Visible)
	assert.Empty(t, pg.Pages)
}

func TestNewPager_HiddenWithSinglePage(t *testing.T) {
	pg := NewPager("/livros", Default(), models.NewPagination(1, 12, 5))
	assert.False(t, pg.Visible)
}
