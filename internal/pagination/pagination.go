// Package pagination guarda o estado da listagem (página, tamanho, ordenação
// e busca) na query string e monta o controle de paginação.
package pagination

import (
	"net/url"
	"strconv"
	"strings"

	"livraria/internal/models"
)

const (
	DefaultPage      = 1
	DefaultLimit     = 12
	DefaultSort      = "titulo"
	DefaultDirection = "asc"

	// WindowSize é quantos números de página o controle mostra.
	WindowSize = 5
)

// Limits são os tamanhos de página oferecidos no seletor.
var Limits = []int{6, 12, 24, 48}

// SortOption é uma opção do seletor de ordenação.
type SortOption struct {
	Field string
	Label string
}

// SortOptions são os campos oferecidos no seletor de ordenação.
var SortOptions = []SortOption{
	{"titulo", "Título"},
	{"autor", "Autor"},
	{"anoPublicacao", "Ano"},
	{"preco", "Preço"},
	{"createdAt", "Cadastro"},
}

// State é o estado da listagem, sempre refletido na URL.
type State struct {
	Page      int
	Limit     int
	Sort      string
	Direction string
	Term      string
}

// Default devolve o estado inicial.
func Default() State {
	return State{
		Page:      DefaultPage,
		Limit:     DefaultLimit,
		Sort:      DefaultSort,
		Direction: DefaultDirection,
	}
}

// FromQuery lê pagina, limite, ordenar, direcao e busca. Valores inválidos
// voltam ao padrão.
func FromQuery(q url.Values) State {
	s := Default()
	if p, err := strconv.Atoi(q.Get("pagina")); err == nil && p >= 1 {
		s.Page = p
	}
	if l, err := strconv.Atoi(q.Get("limite")); err == nil && validLimit(l) {
		s.Limit = l
	}
	if validSort(q.Get("ordenar")) {
		s.Sort = q.Get("ordenar")
	}
	if q.Get("direcao") == "desc" {
		s.Direction = "desc"
	}
	s.Term = strings.TrimSpace(q.Get("busca"))
	return s
}

func validLimit(l int) bool {
	for _, v := range Limits {
		if v == l {
			return true
		}
	}
	return false
}

func validSort(field string) bool {
	for _, o := range SortOptions {
		if o.Field == field {
			return true
		}
	}
	return false
}

// Values codifica o estado; campos no valor padrão são omitidos.
func (s State) Values() url.Values {
	v := url.Values{}
	if s.Term != "" {
		v.Set("busca", s.Term)
	}
	if s.Page != DefaultPage {
		v.Set("pagina", strconv.Itoa(s.Page))
	}
	if s.Limit != DefaultLimit {
		v.Set("limite", strconv.Itoa(s.Limit))
	}
	if s.Sort != DefaultSort {
		v.Set("ordenar", s.Sort)
	}
	if s.Direction != DefaultDirection {
		v.Set("direcao", s.Direction)
	}
	return v
}

// Query devolve a query string com "?" ou "" quando tudo é padrão.
func (s State) Query() string {
	enc := s.Values().Encode()
	if enc == "" {
		return ""
	}
	return "?" + enc
}

// WithPage vai para a página p (mínimo 1).
func (s State) WithPage(p int) State {
	if p < 1 {
		p = 1
	}
	s.Page = p
	return s
}

// WithLimit troca o tamanho da página e volta para a primeira.
func (s State) WithLimit(l int) State {
	if validLimit(l) {
		s.Limit = l
	}
	s.Page = 1
	return s
}

// WithSort troca a ordenação mantendo a página atual.
func (s State) WithSort(field, direction string) State {
	if validSort(field) {
		s.Sort = field
	}
	s.Direction = DefaultDirection
	if direction == "desc" {
		s.Direction = "desc"
	}
	return s
}

// WithTerm inicia uma busca (ou a encerra com termo vazio) na primeira página.
func (s State) WithTerm(term string) State {
	s.Term = strings.TrimSpace(term)
	s.Page = 1
	return s
}

// Searching informa se a listagem está em modo busca.
func (s State) Searching() bool {
	return s.Term != ""
}

// TotalPages calcula o número de páginas.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Window devolve até size páginas consecutivas centradas em current e
// presas a [1, totalPages]. Ex.: Window(7, 12, 5) = [5 6 7 8 9].
func Window(current, totalPages, size int) []int {
	if totalPages <= 0 || size <= 0 {
		return nil
	}
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}

	start := current - size/2
	if start < 1 {
		start = 1
	}
	end := start + size - 1
	if end > totalPages {
		end = totalPages
	}
	start = end - size + 1
	if start < 1 {
		start = 1
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// PageLink é um número de página no controle.
type PageLink struct {
	Number  int
	URL     string
	Current bool
}

// Pager é o modelo do controle de paginação renderizado na listagem.
type Pager struct {
	Visible    bool
	Page       int
	TotalPages int
	Total      int
	Limit      int

	First, Prev, Next, Last string
	HasPrev, HasNext        bool

	Pages  []PageLink
	Limits []LimitLink
}

// LimitLink é uma opção do seletor de itens por página.
type LimitLink struct {
	Value    int
	URL      string
	Selected bool
}

// NewPager monta o controle a partir do estado e da paginação do backend.
// O controle fica oculto em modo busca e quando há só uma página.
func NewPager(basePath string, s State, p models.Pagination) Pager {
	totalPages := p.TotalPaginas
	if totalPages == 0 {
		totalPages = TotalPages(p.Total, s.Limit)
	}

	pg := Pager{
		Visible:    !s.Searching() && totalPages > 1,
		Page:       s.Page,
		TotalPages: totalPages,
		Total:      p.Total,
		Limit:      s.Limit,
		HasPrev:    s.Page > 1,
		HasNext:    s.Page < totalPages,
	}
	if !pg.Visible {
		return pg
	}

	link := func(st State) string { return basePath + st.Query() }

	pg.First = link(s.WithPage(1))
	pg.Prev = link(s.WithPage(s.Page - 1))
	pg.Next = link(s.WithPage(s.Page + 1))
	pg.Last = link(s.WithPage(totalPages))

	for _, n := range Window(s.Page, totalPages, WindowSize) {
		pg.Pages = append(pg.Pages, PageLink{Number: n, URL: link(s.WithPage(n)), Current: n == s.Page})
	}
	for _, l := range Limits {
		pg.Limits = append(pg.Limits, LimitLink{Value: l, URL: link(s.WithLimit(l)), Selected: l == s.Limit})
	}
	return pg
}
