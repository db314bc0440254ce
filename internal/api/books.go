package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"livraria/internal/models"
)

// ListParams são os parâmetros de GET /livros. Valores zero são omitidos e o
// backend aplica os padrões.
type ListParams struct {
	Page      int
	Limit     int
	Sort      string
	Direction string
}

func (p ListParams) query() string {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("pagina", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limite", strconv.Itoa(p.Limit))
	}
	if p.Sort != "" {
		v.Set("ordenar", p.Sort)
	}
	if p.Direction != "" {
		v.Set("direcao", p.Direction)
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// BookPage é uma página da listagem.
type BookPage struct {
	Books      []*models.Book    `json:"dados"`
	Pagination models.Pagination `json:"paginacao"`
}

// StatusInfo é a resposta de GET /status.
type StatusInfo struct {
	Status string  `json:"status"`
	Uptime float64 `json:"uptime"`
}

// Online informa se o backend se declarou disponível.
func (s StatusInfo) Online() bool {
	return s.Status == "online"
}

// Info é a resposta de GET /.
type Info struct {
	Mensagem string `json:"mensagem"`
	Versao   string `json:"versao"`
	Status   string `json:"status"`
}

type bookEnvelope struct {
	Mensagem string       `json:"mensagem"`
	Dados    *models.Book `json:"dados"`
}

type searchEnvelope struct {
	Dados      []*models.Book `json:"dados"`
	Resultados int            `json:"resultados"`
}

// ListBooks busca uma página do acervo.
func (c *Client) ListBooks(ctx context.Context, p ListParams) (*BookPage, error) {
	var page BookPage
	if err := c.do(ctx, http.MethodGet, "/livros"+p.query(), nil, &page); err != nil {
		return nil, err
	}
	if page.Books == nil {
		page.Books = []*models.Book{}
	}
	return &page, nil
}

// GetBook busca um livro pelo id.
func (c *Client) GetBook(ctx context.Context, id string) (*models.Book, error) {
	var env bookEnvelope
	if err := c.do(ctx, http.MethodGet, "/livros/"+url.PathEscape(id), nil, &env); err != nil {
		return nil, err
	}
	return env.Dados, nil
}

// CreateBook cria um livro e devolve o registro gravado.
func (c *Client) CreateBook(ctx context.Context, in models.BookInput) (*models.Book, error) {
	var env bookEnvelope
	if err := c.do(ctx, http.MethodPost, "/livros", in, &env); err != nil {
		return nil, err
	}
	return env.Dados, nil
}

// UpdateBook substitui o registro inteiro.
func (c *Client) UpdateBook(ctx context.Context, id string, in models.BookInput) (*models.Book, error) {
	var env bookEnvelope
	if err := c.do(ctx, http.MethodPut, "/livros/"+url.PathEscape(id), in, &env); err != nil {
		return nil, err
	}
	return env.Dados, nil
}

// DeleteBook exclui o livro e devolve a mensagem do backend.
func (c *Client) DeleteBook(ctx context.Context, id string) (string, error) {
	var env bookEnvelope
	if err := c.do(ctx, http.MethodDelete, "/livros/"+url.PathEscape(id), nil, &env); err != nil {
		return "", err
	}
	if env.Mensagem == "" {
		env.Mensagem = "Livro deletado com sucesso"
	}
	return env.Mensagem, nil
}

// SearchBooks busca sem paginação por título, autor, editora ou ISBN.
func (c *Client) SearchBooks(ctx context.Context, term string) ([]*models.Book, int, error) {
	var env searchEnvelope
	if err := c.do(ctx, http.MethodGet, "/livros/busca/"+url.PathEscape(term), nil, &env); err != nil {
		return nil, 0, err
	}
	if env.Dados == nil {
		env.Dados = []*models.Book{}
	}
	return env.Dados, env.Resultados, nil
}

// FindByISBN procura um livro já cadastrado com o mesmo ISBN. Devolve nil
// quando não há. É só um aviso: o backend aceita ISBNs repetidos.
func (c *Client) FindByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	clean := models.CleanISBN(isbn)
	if clean == "" {
		return nil, nil
	}
	books, _, err := c.SearchBooks(ctx, clean)
	if err != nil {
		return nil, err
	}
	for _, b := range books {
		if strings.EqualFold(models.CleanISBN(b.ISBN), clean) {
			return b, nil
		}
	}
	return nil, nil
}

// Status consulta GET /status.
func (c *Client) Status(ctx context.Context) (*StatusInfo, error) {
	var s StatusInfo
	if err := c.do(ctx, http.MethodGet, "/status", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Info consulta GET /.
func (c *Client) Info(ctx context.Context) (*Info, error) {
	var i Info
	if err := c.do(ctx, http.MethodGet, "/", nil, &i); err != nil {
		return nil, err
	}
	return &i, nil
}
