package handlers

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"livraria/internal/api"
	"livraria/internal/middleware"
	"livraria/internal/models"
	"livraria/internal/pagination"
	"livraria/internal/session"
)

// listTarget é o id do trecho que o htmx troca na busca e na paginação.
const listTarget = "lista-livros"

// SortLink é uma opção do seletor de ordenação já com a URL resolvida.
type SortLink struct {
	Label     string
	URL       string
	Active    bool
	Direction string
}

// BooksHandler trata a listagem, os detalhes e a exclusão de livros
type BooksHandler struct {
	books           Books
	errPage         *ErrorPage
	listTemplate    *template.Template
	detailTemplate  *template.Template
	confirmTemplate *template.Template
	partials        *template.Template
}

// NewBooksHandler cria o handler de livros
func NewBooksHandler(books Books, errPage *ErrorPage) *BooksHandler {
	return &BooksHandler{
		books:           books,
		errPage:         errPage,
		listTemplate:    loadPage("list.html"),
		detailTemplate:  loadPage("detail.html"),
		confirmTemplate: loadPage("confirm_delete.html"),
		partials:        loadPartials(),
	}
}

// List trata GET /livros. Com "busca" preenchida a listagem vira busca, sem paginação.
func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	state := pagination.FromQuery(r.URL.Query())

	data := NewTemplateData(r).Set("Nav", "livros")
	data["State"] = state
	data["SortLinks"] = sortLinks(state)
	data["RetryURL"] = "/livros" + state.Query()

	var (
		books []*models.Book
		pager pagination.Pager
		err   error
	)
	if state.Searching() {
		var n int
		books, n, err = h.books.SearchBooks(r.Context(), state.Term)
		data["Results"] = n
	} else {
		var page *api.BookPage
		page, err = h.books.ListBooks(r.Context(), api.ListParams{
			Page:      state.Page,
			Limit:     state.Limit,
			Sort:      state.Sort,
			Direction: state.Direction,
		})
		if err == nil {
			books = page.Books
			pager = pagination.NewPager("/livros", state, page.Pagination)
		}
	}
	if abandoned(r, err) {
		return
	}

	status := http.StatusOK
	if err != nil {
		data["Error"] = api.UserMessage(err)
		status = statusFor(err)
	}
	data["Books"] = books
	data["Pager"] = pager

	if isHTMX(r) && r.Header.Get("HX-Target") == listTarget {
		renderTemplate(w, h.partials, "book_list", status, data)
		return
	}
	render(w, h.listTemplate, status, data)
}

// sortLinks monta o seletor de ordenação. Clicar no campo ativo inverte a direção.
func sortLinks(s pagination.State) []SortLink {
	links := make([]SortLink, 0, len(pagination.SortOptions))
	for _, opt := range pagination.SortOptions {
		active := s.Sort == opt.Field
		next := "asc"
		if active && s.Direction == "asc" {
			next = "desc"
		}
		links = append(links, SortLink{
			Label:     opt.Label,
			URL:       "/livros" + s.WithSort(opt.Field, next).Query(),
			Active:    active,
			Direction: s.Direction,
		})
	}
	return links
}

// Show trata GET /livros/{id}
func (h *BooksHandler) Show(w http.ResponseWriter, r *http.Request) {
	book, ok := h.load(w, r)
	if !ok {
		return
	}

	data := NewTemplateData(r).Set("Nav", "livros").Set("Book", book)
	render(w, h.detailTemplate, http.StatusOK, data)
}

// ConfirmDelete trata GET /livros/{id}/excluir
func (h *BooksHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	book, ok := h.load(w, r)
	if !ok {
		return
	}

	data := NewTemplateData(r).Set("Nav", "livros").Set("Book", book)
	render(w, h.confirmTemplate, http.StatusOK, data)
}

// Delete trata POST /livros/{id}/excluir. Sem o campo de confirmação volta
// para a pergunta. Depois de excluir, a listagem é buscada de novo.
func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil || r.PostForm.Get("confirmar") != "sim" {
		redirect(w, r, "/livros/"+id+"/excluir")
		return
	}

	msg, err := h.books.DeleteBook(r.Context(), id)
	if abandoned(r, err) {
		return
	}
	switch {
	case api.IsNotFound(err):
		middleware.AddFlash(r, session.Error, "Livro não encontrado")
		redirect(w, r, "/livros")
	case err != nil:
		middleware.AddFlash(r, session.Error, "Erro ao excluir livro: "+api.UserMessage(err))
		redirect(w, r, "/livros/"+id)
	default:
		middleware.AddFlash(r, session.Success, msg)
		redirect(w, r, "/livros")
	}
}

// load busca o livro da rota; em caso de falha já renderiza o estado de erro.
func (h *BooksHandler) load(w http.ResponseWriter, r *http.Request) (*models.Book, bool) {
	book, err := h.books.GetBook(r.Context(), chi.URLParam(r, "id"))
	if abandoned(r, err) {
		return nil, false
	}
	if err != nil {
		h.errPage.Render(w, r, err, "/livros", "Voltar para a lista")
		return nil, false
	}
	return book, true
}
