package handlers

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"livraria/internal/api"
	"livraria/internal/debounce"
	"livraria/internal/forms"
	"livraria/internal/lookup"
	"livraria/internal/middleware"
	"livraria/internal/models"
	"livraria/internal/session"
)

// isbnLookup é o resultado da busca por ISBN mostrado no formulário.
type isbnLookup struct {
	Found      bool
	Suggestion lookup.Suggestion
	Fills      []forms.Fill
}

// CatalogHandler trata o cadastro e a edição de livros
type CatalogHandler struct {
	books        Books
	meta         Metadata
	debouncer    *debounce.Group
	errPage      *ErrorPage
	formTemplate *template.Template
	partials     *template.Template
	now          func() time.Time
}

// NewCatalogHandler cria o handler do formulário de livros
func NewCatalogHandler(books Books, meta Metadata, debouncer *debounce.Group, errPage *ErrorPage) *CatalogHandler {
	return &CatalogHandler{
		books:        books,
		meta:         meta,
		debouncer:    debouncer,
		errPage:      errPage,
		formTemplate: loadPage("form.html"),
		partials:     loadPartials(),
		now:          time.Now,
	}
}

// formPage descreve as variações do formulário (cadastro ou edição).
type formPage struct {
	heading, action, submit, cancel, nav string
}

func newBookPage() formPage {
	return formPage{
		heading: "Adicionar livro",
		action:  "/livros",
		submit:  "Salvar",
		cancel:  "/livros",
		nav:     "novo",
	}
}

func editBookPage(id string) formPage {
	return formPage{
		heading: "Editar livro",
		action:  "/livros/" + id,
		submit:  "Salvar alterações",
		cancel:  "/livros/" + id,
		nav:     "livros",
	}
}

// renderForm renderiza o formulário. O token identifica o formulário na
// busca por ISBN e é mantido entre envios.
func renderForm(w http.ResponseWriter, r *http.Request, tmpl *template.Template, p formPage, form *forms.BookForm, status int) {
	token := r.FormValue("token")
	if token == "" {
		token = uuid.NewString()
	}

	data := NewTemplateData(r).
		Set("Nav", p.nav).
		Set("Heading", p.heading).
		Set("Action", p.action).
		Set("Submit", p.submit).
		Set("CancelURL", p.cancel).
		Set("Form", form).
		Set("Token", token)
	render(w, tmpl, status, data)
}

// New trata GET /livros/novo
func (h *CatalogHandler) New(w http.ResponseWriter, r *http.Request) {
	renderForm(w, r, h.formTemplate, newBookPage(), forms.NewBookForm(nil), http.StatusOK)
}

// Create trata POST /livros. Com erros de validação nada é enviado ao backend.
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, err := forms.FromRequest(r)
	if err != nil {
		http.Error(w, "Formulário inválido", http.StatusBadRequest)
		return
	}
	if !form.Validate(h.now()) {
		renderForm(w, r, h.formTemplate, newBookPage(), form, http.StatusUnprocessableEntity)
		return
	}

	if !h.warnDuplicate(r, form.ISBN, "") {
		return
	}

	book, err := h.books.CreateBook(r.Context(), form.Input())
	if abandoned(r, err) {
		return
	}
	if err != nil {
		form.SetErrors(errorLines(err))
		renderForm(w, r, h.formTemplate, newBookPage(), form, statusFor(err))
		return
	}

	log.Info().Str("id", book.ID).Str("titulo", book.Titulo).Msg("livro cadastrado")
	middleware.AddFlash(r, session.Success, "Livro adicionado com sucesso!")
	redirect(w, r, "/livros/"+book.ID)
}

// Edit trata GET /livros/{id}/editar
func (h *CatalogHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	book, err := h.books.GetBook(r.Context(), id)
	if abandoned(r, err) {
		return
	}
	if err != nil {
		h.errPage.Render(w, r, err, "/livros", "Voltar para a lista")
		return
	}

	renderForm(w, r, h.formTemplate, editBookPage(id), forms.NewBookForm(book), http.StatusOK)
}

// Update trata POST /livros/{id}: substitui o registro inteiro.
func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	form, err := forms.FromRequest(r)
	if err != nil {
		http.Error(w, "Formulário inválido", http.StatusBadRequest)
		return
	}
	if !form.Validate(h.now()) {
		renderForm(w, r, h.formTemplate, editBookPage(id), form, http.StatusUnprocessableEntity)
		return
	}

	if !h.warnDuplicate(r, form.ISBN, id) {
		return
	}

	_, err = h.books.UpdateBook(r.Context(), id, form.Input())
	if abandoned(r, err) {
		return
	}
	if api.IsNotFound(err) {
		h.errPage.Render(w, r, err, "/livros", "Voltar para a lista")
		return
	}
	if err != nil {
		form.SetErrors(errorLines(err))
		renderForm(w, r, h.formTemplate, editBookPage(id), form, statusFor(err))
		return
	}

	middleware.AddFlash(r, session.Success, "Livro atualizado com sucesso!")
	redirect(w, r, "/livros/"+id)
}

// warnDuplicate avisa quando outro livro já usa o ISBN. O aviso não impede o
// cadastro; devolve false só quando a requisição foi abandonada.
func (h *CatalogHandler) warnDuplicate(r *http.Request, isbn, selfID string) bool {
	existing, err := h.books.FindByISBN(r.Context(), isbn)
	if abandoned(r, err) {
		return false
	}
	if err != nil {
		log.Debug().Err(err).Str("isbn", isbn).Msg("não foi possível verificar ISBN duplicado")
		return true
	}
	if existing != nil && existing.ID != selfID {
		middleware.AddFlash(r, session.Warning,
			fmt.Sprintf("Já existe um livro com o ISBN %s: %q", models.CleanISBN(isbn), existing.Titulo))
	}
	return true
}

// LookupISBN trata GET /livros/isbn (htmx). Espera o usuário parar de digitar,
// busca os dados do ISBN e devolve o aviso com os valores sugeridos; o app.js
// aplica cada um só se o campo ainda estiver vazio. Buscas substituídas por
// outra mais nova, ou sem ISBN completo, respondem 204 e nada muda na tela.
func (h *CatalogHandler) LookupISBN(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	form := forms.FromValues(q)
	if !form.ShouldLookup() {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	token := q.Get("token")
	if token == "" {
		token = r.RemoteAddr
	}

	var result isbnLookup
	err := h.debouncer.Do(r.Context(), "isbn:"+token, func(ctx context.Context) error {
		result.Suggestion, result.Found = h.meta.ByISBN(ctx, form.ISBN)
		return nil
	})
	if errors.Is(err, debounce.ErrSuperseded) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil || r.Context().Err() != nil {
		return
	}

	if result.Found {
		result.Fills = form.Fills(result.Suggestion)
	}
	renderTemplate(w, h.partials, "isbn_notice", http.StatusOK, &result)
}
