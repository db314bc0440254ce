package handlers

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"livraria/internal/api"
	"livraria/internal/forms"
	"livraria/internal/lookup"
	"livraria/internal/middleware"
	"livraria/internal/session"
)

// ImportResults é quantas sugestões a página de importação pede ao Google Books.
const ImportResults = 20

// ImportHandler trata a busca no Google Books e a importação de sugestões
type ImportHandler struct {
	books          Books
	meta           Metadata
	importTemplate *template.Template
	formTemplate   *template.Template
	now            func() time.Time
}

// NewImportHandler cria o handler de importação
func NewImportHandler(books Books, meta Metadata) *ImportHandler {
	return &ImportHandler{
		books:          books,
		meta:           meta,
		importTemplate: loadPage("import.html"),
		formTemplate:   loadPage("form.html"),
		now:            time.Now,
	}
}

// Show trata GET /importar?q=...
func (h *ImportHandler) Show(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var suggestions []lookup.Suggestion
	if query != "" {
		suggestions = h.meta.Search(r.Context(), query, ImportResults)
		if r.Context().Err() != nil {
			return
		}
	}

	data := NewTemplateData(r).
		Set("Nav", "importar").
		Set("Query", query).
		Set("Suggestions", suggestions)
	render(w, h.importTemplate, http.StatusOK, data)
}

// Import trata POST /importar: grava a sugestão escolhida como um livro novo.
// Se faltar algum dado obrigatório, abre o formulário de cadastro preenchido.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	form, err := forms.FromRequest(r)
	if err != nil {
		http.Error(w, "Formulário inválido", http.StatusBadRequest)
		return
	}
	query := r.PostForm.Get("q")
	back := "/importar"
	if query != "" {
		back += "?q=" + url.QueryEscape(query)
	}

	if !form.Validate(h.now()) {
		middleware.AddFlash(r, session.Warning, "Complete os dados obrigatórios antes de salvar o livro importado.")
		renderForm(w, r, h.formTemplate, newBookPage(), form, http.StatusUnprocessableEntity)
		return
	}

	book, err := h.books.CreateBook(r.Context(), form.Input())
	if abandoned(r, err) {
		return
	}
	if err != nil {
		middleware.AddFlash(r, session.Error, "Erro ao importar livro: "+api.UserMessage(err))
		redirect(w, r, back)
		return
	}

	middleware.AddFlash(r, session.Success, fmt.Sprintf("%q adicionado ao acervo!", book.Titulo))
	redirect(w, r, back)
}
