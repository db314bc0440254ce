package handlers

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"livraria/internal/api"
	"livraria/internal/lookup"
	"livraria/internal/middleware"
	"livraria/internal/models"
	"livraria/internal/templates"
)

// Books é o que as páginas usam do backend de livros. *api.Client implementa.
type Books interface {
	ListBooks(ctx context.Context, p api.ListParams) (*api.BookPage, error)
	GetBook(ctx context.Context, id string) (*models.Book, error)
	CreateBook(ctx context.Context, in models.BookInput) (*models.Book, error)
	UpdateBook(ctx context.Context, id string, in models.BookInput) (*models.Book, error)
	DeleteBook(ctx context.Context, id string) (string, error)
	SearchBooks(ctx context.Context, term string) ([]*models.Book, int, error)
	FindByISBN(ctx context.Context, isbn string) (*models.Book, error)
	Status(ctx context.Context) (*api.StatusInfo, error)
}

// Metadata é a busca de dados de livros no Google Books. *lookup.Client implementa.
type Metadata interface {
	Search(ctx context.Context, query string, maxResults int) []lookup.Suggestion
	ByISBN(ctx context.Context, isbn string) (lookup.Suggestion, bool)
}

// TemplateData contém os dados comuns a todas as páginas
type TemplateData map[string]interface{}

// NewTemplateData cria os dados da página já com os avisos pendentes da sessão
func NewTemplateData(r *http.Request) TemplateData {
	data := make(TemplateData)
	data["Flashes"] = middleware.PopFlashes(r)
	data["Nav"] = ""
	data["Year"] = time.Now().Year()
	return data
}

// Set define um valor nos dados da página
func (t TemplateData) Set(key string, value interface{}) TemplateData {
	t[key] = value
	return t
}

var funcMap = template.FuncMap{
	"currency": models.FormatCurrency,
	"date": func(t time.Time) string {
		return models.FormatDate(t, false)
	},
	"datetime": func(t time.Time) string {
		return models.FormatDate(t, true)
	},
	"truncate":    models.TruncateText,
	"summary":     models.Summary,
	"cover":       coverURL,
	"placeholder": placeholderURL,
	"year": func(y *int) string {
		if y == nil {
			return ""
		}
		return strconv.Itoa(*y)
	},
	"price": func(p *models.Preco) string {
		if p == nil {
			return ""
		}
		return p.StringFixed(2)
	},
}

// coverURL devolve a capa do livro ou a capa gerada a partir do título.
func coverURL(b *models.Book) string {
	if b.CapaURL != "" {
		return b.CapaURL
	}
	return placeholderURL(b.Titulo)
}

func placeholderURL(title string) string {
	return "/capas/placeholder.svg?titulo=" + url.QueryEscape(title)
}

func loadPage(name string) *template.Template {
	tmpl, err := templates.Page(funcMap, name)
	if err != nil {
		log.Error().Err(err).Str("template", name).Msg("erro ao carregar template")
	}
	return tmpl
}

func loadPartials() *template.Template {
	tmpl, err := templates.Partials(funcMap)
	if err != nil {
		log.Error().Err(err).Msg("erro ao carregar fragmentos")
	}
	return tmpl
}

// render executa a página inteira (layout + conteúdo).
func render(w http.ResponseWriter, tmpl *template.Template, status int, data TemplateData) {
	renderTemplate(w, tmpl, "layout.html", status, data)
}

// renderTemplate executa o template name num buffer, para que um erro de
// renderização não deixe meia página escrita.
func renderTemplate(w http.ResponseWriter, tmpl *template.Template, name string, status int, data any) {
	if tmpl == nil {
		http.Error(w, "Template não foi carregado", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("erro ao renderizar template")
		http.Error(w, "Erro ao renderizar a página", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// redirect navega para url. Requisições htmx recebem HX-Redirect.
func redirect(w http.ResponseWriter, r *http.Request, url string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// abandoned informa se quem pediu a página já foi embora. O resultado que
// chegar depois disso é descartado sem renderizar.
func abandoned(r *http.Request, err error) bool {
	return r.Context().Err() != nil || api.IsCanceled(err)
}

// statusFor traduz um erro do backend no status da página renderizada.
func statusFor(err error) int {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return http.StatusBadGateway
	}
	switch apiErr.Status {
	case http.StatusNotFound:
		return http.StatusNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}

// errorLines devolve os detalhes do erro do backend ou, sem detalhes, a mensagem geral.
func errorLines(err error) []string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && len(apiErr.Details) > 0 {
		return apiErr.Details
	}
	return []string{api.UserMessage(err)}
}

// ErrorPage renderiza o estado de erro com um link de volta.
type ErrorPage struct {
	tmpl *template.Template
}

// NewErrorPage carrega o template de erro.
func NewErrorPage() *ErrorPage {
	return &ErrorPage{tmpl: loadPage("error.html")}
}

// Render mostra o erro do backend. 404 vira "Livro não encontrado".
func (p *ErrorPage) Render(w http.ResponseWriter, r *http.Request, err error, backURL, backLabel string) {
	status := statusFor(err)
	heading := "Erro ao carregar"
	message := api.UserMessage(err)
	if status == http.StatusNotFound {
		heading = "Livro não encontrado"
		message = "O livro que você procura não existe ou foi excluído."
	}
	if status >= http.StatusInternalServerError {
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("falha ao falar com o backend")
	}

	data := NewTemplateData(r).
		Set("Heading", heading).
		Set("Message", message).
		Set("BackURL", backURL).
		Set("BackLabel", backLabel)
	render(w, p.tmpl, status, data)
}

// NotFound é a página das rotas inexistentes.
func (p *ErrorPage) NotFound(w http.ResponseWriter, r *http.Request) {
	data := NewTemplateData(r).
		Set("Heading", "Página não encontrada").
		Set("Message", "O endereço acessado não existe.").
		Set("BackURL", "/").
		Set("BackLabel", "Ir para o início")
	render(w, p.tmpl, http.StatusNotFound, data)
}
