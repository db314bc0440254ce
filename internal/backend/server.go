package backend

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"livraria/internal/models"
	"livraria/internal/store"
)

// Version é a versão anunciada em GET /.
const Version = "1.0.0"

// Server é o backend REST de referência do acervo.
type Server struct {
	store   store.BookStore
	started time.Time
	now     func() time.Time
}

// NewServer cria o servidor sobre o store informado.
func NewServer(s store.BookStore) *Server {
	return &Server{store: s, started: time.Now(), now: time.Now}
}

// Routes monta o roteador com todas as rotas do backend.
func (s *Server) Routes(mw ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw...)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errorResponse(w, r, http.StatusNotFound, "Rota não encontrada", nil)
	})

	r.Get("/", s.info)
	r.Get("/status", s.status)

	r.Route("/livros", func(r chi.Router) {
		r.Get("/", s.listBooks)
		r.Post("/", s.createBook)
		r.Get("/busca/{termo}", s.searchBooks)
		r.Get("/{id}", s.getBook)
		r.Put("/{id}", s.updateBook)
		r.Delete("/{id}", s.deleteBook)
	})

	return r
}

func (s *Server) info(w http.ResponseWriter, r *http.Request) {
	data := envelope{
		"mensagem": "Bem-vindo à API de Livraria",
		"versao":   Version,
		"status":   "API operacional",
		"endpoints": []string{
			"GET /livros",
			"GET /livros/:id",
			"POST /livros",
			"PUT /livros/:id",
			"DELETE /livros/:id",
			"GET /livros/busca/:termo",
			"GET /status",
		},
	}
	if err := writeJSON(w, http.StatusOK, data); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	data := envelope{
		"status": "online",
		"uptime": s.now().Sub(s.started).Seconds(),
	}
	if err := writeJSON(w, http.StatusOK, data); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// listBooks atende GET /livros?pagina=&limite=&ordenar=&direcao=
func (s *Server) listBooks(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	q := store.ListQuery{
		Page:      readInt(qs, "pagina", 1),
		Limit:     readInt(qs, "limite", 12),
		Sort:      qs.Get("ordenar"),
		Direction: qs.Get("direcao"),
	}.Normalize()

	books, total, err := s.store.List(r.Context(), q)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	data := envelope{
		"dados":     books,
		"paginacao": models.NewPagination(q.Page, q.Limit, total),
	}
	if err := writeJSON(w, http.StatusOK, data); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) getBook(w http.ResponseWriter, r *http.Request) {
	book, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		notFoundResponse(w, r)
		return
	}
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"dados": book}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// readInput lê e valida o corpo de POST/PUT. Devolve false quando a resposta
// de erro já foi escrita.
func (s *Server) readInput(w http.ResponseWriter, r *http.Request) (models.BookInput, bool) {
	var in models.BookInput
	if err := readJSON(w, r, &in); err != nil {
		badRequestResponse(w, r, err)
		return in, false
	}
	in.Normalize()
	if err := in.Validate(s.now()); err != nil {
		failedValidationResponse(w, r, err)
		return in, false
	}
	return in, true
}

func (s *Server) createBook(w http.ResponseWriter, r *http.Request) {
	in, ok := s.readInput(w, r)
	if !ok {
		return
	}

	book, err := s.store.Create(r.Context(), in)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Location", "/livros/"+book.ID)
	data := envelope{"mensagem": "Livro criado com sucesso", "dados": book}
	if err := writeJSON(w, http.StatusCreated, data); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) updateBook(w http.ResponseWriter, r *http.Request) {
	in, ok := s.readInput(w, r)
	if !ok {
		return
	}

	book, err := s.store.Update(r.Context(), chi.URLParam(r, "id"), in)
	if errors.Is(err, store.ErrNotFound) {
		notFoundResponse(w, r)
		return
	}
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	data := envelope{"mensagem": "Livro atualizado com sucesso", "dados": book}
	if err := writeJSON(w, http.StatusOK, data); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) deleteBook(w http.ResponseWriter, r *http.Request) {
	err := s.store.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		notFoundResponse(w, r)
		return
	}
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"mensagem": "Livro deletado com sucesso"}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) searchBooks(w http.ResponseWriter, r *http.Request) {
	// Com "%2F" no termo o chi roteia pelo RawPath e o parâmetro chega escapado.
	term := chi.URLParam(r, "termo")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(term); err == nil {
			term = unescaped
		}
	}

	books, err := s.store.Search(r.Context(), term)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	data := envelope{"dados": books, "resultados": len(books)}
	if err := writeJSON(w, http.StatusOK, data); err != nil {
		serverErrorResponse(w, r, err)
	}
}
