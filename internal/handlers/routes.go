package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"livraria/internal/debounce"
	"livraria/internal/templates"
)

// Mount registra as páginas no roteador.
func Mount(r chi.Router, books Books, meta Metadata, debouncer *debounce.Group) {
	errPage := NewErrorPage()
	indexHandler := NewIndexHandler(books)
	booksHandler := NewBooksHandler(books, errPage)
	catalogHandler := NewCatalogHandler(books, meta, debouncer, errPage)
	importHandler := NewImportHandler(books, meta)

	r.NotFound(errPage.NotFound)

	r.Get("/healthz", Healthz)
	r.Handle("/static/*", http.StripPrefix("/static/", templates.Static()))
	r.Get("/capas/placeholder.svg", Placeholder)

	r.Get("/", indexHandler.ServeHTTP)

	r.Route("/livros", func(r chi.Router) {
		r.Get("/", booksHandler.List)
		r.Post("/", catalogHandler.Create)
		r.Get("/novo", catalogHandler.New)
		r.Get("/isbn", catalogHandler.LookupISBN)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", booksHandler.Show)
			r.Post("/", catalogHandler.Update)
			r.Get("/editar", catalogHandler.Edit)
			r.Get("/excluir", booksHandler.ConfirmDelete)
			r.Post("/excluir", booksHandler.Delete)
		})
	})

	r.Get("/importar", importHandler.Show)
	r.Post("/importar", importHandler.Import)
}
