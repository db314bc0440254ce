package handlers

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"livraria/internal/api"
)

// RecentLimit é quantos livros recentes o painel mostra.
const RecentLimit = 6

// IndexHandler trata o painel inicial
type IndexHandler struct {
	books        Books
	homeTemplate *template.Template
}

// NewIndexHandler cria o handler do painel
func NewIndexHandler(books Books) *IndexHandler {
	return &IndexHandler{
		books:        books,
		homeTemplate: loadPage("home.html"),
	}
}

// ServeHTTP trata GET /: total de livros, status da API e cadastros recentes.
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var (
		page   *api.BookPage
		status *api.StatusInfo
		g      errgroup.Group
	)

	g.Go(func() error {
		p, err := h.books.ListBooks(r.Context(), api.ListParams{
			Page:      1,
			Limit:     RecentLimit,
			Sort:      "createdAt",
			Direction: "desc",
		})
		page = p
		return err
	})
	g.Go(func() error {
		s, err := h.books.Status(r.Context())
		if err != nil {
			// API fora do ar aparece como offline, não como erro da página.
			log.Debug().Err(err).Msg("status da API indisponível")
			return nil
		}
		status = s
		return nil
	})
	err := g.Wait()
	if abandoned(r, err) {
		return
	}

	data := NewTemplateData(r).Set("Nav", "inicio")
	data["Online"] = status != nil && status.Online()
	if status != nil {
		data["Uptime"] = formatUptime(time.Duration(status.Uptime * float64(time.Second)))
	}

	code := http.StatusOK
	if err != nil {
		data["Error"] = api.UserMessage(err)
		code = statusFor(err)
	} else {
		data["Total"] = page.Pagination.Total
		data["Recent"] = page.Books
	}

	render(w, h.homeTemplate, code, data)
}

// formatUptime escreve uma duração de forma legível: "45 s", "12 min", "3 h 05 min", "2 dias".
func formatUptime(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%d s", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%d min", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d h %02d min", int(d.Hours()), int(d.Minutes())%60)
	}
	days := int(d.Hours()) / 24
	if days == 1 {
		return "1 dia"
	}
	return fmt.Sprintf("%d dias", days)
}

// Healthz trata GET /healthz.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
