package handlers

import (
	"fmt"
	"html"
	"net/http"
	"strings"
	"unicode"

	"livraria/internal/models"
)

const placeholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="300" height="450" viewBox="0 0 300 450">
<rect width="300" height="450" fill="%s"/>
<text x="150" y="205" fill="#FFFFFF" font-family="sans-serif" font-size="72" font-weight="bold" text-anchor="middle">%s</text>
<text x="150" y="270" fill="#FFFFFF" font-family="sans-serif" font-size="20" text-anchor="middle">%s</text>
</svg>`

// Placeholder trata GET /capas/placeholder.svg?titulo=...: capa gerada com a
// cor derivada do título, as iniciais e o título resumido.
func Placeholder(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.URL.Query().Get("titulo"))
	if title == "" {
		title = "Sem título"
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	fmt.Fprintf(w, placeholderSVG,
		models.StringToColor(title),
		html.EscapeString(initials(title)),
		html.EscapeString(models.TruncateText(title, 22)),
	)
}

// initials devolve até duas iniciais em maiúsculas.
func initials(title string) string {
	var out []rune
	for _, word := range strings.Fields(title) {
		r := []rune(word)[0]
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		out = append(out, unicode.ToUpper(r))
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}
