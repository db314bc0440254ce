package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

var isbnRX = regexp.MustCompile(`^(?:\d{9}[\dX]|\d{13})$`)

// placeholderColors é a paleta das capas geradas.
var placeholderColors = []string{
	"#3B82F6",
	"#10B981",
	"#8B5CF6",
	"#F59E0B",
	"#EF4444",
	"#EC4899",
	"#06B6D4",
	"#84CC16",
}

// FormatCurrency formata um preço em reais: 49.9 -> "R$ 49,90", nil -> "R$ 0,00".
func FormatCurrency(p *Preco) string {
	if p == nil {
		return "R$ 0,00"
	}

	fixed := p.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}

	sign := ""
	if p.IsNegative() && !p.Round(2).IsZero() {
		sign = "-"
	}
	return fmt.Sprintf("%sR$ %s,%s", sign, grouped.String(), frac)
}

// FormatDate formata uma data no padrão brasileiro.
func FormatDate(t time.Time, includeTime bool) string {
	if t.IsZero() {
		return "Data não disponível"
	}
	if includeTime {
		return t.Local().Format("02/01/2006 15:04")
	}
	return t.Local().Format("02/01/2006")
}

// TruncateText corta o texto em maxLength caracteres e acrescenta "...".
func TruncateText(text string, maxLength int) string {
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxLength]) + "..."
}

// CleanISBN remove hífens e espaços.
func CleanISBN(isbn string) string {
	return strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(isbn))
}

// IsValidISBN aceita ISBN vazio (campo opcional), ISBN-10 ou ISBN-13.
// Dígitos verificadores não são conferidos.
func IsValidISBN(isbn string) bool {
	if strings.TrimSpace(isbn) == "" {
		return true
	}
	return isbnRX.MatchString(strings.ToUpper(CleanISBN(isbn)))
}

// StringToColor escolhe uma cor estável da paleta para o texto.
func StringToColor(s string) string {
	var hash int32
	for _, r := range s {
		hash = int32(r) + ((hash << 5) - hash)
	}
	idx := int(hash) % len(placeholderColors)
	if idx < 0 {
		idx = -idx
	}
	return placeholderColors[idx]
}

// Summary monta a frase de resumo exibida na página de detalhes.
func Summary(b *Book) string {
	editora := b.Editora
	if editora == "" {
		editora = "editora desconhecida"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s por %s é um livro publicado por %s", b.Titulo, b.Autor, editora)
	if b.AnoPublicacao != nil {
		fmt.Fprintf(&sb, " em %d", *b.AnoPublicacao)
	}
	fmt.Fprintf(&sb, ". Com %d páginas, está disponível por %s.", b.Paginas, FormatCurrency(b.Preco))
	return sb.String()
}
