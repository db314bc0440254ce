// Package forms trata o formulário de livro: texto cru dos campos, conversão
// para números e erros por campo.
package forms

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"livraria/internal/lookup"
	"livraria/internal/models"
)

// Mensagens de conversão dos campos numéricos.
const (
	MsgInvalidPrice = "Preço deve ser um número válido"
	MsgInvalidPages = "Número de páginas inválido"
	MsgInvalidYear  = "Ano de publicação inválido"
)

// BookForm guarda o que o usuário digitou e os erros de cada campo.
// As chaves de Errors são os nomes JSON dos campos.
type BookForm struct {
	Titulo        string
	Autor         string
	Editora       string
	Preco         string
	Paginas       string
	AnoPublicacao string
	ISBN          string
	CapaURL       string
	Desenvolvedor string

	Errors map[string]string

	input models.BookInput
}

// NewBookForm cria o formulário vazio (cadastro) ou preenchido com um livro
// existente (edição).
func NewBookForm(initial *models.Book) *BookForm {
	f := &BookForm{Errors: map[string]string{}}
	if initial == nil {
		return f
	}

	f.Titulo = initial.Titulo
	f.Autor = initial.Autor
	f.Editora = initial.Editora
	f.ISBN = initial.ISBN
	f.CapaURL = initial.CapaURL
	f.Desenvolvedor = initial.Desenvolvedor
	if initial.Preco != nil {
		f.Preco = initial.Preco.StringFixed(2)
	}
	if initial.Paginas > 0 {
		f.Paginas = strconv.Itoa(initial.Paginas)
	}
	if initial.AnoPublicacao != nil {
		f.AnoPublicacao = strconv.Itoa(*initial.AnoPublicacao)
	}
	return f
}

// FromRequest lê os campos enviados por POST.
func FromRequest(r *http.Request) (*BookForm, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("erro ao ler o formulário: %w", err)
	}
	return FromValues(r.PostForm), nil
}

// FromValues lê os campos de um conjunto de valores (corpo ou query string).
func FromValues(v url.Values) *BookForm {
	get := func(name string) string { return strings.TrimSpace(v.Get(name)) }

	return &BookForm{
		Titulo:        get("titulo"),
		Autor:         get("autor"),
		Editora:       get("editora"),
		Preco:         get("preco"),
		Paginas:       get("paginas"),
		AnoPublicacao: get("anoPublicacao"),
		ISBN:          get("isbn"),
		CapaURL:       get("capaUrl"),
		Desenvolvedor: get("desenvolvedor"),
		Errors:        map[string]string{},
	}
}

// Validate converte os campos numéricos e aplica as regras do livro.
// Campo numérico vazio significa ausente, não zero. Devolve true quando não
// há erros; com erros, nada deve ser enviado ao backend.
func (f *BookForm) Validate(now time.Time) bool {
	f.Errors = map[string]string{}
	in := models.BookInput{
		Titulo:        f.Titulo,
		Autor:         f.Autor,
		Editora:       f.Editora,
		ISBN:          f.ISBN,
		CapaURL:       f.CapaURL,
		Desenvolvedor: f.Desenvolvedor,
	}
	in.Normalize()

	if f.Preco != "" {
		p, err := ParsePrice(f.Preco)
		if err != nil {
			f.Errors["preco"] = MsgInvalidPrice
		} else {
			in.Preco = p
		}
	}
	if f.Paginas != "" {
		n, err := strconv.Atoi(f.Paginas)
		if err != nil || n <= 0 {
			f.Errors["paginas"] = MsgInvalidPages
		} else {
			in.Paginas = n
		}
	}
	if f.AnoPublicacao != "" {
		y, err := strconv.Atoi(f.AnoPublicacao)
		if err != nil {
			f.Errors["anoPublicacao"] = MsgInvalidYear
		} else {
			in.AnoPublicacao = models.IntPtr(y)
		}
	}

	for field, msg := range models.FieldErrors(in.Validate(now)) {
		if _, exists := f.Errors[field]; !exists {
			f.Errors[field] = msg
		}
	}

	f.input = in
	return len(f.Errors) == 0
}

// Input devolve o registro convertido. Só é válido depois de Validate sem erros.
func (f *BookForm) Input() models.BookInput {
	return f.input
}

// Valid informa se o último Validate passou.
func (f *BookForm) Valid() bool {
	return len(f.Errors) == 0
}

// Error devolve a mensagem de erro do campo, se houver.
func (f *BookForm) Error(field string) string {
	return f.Errors[field]
}

// SetErrors copia erros vindos do backend para o formulário.
func (f *BookForm) SetErrors(details []string) {
	for i, d := range details {
		f.Errors[fmt.Sprintf("_%d", i)] = d
	}
}

// GeneralErrors devolve, em ordem, os erros que não pertencem a um campo.
func (f *BookForm) GeneralErrors() []string {
	keys := make([]string, 0)
	for k := range f.Errors {
		if strings.HasPrefix(k, "_") {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.Atoi(keys[i][1:])
		b, _ := strconv.Atoi(keys[j][1:])
		return a < b
	})

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, f.Errors[k])
	}
	return out
}

// Fill é um valor sugerido para um campo do formulário.
type Fill struct {
	Field string
	Value string
}

// Fills devolve os valores da sugestão para os campos que estavam vazios
// quando a busca foi feita. O navegador só os aplica aos campos que ainda
// estiverem vazios ao receber a resposta.
func (f *BookForm) Fills(s lookup.Suggestion) []Fill {
	fills := make([]Fill, 0, 6)
	add := func(field, current, v string) {
		if current == "" && v != "" {
			fills = append(fills, Fill{Field: field, Value: v})
		}
	}
	add("titulo", f.Titulo, s.Titulo)
	if s.Autor != "Autor desconhecido" {
		add("autor", f.Autor, s.Autor)
	}
	add("editora", f.Editora, s.Editora)
	if s.Paginas > 0 {
		add("paginas", f.Paginas, strconv.Itoa(s.Paginas))
	}
	if y := s.Year(); y > 0 {
		add("anoPublicacao", f.AnoPublicacao, strconv.Itoa(y))
	}
	add("capaUrl", f.CapaURL, s.CoverURL())
	return fills
}

// ShouldLookup informa se vale buscar a capa: ISBN com 10 ou 13 caracteres
// e nenhuma capa definida.
func (f *BookForm) ShouldLookup() bool {
	if strings.TrimSpace(f.CapaURL) != "" {
		return false
	}
	n := len(models.CleanISBN(f.ISBN))
	return n == 10 || n == 13
}

// ParsePrice aceita "49.90", "49,90" e "1.234,50". Notação científica é recusada.
func ParsePrice(s string) (*models.Preco, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	if strings.ContainsAny(s, "eE") {
		return nil, fmt.Errorf("preço em notação científica: %q", s)
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &models.Preco{Decimal: d}, nil
}
