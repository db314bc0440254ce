package models

import (
	"errors"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/shopspring/decimal"
)

const (
	TitleMinLength = 2
	TitleMaxLength = 200
	MinYear        = 1000

	// Limites do preço: até R$ 999.999.999,99, como a coluna NUMERIC(12,2).
	PriceMaxDigits = 9
	PriceMaxScale  = 2
)

// Preco guarda um valor em reais. No JSON é um número, não uma string.
type Preco struct {
	decimal.Decimal
}

// NewPreco cria um preço a partir de um float.
func NewPreco(v float64) *Preco {
	return &Preco{decimal.NewFromFloat(v)}
}

// MarshalJSON serializa o preço como número JSON.
func (p Preco) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal.String()), nil
}

// Book representa um livro do acervo. É o único formato de registro usado
// pela interface, pelo cliente HTTP e pelo backend de referência.
type Book struct {
	ID            string    `json:"_id"`
	Titulo        string    `json:"titulo"`
	Autor         string    `json:"autor,omitempty"`
	Editora       string    `json:"editora,omitempty"`
	Preco         *Preco    `json:"preco,omitempty"`
	Paginas       int       `json:"paginas,omitempty"`
	AnoPublicacao *int      `json:"anoPublicacao,omitempty"`
	ISBN          string    `json:"isbn,omitempty"`
	CapaURL       string    `json:"capaUrl,omitempty"`
	Desenvolvedor string    `json:"desenvolvedor,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Input devolve os campos editáveis do livro.
func (b *Book) Input() BookInput {
	return BookInput{
		Titulo:        b.Titulo,
		Autor:         b.Autor,
		Editora:       b.Editora,
		Preco:         b.Preco,
		Paginas:       b.Paginas,
		AnoPublicacao: b.AnoPublicacao,
		ISBN:          b.ISBN,
		CapaURL:       b.CapaURL,
		Desenvolvedor: b.Desenvolvedor,
	}
}

// Apply substitui todos os campos editáveis pelos de in (substituição completa).
func (b *Book) Apply(in BookInput) {
	b.Titulo = in.Titulo
	b.Autor = in.Autor
	b.Editora = in.Editora
	b.Preco = in.Preco
	b.Paginas = in.Paginas
	b.AnoPublicacao = in.AnoPublicacao
	b.ISBN = in.ISBN
	b.CapaURL = in.CapaURL
	b.Desenvolvedor = in.Desenvolvedor
}

// BookInput são os campos de um livro sem id e timestamps; é o corpo de
// POST /livros e PUT /livros/{id}.
type BookInput struct {
	Titulo        string `json:"titulo"`
	Autor         string `json:"autor,omitempty"`
	Editora       string `json:"editora,omitempty"`
	Preco         *Preco `json:"preco,omitempty"`
	Paginas       int    `json:"paginas,omitempty"`
	AnoPublicacao *int   `json:"anoPublicacao,omitempty"`
	ISBN          string `json:"isbn,omitempty"`
	CapaURL       string `json:"capaUrl,omitempty"`
	Desenvolvedor string `json:"desenvolvedor,omitempty"`
}

// Normalize remove espaços nas bordas dos campos de texto.
func (in *BookInput) Normalize() {
	in.Titulo = strings.TrimSpace(in.Titulo)
	in.Autor = strings.TrimSpace(in.Autor)
	in.Editora = strings.TrimSpace(in.Editora)
	in.ISBN = strings.TrimSpace(in.ISBN)
	in.CapaURL = strings.TrimSpace(in.CapaURL)
	in.Desenvolvedor = strings.TrimSpace(in.Desenvolvedor)
}

// Validate aplica as regras de um registro de livro. O ano máximo é o ano de now.
// O erro devolvido, quando não nil, é um validation.Errors indexado pelo nome JSON do campo.
func (in BookInput) Validate(now time.Time) error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Titulo,
			validation.Required.Error("O título é obrigatório"),
			validation.By(runeLength(TitleMinLength, TitleMaxLength)),
		),
		validation.Field(&in.Autor,
			validation.Required.Error("O autor é obrigatório"),
		),
		validation.Field(&in.Preco,
			validation.By(nonNegativePrice),
		),
		validation.Field(&in.Paginas,
			validation.Required.Error("O número de páginas é obrigatório"),
			validation.Min(1).Error("Número de páginas inválido"),
		),
		validation.Field(&in.AnoPublicacao,
			validation.By(yearRange(MinYear, now.Year())),
		),
		validation.Field(&in.ISBN,
			validation.By(func(value interface{}) error {
				if !IsValidISBN(value.(string)) {
					return errors.New("ISBN inválido")
				}
				return nil
			}),
		),
		validation.Field(&in.CapaURL,
			is.RequestURL.Error("URL da capa inválida"),
			validation.By(httpScheme),
		),
	)
}

func runeLength(min, max int) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		n := utf8.RuneCountInString(strings.TrimSpace(s))
		if n == 0 {
			return nil
		}
		if n < min || n > max {
			return errors.New("O título deve ter entre 2 e 200 caracteres")
		}
		return nil
	}
}

// yearRange aceita ano ausente; presente, precisa estar em [min, max].
func yearRange(min, max int) validation.RuleFunc {
	return func(value interface{}) error {
		year, _ := value.(*int)
		if year == nil {
			return nil
		}
		if *year < min || *year > max {
			return errors.New("Ano de publicação inválido")
		}
		return nil
	}
}

func httpScheme(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("URL da capa inválida")
	}
	return nil
}

func nonNegativePrice(value interface{}) error {
	p, _ := value.(*Preco)
	if p == nil {
		return nil
	}
	if p.IsNegative() {
		return errors.New("O preço não pode ser negativo")
	}
	intDigits, scale := priceDigits(p.Decimal)
	if intDigits > PriceMaxDigits {
		return errors.New("O preço deve ser no máximo R$ 999.999.999,99")
	}
	if scale > PriceMaxScale {
		return errors.New("O preço deve ter no máximo 2 casas decimais")
	}
	return nil
}

// priceDigits conta os dígitos inteiros e as casas decimais significativas
// de d sem expandir o expoente, que pode vir enorme de "1e200000".
func priceDigits(d decimal.Decimal) (intDigits, scale int) {
	coef := strings.TrimLeft(d.Coefficient().String(), "-")
	trimmed := strings.TrimRight(coef, "0")
	if trimmed == "" {
		return 0, 0
	}
	exp := int(d.Exponent()) + len(coef) - len(trimmed)
	if exp < 0 {
		scale = -exp
	}
	intDigits = len(trimmed) + exp
	if intDigits < 0 {
		intDigits = 0
	}
	return intDigits, scale
}

// FieldErrors converte o erro de Validate num mapa campo -> mensagem.
// Erros que não são de validação ficam sob a chave "_".
func FieldErrors(err error) map[string]string {
	out := make(map[string]string)
	if err == nil {
		return out
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, e := range verrs {
			out[field] = e.Error()
		}
		return out
	}
	out["_"] = err.Error()
	return out
}

// Pagination é o bloco "paginacao" da listagem do backend.
type Pagination struct {
	Pagina       int  `json:"pagina"`
	Limite       int  `json:"limite"`
	Total        int  `json:"total"`
	TotalPaginas int  `json:"totalPaginas"`
	HasNext      bool `json:"hasNext"`
	HasPrev      bool `json:"hasPrev"`
}

// NewPagination calcula os campos derivados a partir de página, limite e total.
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		Pagina:       page,
		Limite:       limit,
		Total:        total,
		TotalPaginas: totalPages,
		HasNext:      page < totalPages,
		HasPrev:      page > 1,
	}
}

// IntPtr é um atalho para campos numéricos opcionais.
func IntPtr(v int) *int {
	return &v
}
