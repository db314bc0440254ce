package lookup

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"livraria/internal/models"
)

// DescriptionMaxLength é o tamanho máximo da descrição normalizada.
const DescriptionMaxLength = 500

// ImportedBy é gravado em "desenvolvedor" nos livros importados.
const ImportedBy = "Importado do Google Books"

// Suggestion é um volume do Google Books já no formato usado pelo formulário.
type Suggestion struct {
	ID             string  `json:"id"`
	Titulo         string  `json:"titulo"`
	Subtitulo      string  `json:"subtitulo,omitempty"`
	Autor          string  `json:"autor"`
	Editora        string  `json:"editora,omitempty"`
	DataPublicacao string  `json:"dataPublicacao,omitempty"`
	Descricao      string  `json:"descricao,omitempty"`
	ISBN10         string  `json:"isbn10,omitempty"`
	ISBN13         string  `json:"isbn13,omitempty"`
	Paginas        int     `json:"paginas,omitempty"`
	Categoria      string  `json:"categoria,omitempty"`
	Idioma         string  `json:"idioma,omitempty"`
	CapaPequena    string  `json:"capaPequena,omitempty"`
	CapaMedia      string  `json:"capaMedia,omitempty"`
	CapaGrande     string  `json:"capaGrande,omitempty"`
	Preco          float64 `json:"preco,omitempty"`
	Moeda          string  `json:"moeda,omitempty"`
	Link           string  `json:"link,omitempty"`
}

// ISBN devolve o ISBN-13, ou o ISBN-10 quando só ele existe.
func (s Suggestion) ISBN() string {
	if s.ISBN13 != "" {
		return s.ISBN13
	}
	return s.ISBN10
}

// CoverURL escolhe a capa média, depois a pequena, depois a grande.
func (s Suggestion) CoverURL() string {
	for _, u := range []string{s.CapaMedia, s.CapaPequena, s.CapaGrande} {
		if u != "" {
			return u
		}
	}
	return ""
}

var yearPattern = regexp.MustCompile(`^\d{4}`)

// Year extrai o ano de publicação ("1965-08-01" -> 1965). Zero quando ausente.
func (s Suggestion) Year() int {
	m := yearPattern.FindString(s.DataPublicacao)
	if m == "" {
		return 0
	}
	y, _ := strconv.Atoi(m)
	return y
}

// ToInput converte a sugestão num registro para importação.
func (s Suggestion) ToInput() models.BookInput {
	in := models.BookInput{
		Titulo:        s.Titulo,
		Autor:         s.Autor,
		Editora:       s.Editora,
		Paginas:       s.Paginas,
		ISBN:          s.ISBN(),
		CapaURL:       s.CoverURL(),
		Desenvolvedor: ImportedBy,
	}
	if y := s.Year(); y > 0 {
		in.AnoPublicacao = models.IntPtr(y)
	}
	if s.Preco > 0 {
		in.Preco = models.NewPreco(s.Preco)
	}
	return in
}

// volumesResponse é o formato de GET /volumes.
type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

type volume struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title               string   `json:"title"`
		Subtitle            string   `json:"subtitle"`
		Authors             []string `json:"authors"`
		Publisher           string   `json:"publisher"`
		PublishedDate       string   `json:"publishedDate"`
		Description         string   `json:"description"`
		PageCount           int      `json:"pageCount"`
		Categories          []string `json:"categories"`
		Language            string   `json:"language"`
		PreviewLink         string   `json:"previewLink"`
		InfoLink            string   `json:"infoLink"`
		IndustryIdentifiers []struct {
			Type       string `json:"type"`
			Identifier string `json:"identifier"`
		} `json:"industryIdentifiers"`
		ImageLinks struct {
			SmallThumbnail string `json:"smallThumbnail"`
			Thumbnail      string `json:"thumbnail"`
			Medium         string `json:"medium"`
			Large          string `json:"large"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
	SaleInfo struct {
		ListPrice struct {
			Amount       float64 `json:"amount"`
			CurrencyCode string  `json:"currencyCode"`
		} `json:"listPrice"`
	} `json:"saleInfo"`
}

func normalize(v volume) Suggestion {
	info := v.VolumeInfo
	s := Suggestion{
		ID:             v.ID,
		Titulo:         info.Title,
		Subtitulo:      info.Subtitle,
		Autor:          "Autor desconhecido",
		Editora:        info.Publisher,
		DataPublicacao: info.PublishedDate,
		Descricao:      cleanDescription(info.Description),
		Paginas:        info.PageCount,
		Categoria:      strings.Join(info.Categories, ", "),
		Idioma:         info.Language,
		CapaPequena:    secure(info.ImageLinks.SmallThumbnail),
		CapaMedia:      secure(info.ImageLinks.Thumbnail),
		CapaGrande:     secure(info.ImageLinks.Medium),
		Preco:          v.SaleInfo.ListPrice.Amount,
		Moeda:          v.SaleInfo.ListPrice.CurrencyCode,
		Link:           info.PreviewLink,
	}
	if len(info.Authors) > 0 {
		s.Autor = strings.Join(info.Authors, ", ")
	}
	if s.CapaGrande == "" {
		s.CapaGrande = secure(info.ImageLinks.Large)
	}
	if s.Link == "" {
		s.Link = info.InfoLink
	}
	if s.Moeda == "" {
		s.Moeda = "BRL"
	}
	for _, id := range info.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_10":
			s.ISBN10 = id.Identifier
		case "ISBN_13":
			s.ISBN13 = id.Identifier
		}
	}
	return s
}

var (
	tagPattern     = regexp.MustCompile(`<[^>]*>`)
	newlinePattern = regexp.MustCompile(`\n+`)
)

// cleanDescription remove tags HTML, junta quebras de linha e corta em 500 caracteres.
func cleanDescription(d string) string {
	d = tagPattern.ReplaceAllString(d, "")
	d = newlinePattern.ReplaceAllString(d, " ")
	d = strings.TrimSpace(d)
	if utf8.RuneCountInString(d) > DescriptionMaxLength {
		d = string([]rune(d)[:DescriptionMaxLength])
	}
	return d
}

// secure troca http por https; o Google Books devolve miniaturas em http.
func secure(u string) string {
	if strings.HasPrefix(u, "http://") {
		return "https://" + strings.TrimPrefix(u, "http://")
	}
	return u
}
