// Package templates embute as páginas HTML, os fragmentos usados pelo htmx
// e os arquivos estáticos.
package templates

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed layout.html pages/*.html partials/*.html static
var files embed.FS

// Page parseia o layout, todos os fragmentos e a página name (ex.: "list.html").
// A página define os blocos "title" e "content"; executar "layout.html".
func Page(funcs template.FuncMap, name string) (*template.Template, error) {
	return template.New("layout.html").Funcs(funcs).
		ParseFS(files, "layout.html", "partials/*.html", "pages/"+name)
}

// Partials parseia só os fragmentos, para respostas htmx.
func Partials(funcs template.FuncMap) (*template.Template, error) {
	return template.New("partials").Funcs(funcs).ParseFS(files, "partials/*.html")
}

// Static serve o conteúdo de static/.
func Static() http.Handler {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
