package backend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livraria/internal/models"
	"livraria/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	ts := httptest.NewServer(NewServer(mem).Routes())
	t.Cleanup(ts.Close)
	return ts, mem
}

func do(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestCreateAndGetBook(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, out := do(t, http.MethodPost, ts.URL+"/livros",
		`{"titulo":"Dune","autor":"Frank Herbert","preco":49.9,"paginas":412,"anoPublicacao":1965}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Livro criado com sucesso", out["mensagem"])

	dados := out["dados"].(map[string]any)
	id := dados["_id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, 49.9, dados["preco"])
	assert.Equal(t, "/livros/"+id, resp.Header.Get("Location"))

	resp, out = do(t, http.MethodGet, ts.URL+"/livros/"+id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := out["dados"].(map[string]any)
	assert.Equal(t, "Dune", got["titulo"])
	assert.Equal(t, float64(1965), got["anoPublicacao"])
}

func TestCreateBook_ValidationErrors(t *testing.T) {
	ts, mem := newTestServer(t)

	resp, out := do(t, http.MethodPost, ts.URL+"/livros", `{"titulo":"A","paginas":0}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "Dados inválidos", out["mensagem"])
	assert.ElementsMatch(t, []any{
		"O autor é obrigatório",
		"O número de páginas é obrigatório",
		"O título deve ter entre 2 e 200 caracteres",
	}, out["erros"])

	_, total, err := mem.List(t.Context(), store.ListQuery{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCreateBook_MalformedBody(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, out := do(t, http.MethodPost, ts.URL+"/livros", `{"titulo":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Requisição inválida", out["mensagem"])
}

func TestUpdateBook_ReplacesRecord(t *testing.T) {
	ts, mem := newTestServer(t)
	b, err := mem.Create(t.Context(), models.BookInput{Titulo: "Dune", Autor: "Frank Herbert", Paginas: 412, Editora: "Aleph"})
	require.NoError(t, err)

	resp, out := do(t, http.MethodPut, ts.URL+"/livros/"+b.ID, `{"titulo":"Duna","autor":"Frank Herbert","paginas":680}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dados := out["dados"].(map[string]any)
	assert.Equal(t, "Duna", dados["titulo"])
	assert.NotContains(t, dados, "editora")

	resp, _ = do(t, http.MethodPut, ts.URL+"/livros/nao-existe", `{"titulo":"Duna","autor":"F","paginas":1}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteBook(t *testing.T) {
	ts, mem := newTestServer(t)
	b, err := mem.Create(t.Context(), models.BookInput{Titulo: "Dune", Autor: "Frank Herbert", Paginas: 412})
	require.NoError(t, err)

	resp, out := do(t, http.MethodDelete, ts.URL+"/livros/"+b.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Livro deletado com sucesso", out["mensagem"])

	resp, out = do(t, http.MethodGet, ts.URL+"/livros/"+b.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Livro não encontrado", out["mensagem"])

	resp, _ = do(t, http.MethodDelete, ts.URL+"/livros/"+b.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListBooks_Pagination(t *testing.T) {
	ts, mem := newTestServer(t)
	for _, title := range []string{"Cem Anos", "Admirável Mundo", "Berlim", "Dune", "Ensaio"} {
		_, err := mem.Create(t.Context(), models.BookInput{Titulo: title, Autor: "X", Paginas: 10})
		require.NoError(t, err)
	}

	resp, out := do(t, http.MethodGet, ts.URL+"/livros?pagina=2&limite=2&ordenar=titulo&direcao=asc", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	dados := out["dados"].([]any)
	require.Len(t, dados, 2)
	assert.Equal(t, "Cem Anos", dados[0].(map[string]any)["titulo"])
	assert.Equal(t, "Dune", dados[1].(map[string]any)["titulo"])

	pag := out["paginacao"].(map[string]any)
	assert.Equal(t, float64(2), pag["pagina"])
	assert.Equal(t, float64(5), pag["total"])
	assert.Equal(t, float64(3), pag["totalPaginas"])
	assert.Equal(t, true, pag["hasNext"])
	assert.Equal(t, true, pag["hasPrev"])
}

func TestSearchBooks(t *testing.T) {
	ts, mem := newTestServer(t)
	_, err := mem.Create(t.Context(), models.BookInput{Titulo: "Dom Casmurro", Autor: "Machado de Assis", Paginas: 256})
	require.NoError(t, err)
	_, err = mem.Create(t.Context(), models.BookInput{Titulo: "Dune", Autor: "Frank Herbert", Paginas: 412})
	require.NoError(t, err)

	resp, out := do(t, http.MethodGet, ts.URL+"/livros/busca/machado", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), out["resultados"])

	_, out = do(t, http.MethodGet, ts.URL+"/livros/busca/tolkien", "")
	assert.Equal(t, float64(0), out["resultados"])
	assert.Equal(t, []any{}, out["dados"])
}

func TestSearchBooks_EscapedSlash(t *testing.T) {
	ts, mem := newTestServer(t)
	_, err := mem.Create(t.Context(), models.BookInput{Titulo: "AC/DC Biografia", Autor: "Murray Engleheart", Paginas: 500})
	require.NoError(t, err)

	_, out := do(t, http.MethodGet, ts.URL+"/livros/busca/AC%2FDC", "")
	assert.Equal(t, float64(1), out["resultados"])

	_, out = do(t, http.MethodGet, ts.URL+"/livros/busca/AC%2FXY", "")
	assert.Equal(t, float64(0), out["resultados"])
}

func TestStatusAndInfo(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, out := do(t, http.MethodGet, ts.URL+"/status", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "online", out["status"])
	assert.Contains(t, out, "uptime")

	_, out = do(t, http.MethodGet, ts.URL+"/", "")
	assert.Equal(t, Version, out["versao"])
}
