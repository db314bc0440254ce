package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"livraria/internal/session"
)

type contextKey string

const sessionContextKey contextKey = "sessao"

// flashBag liga a requisição à sessão do visitante. Sem cookie válido, id
// fica vazio até o primeiro AddFlash.
type flashBag struct {
	manager *session.Manager
	w       http.ResponseWriter
	secure  bool
	id      string
}

// ensure cria a sessão e o cookie na primeira vez que são necessários.
func (b *flashBag) ensure() bool {
	if b.id != "" {
		return true
	}
	s, err := b.manager.Create()
	if err != nil {
		log.Error().Err(err).Msg("erro ao criar sessão")
		return false
	}
	b.id = s.ID
	session.SetCookie(b.w, b.id, b.secure)
	return true
}

// Session reconhece a sessão do visitante pelo cookie e a deixa no contexto
// para AddFlash e PopFlashes. A sessão só é criada quando há aviso a guardar.
func Session(m *session.Manager, secureCookie bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bag := &flashBag{manager: m, w: w, secure: secureCookie}
			if id, ok := session.IDFromRequest(r); ok && m.Exists(id) {
				bag.id = id
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, bag)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AddFlash enfileira um aviso para a próxima página, criando a sessão se
// preciso. Fora do middleware, não faz nada.
func AddFlash(r *http.Request, kind session.Kind, message string) {
	bag, ok := r.Context().Value(sessionContextKey).(*flashBag)
	if !ok || !bag.ensure() {
		return
	}
	bag.manager.AddFlash(bag.id, session.Flash{Kind: kind, Message: message})
}

// PopFlashes devolve e consome os avisos pendentes.
func PopFlashes(r *http.Request) []session.Flash {
	bag, ok := r.Context().Value(sessionContextKey).(*flashBag)
	if !ok || bag.id == "" {
		return nil
	}
	return bag.manager.PopFlashes(bag.id)
}
