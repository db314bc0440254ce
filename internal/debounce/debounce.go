// Package debounce adia uma tarefa até um período de silêncio. Uma chamada
// nova para a mesma chave substitui a anterior, que desiste sem executar.
package debounce

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSuperseded é devolvido à chamada que foi substituída por outra mais nova.
var ErrSuperseded = errors.New("debounce: substituída por chamada mais recente")

// Group mantém no máximo uma tarefa pendente por chave.
type Group struct {
	wait time.Duration

	mu      sync.Mutex
	pending map[string]*call
}

type call struct {
	superseded chan struct{}
}

// New cria um grupo com o período de silêncio informado.
func New(wait time.Duration) *Group {
	return &Group{wait: wait, pending: make(map[string]*call)}
}

// Do espera o período de silêncio e executa fn. Se outra chamada com a mesma
// chave chegar antes, esta devolve ErrSuperseded. Se ctx for cancelado, devolve
// ctx.Err(). Em nenhum dos dois casos fn é executada.
func (g *Group) Do(ctx context.Context, key string, fn func(context.Context) error) error {
	c := &call{superseded: make(chan struct{})}

	g.mu.Lock()
	if prev, ok := g.pending[key]; ok {
		close(prev.superseded)
	}
	g.pending[key] = c
	g.mu.Unlock()

	timer := time.NewTimer(g.wait)
	defer timer.Stop()

	select {
	case <-c.superseded:
		return ErrSuperseded
	case <-ctx.Done():
		g.release(key, c)
		return ctx.Err()
	case <-timer.C:
	}

	// Saiu da fila: a partir daqui uma chamada nova não cancela esta.
	if !g.release(key, c) {
		return ErrSuperseded
	}
	return fn(ctx)
}

// release remove c da fila se ainda for a chamada pendente da chave.
func (g *Group) release(key string, c *call) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending[key] != c {
		return false
	}
	delete(g.pending, key)
	return true
}

// Pending informa quantas chaves têm tarefa aguardando.
func (g *Group) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}
