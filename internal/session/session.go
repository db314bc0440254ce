// Package session guarda, por visitante, os avisos (flash) que devem
// aparecer na próxima página renderizada.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"sync"
	"time"
)

const (
	CookieName      = "livraria_sessao"
	sessionDuration = 24 * time.Hour
	cleanupInterval = time.Hour
)

// Kind é o tipo do aviso; vira a classe CSS do banner.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Warning Kind = "warning"
	Info    Kind = "info"
)

// Flash é um aviso exibido uma única vez.
type Flash struct {
	Kind    Kind
	Message string
}

// Session é o estado de um visitante.
type Session struct {
	ID        string
	Flashes   []Flash
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Manager guarda as sessões em memória.
type Manager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	now      func() time.Time
}

// NewManager cria um manager vazio.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Start remove sessões expiradas a cada hora até ctx ser cancelado.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Cleanup()
			}
		}
	}()
}

// Create abre uma nova sessão.
func (m *Manager) Create() (*Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	now := m.now()
	s := &Session{
		ID:        id,
		CreatedAt: now,
		ExpiresAt: now.Add(sessionDuration),
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	return s, nil
}

// Exists informa se a sessão existe e não expirou.
func (m *Manager) Exists(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	return ok && m.now().Before(s.ExpiresAt)
}

// AddFlash enfileira um aviso na sessão. Sessão inexistente é ignorada.
func (m *Manager) AddFlash(id string, f Flash) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		s.Flashes = append(s.Flashes, f)
	}
}

// PopFlashes devolve e remove os avisos pendentes.
func (m *Manager) PopFlashes(id string) []Flash {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok || len(s.Flashes) == 0 {
		return nil
	}
	out := s.Flashes
	s.Flashes = nil
	return out
}

// Delete remove a sessão.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Cleanup remove as sessões expiradas.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, s := range m.sessions {
		if now.After(s.ExpiresAt) {
			delete(m.sessions, id)
		}
	}
}

// Len devolve o número de sessões guardadas.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// SetCookie grava o cookie com o id da sessão.
func SetCookie(w http.ResponseWriter, id string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(sessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// IDFromRequest lê o id da sessão do cookie.
func IDFromRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
