// Package api é o cliente HTTP do backend REST do acervo.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Observer recebe método, status (0 sem resposta) e duração de cada chamada.
type Observer func(method string, status int, d time.Duration)

// Client fala JSON com o backend. É seguro para uso concorrente.
type Client struct {
	baseURL  string
	http     *http.Client
	observer Observer
	log      zerolog.Logger
}

// Option configura o Client.
type Option func(*Client)

// WithHTTPClient substitui o http.Client padrão.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithObserver registra um observador das chamadas (métricas).
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithLogger define o logger usado nas falhas.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New cria o cliente para baseURL com o timeout informado.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL devolve o endereço do backend.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// errorBody é o formato de erro do backend.
type errorBody struct {
	Mensagem string   `json:"mensagem"`
	Erros    []string `json:"erros"`
}

// do executa a requisição e decodifica a resposta em out. Toda falha vira
// *Error, exceto o cancelamento do contexto, devolvido como context.Canceled.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &Error{Message: MsgBadRequest, Err: fmt.Errorf("erro ao serializar o corpo: %w", err)}
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Message: MsgBadRequest, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(method, 0, start)
		if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
			return context.Canceled
		}
		apiErr := networkError(err)
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg(apiErr.Message)
		return apiErr
	}
	defer resp.Body.Close()
	c.observe(method, resp.StatusCode, start)

	if resp.StatusCode >= 400 {
		apiErr := &Error{Status: resp.StatusCode, Message: statusMessage(resp.StatusCode)}
		var eb errorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil {
			apiErr.Details = eb.Erros
		}
		c.log.Warn().
			Int("status", resp.StatusCode).
			Str("method", method).
			Str("path", path).
			Strs("erros", apiErr.Details).
			Msg("backend respondeu com erro")
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return context.Canceled
		}
		return &Error{Status: resp.StatusCode, Message: MsgServerGeneric, Err: fmt.Errorf("resposta inválida do backend: %w", err)}
	}
	return nil
}

func (c *Client) observe(method string, status int, start time.Time) {
	if c.observer != nil {
		c.observer(method, status, time.Since(start))
	}
}
