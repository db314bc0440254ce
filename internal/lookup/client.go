// Package lookup consulta o Google Books para sugerir metadados e capas.
// Falhas nunca chegam ao chamador: o resultado é apenas vazio e o usuário
// segue com o preenchimento manual.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"livraria/internal/models"
)

// Config são os parâmetros do cliente.
type Config struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	Rate     float64 // requisições por segundo
	CacheTTL time.Duration
}

// Client é o cliente do Google Books. É seguro para uso concorrente.
type Client struct {
	cfg      Config
	http     *http.Client
	limiter  *rate.Limiter
	cache    Cache
	group    singleflight.Group
	observer func(result string)
	log      zerolog.Logger
}

// Option configura o Client.
type Option func(*Client)

// WithCache define o cache das consultas.
func WithCache(cache Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithObserver recebe o resultado de cada consulta (métricas).
func WithObserver(o func(result string)) Option {
	return func(c *Client) { c.observer = o }
}

// WithLogger define o logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New cria o cliente.
func New(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 5
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	c := &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.Rate), int(cfg.Rate)+1),
		cache:   NopCache{},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search busca volumes por texto livre. Nunca devolve erro.
func (c *Client) Search(ctx context.Context, query string, maxResults int) []Suggestion {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Suggestion{}
	}
	if maxResults <= 0 || maxResults > 40 {
		maxResults = 20
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("langRestrict", "pt")
	params.Set("printType", "books")
	params.Set("orderBy", "relevance")
	return c.volumes(ctx, params)
}

// ByISBN busca um volume pelo ISBN. ok=false quando nada foi encontrado ou a
// consulta falhou.
func (c *Client) ByISBN(ctx context.Context, isbn string) (Suggestion, bool) {
	clean := models.CleanISBN(isbn)
	if clean == "" {
		return Suggestion{}, false
	}

	params := url.Values{}
	params.Set("q", "isbn:"+clean)
	params.Set("maxResults", "1")

	results := c.volumes(ctx, params)
	if len(results) == 0 {
		return Suggestion{}, false
	}
	return results[0], true
}

func (c *Client) volumes(ctx context.Context, params url.Values) []Suggestion {
	key := params.Encode()

	if raw, ok, err := c.cache.Get(ctx, key); err != nil {
		c.log.Warn().Err(err).Msg("cache de metadados indisponível")
	} else if ok {
		var cached []Suggestion
		if err := json.Unmarshal(raw, &cached); err == nil {
			c.observe("cache")
			return cached
		}
	}

	// A busca compartilhada não depende de quem chegou primeiro: se essa
	// requisição for abortada, as outras que esperam a mesma chave seguem.
	ch := c.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.Timeout)
		defer cancel()

		results, err := c.fetch(fetchCtx, params)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(results); err == nil {
			if err := c.cache.Set(fetchCtx, key, raw, c.cfg.CacheTTL); err != nil {
				c.log.Warn().Err(err).Msg("erro ao gravar o cache de metadados")
			}
		}
		return results, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return []Suggestion{}
	}

	if res.Err != nil {
		c.observe("erro")
		c.log.Warn().Err(res.Err).Str("q", params.Get("q")).Msg("consulta de metadados falhou")
		return []Suggestion{}
	}

	results := res.Val.([]Suggestion)
	if len(results) == 0 {
		c.observe("vazio")
	} else {
		c.observe("ok")
	}
	return results
}

func (c *Client) fetch(ctx context.Context, params url.Values) ([]Suggestion, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("limite de requisições: %w", err)
	}

	if c.cfg.APIKey != "" {
		params = cloneValues(params)
		params.Set("key", c.cfg.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/volumes?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google books respondeu %d", resp.StatusCode)
	}

	var body volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("resposta inválida do google books: %w", err)
	}

	results := make([]Suggestion, 0, len(body.Items))
	for _, item := range body.Items {
		results = append(results, normalize(item))
	}
	return results, nil
}

func (c *Client) observe(result string) {
	if c.observer != nil {
		c.observer(result)
	}
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
