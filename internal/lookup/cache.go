package lookup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache guarda respostas normalizadas por chave de consulta.
type Cache interface {
	// Get devolve ok=false quando a chave não existe.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// NopCache não guarda nada.
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]byte, bool, error)         { return nil, false, nil }
func (NopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

// RedisCache guarda as consultas no Redis com prefixo próprio.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache cria o cache sobre um cliente já conectado.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, prefix: "livraria:lookup:"}
}

// Get lê a chave.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("erro ao ler o cache: %w", err)
	}
	return val, true, nil
}

// Set grava a chave com expiração.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("erro ao gravar o cache: %w", err)
	}
	return nil
}

// Connect abre o cliente Redis e confere a conexão com PING.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("falha ao conectar no Redis %s: %w", addr, err)
	}
	return client, nil
}
