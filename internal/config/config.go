package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config reúne as configurações dos dois binários, lidas do ambiente.
type Config struct {
	App     AppConfig
	API     APIConfig
	Lookup  LookupConfig
	Redis   RedisConfig
	Backend BackendConfig
}

// AppConfig configura o servidor da interface.
type AppConfig struct {
	Port        string
	Environment string // development, production
	LogLevel    string
}

// APIConfig aponta para o backend REST de livros.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// LookupConfig configura a busca de metadados (Google Books).
type LookupConfig struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	Rate     float64 // requisições por segundo
	Debounce time.Duration
	CacheTTL time.Duration
}

// RedisConfig é opcional; sem Addr o cache de buscas fica desligado.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// BackendConfig configura o backend de referência (cmd/backend).
type BackendConfig struct {
	Port                    string
	Store                   string // memory, firestore, postgres
	FirebaseCredentialsPath string
	FirebaseCredentialsJSON string
	DatabaseURL             string
}

// Load lê o .env (se existir) e as variáveis de ambiente.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("Arquivo .env não encontrado - usando variáveis do sistema")
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Port:        v.GetString("PORT"),
			Environment: v.GetString("APP_ENV"),
			LogLevel:    v.GetString("LOG_LEVEL"),
		},
		API: APIConfig{
			BaseURL: strings.TrimRight(v.GetString("API_URL"), "/"),
			Timeout: v.GetDuration("API_TIMEOUT"),
		},
		Lookup: LookupConfig{
			BaseURL:  strings.TrimRight(v.GetString("LOOKUP_URL"), "/"),
			APIKey:   v.GetString("LOOKUP_API_KEY"),
			Timeout:  v.GetDuration("LOOKUP_TIMEOUT"),
			Rate:     v.GetFloat64("LOOKUP_RATE"),
			Debounce: v.GetDuration("LOOKUP_DEBOUNCE"),
			CacheTTL: v.GetDuration("LOOKUP_CACHE_TTL"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Backend: BackendConfig{
			Port:                    v.GetString("BACKEND_PORT"),
			Store:                   strings.ToLower(v.GetString("STORE")),
			FirebaseCredentialsPath: v.GetString("FIREBASE_CREDENTIALS_PATH"),
			FirebaseCredentialsJSON: v.GetString("FIREBASE_CREDENTIALS_JSON"),
			DatabaseURL:             v.GetString("DATABASE_URL"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("API_URL", "http://localhost:3000")
	v.SetDefault("API_TIMEOUT", "10s")

	v.SetDefault("LOOKUP_URL", "https://www.googleapis.com/books/v1")
	v.SetDefault("LOOKUP_TIMEOUT", "10s")
	v.SetDefault("LOOKUP_RATE", 5)
	v.SetDefault("LOOKUP_DEBOUNCE", "1500ms")
	v.SetDefault("LOOKUP_CACHE_TTL", "24h")

	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("BACKEND_PORT", "3000")
	v.SetDefault("STORE", "memory")
}

func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_URL não pode ser vazio")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("API_TIMEOUT inválido: %s", c.API.Timeout)
	}
	if c.Lookup.Rate <= 0 {
		return fmt.Errorf("LOOKUP_RATE deve ser positivo")
	}
	switch c.Backend.Store {
	case "memory", "firestore":
	case "postgres":
		if c.Backend.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL é obrigatória com STORE=postgres")
		}
	default:
		return fmt.Errorf("STORE desconhecido: %q (use memory, firestore ou postgres)", c.Backend.Store)
	}
	return nil
}

// IsDevelopment indica o modo de desenvolvimento.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
