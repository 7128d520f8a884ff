// Package config предоставляет структуры и функции для загрузки конфигурации
// из переменных окружения.
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек сервиса.
type Config struct {
	Env                     string `env:"ENV" env-default:"local"`
	SecretKey               string `env:"SECRET_KEY" env-default:"dev-secret-key"`
	StorageConnectionString string `env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	MigrationsPath          string `env:"MIGRATIONS_PATH" env-default:"./migrations"`
	FrontendDir             string `env:"FRONTEND_DIR" env-default:"./frontend"`
	Clerk
	Credits
	CORS
	HTTPServer
}

// Clerk — настройки интеграции с identity-провайдером.
type Clerk struct {
	Domain        string `env:"CLERK_DOMAIN"`
	WebhookSecret string `env:"CLERK_WEBHOOK_SECRET"`
}

// Credits — настройки начисления кредитов.
type Credits struct {
	SignupBonus int `env:"SIGNUP_BONUS_CREDITS" env-default:"50"`
}

// CORS — список разрешённых origin, через запятую.
type CORS struct {
	Origins []string `env:"CORS_ORIGINS" env-default:"http://localhost:5000"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `env:"ADDRESS" env-default:":5000"`
	TimeoutHTTP time.Duration `env:"HTTP_TIMEOUT" env-default:"10s"`
	IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// Load читает конфигурацию из переменных окружения.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// MustLoad загружает конфигурацию и завершает процесс при ошибке.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}
