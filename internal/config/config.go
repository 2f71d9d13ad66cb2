// config предоставляет структуру конфигурации сервиса и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Окружения.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Бэкенды таблицы сессий.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Config — корневая конфигурация сервиса.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл local.yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
//
// Перед чтением подхватывается необязательный .env (уже заданные переменные не перезаписываются).
type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	GRPC     GRPCConfig    `yaml:"grpc"`
	Auth     AuthConfig    `yaml:"auth"`
	Session  SessionConfig `yaml:"session"`
	DB       DBConfig      `yaml:"db"`
	Redis    RedisConfig   `yaml:"redis"`
	CORS     CORSConfig    `yaml:"cors"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
}

// HTTPConfig — сетевые настройки HTTP-сервера.
type HTTPConfig struct {
	Host              string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port              string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"HTTP_READ_HEADER_TIMEOUT" env-default:"5s"`
}

// GRPCConfig описывает сетевые настройки gRPC-сервера.
type GRPCConfig struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"GRPC_PORT" env-default:"50051"`
}

// Addr возвращает адрес в формате host:port.
func (c HTTPConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Addr возвращает адрес в формате host:port.
func (c GRPCConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// AuthConfig содержит параметры выпуска и проверки учётных данных.
type AuthConfig struct {
	PrivateKeyPath  string        `yaml:"private_key_path" env:"AUTH_PRIVATE_KEY_PATH" env-required:"true"`
	PublicKeyPath   string        `yaml:"public_key_path" env:"AUTH_PUBLIC_KEY_PATH" env-required:"true"`
	Issuer          string        `yaml:"issuer" env:"AUTH_ISSUER" env-default:"league-auth"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"AUTH_ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"AUTH_REFRESH_TOKEN_TTL" env-default:"168h"`
	SessionTTL      time.Duration `yaml:"session_ttl" env:"AUTH_SESSION_TTL" env-default:"168h"`
	// SessionSecret — секрет HMAC для cookie и keyed digest refresh-токенов (>=32 байт, обязателен в prod).
	SessionSecret string `yaml:"session_secret" env:"AUTH_SESSION_SECRET"`
	CookieName    string `yaml:"cookie_name" env:"AUTH_COOKIE_NAME" env-default:"session_id"`
	LoginPath     string `yaml:"login_path" env:"AUTH_LOGIN_PATH" env-default:"/login"`
	BcryptCost    int    `yaml:"bcrypt_cost" env:"AUTH_BCRYPT_COST" env-default:"12"`
}

// SessionConfig — таблица сессий и её фоновая очистка.
type SessionConfig struct {
	Backend         string        `yaml:"backend" env:"SESSION_BACKEND" env-default:"memory"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"SESSION_CLEANUP_INTERVAL" env-default:"1h"`
	KeyPrefix       string        `yaml:"key_prefix" env:"SESSION_KEY_PREFIX" env-default:"auth:sess:"`
}

// DBConfig — настройки подключения к базе данных.
type DBConfig struct {
	DatabaseURL string `yaml:"db_url" env:"DATABASE_URL" env-required:"true"`
}

// RedisConfig — Redis для общей таблицы сессий и denylist refresh-токенов.
// Пустой URL отключает оба.
type RedisConfig struct {
	RedisURL      string `yaml:"redis_url" env:"REDIS_URL"`
	RefreshPrefix string `yaml:"refresh_prefix" env:"REDIS_REFRESH_PREFIX" env-default:"auth:rt:revoked:"`
}

// CORSConfig — разрешённые источники для /api.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:","`
}

var (
	// ErrSecretTooShort — session_secret короче 32 байт.
	ErrSecretTooShort = errors.New("auth.session_secret must be at least 32 bytes")
	// ErrSecretRequired — session_secret не задан в prod.
	ErrSecretRequired = errors.New("auth.session_secret is required in prod")
)

// Validate проверяет согласованность значений после загрузки.
func (c *Config) Validate() error {
	const op = "config.Validate"

	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("%s: unknown env %q", op, c.Env)
	}

	if c.Env == EnvProd && c.Auth.SessionSecret == "" {
		return fmt.Errorf("%s: %w", op, ErrSecretRequired)
	}
	if c.Auth.SessionSecret != "" && len(c.Auth.SessionSecret) < 32 {
		return fmt.Errorf("%s: %w", op, ErrSecretTooShort)
	}

	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 || c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("%s: token and session TTLs must be positive", op)
	}

	switch c.Session.Backend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if c.Redis.RedisURL == "" {
			return fmt.Errorf("%s: session.backend=redis requires redis.redis_url", op)
		}
	default:
		return fmt.Errorf("%s: unknown session backend %q", op, c.Session.Backend)
	}

	return nil
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла ENV-переменные накладываются поверх значений из YAML,
// затем вызывается Validate.
func Load(path string) (*Config, error) {
	// .env необязателен; ошибка "нет файла" не интересна.
	_ = godotenv.Load()

	cfg, err := read(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func read(path string) (*Config, error) {
	var cfg Config

	// чтение файла + overlay ENV.
	tryRead := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return &cfg, nil
}
