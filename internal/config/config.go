// Package config предоставляет структуры и функции для загрузки конфигурации сервиса
// из YAML-файла (CONFIG_PATH) с переопределением через переменные окружения.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// EnvProduction значение Env, при котором cookie сессии выдаются с флагом Secure.
const EnvProduction = "production"

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	FrontendURL             string `yaml:"frontend_url" env:"FRONTEND_URL" env-default:"http://localhost:3000"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	SMTP                    `yaml:"smtp"`
	ObjectStorage           `yaml:"object_storage"`
	RedisConnection         `yaml:"redis_connection"`
	RateLimit               `yaml:"rate_limit"`
	BootstrapAdmin          `yaml:"bootstrap_admin"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":5000"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env:"HTTP_TIMEOUT" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env:"JWT_TOKEN_TTL" env-default:"24h"`
}

// SMTP настройки почтового транспорта для писем сброса пароля.
type SMTP struct {
	SMTPHost     string `yaml:"host" env:"SMTP_HOST" env-default:"smtp.gmail.com"`
	SMTPPort     string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser     string `yaml:"user" env:"SMTP_USER"`
	SMTPPassword string `yaml:"password" env:"SMTP_PASSWORD"`
	SMTPFromName string `yaml:"from_name" env:"SMTP_FROM_NAME" env-default:"Pharmacy Management System"`
}

// ObjectStorage настройки хранилища аватаров.
type ObjectStorage struct {
	StorageURL     string        `yaml:"url" env:"OBJECT_STORAGE_URL"`
	StorageKey     string        `yaml:"service_key" env:"OBJECT_STORAGE_KEY"`
	AvatarBucket   string        `yaml:"avatar_bucket" env:"OBJECT_STORAGE_AVATAR_BUCKET" env-default:"avatars"`
	StorageTimeout time.Duration `yaml:"timeout" env:"OBJECT_STORAGE_TIMEOUT" env-default:"10s"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой AddressRedis отключает ограничение частоты запросов сброса пароля.
type RedisConnection struct {
	AddressRedis  string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	RedisPassword string        `yaml:"password" env:"REDIS_PASSWORD"`
	RedisUser     string        `yaml:"user" env:"REDIS_USER"`
	RedisDB       int           `yaml:"db" env:"REDIS_DB"`
	MaxRetries    int           `yaml:"max_retries" env-default:"3"`
	DialTimeout   time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis  time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// RateLimit настройки ограничения частоты для публичных эндпоинтов аутентификации
// и периода очистки просроченных токенов сброса.
type RateLimit struct {
	RequestsPerSecond float64       `yaml:"rps" env:"RATE_LIMIT_RPS" env-default:"1"`
	Burst             int           `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"5"`
	ResetWindow       time.Duration `yaml:"reset_window" env:"RESET_REQUEST_WINDOW" env-default:"1m"`
	ResetSweep        time.Duration `yaml:"reset_sweep_interval" env:"RESET_SWEEP_INTERVAL" env-default:"1h"`
}

// BootstrapAdmin учётная запись администратора, создаваемая при старте,
// если в базе нет ни одного администратора.
type BootstrapAdmin struct {
	AdminEmail    string `yaml:"email" env:"BOOTSTRAP_ADMIN_EMAIL"`
	AdminPassword string `yaml:"password" env:"BOOTSTRAP_ADMIN_PASSWORD"`
}

// IsProduction сообщает, запущен ли сервис в боевом окружении.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load читает конфиг из файла CONFIG_PATH, если он задан, иначе только из окружения.
func Load() (*Config, error) {
	const op = "config.Load"
	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &cfg, nil
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad загружает конфиг и завершает процесс при ошибке.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// String печатает конфиг без секретов.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"MigrationsPath: %s\n"+
			"FrontendURL: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"JWTToken:\n"+
			"  TokenTTL: %s\n"+
			"SMTP:\n"+
			"  Host: %s:%s\n"+
			"  User: %s\n"+
			"ObjectStorage:\n"+
			"  URL: %s\n"+
			"  Bucket: %s\n"+
			"Redis:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n",
		c.Env,
		c.MigrationsPath,
		c.FrontendURL,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.TokenTTL,
		c.SMTPHost, c.SMTPPort,
		c.SMTPUser,
		c.StorageURL,
		c.AvatarBucket,
		c.AddressRedis,
		c.RedisDB,
	)
}
