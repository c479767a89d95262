// Package throttle ограничивает частоту повторяемых операций (запросов сброса пароля)
// с помощью ключей Redis с временем жизни.
package throttle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/pharmacy-management/internal/config"
)

const keyPrefix = "throttle:"

// Limiter разрешает операцию с заданным ключом не чаще одного раза за окно.
type Limiter interface {
	Allow(ctx context.Context, key string, window time.Duration) (bool, error)
}

// Redis реализация Limiter поверх SET NX EX.
type Redis struct {
	Db *redis.Client
}

// InitServer подключается к Redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Redis, error) {
	const op = "throttle.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		Username:     cfg.RedisUser,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Redis{Db: db}, nil
}

// Allow возвращает true, если за последние window операция с ключом не выполнялась,
// и занимает окно. Ключ нормализуется к нижнему регистру.
func (r *Redis) Allow(ctx context.Context, key string, window time.Duration) (bool, error) {
	const op = "throttle.Allow"
	ok, err := r.Db.SetNX(ctx, keyPrefix+strings.ToLower(strings.TrimSpace(key)), 1, window).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}

// Close закрывает соединение с Redis.
func (r *Redis) Close() error {
	return r.Db.Close()
}

// Disabled пропускает все операции; используется, когда Redis не настроен.
type Disabled struct{}

// Allow всегда разрешает операцию.
func (Disabled) Allow(context.Context, string, time.Duration) (bool, error) {
	return true, nil
}
