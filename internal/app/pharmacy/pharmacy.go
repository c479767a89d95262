package pharmacy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	// Регистрирует спецификацию Swagger для /docs.
	_ "github.com/magabrotheeeer/pharmacy-management/docs"
	"github.com/magabrotheeeer/pharmacy-management/internal/config"
	"github.com/magabrotheeeer/pharmacy-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/pharmacy-management/internal/lib/jwt"
	"github.com/magabrotheeeer/pharmacy-management/internal/lib/sl"
	"github.com/magabrotheeeer/pharmacy-management/internal/lib/smtp"
	"github.com/magabrotheeeer/pharmacy-management/internal/migrations"
	"github.com/magabrotheeeer/pharmacy-management/internal/objectstorage"
	authservice "github.com/magabrotheeeer/pharmacy-management/internal/services/auth"
	drugservice "github.com/magabrotheeeer/pharmacy-management/internal/services/drug"
	orderservice "github.com/magabrotheeeer/pharmacy-management/internal/services/order"
	schedulerservice "github.com/magabrotheeeer/pharmacy-management/internal/services/scheduler"
	senderservice "github.com/magabrotheeeer/pharmacy-management/internal/services/sender"
	userservice "github.com/magabrotheeeer/pharmacy-management/internal/services/user"
	"github.com/magabrotheeeer/pharmacy-management/internal/storage/repository"
	"github.com/magabrotheeeer/pharmacy-management/internal/throttle"
)

const (
	shutdownTimeout = 15 * time.Second
	// mailReserve время на ответ клиенту после неудачной отправки письма.
	mailReserve = 2 * time.Second
)

// mailBudget срок отправки письма сброса внутри запроса. Ответ о неудачной
// доставке должен уйти раньше, чем сработает WriteTimeout. Ноль без ограничения.
func mailBudget(writeTimeout time.Duration) time.Duration {
	switch {
	case writeTimeout <= 0:
		return 0
	case writeTimeout <= 2*mailReserve:
		return writeTimeout / 2
	default:
		return writeTimeout - mailReserve
	}
}

// App HTTP-приложение вместе с ресурсами, которые нужно закрыть при остановке.
type App struct {
	server    *http.Server
	logger    *slog.Logger
	db        *repository.Storage
	redis     *throttle.Redis
	scheduler *schedulerservice.SchedulerService
}

// New подключает базу, применяет миграции и собирает сервисы и маршруты.
// Redis необязателен: без него отключается ограничение частоты запросов сброса пароля.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.pharmacy.New"

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	version, err := migrations.Run(db.DB, cfg.MigrationsPath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("migrations applied", slog.Uint64("version", uint64(version)))

	var (
		redisConn     *throttle.Redis
		resetThrottle throttle.Limiter = throttle.Disabled{}
	)
	if cfg.AddressRedis != "" {
		redisConn, err = throttle.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		resetThrottle = redisConn
	} else {
		logger.Warn("redis is not configured, reset request throttling is disabled")
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	sender := senderservice.NewSenderService(transport, logger, cfg.FrontendURL, cfg.SMTPFromName)
	maker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.NewAuthService(db, objectstorage.NewClient(cfg.ObjectStorage), sender, maker, logger).
		WithMailTimeout(mailBudget(cfg.TimeoutHTTP))
	if _, err = authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Error("failed to create bootstrap admin", sl.Err(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Logger:        logger,
		Auth:          authService,
		Users:         userservice.NewUserService(db, logger),
		Drugs:         drugservice.NewDrugService(db, logger),
		Orders:        orderservice.NewOrderService(db, logger),
		DB:            db,
		ResetThrottle: resetThrottle,
		ResetWindow:   cfg.ResetWindow,
		Limiter:       middlewarectx.NewClientLimiter(cfg.RequestsPerSecond, cfg.Burst),
		Registry:      registry,
		FrontendURL:   cfg.FrontendURL,
		SecureCookie:  cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:    srv,
		logger:    logger,
		db:        db,
		redis:     redisConn,
		scheduler: schedulerservice.NewSchedulerService(db, cfg.ResetSweep, logger),
	}, nil
}

// Run запускает HTTP-сервер и фоновую очистку токенов сброса
// и блокируется до ошибки сервера или отмены ctx.
func (a *App) Run(ctx context.Context) error {
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go a.scheduler.SweepExpiredResetTokens(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
}
