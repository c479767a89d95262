// Package pharmacy собирает HTTP-приложение: зависимости, маршруты и сервер.
package pharmacy

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/pharmacy-management/internal/http/handlers/auth/check"
	"github.com/magabrotheeeer/pharmacy-management/internal/http/handlers/auth/createuser"
	"github.com/magabrotheeeer/pharmacy-management/internal/http/handlers/auth/deleteuser"
	"github.com/magabrotheeeer/pharmacy-management/internal/http/handlers/auth/editprofile"
	"github.com/magabrotheeeer/pharmacy-management/internal/http/handlers/auth/forgotpassword"
	"github.com/magabrotheeeer/pharmacy-management/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/pharmacy-management/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/pharmacy-management/internal/http/handlers/auth/resetpassword"
	"github.com/magabrotheeeer/pharmacy-management/internal/http/handlers/auth/updateuser"
	drugcreate "github.com/magabrotheeeer/pharmacy-management/internal/http/handlers/drugs/create"
	druglist "github.com/magabrotheeeer/pharmacy-management/internal/http/handlers/drugs/list"
	drugremove "github.com/magabrotheeeer/pharmacy-management/internal/http/handlers/drugs/remove"
	drugupdate "github.com/magabrotheeeer/pharmacy-management/internal/http/handlers/drugs/update"
	"github.com/magabrotheeeer/pharmacy-management/internal/http/handlers/health"
	ordercreate "github.com/magabrotheeeer/pharmacy-management/internal/http/handlers/orders/create"
	orderlist "github.com/magabrotheeeer/pharmacy-management/internal/http/handlers/orders/list"
	orderremove "github.com/magabrotheeeer/pharmacy-management/internal/http/handlers/orders/remove"
	orderupdate "github.com/magabrotheeeer/pharmacy-management/internal/http/handlers/orders/update"
	"github.com/magabrotheeeer/pharmacy-management/internal/http/handlers/users/byrole"
	userlist "github.com/magabrotheeeer/pharmacy-management/internal/http/handlers/users/list"
	userread "github.com/magabrotheeeer/pharmacy-management/internal/http/handlers/users/read"
	"github.com/magabrotheeeer/pharmacy-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/pharmacy-management/internal/models"
	authservice "github.com/magabrotheeeer/pharmacy-management/internal/services/auth"
	drugservice "github.com/magabrotheeeer/pharmacy-management/internal/services/drug"
	orderservice "github.com/magabrotheeeer/pharmacy-management/internal/services/order"
	userservice "github.com/magabrotheeeer/pharmacy-management/internal/services/user"
	"github.com/magabrotheeeer/pharmacy-management/internal/throttle"
)

// Deps зависимости, необходимые для регистрации маршрутов.
type Deps struct {
	Logger        *slog.Logger
	Auth          *authservice.AuthService
	Users         *userservice.UserService
	Drugs         *drugservice.DrugService
	Orders        *orderservice.OrderService
	DB            health.Pinger
	ResetThrottle throttle.Limiter
	ResetWindow   time.Duration
	Limiter       *middlewarectx.ClientLimiter
	Registry      *prometheus.Registry
	FrontendURL   string
	SecureCookie  bool
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	logger := d.Logger
	metrics := middlewarectx.NewMetrics(d.Registry)

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middlewarectx.Recoverer(logger),
		cors.Handler(cors.Options{
			AllowedOrigins:   []string{d.FrontendURL},
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
		metrics.Middleware,
	)

	staff := []models.Role{models.RoleAdmin, models.RoleManager, models.RolePharmacist}
	managers := []models.Role{models.RoleAdmin, models.RoleManager}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// Открытые конечные точки
			r.Post("/logout", logout.New(logger, d.SecureCookie).ServeHTTP)
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RateLimitMiddleware(logger, d.Limiter))
				r.Post("/login", login.New(logger, d.Auth, d.SecureCookie).ServeHTTP)
				r.Post("/forgot-password", forgotpassword.New(logger, d.Auth, d.ResetThrottle, d.ResetWindow).ServeHTTP)
				r.Post("/reset-password", resetpassword.New(logger, d.Auth).ServeHTTP)
			})

			// Группа с JWT аутентификацией
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.JWTMiddleware(d.Auth, logger))
				r.Get("/check", check.New().ServeHTTP)
				r.Put("/edit-profile", editprofile.New(logger, d.Auth).ServeHTTP)
				r.Delete("/delete-user/{id}", deleteuser.New(logger, d.Auth).ServeHTTP)
				r.With(middlewarectx.RequireRole(logger, models.RoleAdmin)).
					Post("/create-user", createuser.New(logger, d.Auth).ServeHTTP)
				r.With(middlewarectx.RequireRole(logger, models.RoleAdmin)).
					Put("/update-user/{id}", updateuser.New(logger, d.Auth).ServeHTTP)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(d.Auth, logger))

			r.Get("/users", userlist.New(logger, d.Users).ServeHTTP)
			r.Get("/users/id/{id}", userread.New(logger, d.Users).ServeHTTP)
			r.Get("/users/{role}", byrole.New(logger, d.Users).ServeHTTP)

			r.Get("/drugs", druglist.New(logger, d.Drugs).ServeHTTP)
			r.With(middlewarectx.RequireRole(logger, staff...)).
				Post("/drugs", drugcreate.New(logger, d.Drugs).ServeHTTP)
			r.With(middlewarectx.RequireRole(logger, staff...)).
				Put("/drugs/{id}", drugupdate.New(logger, d.Drugs).ServeHTTP)
			r.With(middlewarectx.RequireRole(logger, managers...)).
				Delete("/drugs/{id}", drugremove.New(logger, d.Drugs).ServeHTTP)

			r.Get("/orders", orderlist.New(logger, d.Orders).ServeHTTP)
			r.Post("/orders", ordercreate.New(logger, d.Orders).ServeHTTP)
			r.With(middlewarectx.RequireRole(logger, staff...)).
				Put("/orders/{id}", orderupdate.New(logger, d.Orders).ServeHTTP)
			r.With(middlewarectx.RequireRole(logger, managers...)).
				Delete("/orders/{id}", orderremove.New(logger, d.Orders).ServeHTTP)
		})
	})

	r.Get("/healthz", health.New(logger, d.DB).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
