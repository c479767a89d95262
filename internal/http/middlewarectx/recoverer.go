package middlewarectx

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/pharmacy-management/internal/http/response"
)

// Recoverer перехватывает панику обработчика, пишет её в лог со стеком
// и отвечает 500 с общим сообщением.
func Recoverer(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil || rec == http.ErrAbortHandler {
					if rec != nil {
						panic(rec)
					}
					return
				}
				log.Error("panic recovered",
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
				)
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error(response.InternalErrorMessage))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
