package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/KotFed0t/portfolio_ledger/utils"
	chiMW "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

// Logger tags every request with a request id, taken from X-Request-Id when the
// caller sent one, and logs its start and outcome.
func Logger() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()

			rqID := r.Header.Get(RequestIDHeader)
			if rqID == "" {
				rqID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, rqID)

			slog.Info(
				"start request",
				slog.String("rqID", rqID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)

			ww := chiMW.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				slog.Info(
					"request finished",
					slog.String("rqID", rqID),
					slog.Int("status", ww.Status()),
					slog.String("request duration", fmt.Sprintf("%.2fs", time.Since(now).Seconds())),
				)
			}()

			next.ServeHTTP(ww, r.WithContext(utils.WithRequestID(r.Context(), rqID)))
		})
	}
}
