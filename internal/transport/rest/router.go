package rest

import (
	"net/http"

	customMW "github.com/KotFed0t/portfolio_ledger/internal/transport/rest/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer, customMW.Logger())

	r.Get("/healthz", h.Health)

	r.Post("/buy", h.Buy)
	r.Post("/sell", h.Sell)
	r.Post("/transactions", h.ApplyTransaction)
	r.Post("/webhooks/sms", h.SMSWebhook)

	r.Route("/portfolio", func(r chi.Router) {
		r.Get("/", h.GetPortfolio)
		r.Get("/{symbol}", h.GetHolding)
	})

	return r
}
