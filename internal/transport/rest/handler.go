package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/KotFed0t/portfolio_ledger/internal/converter/docConverter"
	"github.com/KotFed0t/portfolio_ledger/internal/model"
	"github.com/KotFed0t/portfolio_ledger/internal/parser"
	"github.com/go-chi/chi/v5"
)

type LedgerService interface {
	Buy(ctx context.Context, req model.TransactionRequest) (model.MutationResult, error)
	Sell(ctx context.Context, req model.TransactionRequest) (model.MutationResult, error)
	ApplyTransaction(ctx context.Context, req model.TransactionRequest) (model.MutationResult, error)
	GetPortfolio(ctx context.Context) (model.Portfolio, error)
	GetHolding(ctx context.Context, symbol string) (model.StockHolding, error)
}

type Handler struct {
	ledgerService LedgerService
}

func NewHandler(ledgerService LedgerService) *Handler {
	return &Handler{ledgerService: ledgerService}
}

type mutateFunc func(ctx context.Context, req model.TransactionRequest) (model.MutationResult, error)

// POST /buy
func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.ledgerService.Buy)
}

// POST /sell
func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.ledgerService.Sell)
}

// POST /transactions, direction taken from the type field.
func (h *Handler) ApplyTransaction(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.ledgerService.ApplyTransaction)
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, fn mutateFunc) {
	var req model.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Message: msgInvalidBody})
		return
	}

	res, err := fn(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, newMutationResponse(res))
}

// SMSWebhook accepts a form-encoded text command in the Body field and replies in
// plain text.
// POST /webhooks/sms
func (h *Handler) SMSWebhook(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, msgInvalidBody)
		return
	}

	cmd, err := parser.Parse(r.PostForm.Get("Body"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, err.Error())
		return
	}

	res, err := h.ledgerService.ApplyTransaction(r.Context(), cmd.Request())
	if err != nil {
		status, body := errorStatus(err)
		if status == http.StatusInternalServerError {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body.Message)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "%s order for %s processed.", res.Transaction.Direction, res.Transaction.Symbol)
}

// GET /portfolio
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.ledgerService.GetPortfolio(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	doc := docConverter.ConvertToDoc(portfolio)
	doc.Version = portfolio.Version
	writeJSON(w, r, http.StatusOK, doc)
}

// GET /portfolio/{symbol}
func (h *Handler) GetHolding(w http.ResponseWriter, r *http.Request) {
	holding, err := h.ledgerService.GetHolding(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, docConverter.ConvertToDocHolding(holding))
}

// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
