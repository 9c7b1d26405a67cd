package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/KotFed0t/portfolio_ledger/internal/converter/docConverter"
	"github.com/KotFed0t/portfolio_ledger/internal/ledger"
	"github.com/KotFed0t/portfolio_ledger/internal/model"
	"github.com/KotFed0t/portfolio_ledger/internal/model/docModel"
	"github.com/KotFed0t/portfolio_ledger/utils"
)

const (
	msgSuccess        = "Transaction processed successfully"
	msgInvalidBody    = "Invalid request body"
	msgInternalServer = "Internal server error"
)

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type transactionView struct {
	Symbol   string      `json:"symbol"`
	Quantity int         `json:"quantity"`
	Price    json.Number `json:"price"`
	Type     string      `json:"type"`
}

type mutationResponse struct {
	Message     string                 `json:"message"`
	Transaction transactionView        `json:"transaction"`
	Holding     *docModel.StockHolding `json:"holding,omitempty"`
}

func newMutationResponse(res model.MutationResult) mutationResponse {
	resp := mutationResponse{
		Message: msgSuccess,
		Transaction: transactionView{
			Symbol:   res.Transaction.Symbol,
			Quantity: res.Transaction.Quantity,
			Price:    json.Number(res.Transaction.Price.String()),
			Type:     string(res.Transaction.Direction),
		},
	}

	if !res.Removed {
		holding := docConverter.ConvertToDocHolding(res.Holding)
		resp.Holding = &holding
	}

	return resp
}

// errorStatus maps a service error to the status and body returned to the caller.
func errorStatus(err error) (int, errorResponse) {
	var (
		validationErr   *ledger.ValidationError
		notFoundErr     *ledger.NotFoundError
		insufficientErr *ledger.InsufficientQuantityError
		overflowErr     *ledger.QuantityOverflowError
	)

	switch {
	case errors.As(err, &validationErr), errors.As(err, &insufficientErr), errors.As(err, &overflowErr):
		return http.StatusBadRequest, errorResponse{Message: err.Error()}
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, errorResponse{Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorResponse{Message: msgInternalServer, Error: err.Error()}
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error(
			"failed to write response",
			slog.String("rqID", utils.GetRequestIDFromCtx(r.Context())),
			slog.String("err", err.Error()),
		)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error(
			"request failed",
			slog.String("rqID", utils.GetRequestIDFromCtx(r.Context())),
			slog.String("err", err.Error()),
		)
	}
	writeJSON(w, r, status, body)
}
