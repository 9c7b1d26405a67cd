package rest

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/KotFed0t/portfolio_ledger/config"
	"github.com/KotFed0t/portfolio_ledger/data/repository/localFile"
	"github.com/KotFed0t/portfolio_ledger/internal/model"
	"github.com/KotFed0t/portfolio_ledger/internal/service/ledgerService"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *localFile.LocalFile) {
	t.Helper()

	repo := localFile.NewWithPath(t.TempDir() + "/portfolio.json")
	cfg := &config.Config{Ledger: config.Ledger{MaxAttempts: 3, SellPolicy: "residual"}}
	srv := httptest.NewServer(NewRouter(NewHandler(ledgerService.New(cfg, repo))))
	t.Cleanup(srv.Close)

	return srv, repo
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func seed(t *testing.T, repo *localFile.LocalFile, holdings ...model.StockHolding) {
	t.Helper()

	p := model.NewPortfolio()
	for _, h := range holdings {
		p = p.WithHolding(h)
	}
	_, err := repo.PutPortfolio(context.Background(), p, "")
	require.NoError(t, err)
}

func TestBuy(t *testing.T) {
	srv, repo := newTestServer(t)
	seed(t, repo, model.StockHolding{Symbol: "VAS.AX", Quantity: 19, AveragePrice: decimal.RequireFromString("98.87")})

	resp, body := postJSON(t, srv.URL+"/buy", `{"symbol":"VAS.AX","quantity":5,"price":100}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Transaction processed successfully", body["message"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	holding := body["holding"].(map[string]any)
	assert.Equal(t, float64(24), holding["quantity"])
	assert.InDelta(t, 99.1054, holding["averagePrice"], 0.0001)

	p, err := repo.GetPortfolio(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 24, p.Holdings["VAS.AX"].Quantity)
}

func TestSell_Errors(t *testing.T) {
	srv, repo := newTestServer(t)
	seed(t, repo, model.StockHolding{Symbol: "AAPL", Quantity: 10, AveragePrice: decimal.RequireFromString("150")})

	resp, body := postJSON(t, srv.URL+"/sell", `{"symbol":"NONEXISTENT","quantity":1,"price":100}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Stock with symbol NONEXISTENT not found in portfolio", body["message"])

	resp, body = postJSON(t, srv.URL+"/sell", `{"symbol":"AAPL","quantity":11,"price":100}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Insufficient quantity of AAPL: available 10, requested 11", body["message"])
}

func TestBuy_QuantityOverflow(t *testing.T) {
	srv, repo := newTestServer(t)
	seed(t, repo, model.StockHolding{Symbol: "AAPL", Quantity: math.MaxInt, AveragePrice: decimal.RequireFromString("1")})

	resp, body := postJSON(t, srv.URL+"/buy", `{"symbol":"AAPL","quantity":2,"price":1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["message"], "Quantity of AAPL is too large")

	p, err := repo.GetPortfolio(context.Background())
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, p.Holdings["AAPL"].Quantity)

	resp, _ = postJSON(t, srv.URL+"/buy", `{"symbol":"MSFT","quantity":1,"price":400}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSell_AllOmitsHolding(t *testing.T) {
	srv, repo := newTestServer(t)
	seed(t, repo, model.StockHolding{Symbol: "AAPL", Quantity: 10, AveragePrice: decimal.RequireFromString("150")})

	resp, body := postJSON(t, srv.URL+"/sell", `{"symbol":"AAPL","quantity":10,"price":170}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "holding")
	assert.Equal(t, "SELL", body["transaction"].(map[string]any)["type"])
}

func TestValidationAndMalformedBody(t *testing.T) {
	srv, _ := newTestServer(t)

	cases := []struct {
		path    string
		body    string
		message string
	}{
		{path: "/buy", body: `{"quantity":1,"price":1}`, message: "Missing required field: symbol"},
		{path: "/buy", body: `{"symbol":"AAPL","quantity":1,"price":-1}`, message: "Missing required field: price"},
		{path: "/transactions", body: `{"symbol":"AAPL","quantity":1,"price":1}`, message: "Missing required field: type"},
		{path: "/transactions", body: `{"symbol":"AAPL","quantity":1,"price":1,"type":"HOLD"}`, message: "Invalid value for field: type"},
		{path: "/buy", body: `{"symbol":`, message: "Invalid request body"},
	}

	for _, tc := range cases {
		t.Run(tc.path+" "+tc.body, func(t *testing.T) {
			resp, body := postJSON(t, srv.URL+tc.path, tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tc.message, body["message"])
		})
	}
}

func TestApplyTransactionAndReads(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := postJSON(t, srv.URL+"/transactions", `{"symbol":"MSFT","quantity":3,"price":"412.50","type":"buy"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err := http.Get(srv.URL + "/portfolio")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc struct {
		Stocks []struct {
			Symbol       string      `json:"symbol"`
			Quantity     int         `json:"quantity"`
			AveragePrice json.Number `json:"averagePrice"`
		} `json:"stocks"`
		LastUpdated string `json:"lastUpdated"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	require.Len(t, doc.Stocks, 1)
	assert.Equal(t, "MSFT", doc.Stocks[0].Symbol)
	assert.Equal(t, json.Number("412.5"), doc.Stocks[0].AveragePrice)
	assert.NotEmpty(t, doc.LastUpdated)

	resp, err = http.Get(srv.URL + "/portfolio/MSFT")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/portfolio/msft")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSMSWebhook(t *testing.T) {
	srv, repo := newTestServer(t)

	resp, err := http.PostForm(srv.URL+"/webhooks/sms", url.Values{"Body": {"buy vas.ax 5 @limit 100.00"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	p, err := repo.GetPortfolio(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, p.Holdings["VAS.AX"].Quantity)

	resp, err = http.PostForm(srv.URL+"/webhooks/sms", url.Values{"Body": {"what is my balance"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// No price and no market-data lookup.
	resp, err = http.PostForm(srv.URL+"/webhooks/sms", url.Values{"Body": {"buy AAPL 1"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

type brokenService struct {
	LedgerService
}

func (brokenService) Buy(ctx context.Context, req model.TransactionRequest) (model.MutationResult, error) {
	return model.MutationResult{}, errors.New("bucket is gone")
}

func TestInternalError(t *testing.T) {
	srv := httptest.NewServer(NewRouter(NewHandler(brokenService{})))
	defer srv.Close()

	resp, body := postJSON(t, srv.URL+"/buy", `{"symbol":"AAPL","quantity":1,"price":1}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Internal server error", body["message"])
	assert.Equal(t, "bucket is gone", body["error"])
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
