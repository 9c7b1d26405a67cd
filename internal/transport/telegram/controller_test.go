package telegram

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/KotFed0t/portfolio_ledger/config"
	"github.com/KotFed0t/portfolio_ledger/data/repository/localFile"
	"github.com/KotFed0t/portfolio_ledger/internal/model"
	"github.com/KotFed0t/portfolio_ledger/internal/service/ledgerService"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

// fakeContext implements the part of tele.Context the controller touches.
type fakeContext struct {
	tele.Context
	text   string
	data   string
	store  map[string]any
	sent   []any
	edited []any

	respondErr error
}

func newFakeContext(text, data string) *fakeContext {
	return &fakeContext{text: text, data: data, store: map[string]any{"rqID": "rq-test"}}
}

func (c *fakeContext) Text() string { return c.text }
func (c *fakeContext) Data() string { return c.data }
func (c *fakeContext) Get(key string) any { return c.store[key] }
func (c *fakeContext) Set(key string, val any) { c.store[key] = val }

func (c *fakeContext) Send(what any, opts ...any) error {
	c.sent = append(c.sent, what)
	return nil
}

func (c *fakeContext) Edit(what any, opts ...any) error {
	c.edited = append(c.edited, what)
	return nil
}

func (c *fakeContext) Respond(resp ...*tele.CallbackResponse) error { return c.respondErr }

func (c *fakeContext) lastSent(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, c.sent)
	text, ok := c.sent[len(c.sent)-1].(string)
	require.True(t, ok)
	return text
}

func newController(t *testing.T) (*Controller, *localFile.LocalFile) {
	t.Helper()
	repo := localFile.NewWithPath(t.TempDir() + "/portfolio.json")
	cfg := &config.Config{Ledger: config.Ledger{MaxAttempts: 3, SellPolicy: "residual"}}
	return NewController(ledgerService.New(cfg, repo)), repo
}

func TestProcessCommand(t *testing.T) {
	ctrl, repo := newController(t)

	c := newFakeContext("buy AAPL 10 @limit 150", "")
	require.NoError(t, ctrl.ProcessCommand(c))
	assert.Contains(t, c.lastSent(t), "BUY 10 AAPL @ 150")

	p, err := repo.GetPortfolio(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, p.Holdings["AAPL"].Quantity)

	c = newFakeContext("sell AAPL 11 @limit 150", "")
	require.NoError(t, ctrl.ProcessCommand(c))
	assert.Equal(t, "Insufficient quantity of AAPL: available 10, requested 11", c.lastSent(t))

	c = newFakeContext("hello", "")
	require.NoError(t, ctrl.ProcessCommand(c))
	assert.Contains(t, c.lastSent(t), "Invalid command format")
}

func TestPortfolioAndHolding(t *testing.T) {
	ctrl, _ := newController(t)
	require.NoError(t, ctrl.ProcessCommand(newFakeContext("buy MSFT 2 @limit 400", "")))

	c := newFakeContext("/portfolio", "")
	require.NoError(t, ctrl.Portfolio(c))
	assert.Contains(t, c.lastSent(t), "MSFT")

	c = newFakeContext("", "MSFT")
	require.NoError(t, ctrl.ShowHolding(c))
	assert.Contains(t, c.lastSent(t), "Quantity: 2")

	c = newFakeContext("", "TSLA")
	require.NoError(t, ctrl.ShowHolding(c))
	assert.Equal(t, "Stock with symbol TSLA not found in portfolio", c.lastSent(t))

	c = newFakeContext("", "")
	require.NoError(t, ctrl.RefreshPortfolio(c))
	require.Len(t, c.edited, 1)
	assert.Contains(t, c.edited[0], "MSFT")
}

type failingService struct {
	LedgerService
}

func (failingService) GetPortfolio(ctx context.Context) (model.Portfolio, error) {
	return model.Portfolio{}, errors.New("redis down")
}

func TestPortfolio_InternalError(t *testing.T) {
	ctrl := NewController(failingService{})

	c := newFakeContext("/portfolio", "")
	require.NoError(t, ctrl.Portfolio(c))
	assert.Equal(t, internalErrMsg, c.lastSent(t))
}

func TestCallbacks_RespondFailureStillAnswers(t *testing.T) {
	ctrl, _ := newController(t)
	require.NoError(t, ctrl.ProcessCommand(newFakeContext("buy MSFT 2 @limit 400", "")))

	c := newFakeContext("", "MSFT")
	c.respondErr = errors.New("query is too old")
	require.NoError(t, ctrl.ShowHolding(c))
	assert.Contains(t, c.lastSent(t), "Quantity: 2")

	c = newFakeContext("", "")
	c.respondErr = errors.New("query is too old")
	require.NoError(t, ctrl.RefreshPortfolio(c))
	require.Len(t, c.edited, 1)
}

func TestProcessCommand_QuantityOverflow(t *testing.T) {
	ctrl, _ := newController(t)
	require.NoError(t, ctrl.ProcessCommand(newFakeContext(fmt.Sprintf("buy AAPL %d @limit 1", math.MaxInt), "")))

	c := newFakeContext("buy AAPL 2 @limit 1", "")
	require.NoError(t, ctrl.ProcessCommand(c))
	assert.Contains(t, c.lastSent(t), "Quantity of AAPL is too large")
}
