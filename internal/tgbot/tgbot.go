package tgbot

import (
	"log/slog"

	"github.com/KotFed0t/portfolio_ledger/config"
	"github.com/KotFed0t/portfolio_ledger/internal/model/tg/tgCallback"
	"github.com/KotFed0t/portfolio_ledger/internal/transport/telegram"
	customMW "github.com/KotFed0t/portfolio_ledger/internal/transport/telegram/middleware"
	tele "gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"
)

type TGBot struct {
	bot  *tele.Bot
	ctrl *telegram.Controller
}

func New(cfg *config.Config, ctrl *telegram.Controller) *TGBot {
	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: cfg.Telegram.UpdTimeout},
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		slog.Error("error while tele.NewBot", slog.String("err", err.Error()))
		panic(err)
	}

	return &TGBot{bot: b, ctrl: ctrl}
}

func (b *TGBot) Start() {
	b.bot.Use(middleware.Recover(), customMW.Logger())

	b.setupRoutes()

	go b.bot.Start()
	slog.Info("tgbot started!")
}

func (b *TGBot) Stop() {
	slog.Info("start stopping tgbot")
	b.bot.Stop()
	slog.Info("tgbot stopped")
}

func (b *TGBot) setupRoutes() {
	b.bot.Handle("/start", b.ctrl.Start)
	b.bot.Handle("/help", b.ctrl.Start)
	b.bot.Handle("/portfolio", b.ctrl.Portfolio)

	b.bot.Handle(&tele.Btn{Unique: tgCallback.Holding}, b.ctrl.ShowHolding)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.RefreshPortfolio}, b.ctrl.RefreshPortfolio)

	b.bot.Handle(tele.OnText, b.ctrl.ProcessCommand)
}
