// Package notify delivers sync run reports to an operator Telegram chat.
package notify

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Dmitriyrevilov/seller-apis/internal/journal"
	"github.com/Dmitriyrevilov/seller-apis/internal/utils"
)

type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

func NewTelegram(token string, chatID int64, logger *zap.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID, logger: logger}, nil
}

// Send posts text to the operator chat. Delivery failures are logged, never
// fatal: a sync run must not depend on Telegram availability.
func (t *Telegram) Send(text string) {
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Warn("telegram send failed", zap.Error(err))
	}
}

// FormatReport builds the per-pass summary posted after every sync pass.
func FormatReport(runs []journal.Run) string {
	var b strings.Builder
	b.WriteString("Sync pass finished\n")
	for _, r := range runs {
		if r.Error != "" {
			fmt.Fprintf(&b, "✗ %s: %s\n", r.Target, r.Error)
			continue
		}
		fmt.Fprintf(&b, "✓ %s: %s offers, %s in stock, %s prices, %d+%d batches (%s)\n",
			r.Target,
			utils.FormatInt(int64(r.Offers)),
			utils.FormatInt(int64(r.NonEmpty)),
			utils.FormatInt(int64(r.Prices)),
			r.StockBatches, r.PriceBatches,
			r.FinishedAt.Sub(r.StartedAt).Round(time.Second))
	}
	return strings.TrimRight(b.String(), "\n")
}
