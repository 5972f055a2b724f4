package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"munjiz/internal/logging"
	"munjiz/internal/utils"
)

var ErrTelegramConfig = errors.New("providers: telegram requires bot token and chat id")

// Telegram mirrors native notifications to a Telegram chat.
type Telegram struct {
	bot     *bot.Bot
	chatID  int64
	limiter *rate.Limiter
	log     *logrus.Entry
}

func NewTelegram(token string, chatID int64, ratePerSecond int, logger *logging.Logger) (*Telegram, error) {
	if token == "" || chatID == 0 {
		return nil, ErrTelegramConfig
	}
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	return &Telegram{
		bot:     b,
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Limit(float64(ratePerSecond)), ratePerSecond),
		log:     logger.Component("telegram"),
	}, nil
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Send(ctx context.Context, title, body string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram rate limit exceeded: %w", err)
	}
	params := &bot.SendMessageParams{
		ChatID: t.chatID,
		Text:   TelegramText(title, body),
	}
	return utils.Retry(ctx, t.log, 3, time.Second, func() error {
		if _, err := t.bot.SendMessage(ctx, params); err != nil {
			return fmt.Errorf("failed to send Telegram message to chat_id %d: %w", t.chatID, err)
		}
		return nil
	})
}

// TelegramText renders a notification as a plain-text message.
func TelegramText(title, body string) string {
	if body == "" {
		return "🔔 " + title
	}
	return fmt.Sprintf("🔔 %s\n%s", title, body)
}
