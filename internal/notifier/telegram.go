package notifier

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pfrederiksen/fixture-sync/internal/storage"
)

const telegramTimeout = 10 * time.Second

// TelegramNotifier sends alerts to a Telegram chat through a bot
type TelegramNotifier struct {
	token    string
	chatID   int64
	endpoint string
	client   *http.Client
	bot      *tgbotapi.BotAPI
}

// TelegramOption configures a TelegramNotifier.
type TelegramOption func(*TelegramNotifier)

// WithTelegramEndpoint overrides the Bot API endpoint format and HTTP client.
func WithTelegramEndpoint(endpoint string, client *http.Client) TelegramOption {
	return func(n *TelegramNotifier) {
		n.endpoint = endpoint
		if client != nil {
			n.client = client
		}
	}
}

// NewTelegramNotifier creates a notifier for the bot token and chat.
// The bot is only contacted when the first alert is sent.
func NewTelegramNotifier(token string, chatID int64, opts ...TelegramOption) (*TelegramNotifier, error) {
	if token == "" {
		return nil, errors.New("bot token is required")
	}
	if chatID == 0 {
		return nil, errors.New("chat ID is required")
	}

	n := &TelegramNotifier{
		token:    token,
		chatID:   chatID,
		endpoint: tgbotapi.APIEndpoint,
		client:   &http.Client{Timeout: telegramTimeout},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Notify sends the alert as a plain-text message
func (n *TelegramNotifier) Notify(ctx context.Context, run *storage.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if n.bot == nil {
		bot, err := tgbotapi.NewBotAPIWithClient(n.token, n.endpoint, n.client)
		if err != nil {
			return errors.Wrap(err, "connecting to telegram bot")
		}
		n.bot = bot
	}

	msg := tgbotapi.NewMessage(n.chatID, FormatAlert(run))
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		return errors.Wrap(err, "sending telegram alert")
	}
	return nil
}
