package syncer

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/pfrederiksen/fixture-sync/internal/calendar"
	"github.com/pfrederiksen/fixture-sync/internal/config"
	"github.com/pfrederiksen/fixture-sync/internal/notifier"
)

// OpenGoogleCalendar parses the credential material and authenticates against Google
// Calendar. Every failure is marked with calendar.ErrAuth.
func OpenGoogleCalendar(ctx context.Context, credentials string) (calendar.Service, error) {
	doc, err := config.ParseCredentials(credentials)
	if err != nil {
		return nil, errors.Mark(err, calendar.ErrAuth)
	}
	return calendar.NewGoogleService(ctx, doc)
}

// NotifierFromConfig builds the alert channels configured in cfg. It returns nil when no
// channel is configured.
func NotifierFromConfig(cfg *config.Config) (notifier.Notifier, error) {
	var channels notifier.Multi

	if cfg.Alerts.WebhookURL != "" {
		channels = append(channels, notifier.NewWebhookNotifier(cfg.Alerts.WebhookURL))
	}
	if cfg.Alerts.TelegramToken != "" {
		tg, err := notifier.NewTelegramNotifier(cfg.Alerts.TelegramToken, cfg.Alerts.TelegramChatID)
		if err != nil {
			return nil, errors.Mark(errors.Wrap(err, "configuring telegram alerts"), config.ErrConfig)
		}
		channels = append(channels, tg)
	}

	switch len(channels) {
	case 0:
		return nil, nil
	case 1:
		return channels[0], nil
	}
	return channels, nil
}
