// Package config loads fixture-sync settings.
//
// Settings come from an optional YAML file, then environment variables override the
// deployment-specific values (credentials, calendar, schedule, alerts, status file), and
// finally defaults fill anything left empty. The resulting Config is passed explicitly to
// every component.
//
// Environment variables:
//
//	GOOGLE_CREDENTIALS   service-account JSON, raw or base64-encoded (required)
//	GOOGLE_CALENDAR_ID   target calendar (default "primary")
//	SYNC_SCHEDULE        cron expression for the schedule command (default "0 */6 * * *")
//	ALERT_WEBHOOK_URL    chat webhook for failure alerts
//	TELEGRAM_BOT_TOKEN   Telegram bot used for failure alerts
//	TELEGRAM_CHAT_ID     chat receiving Telegram alerts
//	STATUS_FILE          last-run status file (default ~/.local/share/fixture-sync/status.json)
//	LOG_LEVEL            DEBUG, INFO, WARN or ERROR
package config
