// Package notifier delivers alerts about failed sync runs.
//
// A Notifier receives the final run record. Implementations post it to a chat webhook
// (Slack- and Discord-compatible), send it through a Telegram bot, or print it for dry
// runs. Multi fans one alert out to several notifiers.
package notifier
