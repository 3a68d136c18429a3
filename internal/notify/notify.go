// Package notify dispatches the rendered report over the configured delivery
// channels. Channels are independent and best-effort: a channel with
// incomplete configuration reports "not sent", a failing channel reports its
// error, and neither outcome affects the other channel or the run.
package notify

import (
	"context"
	"net/http"
	"time"

	"github.com/zeyi2/zealot/internal/config"
)

// TelegramAPIEndpoint is the Telegram Bot API base URL.
const TelegramAPIEndpoint = "https://api.telegram.org"

// Result records the outcome of one channel's dispatch.
type Result struct {
	Channel string // "email" or "telegram"
	Sent    bool
	Err     error
}

// Dispatcher sends the report over email and Telegram.
type Dispatcher struct {
	SMTP     config.SMTPConfig
	Telegram config.TelegramConfig

	// TelegramBase overrides the Telegram API base URL (for testing).
	TelegramBase string
	// HTTPClient is used for the Telegram call. Defaults to http.DefaultClient.
	HTTPClient *http.Client
	// Timeout bounds the whole SMTP session (dial through quit).
	Timeout time.Duration
}

// NewDispatcher creates a dispatcher from the resolved run options.
func NewDispatcher(opts *config.Options) *Dispatcher {
	return &Dispatcher{
		SMTP:         opts.SMTP,
		Telegram:     opts.Telegram,
		TelegramBase: TelegramAPIEndpoint,
		HTTPClient:   &http.Client{Timeout: opts.HTTPTimeout},
		Timeout:      opts.HTTPTimeout,
	}
}

// Dispatch sends the report over every channel, sequentially. It always
// returns one Result per channel; errors are reported, never raised.
func (d *Dispatcher) Dispatch(ctx context.Context, subject, htmlBody, textBody string) []Result {
	results := make([]Result, 0, 2)

	email := Result{Channel: "email"}
	if d.SMTP.Complete() {
		if err := d.sendEmail(subject, htmlBody, textBody); err != nil {
			email.Err = err
		} else {
			email.Sent = true
		}
	}
	results = append(results, email)

	tg := Result{Channel: "telegram"}
	if d.Telegram.Complete() {
		if err := d.sendTelegram(ctx, textBody); err != nil {
			tg.Err = err
		} else {
			tg.Sent = true
		}
	}
	results = append(results, tg)

	return results
}
