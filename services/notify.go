package services

import (
	"log/slog"
	"net/mail"

	"whitelotus/config"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/mailer"
	pubnub "github.com/pubnub/go/v7"
)

// Notifier fans a domain event out to the people and screens that care:
// transactional email through the app mailer and a realtime publish to the
// back-office channel. Sends are fire-and-forget; a lost notification is
// never allowed to fail the request that produced it.
type Notifier struct {
	app        core.App
	pn         *pubnub.PubNub
	channel    string
	adminEmail string
}

func NewNotifier(app core.App, pn *pubnub.PubNub, cfg *config.Config) *Notifier {
	return &Notifier{
		app:        app,
		pn:         pn,
		channel:    cfg.BackofficeChannel,
		adminEmail: cfg.AdminEmail,
	}
}

// SendMail delivers one HTML email through the app's configured mailer.
func (n *Notifier) SendMail(to, subject, html string) {
	if to == "" {
		return
	}
	message := &mailer.Message{
		From: mail.Address{
			Address: n.app.Settings().Meta.SenderAddress,
			Name:    n.app.Settings().Meta.SenderName,
		},
		To:      []mail.Address{{Address: to}},
		Subject: subject,
		HTML:    html,
	}
	if err := n.app.NewMailClient().Send(message); err != nil {
		slog.Error("notifier: mail send failed", "to", to, "subject", subject, "error", err)
	}
}

// NotifyAdmin emails the configured back-office address.
func (n *Notifier) NotifyAdmin(subject, html string) {
	n.SendMail(n.adminEmail, subject, html)
}

// Publish pushes an event to the back-office realtime channel.
func (n *Notifier) Publish(event string, data map[string]any) {
	if n.pn == nil {
		return
	}
	message := map[string]any{"type": event}
	for k, v := range data {
		message[k] = v
	}
	if _, _, err := n.pn.Publish().Channel(n.channel).Message(message).Execute(); err != nil {
		slog.Error("notifier: publish failed", "event", event, "error", err)
	}
}
