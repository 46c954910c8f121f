package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"
	"unicode/utf8"

	"github.com/slack-go/slack"

	"github.com/vozlegal/intake/internal/concurrency"
	"github.com/vozlegal/intake/internal/routing"
	"github.com/vozlegal/intake/internal/session"
)

// Notifier escalates emergency intakes to the on-call channel.
type Notifier interface {
	EmergencyDetected(ctx context.Context, sess *session.Session, signals routing.Signals, input string)
}

// SlackNotifier posts emergency alerts to a Slack channel. Sends are
// fire-and-forget: a Slack outage must never slow down or fail a turn.
type SlackNotifier struct {
	client  *slack.Client
	channel string
	timeout time.Duration
}

func NewSlackNotifier(botToken, channel string) *SlackNotifier {
	if botToken == "" {
		botToken = os.Getenv("SLACK_BOT_TOKEN")
	}
	return &SlackNotifier{
		client:  slack.New(botToken),
		channel: channel,
		timeout: 10 * time.Second,
	}
}

func (n *SlackNotifier) EmergencyDetected(ctx context.Context, sess *session.Session, signals routing.Signals, input string) {
	text := fmt.Sprintf(
		":rotating_light: Emergency intake on %s\nSession: %s\nAgent: %s\nLanguage: %s\nMessage: %s",
		sess.Channel, sess.ID, sess.AgentType, sess.Context.Language, truncate(input, 300),
	)

	concurrency.SafeGo(func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
		defer cancel()

		_, _, err := n.client.PostMessageContext(sendCtx, n.channel, slack.MsgOptionText(text, false))
		if err != nil {
			slog.Error("Failed to send emergency alert", "session_id", sess.ID, "error", err)
			return
		}
		slog.Info("Emergency alert sent", "session_id", sess.ID, "channel", n.channel)
	}, func(r any) {
		slog.Error("Emergency alert panicked", "session_id", sess.ID, "panic", r)
	})
}

// truncate caps s at max runes. Cutting at a byte index could split a
// multi-byte rune; Spanish messages make that a real case, not a corner.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "…"
}

// NopNotifier is used when alerts are disabled.
type NopNotifier struct{}

func (NopNotifier) EmergencyDetected(context.Context, *session.Session, routing.Signals, string) {}
