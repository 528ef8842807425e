// Package notify posts extraction reports to a Discord webhook.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

const (
	username  = "ddextract"
	maxEmbeds = 10
)

// Discord sends embeds through a webhook. The zero value and a notifier
// built without credentials are disabled and drop everything.
type Discord struct {
	session *discordgo.Session
	id      string
	token   string
	log     *slog.Logger
}

// NewDiscord creates a webhook notifier. Empty id or token disables it.
func NewDiscord(id, token string, log *slog.Logger) (*Discord, error) {
	if id == "" || token == "" {
		return &Discord{log: log}, nil
	}

	// Webhook execution needs no bot token.
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	return &Discord{
		session: session,
		id:      id,
		token:   token,
		log:     log,
	}, nil
}

// Enabled reports whether Send will post anything.
func (d *Discord) Enabled() bool {
	return d != nil && d.session != nil
}

// Send posts embeds, ten per message as Discord allows.
func (d *Discord) Send(ctx context.Context, embeds []*discordgo.MessageEmbed) error {
	if !d.Enabled() || len(embeds) == 0 {
		return nil
	}

	for start := 0; start < len(embeds); start += maxEmbeds {
		end := min(start+maxEmbeds, len(embeds))
		_, err := d.session.WebhookExecute(d.id, d.token, false, &discordgo.WebhookParams{
			Username: username,
			Embeds:   embeds[start:end],
		}, discordgo.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("failed to execute webhook: %w", err)
		}
	}

	if d.log != nil {
		d.log.Info("report sent to Discord", "embeds", len(embeds))
	}
	return nil
}
