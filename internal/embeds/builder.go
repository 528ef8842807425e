// Package embeds provides Discord embed builders for extraction reports.
package embeds

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/ddextract/internal/extract"
	"github.com/ddextract/internal/markup"
)

// Colors for embeds
const (
	ColorSuccess = 0x00FF00 // Green
	ColorFailure = 0xFF0000 // Red
	ColorInfo    = 0x3498DB // Blue
	ColorWarning = 0xFFFF00 // Yellow
)

// Discord limits.
const (
	maxFields     = 25
	maxFieldValue = 1024
	maxFailures   = 10
)

// Status classifies a finished pipeline.
type Status int

const (
	StatusOK Status = iota
	StatusPartial
	StatusFailed
)

// StatusOf reports whether a pipeline succeeded, skipped something, or aborted.
func StatusOf(r *extract.Report) Status {
	switch {
	case r.Fatal != nil:
		return StatusFailed
	case len(r.Failures) > 0:
		return StatusPartial
	default:
		return StatusOK
	}
}

func (s Status) emoji() string {
	switch s {
	case StatusFailed:
		return "❌"
	case StatusPartial:
		return "⚠️"
	default:
		return "✅"
	}
}

func (s Status) color() int {
	switch s {
	case StatusFailed:
		return ColorFailure
	case StatusPartial:
		return ColorWarning
	default:
		return ColorSuccess
	}
}

// Report creates an embed describing one pipeline run.
func Report(r *extract.Report) *discordgo.MessageEmbed {
	status := StatusOf(r)

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s %s", status.emoji(), r.Pipeline),
		Description: fmt.Sprintf("📦 %s | ⏱️ %s | 📄 %d records", r.Version, r.Duration.Round(time.Millisecond), r.Records()),
		Color:       status.color(),
		Fields:      make([]*discordgo.MessageEmbedField, 0, len(r.Files)+2),
	}

	for _, f := range r.Files {
		if len(embed.Fields) >= maxFields-2 {
			break
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   filepath.Base(f.Path),
			Value:  fmt.Sprintf("%d records", f.Records),
			Inline: true,
		})
	}

	if len(r.Failures) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("Skipped (%d)", len(r.Failures)),
			Value: failureList(r.Failures),
		})
	}

	if r.Fatal != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Aborted",
			Value: fieldValue(r.Fatal.Error()),
		})
	}

	return embed
}

// Summary creates one embed per report, preceded by an overview.
func Summary(version string, reports []*extract.Report) []*discordgo.MessageEmbed {
	var ok, partial, failed int
	for _, r := range reports {
		switch StatusOf(r) {
		case StatusOK:
			ok++
		case StatusPartial:
			partial++
		default:
			failed++
		}
	}

	color := ColorInfo
	switch {
	case failed > 0:
		color = ColorFailure
	case partial > 0:
		color = ColorWarning
	}

	out := make([]*discordgo.MessageEmbed, 0, len(reports)+1)
	out = append(out, &discordgo.MessageEmbed{
		Title:       "📊 Data Dragon extraction",
		Description: fmt.Sprintf("Patch **%s**: %d ok, %d partial, %d failed", version, ok, partial, failed),
		Color:       color,
	})
	for _, r := range reports {
		out = append(out, Report(r))
	}
	return out
}

// Error creates an error embed.
func Error(message, title string) *discordgo.MessageEmbed {
	if title == "" {
		title = "❌ Error"
	}
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: message,
		Color:       ColorFailure,
	}
}

func failureList(failures []extract.Failure) string {
	var b strings.Builder
	for i, f := range failures {
		if i == maxFailures {
			fmt.Fprintf(&b, "… and %d more", len(failures)-maxFailures)
			break
		}
		fmt.Fprintf(&b, "• **%s**: %s\n", f.Scope, f.Err)
	}
	return fieldValue(strings.TrimRight(b.String(), "\n"))
}

func fieldValue(s string) string {
	if v, cut := markup.Truncate(s, maxFieldValue-1); cut {
		return v + "…"
	}
	return s
}
