// ddextract - League of Legends static data extractor.
// Downloads Data Dragon and CommunityDragon documents and writes per-language
// champion, ability, item and skin JSON files.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/ddextract/internal/config"
	"github.com/ddextract/internal/embeds"
	"github.com/ddextract/internal/extract"
	"github.com/ddextract/internal/logging"
	"github.com/ddextract/internal/notify"
	"github.com/ddextract/internal/output"
	"github.com/ddextract/internal/services/cdn"
	"github.com/ddextract/internal/services/cdragon"
	"github.com/ddextract/internal/services/ddragon"
	"github.com/ddextract/internal/stats"
	"github.com/ddextract/internal/storage"
)

const notifyTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	listFlag := flag.Bool("list", false, "List available pipelines and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: ddextract [flags] [all | pipeline...]\n\nFlags:\n")
		flag.PrintDefaults()
		fmt.Fprintln(flag.CommandLine.Output())
		printPipelines(flag.CommandLine.Output())
	}
	flag.Parse()

	if *listFlag {
		printPipelines(os.Stdout)
		return 0
	}

	selected, err := selectPipelines(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n\n", err)
		flag.Usage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config invalid: %v\n", err)
		return 1
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config invalid: %v\n", err)
		return 1
	}
	log := logging.New(os.Stderr, level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "error", err)
		notifyStartupFailure(cfg, log, err)
		return 1
	}
	defer app.close()

	if !app.runAll(ctx, selected) {
		return 1
	}
	return 0
}

// app wires configuration into clients, pipelines and sinks.
type app struct {
	env       *extract.Env
	cache     *storage.RedisClient
	publisher *output.S3Publisher
	notifier  *notify.Discord
	log       *slog.Logger
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	fetchOpts := cdn.Options{
		Attempts:  cfg.FetchAttempts,
		BaseDelay: cfg.FetchBaseDelay,
		Timeout:   cfg.HTTPTimeout,
		Logger:    log,
	}

	cache := storage.NewRedisClient(ctx, cfg.RedisURL, cfg.CacheTTL, log)
	uncached := cdn.New(fetchOpts)
	if cache.Enabled() {
		fetchOpts.Cache = cache
	}
	fetcher := cdn.New(fetchOpts)
	dd := ddragon.NewClient(fetcher, cfg.DDragonURL, cfg.DDragonVersion)

	if cfg.DDragonVersion == config.LatestVersion {
		// versions.json changes between patches and is never cached.
		latest, err := ddragon.NewClient(uncached, cfg.DDragonURL, "").LatestVersion(ctx)
		if err != nil {
			cache.Close()
			return nil, fmt.Errorf("failed to resolve latest version: %w", err)
		}
		log.Info("resolved latest version", "version", latest)
		dd = dd.WithVersion(latest)
	}

	tables, err := loadPatterns(cfg.PatternsFile)
	if err != nil {
		cache.Close()
		return nil, err
	}

	writer, err := output.NewWriter(cfg.OutputDir)
	if err != nil {
		cache.Close()
		return nil, err
	}

	for _, lang := range cfg.Languages {
		if !slices.Contains(tables.Languages(), lang) {
			log.Warn("no stat patterns for language, using fallback table", "lang", lang)
		}
	}

	notifier := &notify.Discord{}
	if cfg.WebhookEnabled() {
		if notifier, err = notify.NewDiscord(cfg.DiscordWebhookID, cfg.DiscordWebhookToken, log); err != nil {
			cache.Close()
			return nil, err
		}
	}

	a := &app{
		env: &extract.Env{
			DDragon:         dd,
			CDragon:         cdragon.NewClient(fetcher, cfg.CDragonURL, cfg.DefaultLanguage),
			Patterns:        tables,
			Writer:          writer,
			Log:             log,
			Languages:       cfg.Languages,
			DefaultLanguage: cfg.DefaultLanguage,
			BaseSkinLabel:   cfg.BaseSkinLabel,
			SkinDelay:       cfg.SkinRequestDelay,
		},
		cache:    cache,
		notifier: notifier,
		log:      log,
	}

	if cfg.S3Enabled() {
		a.publisher = output.NewS3Publisher(output.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Prefix:    cfg.S3Prefix,
		})
	}

	log.Info("ddextract ready",
		"version", dd.Version(),
		"languages", cfg.Languages,
		"output", writer.Dir(),
		"cache", cache.Enabled(),
		"s3", a.publisher != nil,
		"discord", notifier.Enabled(),
	)
	return a, nil
}

// notifyStartupFailure posts cause to the webhook, if one is configured.
func notifyStartupFailure(cfg *config.Config, log *slog.Logger, cause error) {
	if !cfg.WebhookEnabled() {
		return
	}
	d, err := notify.NewDiscord(cfg.DiscordWebhookID, cfg.DiscordWebhookToken, log)
	if err != nil {
		log.Warn("Discord notifier unavailable", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	embed := embeds.Error(cause.Error(), "❌ Startup failed")
	if err := d.Send(ctx, []*discordgo.MessageEmbed{embed}); err != nil {
		log.Warn("Discord report failed", "error", err)
	}
}

func loadPatterns(path string) (*stats.Tables, error) {
	if path == "" {
		return stats.DefaultTables()
	}
	return stats.LoadTables(path)
}

// runAll runs every selected pipeline, then publishes and reports.
// It returns false if any pipeline aborted.
func (a *app) runAll(ctx context.Context, pipelines []extract.Pipeline) bool {
	reports := make([]*extract.Report, 0, len(pipelines))
	ok := true

	for _, p := range pipelines {
		if ctx.Err() != nil {
			a.log.Warn("interrupted, skipping remaining pipelines", "next", p.Name)
			ok = false
			break
		}

		r := extract.Run(ctx, p, a.env)
		reports = append(reports, r)

		attrs := []any{
			"pipeline", r.Pipeline,
			"files", len(r.Files),
			"records", r.Records(),
			"skipped", len(r.Failures),
			"duration", r.Duration.Round(time.Millisecond),
		}
		if r.Fatal != nil {
			ok = false
			a.log.Error("pipeline failed", append(attrs, "error", r.Fatal)...)
			continue
		}
		a.log.Info("pipeline finished", attrs...)
	}

	a.publish(ctx, reports)
	a.report(ctx, reports)
	return ok
}

func (a *app) publish(ctx context.Context, reports []*extract.Report) {
	if a.publisher == nil {
		return
	}
	for _, r := range reports {
		for _, f := range r.Files {
			if ctx.Err() != nil {
				return
			}
			if err := a.publisher.Publish(ctx, f.Path); err != nil {
				a.log.Warn("publish failed", "file", f.Path, "error", err)
				continue
			}
			a.log.Debug("published", "file", f.Path, "key", a.publisher.Key(f.Path))
		}
	}
}

func (a *app) report(ctx context.Context, reports []*extract.Report) {
	if !a.notifier.Enabled() || len(reports) == 0 {
		return
	}
	// Deliver the report even after an interrupt.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := a.notifier.Send(sendCtx, embeds.Summary(a.env.DDragon.Version(), reports)); err != nil {
		a.log.Warn("Discord report failed", "error", err)
	}
}

func (a *app) close() {
	if err := a.cache.Close(); err != nil {
		a.log.Debug("cache close failed", "error", err)
	}
}

// selectPipelines resolves command-line names. No names, or "all", selects
// every pipeline in run order. Repeated names run once.
func selectPipelines(args []string) ([]extract.Pipeline, error) {
	if len(args) == 0 {
		return extract.Pipelines, nil
	}

	var selected []extract.Pipeline
	seen := make(map[string]bool)
	for _, name := range args {
		if name == "all" {
			return extract.Pipelines, nil
		}
		p, ok := extract.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown pipeline %q", name)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		selected = append(selected, p)
	}
	return selected, nil
}

func printPipelines(w io.Writer) {
	fmt.Fprintln(w, "Pipelines:")
	for _, p := range extract.Pipelines {
		fmt.Fprintf(w, "  %-10s %s\n", p.Name, p.Description)
	}
}
