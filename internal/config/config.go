// Package config provides configuration management for ddextract.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults used when the matching environment variable is empty.
const (
	DefaultDDragonURL     = "https://ddragon.leagueoflegends.com"
	DefaultDDragonVersion = "16.3.1"
	DefaultCDragonURL     = "https://raw.communitydragon.org/latest"
	DefaultLanguages      = "fr_FR,en_US,es_ES,de_DE,ko_KR"
	DefaultLanguage       = "en_US"
	DefaultOutputDir      = "locales"
	DefaultBaseSkinLabel  = "Classique"

	// LatestVersion asks the ddragon client to resolve the newest patch.
	LatestVersion = "latest"
)

// Config holds all configuration values for the application.
type Config struct {
	// Data Dragon
	DDragonURL     string
	DDragonVersion string

	// CommunityDragon
	CDragonURL string

	// Languages
	Languages       []string
	DefaultLanguage string

	// Output
	OutputDir    string
	PatternsFile string

	// Fetching
	FetchAttempts    int
	FetchBaseDelay   time.Duration
	SkinRequestDelay time.Duration
	HTTPTimeout      time.Duration

	// Skins
	BaseSkinLabel string

	// Redis
	RedisURL string
	CacheTTL time.Duration

	// S3 publishing
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Prefix    string

	// Discord run report
	DiscordWebhookID    string
	DiscordWebhookToken string

	LogLevel string
}

// Default returns a Config populated with built-in defaults only.
func Default() *Config {
	return &Config{
		DDragonURL:       DefaultDDragonURL,
		DDragonVersion:   DefaultDDragonVersion,
		CDragonURL:       DefaultCDragonURL,
		Languages:        splitList(DefaultLanguages),
		DefaultLanguage:  DefaultLanguage,
		OutputDir:        DefaultOutputDir,
		FetchAttempts:    3,
		FetchBaseDelay:   500 * time.Millisecond,
		SkinRequestDelay: 100 * time.Millisecond,
		HTTPTimeout:      30 * time.Second,
		BaseSkinLabel:    DefaultBaseSkinLabel,
		CacheTTL:         24 * time.Hour,
		LogLevel:         "info",
	}
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	def := Default()
	cfg := &Config{
		DDragonURL:     strings.TrimRight(getEnvOrDefault("DDRAGON_URL", def.DDragonURL), "/"),
		DDragonVersion: getEnvOrDefault("DDRAGON_VERSION", def.DDragonVersion),
		CDragonURL:     strings.TrimRight(getEnvOrDefault("CDRAGON_URL", def.CDragonURL), "/"),

		Languages:       splitList(getEnvOrDefault("LANGUAGES", DefaultLanguages)),
		DefaultLanguage: getEnvOrDefault("DEFAULT_LANGUAGE", def.DefaultLanguage),

		OutputDir:    getEnvOrDefault("OUTPUT_DIR", def.OutputDir),
		PatternsFile: os.Getenv("PATTERNS_FILE"),

		BaseSkinLabel: getEnvOrDefault("BASE_SKIN_LABEL", def.BaseSkinLabel),

		RedisURL: os.Getenv("REDIS_URL"),

		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3Region:    os.Getenv("S3_REGION"),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Prefix:    os.Getenv("S3_PREFIX"),

		DiscordWebhookID:    os.Getenv("DISCORD_WEBHOOK_ID"),
		DiscordWebhookToken: os.Getenv("DISCORD_WEBHOOK_TOKEN"),

		LogLevel: getEnvOrDefault("LOG_LEVEL", def.LogLevel),
	}

	var err error
	if cfg.FetchAttempts, err = getEnvInt("FETCH_ATTEMPTS", def.FetchAttempts); err != nil {
		return nil, err
	}
	if cfg.FetchBaseDelay, err = getEnvDuration("FETCH_BASE_DELAY", def.FetchBaseDelay); err != nil {
		return nil, err
	}
	if cfg.SkinRequestDelay, err = getEnvDuration("SKIN_REQUEST_DELAY", def.SkinRequestDelay); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getEnvDuration("HTTP_TIMEOUT", def.HTTPTimeout); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getEnvDuration("CACHE_TTL", def.CacheTTL); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if c.DDragonURL == "" {
		errs = append(errs, "DDRAGON_URL is empty")
	}
	if c.DDragonVersion == "" {
		errs = append(errs, "DDRAGON_VERSION is empty")
	}
	if c.CDragonURL == "" {
		errs = append(errs, "CDRAGON_URL is empty")
	}
	if len(c.Languages) == 0 {
		errs = append(errs, "LANGUAGES is empty")
	}
	if c.DefaultLanguage != "" && !slices.Contains(c.Languages, c.DefaultLanguage) {
		errs = append(errs, fmt.Sprintf("DEFAULT_LANGUAGE %q is not listed in LANGUAGES", c.DefaultLanguage))
	}
	if c.FetchAttempts < 1 {
		errs = append(errs, "FETCH_ATTEMPTS must be at least 1")
	}
	if c.FetchBaseDelay < 0 || c.SkinRequestDelay < 0 {
		errs = append(errs, "delays must not be negative")
	}
	if c.HTTPTimeout < 0 {
		errs = append(errs, "HTTP_TIMEOUT must not be negative")
	}
	if (c.S3Bucket == "") != (c.S3Region == "") {
		errs = append(errs, "S3_BUCKET and S3_REGION must be set together")
	}
	if (c.DiscordWebhookID == "") != (c.DiscordWebhookToken == "") {
		errs = append(errs, "DISCORD_WEBHOOK_ID and DISCORD_WEBHOOK_TOKEN must be set together")
	}

	if len(errs) > 0 {
		return errors.New("configuration validation failed: " + strings.Join(errs, "; "))
	}

	return nil
}

// S3Enabled reports whether written files should be published to a bucket.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

// WebhookEnabled reports whether a run report should be posted to Discord.
func (c *Config) WebhookEnabled() bool {
	return c.DiscordWebhookID != "" && c.DiscordWebhookToken != ""
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// splitList parses a comma separated list, dropping blanks and duplicates.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" || slices.Contains(out, part) {
			continue
		}
		out = append(out, part)
	}
	return out
}
