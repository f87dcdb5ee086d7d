package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gridironfl/gridiron-bot/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the bot.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       logging.Level

	GuildID        string
	RoleLeague     string
	RoleActive     string
	RoleInactive   string
	RoleAutoAssign string

	ChannelWelcome    string
	ChannelLeagueNews string
	ChannelGameNews   string

	DataFile         string
	AutoSaveInterval time.Duration

	InactiveThreshold  time.Duration
	CheckInterval      time.Duration
	RetentionWindow    time.Duration
	RetentionInterval  time.Duration
	ActivitySampleRate float64
	ReconcileWorkers   int

	WelcomeEnabled bool

	LeagueNewsURL          string
	GameNewsURL            string
	FeedPollInterval       time.Duration
	FeedTimeout            time.Duration
	FeedMaxRetries         int
	FeedCircuitEnabled     bool
	FeedCircuitFailures    int
	FeedCircuitOpenTimeout time.Duration
	FeedCircuitHalfOpenReq int

	StatsCacheEnabled bool
	StatsCacheTTL     time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	guildID := strings.TrimSpace(getEnv("GUILD_ID", ""))
	if guildID == "" {
		return Config{}, fmt.Errorf("GUILD_ID is required")
	}

	roleLeague := strings.TrimSpace(getEnv("ROLE_LEAGUE", ""))
	if roleLeague == "" {
		return Config{}, fmt.Errorf("ROLE_LEAGUE is required")
	}
	roleActive := strings.TrimSpace(getEnv("ROLE_ACTIVE", ""))
	if roleActive == "" {
		return Config{}, fmt.Errorf("ROLE_ACTIVE is required")
	}
	roleInactive := strings.TrimSpace(getEnv("ROLE_INACTIVE", ""))
	if roleInactive == "" {
		return Config{}, fmt.Errorf("ROLE_INACTIVE is required")
	}

	autoSaveInterval, err := time.ParseDuration(getEnv("AUTO_SAVE_INTERVAL", "10m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse AUTO_SAVE_INTERVAL: %w", err)
	}
	if autoSaveInterval <= 0 {
		return Config{}, fmt.Errorf("AUTO_SAVE_INTERVAL must be > 0")
	}

	inactiveThreshold, err := time.ParseDuration(getEnv("INACTIVE_THRESHOLD", "26h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse INACTIVE_THRESHOLD: %w", err)
	}
	if inactiveThreshold <= 0 {
		return Config{}, fmt.Errorf("INACTIVE_THRESHOLD must be > 0")
	}

	checkInterval, err := time.ParseDuration(getEnv("CHECK_INTERVAL", "30m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CHECK_INTERVAL: %w", err)
	}
	if checkInterval <= 0 {
		return Config{}, fmt.Errorf("CHECK_INTERVAL must be > 0")
	}

	retentionWindow, err := time.ParseDuration(getEnv("RETENTION_WINDOW", "720h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse RETENTION_WINDOW: %w", err)
	}
	if retentionWindow <= 0 {
		return Config{}, fmt.Errorf("RETENTION_WINDOW must be > 0")
	}

	retentionInterval, err := time.ParseDuration(getEnv("RETENTION_INTERVAL", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse RETENTION_INTERVAL: %w", err)
	}
	if retentionInterval <= 0 {
		return Config{}, fmt.Errorf("RETENTION_INTERVAL must be > 0")
	}

	sampleRate, err := getEnvAsFloat("ACTIVITY_SAMPLE_RATE", 0.01)
	if err != nil {
		return Config{}, fmt.Errorf("parse ACTIVITY_SAMPLE_RATE: %w", err)
	}
	if sampleRate < 0 || sampleRate > 1 {
		return Config{}, fmt.Errorf("ACTIVITY_SAMPLE_RATE must be between 0 and 1")
	}

	reconcileWorkers, err := getEnvAsInt("RECONCILE_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse RECONCILE_WORKERS: %w", err)
	}
	if reconcileWorkers < 1 {
		return Config{}, fmt.Errorf("RECONCILE_WORKERS must be >= 1")
	}

	welcomeEnabled, err := strconv.ParseBool(getEnv("WELCOME_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse WELCOME_ENABLED: %w", err)
	}

	feedPollInterval, err := time.ParseDuration(getEnv("FEED_POLL_INTERVAL", "10m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FEED_POLL_INTERVAL: %w", err)
	}
	if feedPollInterval <= 0 {
		return Config{}, fmt.Errorf("FEED_POLL_INTERVAL must be > 0")
	}

	feedTimeout, err := time.ParseDuration(getEnv("FEED_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FEED_TIMEOUT: %w", err)
	}
	if feedTimeout <= 0 {
		return Config{}, fmt.Errorf("FEED_TIMEOUT must be > 0")
	}

	feedMaxRetries, err := getEnvAsInt("FEED_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse FEED_MAX_RETRIES: %w", err)
	}
	if feedMaxRetries < 0 {
		return Config{}, fmt.Errorf("FEED_MAX_RETRIES must be >= 0")
	}

	feedCircuitEnabled, err := strconv.ParseBool(getEnv("FEED_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FEED_CIRCUIT_ENABLED: %w", err)
	}
	feedCircuitFailures, err := getEnvAsInt("FEED_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse FEED_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if feedCircuitFailures < 1 {
		return Config{}, fmt.Errorf("FEED_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	feedCircuitOpenTimeout, err := time.ParseDuration(getEnv("FEED_CIRCUIT_OPEN_TIMEOUT", "1m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FEED_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if feedCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("FEED_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	feedCircuitHalfOpenReq, err := getEnvAsInt("FEED_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse FEED_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if feedCircuitHalfOpenReq < 1 {
		return Config{}, fmt.Errorf("FEED_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	statsCacheEnabled, err := strconv.ParseBool(getEnv("STATS_CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_CACHE_ENABLED: %w", err)
	}
	statsCacheTTL, err := time.ParseDuration(getEnv("STATS_CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_CACHE_TTL: %w", err)
	}
	if statsCacheTTL <= 0 {
		return Config{}, fmt.Errorf("STATS_CACHE_TTL must be > 0")
	}

	return Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("APP_SERVICE_NAME", "gridiron-bot"),
		ServiceVersion: getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:       parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),

		GuildID:        guildID,
		RoleLeague:     roleLeague,
		RoleActive:     roleActive,
		RoleInactive:   roleInactive,
		RoleAutoAssign: strings.TrimSpace(getEnv("ROLE_AUTO_ASSIGN", "")),

		ChannelWelcome:    strings.TrimSpace(getEnv("CHANNEL_WELCOME", "")),
		ChannelLeagueNews: strings.TrimSpace(getEnv("CHANNEL_LEAGUE_NEWS", "")),
		ChannelGameNews:   strings.TrimSpace(getEnv("CHANNEL_GAME_NEWS", "")),

		DataFile:         getEnv("DATA_FILE", "data/botData.json"),
		AutoSaveInterval: autoSaveInterval,

		InactiveThreshold:  inactiveThreshold,
		CheckInterval:      checkInterval,
		RetentionWindow:    retentionWindow,
		RetentionInterval:  retentionInterval,
		ActivitySampleRate: sampleRate,
		ReconcileWorkers:   reconcileWorkers,

		WelcomeEnabled: welcomeEnabled,

		LeagueNewsURL:          strings.TrimSpace(getEnv("LEAGUE_NEWS_URL", "")),
		GameNewsURL:            strings.TrimSpace(getEnv("GAME_NEWS_URL", "")),
		FeedPollInterval:       feedPollInterval,
		FeedTimeout:            feedTimeout,
		FeedMaxRetries:         feedMaxRetries,
		FeedCircuitEnabled:     feedCircuitEnabled,
		FeedCircuitFailures:    feedCircuitFailures,
		FeedCircuitOpenTimeout: feedCircuitOpenTimeout,
		FeedCircuitHalfOpenReq: feedCircuitHalfOpenReq,

		StatsCacheEnabled: statsCacheEnabled,
		StatsCacheTTL:     statsCacheTTL,
	}, nil
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}

	return out, nil
}
