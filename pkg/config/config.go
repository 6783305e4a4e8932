package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Cutoff store backends.
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

type Config struct {
	Token   string
	AppID   string
	GuildID string
	Prefix  string

	// Optional: only answer commands in this channel. The queue board is
	// kept there too.
	QueueChannelID string

	// Roles allowed to run maintenance commands besides Administrator.
	AdminRoleIDs []string

	// Cohort size ("cutoff") persistence.
	CutoffStore   string
	CutoffFile    string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// How many operations per queue can be undone in a row.
	HistoryDepth int

	// Status API listen address; empty disables it.
	HTTPAddr string

	LogLevel string
}

// Load reads the environment (.env during development) and validates what
// every subcommand needs. The bot token is checked by RequireDiscord since
// tooling subcommands run without it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Token:          os.Getenv("DISCORD_BOT_TOKEN"),
		AppID:          os.Getenv("DISCORD_APP_ID"),
		GuildID:        os.Getenv("DISCORD_GUILD_ID"),
		Prefix:         firstNonEmpty(os.Getenv("DISCORD_PREFIX"), "!"),
		QueueChannelID: os.Getenv("DISCORD_CHANNEL_ID"),
		CutoffStore:    strings.ToLower(firstNonEmpty(os.Getenv("CUTOFF_STORE"), StoreFile)),
		CutoffFile:     firstNonEmpty(os.Getenv("CUTOFF_FILE"), "db/game_dict.json"),
		SQLitePath:     firstNonEmpty(os.Getenv("SQLITE_PATH"), "db/cutoffs.db"),
		RedisAddr:      firstNonEmpty(os.Getenv("REDIS_ADDR"), "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		HTTPAddr:       os.Getenv("HTTP_ADDR"),
		LogLevel:       firstNonEmpty(os.Getenv("LOG_LEVEL"), "info"),
	}
	for _, id := range strings.Split(os.Getenv("ADMIN_ROLE_IDS"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			cfg.AdminRoleIDs = append(cfg.AdminRoleIDs, id)
		}
	}
	if _, set := os.LookupEnv("HTTP_ADDR"); !set {
		cfg.HTTPAddr = ":8080"
	}

	var err error
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.HistoryDepth, err = intEnv("HISTORY_DEPTH", 1); err != nil {
		return nil, err
	}
	if cfg.HistoryDepth < 1 {
		return nil, errors.New("HISTORY_DEPTH must be at least 1")
	}

	switch cfg.CutoffStore {
	case StoreFile, StoreRedis, StoreSQLite, StoreMemory:
	default:
		return nil, fmt.Errorf("unknown CUTOFF_STORE %q (want file, redis, sqlite or memory)", cfg.CutoffStore)
	}

	return cfg, nil
}

// RequireDiscord validates the settings needed to open a gateway session.
func (c *Config) RequireDiscord() error {
	if c.Token == "" {
		return errors.New("missing DISCORD_BOT_TOKEN")
	}
	if c.AppID == "" {
		return errors.New("missing DISCORD_APP_ID")
	}
	return nil
}

func intEnv(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	return n, nil
}

func firstNonEmpty(v, d string) string {
	if v == "" {
		return d
	}
	return v
}

func (c *Config) Redacted() string {
	tok := "[set]"
	if c.Token == "" {
		tok = "[empty]"
	}
	return fmt.Sprintf(
		"appID=%s guildID=%s prefix=%q queueChannelID=%s cutoffStore=%s historyDepth=%d httpAddr=%q token=%s",
		c.AppID, c.GuildID, c.Prefix, c.QueueChannelID, c.CutoffStore, c.HistoryDepth, c.HTTPAddr, tok,
	)
}
