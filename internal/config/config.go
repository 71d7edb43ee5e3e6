package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendFile   = "file"
)

type Config struct {
	ServerPort string
	LogLevel   string
	StaticDir  string

	TeamDataDir  string
	StoreBackend string
	DBPath       string
	BlobDir      string
	RedisAddr    string
	RedisPass    string
	RedisDB      int

	PasswordSalt string

	TwitchClientID     string
	TwitchClientSecret string
	BallchasingAPIKey  string
	BallchasingGroupID string

	GithubUser     string
	GithubToken    string
	GithubPinned   []string
	GithubBlocked  []string
	GithubMaxRepos int

	DiscordID        string
	PresenceInterval time.Duration
	LiveInterval     time.Duration

	NATSURL     string
	NATSSubject string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("server_port", cfg.ServerPort).
		Str("static_dir", cfg.StaticDir).
		Str("team_data_dir", cfg.TeamDataDir).
		Str("store_backend", cfg.StoreBackend).
		Bool("twitch_helix", cfg.TwitchEnabled()).
		Bool("ballchasing", cfg.BallchasingAPIKey != "").
		Str("github_user", cfg.GithubUser).
		Bool("presence", cfg.DiscordID != "").
		Bool("nats", cfg.NATSURL != "").
		Msg("configuration loaded")

	return cfg, nil
}

// FromEnv reads and validates the configuration from the process environment.
func FromEnv() (*Config, error) {
	cfg := &Config{
		ServerPort:         getEnv("PORT", "5173"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		StaticDir:          getEnv("STATIC_DIR", "public"),
		TeamDataDir:        getEnv("TEAM_DATA_DIR", "public/data"),
		StoreBackend:       strings.ToLower(getEnv("STORE_BACKEND", BackendSQLite)),
		DBPath:             getEnv("DB_PATH", "marketplace.db"),
		BlobDir:            getEnv("BLOB_DIR", "data"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:          getEnv("REDIS_PASSWORD", ""),
		PasswordSalt:       getEnv("PASSWORD_SALT", "vanta-demo-salt"),
		TwitchClientID:     getEnv("TWITCH_CLIENT_ID", ""),
		TwitchClientSecret: getEnv("TWITCH_CLIENT_SECRET", ""),
		BallchasingAPIKey:  getEnv("BALLCHASING_API_KEY", ""),
		BallchasingGroupID: getEnv("BALLCHASING_GROUP_ID", ""),
		GithubUser:         getEnv("GITHUB_USER", "v4nt4vo1d"),
		GithubToken:        getEnv("GITHUB_TOKEN", ""),
		GithubPinned:       getList("GITHUB_PINNED"),
		GithubBlocked:      getList("GITHUB_BLOCKED"),
		DiscordID:          getEnv("DISCORD_ID", ""),
		NATSURL:            getEnv("NATS_URL", ""),
		NATSSubject:        getEnv("NATS_SUBJECT", "site.events"),
	}

	var err error
	if _, err = strconv.Atoi(cfg.ServerPort); err != nil {
		return nil, fmt.Errorf("invalid PORT %q: %w", cfg.ServerPort, err)
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.GithubMaxRepos, err = getInt("GITHUB_MAX_REPOS", 12); err != nil {
		return nil, err
	}
	if cfg.GithubMaxRepos <= 0 {
		return nil, fmt.Errorf("GITHUB_MAX_REPOS must be positive, got %d", cfg.GithubMaxRepos)
	}
	if cfg.PresenceInterval, err = getDuration("PRESENCE_INTERVAL", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.LiveInterval, err = getDuration("LIVE_INTERVAL", time.Minute); err != nil {
		return nil, err
	}

	switch cfg.StoreBackend {
	case BackendSQLite, BackendRedis, BackendMemory, BackendFile:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q (valid: sqlite, redis, memory, file)", cfg.StoreBackend)
	}

	return cfg, nil
}

// TwitchEnabled reports whether Helix credentials are present.
func (c *Config) TwitchEnabled() bool {
	return c.TwitchClientID != "" && c.TwitchClientSecret != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var Module = fx.Provide(Load)
