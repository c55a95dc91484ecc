package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	OpenAI    OpenAIConfig
	Playlist  PlaylistConfig
	Push      PushConfig
	Alert     AlertConfig
	Themes    ThemesConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration int // hours
}

type RateLimitConfig struct {
	GeneratePerMin int
}

type OpenAIConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   int // seconds
}

type PlaylistConfig struct {
	SongCount     int
	SchemaVersion string
}

type PushConfig struct {
	ServerKey string
	BaseURL   string
	Topic     string
}

type AlertConfig struct {
	OperatorEmail string
	SMTPHost      string
	SMTPPort      string
	LowWaterMark  int
}

type ThemesConfig struct {
	Cron string
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("OPENAI_API_KEY")
	readSecret("PUSH_SERVER_KEY")
	readSecret("JWT_SECRET")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis.db", "REDIS_DB")
	_ = viper.BindEnv("jwt.secret", "JWT_SECRET")
	_ = viper.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	_ = viper.BindEnv("ratelimit.generate_per_min", "RATELIMIT_GENERATE_PER_MIN")
	_ = viper.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = viper.BindEnv("openai.base_url", "OPENAI_BASE_URL")
	_ = viper.BindEnv("openai.model", "OPENAI_MODEL")
	_ = viper.BindEnv("openai.max_tokens", "OPENAI_MAX_TOKENS")
	_ = viper.BindEnv("openai.timeout", "OPENAI_TIMEOUT")
	_ = viper.BindEnv("playlist.song_count", "PLAYLIST_SONG_COUNT")
	_ = viper.BindEnv("playlist.schema_version", "PLAYLIST_SCHEMA_VERSION")
	_ = viper.BindEnv("push.server_key", "PUSH_SERVER_KEY")
	_ = viper.BindEnv("push.base_url", "PUSH_BASE_URL")
	_ = viper.BindEnv("push.topic", "PUSH_TOPIC")
	_ = viper.BindEnv("alert.operator_email", "ALERT_OPERATOR_EMAIL")
	_ = viper.BindEnv("alert.smtp_host", "ALERT_SMTP_HOST")
	_ = viper.BindEnv("alert.smtp_port", "ALERT_SMTP_PORT")
	_ = viper.BindEnv("alert.low_water_mark", "ALERT_LOW_WATER_MARK")
	_ = viper.BindEnv("themes.cron", "THEMES_CRON")

	// Defaults
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.expiration", 24)
	viper.SetDefault("ratelimit.generate_per_min", 10)

	// OpenAI defaults
	viper.SetDefault("openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("openai.model", "gpt-4o")
	viper.SetDefault("openai.max_tokens", 2000)
	viper.SetDefault("openai.timeout", 120)

	// Playlist defaults
	viper.SetDefault("playlist.song_count", 20)
	viper.SetDefault("playlist.schema_version", "v2")

	// Push defaults
	viper.SetDefault("push.base_url", "https://fcm.googleapis.com")
	viper.SetDefault("push.topic", "daily_theme")

	// Alert defaults
	viper.SetDefault("alert.smtp_host", "smtp.gmail.com")
	viper.SetDefault("alert.smtp_port", "587")
	viper.SetDefault("alert.low_water_mark", 10)

	// Theme rotation defaults — daily at 09:00
	viper.SetDefault("themes.cron", "0 9 * * *")

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:     viper.GetString("server.port"),
			Env:      viper.GetString("server.env"),
			LogLevel: viper.GetString("server.log_level"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:     viper.GetString("jwt.secret"),
			Expiration: viper.GetInt("jwt.expiration"),
		},
		RateLimit: RateLimitConfig{
			GeneratePerMin: viper.GetInt("ratelimit.generate_per_min"),
		},
		OpenAI: OpenAIConfig{
			APIKey:    viper.GetString("openai.api_key"),
			BaseURL:   viper.GetString("openai.base_url"),
			Model:     viper.GetString("openai.model"),
			MaxTokens: viper.GetInt("openai.max_tokens"),
			Timeout:   viper.GetInt("openai.timeout"),
		},
		Playlist: PlaylistConfig{
			SongCount:     viper.GetInt("playlist.song_count"),
			SchemaVersion: viper.GetString("playlist.schema_version"),
		},
		Push: PushConfig{
			ServerKey: viper.GetString("push.server_key"),
			BaseURL:   viper.GetString("push.base_url"),
			Topic:     viper.GetString("push.topic"),
		},
		Alert: AlertConfig{
			OperatorEmail: viper.GetString("alert.operator_email"),
			SMTPHost:      viper.GetString("alert.smtp_host"),
			SMTPPort:      viper.GetString("alert.smtp_port"),
			LowWaterMark:  viper.GetInt("alert.low_water_mark"),
		},
		Themes: ThemesConfig{
			Cron: viper.GetString("themes.cron"),
		},
	}

	return cfg, nil
}
