package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration loaded from file and environment.
type Config struct {
	API struct {
		Port     string `yaml:"port"`
		BasePath string `yaml:"base_path"`
	} `yaml:"api"`
	Store struct {
		DSN string `yaml:"dsn"`
	} `yaml:"store"`
	Scheduler struct {
		Interval time.Duration `yaml:"interval"`
		Timezone string        `yaml:"timezone"`
	} `yaml:"scheduler"`
	Reminder struct {
		Recipient string `yaml:"recipient"`
		SeedDemo  bool   `yaml:"seed_demo"`
	} `yaml:"reminder"`
	Email struct {
		SMTPServer string `yaml:"smtp_server"`
		SMTPPort   int    `yaml:"smtp_port"`
		Username   string `yaml:"username"`
		Password   string `yaml:"password"`
		FromName   string `yaml:"from_name"`
	} `yaml:"email"`
	Telegram struct {
		BotToken  string `yaml:"bot_token"`
		ChatID    int64  `yaml:"chat_id"`
		RateLimit int    `yaml:"rate_limit"`
	} `yaml:"telegram"`
	Desktop struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"desktop"`
	Kafka struct {
		Broker string `yaml:"broker"`
		Topic  string `yaml:"topic"`
	} `yaml:"kafka"`
	AI struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"ai"`
	Logging struct {
		Dir   string `yaml:"dir"`
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Default returns a Config with every default applied.
func Default() Config {
	var cfg Config
	cfg.API.Port = ":8080"
	cfg.API.BasePath = "/api/v0"
	cfg.Store.DSN = "munjiz.db"
	cfg.Scheduler.Interval = 30 * time.Second
	cfg.Scheduler.Timezone = "Local"
	cfg.Reminder.Recipient = "munjiz@munjiz.ae"
	cfg.Reminder.SeedDemo = true
	cfg.Telegram.RateLimit = 1
	cfg.Kafka.Topic = "task_notifications"
	cfg.AI.Model = "gemini-2.5-flash"
	cfg.Logging.Dir = "logs"
	cfg.Logging.Level = "info"
	return cfg
}

// Load reads .env and the optional YAML file, applies environment
// overrides, and validates the result.
func Load() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := Default()

	path := os.Getenv("CONFIG_FILE")
	explicit := path != ""
	if !explicit {
		path = "config.yaml"
	}
	if err := loadFile(path, &cfg); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.API.Port, "API_PORT")
	setString(&cfg.API.BasePath, "API_BASE_PATH")
	setString(&cfg.Store.DSN, "STORE_DSN")
	setDuration(&cfg.Scheduler.Interval, "SCHEDULER_INTERVAL")
	setString(&cfg.Scheduler.Timezone, "APP_TIMEZONE")
	setString(&cfg.Reminder.Recipient, "REMINDER_RECIPIENT")
	setBool(&cfg.Reminder.SeedDemo, "SEED_DEMO_TASKS")

	setString(&cfg.Email.SMTPServer, "EMAIL_SMTP_SERVER")
	setInt(&cfg.Email.SMTPPort, "EMAIL_SMTP_PORT")
	setString(&cfg.Email.Username, "EMAIL_USERNAME")
	setString(&cfg.Email.Password, "EMAIL_PASSWORD")
	setString(&cfg.Email.FromName, "EMAIL_FROM_NAME")

	setString(&cfg.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Telegram.ChatID = id
		}
	}
	setInt(&cfg.Telegram.RateLimit, "TELEGRAM_RATE_LIMIT")
	setBool(&cfg.Desktop.Enabled, "DESKTOP_NOTIFICATIONS")

	setString(&cfg.Kafka.Broker, "KAFKA_BROKER")
	setString(&cfg.Kafka.Topic, "KAFKA_TOPIC")

	setString(&cfg.AI.APIKey, "AI_API_KEY")
	setString(&cfg.AI.Model, "AI_MODEL")

	setString(&cfg.Logging.Dir, "LOG_DIR")
	setString(&cfg.Logging.Level, "LOG_LEVEL")
}

// Validate checks settings that cannot fall back to a default.
func (c Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("invalid scheduler interval: %s", c.Scheduler.Interval)
	}
	return nil
}

// Location resolves the configured timezone used for calendar math.
func (c Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Scheduler.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// SMTPConfigured reports whether every SMTP setting is present.
func (c Config) SMTPConfigured() bool {
	return c.Email.SMTPServer != "" && c.Email.SMTPPort != 0 && c.Email.Username != "" && c.Email.Password != ""
}

func setString(dst *string, name string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, name string) {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(name))); err == nil {
		*dst = v
	}
}

func setDuration(dst *time.Duration, name string) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		*dst = d
	}
}

func setBool(dst *bool, name string) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		*dst = true
	case "0", "false", "no", "n", "off":
		*dst = false
	}
}
