package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"daily-guess-service/internal/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Admin struct {
		Code string `yaml:"code"`
	} `yaml:"admin"`
	Game GameConfig `yaml:"game"`
	Log  struct {
		Format string `yaml:"format"`
		Level  string `yaml:"level"`
	} `yaml:"log"`
}

type GameConfig struct {
	ScoringMode      string `yaml:"scoring_mode"`
	PointsPerCorrect int    `yaml:"points_per_correct"`
	DailyLimit       int    `yaml:"daily_limit"`
	MaxItems         int    `yaml:"max_items"`
	ItemsPerDay      int    `yaml:"items_per_day"`
	StartDate        string `yaml:"start_date"`
	EndDate          string `yaml:"end_date"`
	MergeFirstToken  bool   `yaml:"merge_first_token"`
}

// Load reads YAML config from path, then applies .env and environment
// overrides. A missing file is not an error; env and defaults still apply.
func Load(path string) (Config, error) {
	cfg := Config{}
	// .env is optional.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, err
	}

	cfg.applyEnv(os.Getenv)
	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := getenv("ADMIN_CODE"); v != "" {
		c.Admin.Code = v
	}
	if v := getenv("DATABASE_URL"); v != "" {
		c.Postgres.URL = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := getenv("SCORING_MODE"); v != "" {
		c.Game.ScoringMode = v
	}
	if v := getenv("DAILY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Game.DailyLimit = n
		}
	}
}

// Defaults fills every unset value.
func (c *Config) Defaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Redis.TTL == "" {
		c.Redis.TTL = "10m"
	}
	if c.Game.ScoringMode == "" {
		c.Game.ScoringMode = string(domain.ScoringFixedPoints)
	}
	if c.Game.PointsPerCorrect == 0 {
		c.Game.PointsPerCorrect = 10
	}
	if c.Game.DailyLimit == 0 {
		c.Game.DailyLimit = 2
	}
	if c.Game.MaxItems == 0 {
		c.Game.MaxItems = 20
	}
	if c.Game.ItemsPerDay == 0 {
		c.Game.ItemsPerDay = 2
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c Config) Validate() error {
	if _, err := domain.ParseScoringMode(c.Game.ScoringMode); err != nil {
		return err
	}
	if c.Game.PointsPerCorrect < 0 || c.Game.DailyLimit < 0 || c.Game.MaxItems < 0 || c.Game.ItemsPerDay < 0 {
		return fmt.Errorf("game limits must not be negative")
	}
	if (c.Game.StartDate == "") != (c.Game.EndDate == "") {
		return fmt.Errorf("game.start_date and game.end_date must be set together")
	}
	if c.Game.StartDate != "" {
		if _, err := domain.NewGameCalendar(c.Game.StartDate, c.Game.EndDate); err != nil {
			return fmt.Errorf("game calendar: %w", err)
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// Calendar returns the seed calendar, if one is configured.
func (c Config) Calendar() (domain.GameCalendar, bool) {
	if c.Game.StartDate == "" {
		return domain.GameCalendar{}, false
	}
	cal, err := domain.NewGameCalendar(c.Game.StartDate, c.Game.EndDate)
	if err != nil {
		return domain.GameCalendar{}, false
	}
	return cal, true
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
