package config

import (
	"errors"
	"fmt"
	"os"

	"lockwise/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	API        APIConfig        `yaml:"api"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Backup     BackupConfig     `yaml:"backup"`
	Exports    ExportConfig     `yaml:"exports"`
	Google     GoogleConfig     `yaml:"google"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Catalog    CatalogConfig    `yaml:"catalog"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// ScheduleConfig shapes the booking grid. The facility sells fixed
// slots between open and close, one every slot_minutes.
type ScheduleConfig struct {
	Open           string `yaml:"open"`
	Close          string `yaml:"close"`
	SlotMinutes    int    `yaml:"slot_minutes"`
	MaxAdvanceDays int    `yaml:"max_advance_days"`
}

type APIConfig struct {
	Port      int                `yaml:"port"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	HeaderExtra  string         `yaml:"header_extra"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Extra       string   `yaml:"extra"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type GoogleConfig struct {
	CredentialsFile      string `yaml:"credentials_file"`
	BookingSpreadSheetID string `yaml:"bookings_spreadsheet_id"`
}

type TelegramConfig struct {
	BotToken      string  `yaml:"bot_token"`
	ManagerChatID int64   `yaml:"manager_chat_id"`
	ExtraChatIDs  []int64 `yaml:"extra_chat_ids"`
}

type CatalogConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional outside of local development
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Expand ${VAR} references before parsing
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.Schedule.SlotMinutes <= 0 {
		return errors.New("schedule slot_minutes must be positive")
	}
	if c.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	if c.API.Auth.Enabled && len(c.API.Auth.APIKeys) == 0 {
		return errors.New("api auth enabled but no api_keys configured")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "lockwise"
	}
	if c.Schedule.Open == "" {
		c.Schedule.Open = models.DefaultOpenTime
	}
	if c.Schedule.Close == "" {
		c.Schedule.Close = models.DefaultCloseTime
	}
	if c.Schedule.SlotMinutes == 0 {
		c.Schedule.SlotMinutes = models.DefaultSlotMinutes
	}
	if c.Schedule.MaxAdvanceDays == 0 {
		c.Schedule.MaxAdvanceDays = models.DefaultMaxAdvanceDays
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.Auth.HeaderExtra == "" {
		c.API.Auth.HeaderExtra = "x-api-extra"
	}
	if c.API.RateLimit.RPS == 0 {
		c.API.RateLimit.RPS = float64(models.RateLimitRequests) / float64(models.RateLimitWindow)
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = "configs/services.yaml"
	}
}
