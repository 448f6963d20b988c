package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration. It is built once at
// process start and handed to every constructor; business logic never reads
// ambient state.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Email     EmailConfig     `yaml:"email"`
	Chat      ChatConfig      `yaml:"chat"`
	Provision ProvisionConfig `yaml:"provision"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// EmailConfig contains SendGrid settings
type EmailConfig struct {
	APIKey   string `yaml:"api_key"`
	From     string `yaml:"from"`
	FromName string `yaml:"from_name"`
}

// ChatConfig contains chat platform settings
type ChatConfig struct {
	APIBaseURL    string `yaml:"api_base_url"`
	BotToken      string `yaml:"bot_token"`
	SigningSecret string `yaml:"signing_secret"`
	OpsChannel    string `yaml:"ops_channel"`
	// StateSecret signs the opaque state embedded in modal views.
	StateSecret string `yaml:"state_secret"`
	// StateTTLMinutes bounds how long an opened modal stays submittable.
	StateTTLMinutes int `yaml:"state_ttl_minutes"`
}

// ProvisionConfig contains downstream provisioning settings
type ProvisionConfig struct {
	PortalBaseURL     string `yaml:"portal_base_url"`
	PageGeneratorURL  string `yaml:"page_generator_url"`
	DefaultRejectText string `yaml:"default_reject_text"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	DrainQueue string `yaml:"drain_queue"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Email
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.APIKey = val
	}
	if val := os.Getenv("EMAIL_FROM"); val != "" {
		c.Email.From = val
	}

	// Chat
	if val := os.Getenv("CHAT_BOT_TOKEN"); val != "" {
		c.Chat.BotToken = val
	}
	if val := os.Getenv("CHAT_SIGNING_SECRET"); val != "" {
		c.Chat.SigningSecret = val
	}
	if val := os.Getenv("CHAT_STATE_SECRET"); val != "" {
		c.Chat.StateSecret = val
	}
	if val := os.Getenv("CHAT_OPS_CHANNEL"); val != "" {
		c.Chat.OpsChannel = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// Chat validation
	if c.Chat.APIBaseURL == "" {
		return fmt.Errorf("chat API base URL is required")
	}
	if c.Chat.BotToken == "" {
		return fmt.Errorf("chat bot token is required")
	}
	if c.Chat.SigningSecret == "" {
		return fmt.Errorf("chat signing secret is required")
	}
	if c.Chat.StateSecret == "" {
		return fmt.Errorf("chat state secret is required")
	}
	if len(c.Chat.StateSecret) < 32 {
		return fmt.Errorf("chat state secret must be at least 32 characters")
	}
	if c.Chat.StateTTLMinutes <= 0 {
		c.Chat.StateTTLMinutes = 30
	}

	// Email validation
	if c.Email.APIKey == "" {
		return fmt.Errorf("email API key is required")
	}
	if c.Email.From == "" {
		return fmt.Errorf("email from address is required")
	}

	// Provision defaults
	if c.Provision.DefaultRejectText == "" {
		c.Provision.DefaultRejectText = "Your application did not meet our partner requirements."
	}

	// Scheduler defaults
	if c.Scheduler.DrainQueue == "" {
		c.Scheduler.DrainQueue = "0 */2 * * * *" // every 2 minutes
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
