// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top,
// then applies env overrides and defaults.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finalize(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finalize(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finalize(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up towards the module root.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars replaces ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills still-empty credentials from the conventional env names
// used by hosting dashboards.
func overrideEmptyConfig(cfg *Config) {
	setIfEmpty(&cfg.Database.Postgres.Host, "DB_HOST")
	setIfEmpty(&cfg.Database.Postgres.Database, "DB_NAME")
	setIfEmpty(&cfg.Database.Postgres.User, "DB_USER")
	setIfEmpty(&cfg.Database.Postgres.Password, "DB_PASSWORD")
	setIfEmpty(&cfg.Database.Redis.Address, "REDIS_ADDR")
	setIfEmpty(&cfg.Database.Redis.URL, "REDIS_URL")

	setIfEmpty(&cfg.Integrations.Brevo.APIKey, "BREVO_API_KEY")
	if cfg.Integrations.Brevo.ListID == 0 {
		if val := os.Getenv("BREVO_LIST_ID"); val != "" {
			if id, err := strconv.ParseInt(val, 10, 64); err == nil {
				cfg.Integrations.Brevo.ListID = id
			}
		}
	}

	setIfEmpty(&cfg.Integrations.Zoho.APIKey, "ZOHO_CRM_API_KEY")
	setIfEmpty(&cfg.Integrations.Zoho.AuthToken, "ZOHO_CRM_OAUTH_TOKEN")

	setIfEmpty(&cfg.Integrations.ClickUp.APIKey, "CLICKUP_API_KEY")
	setIfEmpty(&cfg.Integrations.ClickUp.ListID, "CLICKUP_LIST_ID")

	setIfEmpty(&cfg.Integrations.Slack.BotToken, "SLACK_BOT_TOKEN")
	setIfEmpty(&cfg.Integrations.Slack.ChannelID, "SLACK_CHANNEL_ID")

	setIfEmpty(&cfg.Integrations.SendGrid.APIKey, "SENDGRID_API_KEY")
	setIfEmpty(&cfg.Notifications.Email.AdminEmail, "ADMIN_EMAIL")
}

func setIfEmpty(dst *string, envKey string) {
	if *dst != "" {
		return
	}
	if val := os.Getenv(envKey); val != "" {
		*dst = val
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "lead-intake"
	}

	// Server defaults
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30000
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 64 << 10
	}

	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 5000
	}
	if cfg.Camunda.ProcessID == "" {
		cfg.Camunda.ProcessID = "lead-follow-up"
	}

	// Database defaults
	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.Index == "" {
		cfg.Database.Elasticsearch.Index = "leads"
	}

	// Lead intake defaults
	if cfg.Leads.SinkTimeout == 0 {
		cfg.Leads.SinkTimeout = 8000
	}
	if cfg.Leads.DefaultSource == "" {
		cfg.Leads.DefaultSource = "website"
	}
	if cfg.Leads.Policy.FirstNameMinLength == 0 {
		cfg.Leads.Policy.FirstNameMinLength = 2
	}
	if cfg.Leads.Policy.QuestionMinLength == 0 {
		cfg.Leads.Policy.QuestionMinLength = 5
	}

	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 5
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = 60000
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.App.Name
	}
	if cfg.Observability.SampleRatio == 0 {
		cfg.Observability.SampleRatio = 1
	}
}

// validateConfig validates critical configuration fields. Only the primary store is
// mandatory; every secondary integration may be absent.
func validateConfig(cfg *Config) error {
	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}

	if cfg.Leads.SinkTimeout < 0 {
		return fmt.Errorf("leads.sink_timeout must be positive")
	}

	switch cfg.Notifications.Email.Provider {
	case "", "ses", "sendgrid", "smtp":
	default:
		return fmt.Errorf("notifications.email.provider %q is not supported", cfg.Notifications.Email.Provider)
	}

	seen := make(map[string]bool, len(cfg.Leads.Sinks))
	for _, name := range cfg.Leads.Sinks {
		if seen[name] {
			return fmt.Errorf("leads.sinks lists %q more than once", name)
		}
		seen[name] = true
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
