// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Camunda       CamundaConfig       `mapstructure:"camunda"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Leads         LeadsConfig         `mapstructure:"leads"`
	Integrations  IntegrationConfig   `mapstructure:"integrations"`
	Notifications NotificationConfig  `mapstructure:"notifications"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address        string   `mapstructure:"address"`
	ReadTimeout    int      `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout   int      `mapstructure:"write_timeout"` // milliseconds
	MaxBodyBytes   int64    `mapstructure:"max_body_bytes"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	ProcessID      string `mapstructure:"process_id"`
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// GetURL returns the connection string in URL form, as expected by the migrator.
func (p PostgresConfig) GetURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

// Enabled reports whether an Elasticsearch cluster was configured at all.
func (e ElasticsearchConfig) Enabled() bool {
	return len(e.Addresses) > 0
}

type RedisConfig struct {
	// URL (redis:// or rediss://) takes precedence over the discrete fields.
	URL      string `mapstructure:"url"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Lead intake ---

// LeadsConfig controls validation policy and fan-out behaviour.
type LeadsConfig struct {
	// Sinks lists secondary sinks in invocation/response order.
	Sinks         []string     `mapstructure:"sinks"`
	SinkTimeout   int          `mapstructure:"sink_timeout"` // milliseconds
	DefaultSource string       `mapstructure:"default_source"`
	Policy        PolicyConfig `mapstructure:"policy"`
}

type PolicyConfig struct {
	RequirePhone       bool `mapstructure:"require_phone"`
	RequireQuestion    bool `mapstructure:"require_question"`
	RequireConsent     bool `mapstructure:"require_consent"`
	FirstNameMinLength int  `mapstructure:"first_name_min_length"`
	QuestionMinLength  int  `mapstructure:"question_min_length"`
}

// --- Specific Configuration Sections ---

// IntegrationConfig holds credentials for every secondary sink backend.
type IntegrationConfig struct {
	Brevo struct {
		APIKey  string `mapstructure:"api_key"`
		ListID  int64  `mapstructure:"list_id"`
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"brevo"`

	Zoho struct {
		APIKey    string `mapstructure:"api_key"`
		AuthToken string `mapstructure:"oauth_token"`
		BaseURL   string `mapstructure:"base_url"`
	} `mapstructure:"zoho"`

	ClickUp struct {
		APIKey       string            `mapstructure:"api_key"`
		ListID       string            `mapstructure:"list_id"`
		BaseURL      string            `mapstructure:"base_url"`
		CustomFields map[string]string `mapstructure:"custom_fields"`
	} `mapstructure:"clickup"`

	Slack struct {
		BotToken  string `mapstructure:"bot_token"`
		ChannelID string `mapstructure:"channel_id"`
		APIURL    string `mapstructure:"api_url"`
	} `mapstructure:"slack"`

	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool   `mapstructure:"enabled"`
			FromEmail string `mapstructure:"from_email"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled         bool   `mapstructure:"enabled"`
			AlertPhone      string `mapstructure:"alert_phone"`
			DefaultSenderID string `mapstructure:"default_sms_sender_id"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`

	SendGrid struct {
		APIKey string `mapstructure:"api_key"`
	} `mapstructure:"sendgrid"`

	SMTP struct {
		Host        string `mapstructure:"host"`
		Port        int    `mapstructure:"port"`
		Username    string `mapstructure:"username"`
		Password    string `mapstructure:"password"`
		UseTLS      bool   `mapstructure:"use_tls"`
		DefaultFrom string `mapstructure:"default_from"`
	} `mapstructure:"smtp"`
}

// NotificationConfig holds settings for the email sinks.
type NotificationConfig struct {
	Email struct {
		// Provider is one of ses, sendgrid, smtp. Empty disables email sinks.
		Provider   string `mapstructure:"provider"`
		FromEmail  string `mapstructure:"from_email"`
		FromName   string `mapstructure:"from_name"`
		AdminEmail string `mapstructure:"admin_email"`
		// Brand names the business in confirmation emails.
		Brand string `mapstructure:"brand"`
	} `mapstructure:"email"`
}

// RateLimitConfig configures the fixed-window limiter in front of lead submission.
type RateLimitConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Requests int  `mapstructure:"requests"`
	Window   int  `mapstructure:"window"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ObservabilityConfig struct {
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	RegistryPath string  `mapstructure:"registry_path"`
}
