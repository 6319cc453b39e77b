package config

import (
	"fmt"
	"time"

	"github.com/antonkh/budget-approval/internal/domain/approval"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Lark      LarkConfig      `mapstructure:"lark"`
	Approvers ApproversConfig `mapstructure:"approvers"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// LarkConfig holds Lark API configuration
type LarkConfig struct {
	AppID           string        `mapstructure:"app_id"`
	AppSecret       string        `mapstructure:"app_secret"`
	VerifyToken     string        `mapstructure:"verify_token"`
	EventPath       string        `mapstructure:"event_path"`
	CardActionPath  string        `mapstructure:"card_action_path"`
	APITimeout      time.Duration `mapstructure:"api_timeout"`
	DeveloperChatID string        `mapstructure:"developer_chat_id"`
}

// ApproversConfig holds the chat ids of the approval tiers
type ApproversConfig struct {
	HeadChatIDs    []string `mapstructure:"head_chat_ids"`
	FinanceChatIDs []string `mapstructure:"finance_chat_ids"`
	PayerChatIDs   []string `mapstructure:"payer_chat_ids"`
}

// LedgerConfig holds payment ledger workbook configuration
type LedgerConfig struct {
	Path      string `mapstructure:"path"`
	SheetName string `mapstructure:"sheet_name"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Override with environment variables
	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	// Database defaults
	viper.SetDefault("database.path", "data/budget.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	// Lark defaults
	viper.SetDefault("lark.event_path", "/webhook/event")
	viper.SetDefault("lark.card_action_path", "/webhook/card")
	viper.SetDefault("lark.api_timeout", 30*time.Second)

	// Ledger defaults
	viper.SetDefault("ledger.path", "data/payments.xlsx")
	viper.SetDefault("ledger.sheet_name", "Payments")

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	// Sensitive credentials from environment
	viper.BindEnv("lark.app_id", "LARK_APP_ID")
	viper.BindEnv("lark.app_secret", "LARK_APP_SECRET")
	viper.BindEnv("lark.verify_token", "LARK_VERIFY_TOKEN")
	viper.BindEnv("lark.developer_chat_id", "DEVELOPER_CHAT_ID")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate Lark credentials
	if c.Lark.AppID == "" {
		return fmt.Errorf("lark.app_id is required")
	}
	if c.Lark.AppSecret == "" {
		return fmt.Errorf("lark.app_secret is required")
	}

	// Validate approver tiers
	if len(c.Approvers.HeadChatIDs) == 0 {
		return fmt.Errorf("approvers.head_chat_ids is required")
	}
	if len(c.Approvers.FinanceChatIDs) == 0 {
		return fmt.Errorf("approvers.finance_chat_ids is required")
	}
	if len(c.Approvers.PayerChatIDs) == 0 {
		return fmt.Errorf("approvers.payer_chat_ids is required")
	}

	// Validate ledger config
	if c.Ledger.Path == "" {
		return fmt.Errorf("ledger.path is required")
	}

	return nil
}

// Groups maps the configured approver chat ids to routing groups
func (c *Config) Groups() approval.Groups {
	return approval.Groups{
		Head:    c.Approvers.HeadChatIDs,
		Finance: c.Approvers.FinanceChatIDs,
		Payers:  c.Approvers.PayerChatIDs,
	}
}
