package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"market-dashboard/src/models"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

const (
	DefaultName               = "market-dashboard"
	DefaultHost               = "0.0.0.0"
	DefaultPort               = 3000
	DefaultGrpcPort           = 50051
	DefaultFyersHost          = "https://api-t1.fyers.in"
	DefaultPollIntervalMs     = 12000
	DefaultRefreshLeadSeconds = 300
	MinRefreshLeadSeconds     = 60
	DefaultRequestTimeout     = 15
	DefaultEnvFile            = ".env"
	DefaultTokenWatchSchedule = "@every 1m"
	DefaultCalendarMIC        = "xnse"
	DefaultTimezone           = "Asia/Kolkata"
)

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig loads the YAML file (optional when configPath is empty), overlays the
// env file and process environment, applies defaults and validates.
func NewConfig(configPath string) (*Config, error) {
	var modelConfig models.MConfig
	modelConfig.Fyers.UseRefreshToken = true

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
		}
		if err := yaml.Unmarshal(data, &modelConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
		}
	}

	config := &Config{MConfig: &modelConfig}

	if err := config.loadEnvFile(); err != nil {
		return nil, err
	}
	config.ApplyEnv(os.Getenv)
	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// NewDefaultConfig returns a validated config without reading files or env.
func NewDefaultConfig() *Config {
	mc := &models.MConfig{}
	mc.Fyers.UseRefreshToken = true
	c := &Config{MConfig: mc}
	c.ApplyDefaults()
	return c
}

// -----------------------------------------------------------------------------

func (c *Config) loadEnvFile() error {
	envFile := c.Fyers.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file '%s': %w", envFile, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// ApplyEnv overrides config values with the recognized environment keys.
func (c *Config) ApplyEnv(getenv func(string) string) {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}
	integer := func(key string, dst *int) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	f := &c.Fyers
	str("FYERS_APP_ID", &f.AppID)
	str("FYERS_SECRET_ID", &f.SecretID)
	str("FYERS_ACCESS_TOKEN", &f.AccessToken)
	str("FYERS_REFRESH_TOKEN", &f.RefreshToken)
	str("FYERS_DATA_HOST", &f.DataHost)
	str("FYERS_AUTH_HOST", &f.AuthHost)
	str("FYERS_TOKEN_HOST", &f.TokenHost)
	str("FYERS_REDIRECT_URI", &f.RedirectURI)
	str("FYERS_PIN", &f.Pin)
	str("FYERS_AUTH_STATE", &f.AuthState)
	boolean("FYERS_USE_REFRESH_TOKEN", &f.UseRefreshToken)
	boolean("FYERS_PERSIST_TOKENS", &f.PersistTokens)
	integer("FYERS_REFRESH_LEAD_SECONDS", &f.RefreshLeadSeconds)
	integer("FYERS_POLL_INTERVAL_MS", &c.Polling.IntervalMs)

	str("HOST", &c.Host)
	integer("PORT", &c.Port)
	str("LOG_LEVEL", &c.LogLevel)
}

// -----------------------------------------------------------------------------

// ApplyDefaults fills every unset option.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.GrpcPort == 0 {
		c.GrpcPort = DefaultGrpcPort
	}
	if c.StaticDir == "" {
		c.StaticDir = "frontend/dist"
	}

	if c.Network.RequestTimeout <= 0 {
		c.Network.RequestTimeout = DefaultRequestTimeout
	}
	if c.Network.MaxRetries < 0 {
		c.Network.MaxRetries = 0
	}
	if c.Network.UserAgent == "" {
		c.Network.UserAgent = DefaultName + "/1.0"
	}

	f := &c.Fyers
	f.DataHost = strings.TrimRight(defaultString(f.DataHost, DefaultFyersHost), "/")
	f.AuthHost = strings.TrimRight(defaultString(f.AuthHost, DefaultFyersHost), "/")
	f.TokenHost = strings.TrimRight(defaultString(f.TokenHost, DefaultFyersHost), "/")
	f.EnvFile = defaultString(f.EnvFile, DefaultEnvFile)
	if f.RefreshLeadSeconds <= 0 {
		f.RefreshLeadSeconds = DefaultRefreshLeadSeconds
	}
	if f.RefreshLeadSeconds < MinRefreshLeadSeconds {
		f.RefreshLeadSeconds = MinRefreshLeadSeconds
	}

	if c.Polling.IntervalMs <= 0 {
		c.Polling.IntervalMs = DefaultPollIntervalMs
	}
	if c.Polling.TokenWatchSchedule == "" {
		c.Polling.TokenWatchSchedule = DefaultTokenWatchSchedule
	}

	c.Market.CalendarMIC = defaultString(c.Market.CalendarMIC, DefaultCalendarMIC)
	c.Market.Timezone = defaultString(c.Market.Timezone, DefaultTimezone)
}

func defaultString(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	m := c.MConfig
	err := validation.ValidateStruct(m,
		validation.Field(&m.Name, validation.Required),
		validation.Field(&m.Host, validation.Required),
		validation.Field(&m.Port, validation.Required, validation.Min(1025), validation.Max(65535)),
		validation.Field(&m.GrpcPort, validation.Min(0), validation.Max(65535)),
	)
	if err != nil {
		return err
	}

	if err := validation.ValidateStruct(&m.Fyers,
		validation.Field(&m.Fyers.DataHost, validation.Required),
		validation.Field(&m.Fyers.AuthHost, validation.Required),
		validation.Field(&m.Fyers.TokenHost, validation.Required),
		validation.Field(&m.Fyers.RefreshLeadSeconds, validation.Min(MinRefreshLeadSeconds)),
	); err != nil {
		return fmt.Errorf("fyers: %w", err)
	}

	if err := validation.ValidateStruct(&m.Polling,
		validation.Field(&m.Polling.IntervalMs, validation.Required, validation.Min(1)),
	); err != nil {
		return fmt.Errorf("polling: %w", err)
	}

	for i, company := range m.Watchlist {
		if strings.TrimSpace(company.Symbol) == "" {
			return fmt.Errorf("watchlist entry %d must have a symbol", i)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// PollInterval is the scheduler tick period.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Polling.IntervalMs) * time.Millisecond
}

// Save writes the configuration as YAML. Credentials are left out; they
// belong in the env file.
func (c *Config) Save(configPath string) error {
	out := *c.MConfig
	out.Fyers.SecretID = ""
	out.Fyers.AccessToken = ""
	out.Fyers.RefreshToken = ""
	out.Fyers.Pin = ""

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}

// -----------------------------------------------------------------------------

// RefreshLead is how long before expiry a proactive refresh kicks in.
func (c *Config) RefreshLead() time.Duration {
	return time.Duration(c.Fyers.RefreshLeadSeconds) * time.Second
}
