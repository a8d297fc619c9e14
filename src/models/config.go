package models

// MConfig Structure
type MConfig struct {
	Name      string         `yaml:"name"`
	Host      string         `yaml:"host"`
	Port      int            `yaml:"port"`
	LogLevel  string         `yaml:"log_level"`
	GrpcHost  string         `yaml:"grpc_host"`
	GrpcPort  int            `yaml:"grpc_port"`
	StaticDir string         `yaml:"static_dir"`
	Network   MNetworkConfig `yaml:"network"`
	Fyers     MFyersConfig   `yaml:"fyers"`
	Polling   MPollingConfig `yaml:"polling"`
	Market    MMarketConfig  `yaml:"market"`
	Watchlist []MCompany     `yaml:"watchlist"`
}

type MNetworkConfig struct {
	RequestTimeout int    `yaml:"timeout"`
	MaxRetries     int    `yaml:"retries"`
	UserAgent      string `yaml:"user_agent"`
}

// MFyersConfig holds the brokerage app credentials and endpoints.
type MFyersConfig struct {
	AppID              string `yaml:"app_id"`
	SecretID           string `yaml:"secret_id"`
	AccessToken        string `yaml:"access_token"`
	RefreshToken       string `yaml:"refresh_token"`
	DataHost           string `yaml:"data_host"`
	AuthHost           string `yaml:"auth_host"`
	TokenHost          string `yaml:"token_host"`
	RedirectURI        string `yaml:"redirect_uri"`
	Pin                string `yaml:"pin"`
	AuthState          string `yaml:"auth_state"`
	UseRefreshToken    bool   `yaml:"use_refresh_token"`
	PersistTokens      bool   `yaml:"persist_tokens"`
	EnvFile            string `yaml:"env_file"`
	RefreshLeadSeconds int    `yaml:"refresh_lead_seconds"`
}

type MPollingConfig struct {
	IntervalMs         int    `yaml:"interval_ms"`
	PauseWhenClosed    bool   `yaml:"pause_when_closed"`
	TokenWatchSchedule string `yaml:"token_watch_schedule"`
}

type MMarketConfig struct {
	CalendarMIC string `yaml:"calendar_mic"`
	Timezone    string `yaml:"timezone"`
}

// GetLogLevel lets the logger pick its level without importing config.
func (c *MConfig) GetLogLevel() string {
	return c.LogLevel
}

// HasAuthConfig reports whether the OAuth login dance can run.
func (f MFyersConfig) HasAuthConfig() bool {
	return f.AppID != "" && f.SecretID != "" && f.RedirectURI != ""
}

// Tokens is the initial token pair from configuration.
func (f MFyersConfig) Tokens() MTokenPair {
	return MTokenPair{AccessToken: f.AccessToken, RefreshToken: f.RefreshToken}
}
