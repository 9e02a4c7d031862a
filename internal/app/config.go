package app

import (
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete storefront configuration, loadable from
// environment variables (STORE_ prefix), flags, or YAML config files.
type Config struct {
	APIBaseURL  string        `default:"http://localhost:8080/api" usage:"Order API base URL" flag:"api-base-url"`
	HTTPTimeout time.Duration `default:"10s" usage:"Outbound HTTP client timeout" flag:"http-timeout"`
	Auth        AuthConfig
	Logging     LoggingConfig
}

// AuthConfig points at the external auth provider.
type AuthConfig struct {
	URL               string `default:"http://localhost:9999" usage:"Auth provider base URL" flag:"auth-url"`
	AnonKey           string `usage:"Auth provider public API key (STORE_AUTH_ANON_KEY)" flag:"auth-anon-key"`
	SignUpRedirectURL string `default:"http://localhost:4200/login" usage:"Email confirmation redirect" flag:"signup-redirect-url"`
	ResetRedirectURL  string `default:"http://localhost:4200/reset-password" usage:"Password reset redirect" flag:"reset-redirect-url"`
}

// LoggingConfig switches the action and error streams per destination.
type LoggingConfig struct {
	ActionsConsole bool `default:"true" usage:"Echo user actions to console" flag:"log-actions-console"`
	ActionsServer  bool `default:"true" usage:"Ship user actions to the backend" flag:"log-actions-server"`
	ErrorsConsole  bool `default:"true" usage:"Echo errors to console" flag:"log-errors-console"`
	ErrorsServer   bool `default:"true" usage:"Ship errors to the backend" flag:"log-errors-server"`
	QueueSize      int  `default:"256" usage:"Pending log event buffer" flag:"log-queue-size"`
}

// LoadConfig loads configuration from environment variables and YAML config
// files.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STORE",
		Files:     []string{"config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	return &cfg, nil
}
