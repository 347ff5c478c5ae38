package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/Tiliavir/cwr/internal/logging"
)

// Config is the root configuration for cwr, stored in ~/.cwr/config.json.
// The file supports single-line // comments for documentation purposes.
// Every key can be overridden from the environment, e.g.
// CWR_CONNECTWISE_PRIVATE_KEY.
type Config struct {
	ConnectWise ConnectWiseConfig `mapstructure:"connectwise"`
	Report      ReportConfig      `mapstructure:"report"`
	Server      ServerConfig      `mapstructure:"server"`
}

// ConnectWiseConfig holds the Manage API endpoint and credentials.
type ConnectWiseConfig struct {
	// BaseURL is the REST root, ending in /apis/3.0.
	BaseURL    string `mapstructure:"base_url"`
	Company    string `mapstructure:"company"`
	PublicKey  string `mapstructure:"public_key"`
	PrivateKey string `mapstructure:"private_key"`
	// ClientID is sent as the clientId header on every request.
	ClientID string `mapstructure:"client_id"`
	// Auth is "basic" (API member keys) or "oauth2" (client credentials).
	Auth         string   `mapstructure:"auth"`
	TokenURL     string   `mapstructure:"token_url"`
	ClientSecret string   `mapstructure:"client_secret"`
	Scopes       []string `mapstructure:"scopes"`

	PageSize          int     `mapstructure:"page_size"`
	RetryMax          int     `mapstructure:"retry_max"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`
}

// ReportConfig controls what the report command produces and where.
type ReportConfig struct {
	AccountID  string `mapstructure:"account_id"`
	OutputDir  string `mapstructure:"output_dir"`
	Vendor     string `mapstructure:"vendor"`
	Customer   string `mapstructure:"customer"`
	PDF        bool   `mapstructure:"pdf"`
	DebugDumps bool   `mapstructure:"debug_dumps"`
}

// ServerConfig configures cwr serve.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

const (
	AuthBasic  = "basic"
	AuthOAuth2 = "oauth2"

	DefaultBaseURL  = "https://api-na.myconnectwise.net/v4_6_release/apis/3.0"
	DefaultPageSize = 100
	DefaultAddr     = "127.0.0.1:5000"
)

var defaults = map[string]any{
	"connectwise.base_url":            DefaultBaseURL,
	"connectwise.company":             "",
	"connectwise.public_key":          "",
	"connectwise.private_key":         "",
	"connectwise.client_id":           "",
	"connectwise.auth":                AuthBasic,
	"connectwise.token_url":           "",
	"connectwise.client_secret":       "",
	"connectwise.scopes":              []string{},
	"connectwise.page_size":           DefaultPageSize,
	"connectwise.retry_max":           0,
	"connectwise.requests_per_second": 5.0,
	"connectwise.timeout_seconds":     60,
	"report.account_id":               "",
	"report.output_dir":               "output",
	"report.vendor":                   "iT360",
	"report.customer":                 "Form Auckland",
	"report.pdf":                      true,
	"report.debug_dumps":              false,
	"server.addr":                     DefaultAddr,
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// cwr configuration – ~/.cwr/config.json
//
// Values left empty fall back to the built-in defaults. Secrets are better
// supplied through the environment, e.g. CWR_CONNECTWISE_PRIVATE_KEY.
{
  "connectwise": {
    // REST root of your ConnectWise Manage site.
    "base_url": "https://api-na.myconnectwise.net/v4_6_release/apis/3.0",

    // API member keys, used when auth is "basic".
    "company": "",
    "public_key": "",
    "private_key": "",

    // Integrator client id, sent as the clientId header.
    "client_id": "",

    // "basic" or "oauth2". oauth2 uses the client credentials grant against
    // token_url with client_id and client_secret.
    "auth": "basic",
    "token_url": "",
    "client_secret": "",
    "scopes": [],

    // Entries per page, retries on 5xx/transport errors (0 = fail fast) and
    // the page request rate.
    "page_size": 100,
    "retry_max": 0,
    "requests_per_second": 5,
    "timeout_seconds": 60
  },
  "report": {
    // Company whose time entries are reported. Can be overridden with --account.
    "account_id": "",
    "output_dir": "output",
    "vendor": "iT360",
    "customer": "Form Auckland",

    // Convert the HTML report to PDF (needs wkhtmltopdf on PATH).
    "pdf": true,
    // Also write raw and processed entries as CSV.
    "debug_dumps": false
  },
  "server": {
    "addr": "127.0.0.1:5000"
  }
}
`

// DefaultPath returns ~/.cwr/config.json.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".cwr", "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads the config at path, or ~/.cwr/config.json when path is empty,
// creating the default location with annotated defaults on first run.
// Environment variables take precedence over the file.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		path = p
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if err := writeDefault(path); err != nil {
				logging.Log.Warnf("could not create config file %s: %v", path, err)
			} else {
				logging.Log.Infof("wrote default config to %s", path)
			}
		}
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix("CWR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigType("json")

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Log.Debugf("config file %s not found, using defaults", path)
	case err != nil:
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if err := v.ReadConfig(bytes.NewReader(stripLineComments(data))); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.ConnectWise.PageSize <= 0 {
		cfg.ConnectWise.PageSize = DefaultPageSize
	}
	return cfg, nil
}

// Validate reports settings that make fetching impossible.
func (c Config) Validate() error {
	cw := c.ConnectWise
	var missing []string
	if cw.BaseURL == "" {
		missing = append(missing, "connectwise.base_url")
	}
	switch cw.Auth {
	case AuthBasic:
		for key, val := range map[string]string{
			"connectwise.company":     cw.Company,
			"connectwise.public_key":  cw.PublicKey,
			"connectwise.private_key": cw.PrivateKey,
		} {
			if val == "" {
				missing = append(missing, key)
			}
		}
	case AuthOAuth2:
		for key, val := range map[string]string{
			"connectwise.token_url":     cw.TokenURL,
			"connectwise.client_id":     cw.ClientID,
			"connectwise.client_secret": cw.ClientSecret,
		} {
			if val == "" {
				missing = append(missing, key)
			}
		}
	default:
		return fmt.Errorf("connectwise.auth must be %q or %q, got %q", AuthBasic, AuthOAuth2, cw.Auth)
	}
	if c.Report.AccountID == "" {
		missing = append(missing, "report.account_id")
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing config values: %s", strings.Join(missing, ", "))
	}
	return nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
