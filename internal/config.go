package internal

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/discover"
)

// Config represents the application configuration. It is passed explicitly
// into every component entry point; nothing reads it from ambient state.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Index    IndexConfig       `yaml:"index"`
	Sources  map[string]string `yaml:"sources"`
	Includes map[string]string `yaml:"includes"`
	Excludes map[string]string `yaml:"excludes"`
	Update   UpdateConfig      `yaml:"update"`
	Convert  ConvertConfig     `yaml:"convert"`
	Auth     AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Index.Validate(); err != nil {
		return err
	}
	for name, pattern := range c.Includes {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("includes.%s: %w", name, err)
		}
	}
	for name, rule := range c.Excludes {
		if _, err := discover.ParseExcludeRule(rule); err != nil {
			return fmt.Errorf("excludes.%s: %w", name, err)
		}
	}
	return c.Auth.Validate()
}

// Discovery compiles the source/include/exclude maps into a discovery
// config. Map entries are ordered by the lexicographic order of their keys
// so discovery output is deterministic.
func (c *Config) Discovery() (discover.Config, error) {
	var out discover.Config

	for _, name := range sortedKeys(c.Sources) {
		out.Sources = append(out.Sources, discover.Source{Name: name, Root: c.Sources[name]})
	}
	for _, name := range sortedKeys(c.Includes) {
		re, err := regexp.Compile(c.Includes[name])
		if err != nil {
			return discover.Config{}, fmt.Errorf("includes.%s: %w", name, err)
		}
		out.Includes = append(out.Includes, re)
	}
	for _, name := range sortedKeys(c.Excludes) {
		rule, err := discover.ParseExcludeRule(c.Excludes[name])
		if err != nil {
			return discover.Config{}, fmt.Errorf("excludes.%s: %w", name, err)
		}
		out.Excludes = append(out.Excludes, rule)
	}
	return out, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds the HTTP server configuration for the serve command.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// IndexConfig holds the persistent index location.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// FilesCache returns the tracked-files cache location, a sibling of the
// index database.
func (c *IndexConfig) FilesCache() string {
	return c.Path + ".files"
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// UpdateConfig controls incremental update behavior.
//
// EarlyStop restores the original early-termination contract: once one
// already-current document is seen during the mtime-descending scan, the
// whole update stops. That assumption silently skips a never-indexed file
// whose mtime is older than some current document, so it is off by default;
// the default scans every candidate.
type UpdateConfig struct {
	EarlyStop bool `yaml:"early_stop"`
}

// ConvertConfig bounds the external notebook conversion subprocess.
type ConvertConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Timeout returns the subprocess timeout as a duration.
func (c *ConvertConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// AuthConfig holds authentication configuration for the serve command.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Index: IndexConfig{
			Path: "./ansuz.db",
		},
		Includes: map[string]string{
			"notes": `\.(md|org|tex|rst|py|ipynb)$`,
		},
		Excludes: map[string]string{
			"tex-exports": "tex-org-sibling",
		},
		Convert: ConvertConfig{
			TimeoutSeconds: 30,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
