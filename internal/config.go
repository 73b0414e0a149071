package internal

import (
	"fmt"
	"log/slog"
	"path"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/raido/internal/render"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App   ApplicationConfig `yaml:"app"`
	Site  SiteConfig        `yaml:"site"`
	Build BuildConfig       `yaml:"build"`
	Index IndexConfig       `yaml:"index"`
	Auth  AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Site.Validate(); err != nil {
		return err
	}
	if err := c.Build.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
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

// HTTPConfig holds dev server configuration.
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

// SiteConfig holds the site-wide settings the views consume.
type SiteConfig struct {
	Title          string           `yaml:"title"`
	Description    string           `yaml:"description"`
	Lang           string           `yaml:"lang"`
	BaseURL        string           `yaml:"base_url"`
	NavLinks       []render.NavLink `yaml:"nav_links"`
	Author         render.Author    `yaml:"author"`
	Head           string           `yaml:"head"`
	CodeHighlight  bool             `yaml:"code_highlight"`
	HighlightStyle string           `yaml:"highlight_style"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Title, validation.Required),
		validation.Field(&c.BaseURL, validation.By(func(any) error {
			if c.BaseURL != "" && !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
				return fmt.Errorf("must start with http:// or https://")
			}
			return nil
		})),
	)
}

// BuildConfig holds input/output locations and build behaviour.
type BuildConfig struct {
	Input        string `yaml:"input"`
	Output       string `yaml:"output"`
	Views        string `yaml:"views"`
	FeedTemplate string `yaml:"feed_template"`
	// FeedPath is relative to the output root. Empty disables the feed.
	FeedPath    string `yaml:"feed_path"`
	Quiet       bool   `yaml:"quiet"`
	Dev         bool   `yaml:"dev"`
	Concurrency int    `yaml:"concurrency"`
}

// Validate validates the build configuration.
func (c *BuildConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Input, validation.Required),
		validation.Field(&c.Output, validation.Required),
		validation.Field(&c.Concurrency, validation.Required, validation.Min(1), validation.Max(256)),
		validation.Field(&c.FeedPath, validation.By(func(any) error {
			if c.FeedPath != "" && path.Clean("/"+c.FeedPath) == "/" {
				return fmt.Errorf("must name a file")
			}
			return nil
		})),
	)
}

// FeedURL returns the public path of the feed, or "" when disabled.
func (c *BuildConfig) FeedURL() string {
	if c.FeedPath == "" {
		return ""
	}
	return path.Clean("/" + c.FeedPath)
}

// IndexConfig holds the graph index location. An empty path disables the
// index for builds.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// Enabled reports whether builds record the page graph.
func (c *IndexConfig) Enabled() bool {
	return c.Path != ""
}

// AuthConfig holds authentication configuration for the dev server API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
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

// RenderSite converts the configuration into what the renderer consumes.
func (c *Config) RenderSite() render.Site {
	return render.Site{
		Title:          c.Site.Title,
		Description:    c.Site.Description,
		Lang:           c.Site.Lang,
		BaseURL:        c.Site.BaseURL,
		NavLinks:       c.Site.NavLinks,
		Author:         c.Site.Author,
		CodeHighlight:  c.Site.CodeHighlight,
		HighlightStyle: c.Site.HighlightStyle,
		FeedURL:        c.Build.FeedURL(),
	}
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
		Site: SiteConfig{
			Title:          "raido",
			Lang:           "en",
			HighlightStyle: "github",
		},
		Build: BuildConfig{
			Input:       "./content",
			Output:      "./public",
			FeedPath:    "feed.xml",
			Concurrency: 8,
		},
		Index: IndexConfig{
			Path: "./raido.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
