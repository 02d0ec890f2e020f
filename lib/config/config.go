// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/chatmark/lib/imagefetch"
	"github.com/bureau-foundation/chatmark/lib/styledtext"
	"github.com/bureau-foundation/chatmark/lib/tablewidth"
	"github.com/bureau-foundation/chatmark/lib/urlpolicy"
)

// EnvVar names the environment variable read by [Load].
const EnvVar = "CHATMARK_CONFIG"

// Config is the complete chatmark configuration.
type Config struct {
	// Links decides which links are interactive.
	Links LinksConfig `yaml:"links"`

	// Images decides whether and how images load.
	Images ImagesConfig `yaml:"images"`

	// LinkSafety decides which interactive links need confirmation.
	LinkSafety LinkSafetyConfig `yaml:"link_safety"`

	// Layout configures the hosts.
	Layout LayoutConfig `yaml:"layout"`
}

// LinksConfig configures the link policy.
type LinksConfig struct {
	// AllowedSchemes lists the schemes a link may use to be
	// interactive. Default: http, https, mailto.
	AllowedSchemes []string `yaml:"allowed_schemes"`

	// AllowedHosts restricts interactive links to these hosts. Absent
	// means any host; an empty list means none.
	AllowedHosts []string `yaml:"allowed_hosts"`
}

// ImagesConfig configures the image policy and fetcher.
type ImagesConfig struct {
	// Mode is one of: disabled, tap_to_load, allow.
	// Default: tap_to_load
	Mode string `yaml:"mode"`

	// AllowedSchemes lists the schemes an image URL may use.
	// Default: https
	AllowedSchemes []string `yaml:"allowed_schemes"`

	// AllowedHosts restricts image URLs to these hosts. Absent means
	// any host.
	AllowedHosts []string `yaml:"allowed_hosts"`

	// FetchTimeout bounds each image fetch. Default: 15s
	FetchTimeout string `yaml:"fetch_timeout"`

	// MaxBytes caps the size of a fetched image. Default: 8 MiB
	MaxBytes int64 `yaml:"max_bytes"`
}

// LinkSafetyConfig configures the link safety policy.
type LinkSafetyConfig struct {
	// Confirmation is one of: always, unsafe_only.
	// Default: unsafe_only
	Confirmation string `yaml:"confirmation"`

	// SafeSchemes lists schemes that never need confirmation.
	// Default: https
	SafeSchemes []string `yaml:"safe_schemes"`

	// SafeHosts lists hosts that never need confirmation.
	SafeHosts []string `yaml:"safe_hosts"`

	// SafeHostSuffixes lists domain suffixes whose subdomains never
	// need confirmation.
	SafeHostSuffixes []string `yaml:"safe_host_suffixes"`
}

// LayoutConfig configures rendering.
type LayoutConfig struct {
	// Width is the render width in columns. 0 means the terminal
	// width, or 80 when output is not a terminal.
	Width int `yaml:"width"`

	// ParagraphSpacing is the number of blank lines between body
	// paragraphs. Default: 1
	ParagraphSpacing int `yaml:"paragraph_spacing"`

	// HeadingSpacing is the number of blank lines before a heading.
	// Default: 1
	HeadingSpacing int `yaml:"heading_spacing"`

	// TableEpsilon is the growth below which a column width report
	// is ignored. Default: 0.5
	TableEpsilon float64 `yaml:"table_epsilon"`

	// CodeTheme is the chroma style used for code blocks.
	// Default: monokai
	CodeTheme string `yaml:"code_theme"`
}

// Default returns the default configuration. It is the base that a
// loaded file is decoded over.
func Default() *Config {
	return &Config{
		Links: LinksConfig{
			AllowedSchemes: []string{"http", "https", "mailto"},
		},
		Images: ImagesConfig{
			Mode:           urlpolicy.ImagesTapToLoad.String(),
			AllowedSchemes: []string{"https"},
			FetchTimeout:   "15s",
			MaxBytes:       imagefetch.DefaultMaxBytes,
		},
		LinkSafety: LinkSafetyConfig{
			Confirmation: urlpolicy.ConfirmUnsafeOnly.String(),
			SafeSchemes:  []string{"https"},
		},
		Layout: LayoutConfig{
			ParagraphSpacing: 1,
			HeadingSpacing:   1,
			TableEpsilon:     tablewidth.DefaultEpsilon,
			CodeTheme:        "monokai",
		},
	}
}

// Load loads configuration from the CHATMARK_CONFIG environment
// variable. Unlike LoadFile it accepts an unset variable and returns
// the defaults, since chatmark is usable without any configuration.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path and
// validates it.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}

	if err := cfg.decode(data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// decode merges YAML (or JSON) data into c. An empty document leaves
// c unchanged.
func (c *Config) decode(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	return decoder.Decode(c)
}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	errs = append(errs, checkSchemes("links.allowed_schemes", c.Links.AllowedSchemes)...)
	errs = append(errs, checkSchemes("images.allowed_schemes", c.Images.AllowedSchemes)...)
	errs = append(errs, checkSchemes("link_safety.safe_schemes", c.LinkSafety.SafeSchemes)...)

	if _, err := urlpolicy.ParseImageMode(c.Images.Mode); err != nil {
		errs = append(errs, fmt.Errorf("images.mode: %w", err))
	}
	if _, err := c.fetchTimeout(); err != nil {
		errs = append(errs, fmt.Errorf("images.fetch_timeout: %w", err))
	}
	if c.Images.MaxBytes < 0 {
		errs = append(errs, fmt.Errorf("images.max_bytes must not be negative, got %d", c.Images.MaxBytes))
	}

	if _, err := urlpolicy.ParseConfirmationMode(c.LinkSafety.Confirmation); err != nil {
		errs = append(errs, fmt.Errorf("link_safety.confirmation: %w", err))
	}

	if c.Layout.Width < 0 {
		errs = append(errs, fmt.Errorf("layout.width must not be negative, got %d", c.Layout.Width))
	}
	if c.Layout.ParagraphSpacing < 0 {
		errs = append(errs, fmt.Errorf("layout.paragraph_spacing must not be negative, got %d", c.Layout.ParagraphSpacing))
	}
	if c.Layout.HeadingSpacing < 0 {
		errs = append(errs, fmt.Errorf("layout.heading_spacing must not be negative, got %d", c.Layout.HeadingSpacing))
	}
	if math.IsNaN(c.Layout.TableEpsilon) || math.IsInf(c.Layout.TableEpsilon, 0) || c.Layout.TableEpsilon < 0 {
		errs = append(errs, fmt.Errorf("layout.table_epsilon must be a non-negative number, got %v", c.Layout.TableEpsilon))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func checkSchemes(field string, schemes []string) []error {
	var errs []error
	for index, scheme := range schemes {
		if strings.TrimSpace(scheme) == "" {
			errs = append(errs, fmt.Errorf("%s[%d] is empty", field, index))
		}
	}
	return errs
}

func (c *Config) fetchTimeout() (time.Duration, error) {
	if c.Images.FetchTimeout == "" {
		return 0, nil
	}
	timeout, err := time.ParseDuration(c.Images.FetchTimeout)
	if err != nil {
		return 0, err
	}
	if timeout < 0 {
		return 0, fmt.Errorf("must not be negative, got %s", timeout)
	}
	return timeout, nil
}

// FetchTimeout returns images.fetch_timeout as a duration. Zero means
// no timeout. It assumes the config has been validated.
func (c *Config) FetchTimeout() time.Duration {
	timeout, _ := c.fetchTimeout()
	return timeout
}

// Policies bundles the URL policies a config describes.
type Policies struct {
	Links  urlpolicy.LinkPolicy
	Images urlpolicy.ImagePolicy
	Safety urlpolicy.LinkSafetyPolicy
}

// Policies converts the config to urlpolicy value objects. It assumes
// the config has been validated; unknown modes fall back to the most
// restrictive choice.
func (c *Config) Policies() Policies {
	imageMode, err := urlpolicy.ParseImageMode(c.Images.Mode)
	if err != nil {
		imageMode = urlpolicy.ImagesDisabled
	}
	confirmation, err := urlpolicy.ParseConfirmationMode(c.LinkSafety.Confirmation)
	if err != nil {
		confirmation = urlpolicy.ConfirmAlways
	}
	return Policies{
		Links: urlpolicy.LinkPolicy{
			AllowedSchemes: c.Links.AllowedSchemes,
			AllowedHosts:   c.Links.AllowedHosts,
		},
		Images: urlpolicy.ImagePolicy{
			Mode:           imageMode,
			AllowedSchemes: c.Images.AllowedSchemes,
			AllowedHosts:   c.Images.AllowedHosts,
		},
		Safety: urlpolicy.LinkSafetyPolicy{
			Confirmation:     confirmation,
			SafeSchemes:      c.LinkSafety.SafeSchemes,
			SafeHosts:        c.LinkSafety.SafeHosts,
			SafeHostSuffixes: c.LinkSafety.SafeHostSuffixes,
		},
	}
}

// Compiler returns a styled text compiler configured from c.
func (c *Config) Compiler() styledtext.Compiler {
	policies := c.Policies()
	return styledtext.Compiler{
		Links:  policies.Links,
		Safety: policies.Safety,
		Spacing: styledtext.SpacingRules{
			Paragraph: c.Layout.ParagraphSpacing,
			Heading:   c.Layout.HeadingSpacing,
		},
	}
}

// Fetcher returns the HTTP image fetcher configured from c.
func (c *Config) Fetcher() imagefetch.HTTPFetcher {
	return imagefetch.HTTPFetcher{MaxBytes: c.Images.MaxBytes}
}
