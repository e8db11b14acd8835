// Package config loads conversion settings from a TOML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/yuanying/paged2epub/internal/converter"
	"github.com/yuanying/paged2epub/internal/epub"
)

const envPrefix = "PAGED2EPUB_"

// PageConfig contains the fixed page size
type PageConfig struct {
	Width  string `toml:"width"`
	Height string `toml:"height"`
}

// EPUBConfig contains package settings
type EPUBConfig struct {
	Stylesheet  string `toml:"stylesheet"`
	Identifier  string `toml:"identifier"`
	Language    string `toml:"language"`
	Cover       string `toml:"cover"`
	Layout      string `toml:"layout"`
	Spread      string `toml:"spread"`
	Orientation string `toml:"orientation"`
}

// SelectorConfig describes how pages are marked in the source document
type SelectorConfig struct {
	Pages          string `toml:"pages"`
	Page           string `toml:"page"`
	PageNumberAttr string `toml:"page-number-attr"`
}

// Config is the top-level configuration
type Config struct {
	Page      PageConfig     `toml:"page"`
	EPUB      EPUBConfig     `toml:"epub"`
	Selectors SelectorConfig `toml:"selectors"`
	Strict    bool           `toml:"strict"`
}

// NewDefaultConfig returns a config matching converter.DefaultOptions
func NewDefaultConfig() *Config {
	d := converter.DefaultOptions()
	return &Config{
		Page: PageConfig{
			Width:  d.Size.Width,
			Height: d.Size.Height,
		},
		EPUB: EPUBConfig{
			Stylesheet:  d.StylesheetPath,
			Layout:      d.Rendition.Layout,
			Spread:      d.Rendition.Spread,
			Orientation: d.Rendition.Orientation,
		},
		Selectors: SelectorConfig{
			Pages:          d.PagesSelector,
			Page:           d.PageSelector,
			PageNumberAttr: d.PageNumberAttr,
		},
	}
}

// LoadFromString parses TOML on top of the defaults
func LoadFromString(content string) (*Config, error) {
	cfg := NewDefaultConfig()
	if err := toml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.UpdateFromEnv()
	return cfg, nil
}

// LoadFromFile reads and parses a TOML config file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return LoadFromString(string(data))
}

// UpdateFromEnv updates config from environment variables
// Variables starting with PAGED2EPUB_ are used
// PAGED2EPUB_FOO_BAR -> foo-bar
// PAGED2EPUB_FOO__BAR -> foo.bar
func (c *Config) UpdateFromEnv() {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}

		key, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}

		configKey := strings.ToLower(strings.TrimPrefix(key, envPrefix))
		configKey = strings.ReplaceAll(configKey, "__", ".")
		configKey = strings.ReplaceAll(configKey, "_", "-")

		c.Set(configKey, value)
	}
}

// Set sets a configuration value using dot notation (e.g. "page.width",
// "selectors.page-number-attr"). Unknown keys are ignored.
func (c *Config) Set(key, value string) {
	section, name, _ := strings.Cut(key, ".")

	switch section {
	case "page":
		switch name {
		case "width":
			c.Page.Width = value
		case "height":
			c.Page.Height = value
		}
	case "epub":
		if field := c.epubField(name); field != nil {
			*field = value
		}
	case "selectors":
		switch name {
		case "pages":
			c.Selectors.Pages = value
		case "page":
			c.Selectors.Page = value
		case "page-number-attr":
			c.Selectors.PageNumberAttr = value
		}
	case "strict":
		if b, err := strconv.ParseBool(value); err == nil {
			c.Strict = b
		}
	}
}

func (c *Config) epubField(name string) *string {
	switch name {
	case "stylesheet":
		return &c.EPUB.Stylesheet
	case "identifier":
		return &c.EPUB.Identifier
	case "language":
		return &c.EPUB.Language
	case "cover":
		return &c.EPUB.Cover
	case "layout":
		return &c.EPUB.Layout
	case "spread":
		return &c.EPUB.Spread
	case "orientation":
		return &c.EPUB.Orientation
	}
	return nil
}

// Options projects the config onto conversion options.
func (c *Config) Options() converter.ConvertOptions {
	opts := converter.DefaultOptions()
	opts.Size = converter.Size{Width: c.Page.Width, Height: c.Page.Height}
	opts.StylesheetPath = c.EPUB.Stylesheet
	opts.Identifier = c.EPUB.Identifier
	opts.Language = c.EPUB.Language
	opts.Cover = c.EPUB.Cover
	opts.Rendition = epub.Rendition{
		Layout:      c.EPUB.Layout,
		Spread:      c.EPUB.Spread,
		Orientation: c.EPUB.Orientation,
	}
	opts.PagesSelector = c.Selectors.Pages
	opts.PageSelector = c.Selectors.Page
	opts.PageNumberAttr = c.Selectors.PageNumberAttr
	opts.Strict = c.Strict
	return opts
}
