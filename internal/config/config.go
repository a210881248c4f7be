package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"doxydecor/decor"
)

const DefaultFile = "doxydecor.yaml"

// Config is the on-disk and environment configuration. Zero fields fall back
// to decor.DefaultOptions and the defaults set in Default.
type Config struct {
	Input   string `yaml:"input"`
	Output  string `yaml:"output"`
	Addr    string `yaml:"addr"`
	Workers int    `yaml:"workers"`

	CacheTTL      time.Duration `yaml:"cache_ttl"`
	Debounce      time.Duration `yaml:"debounce"`
	ChromeTimeout time.Duration `yaml:"chrome_timeout"`

	Decor DecorConfig `yaml:"decor"`
}

// DecorConfig mirrors decor.Options in YAML form.
type DecorConfig struct {
	MacrosTitle       string        `yaml:"macros_title"`
	MacrosNavText     string        `yaml:"macros_nav_text"`
	TypedefsTitle     string        `yaml:"typedefs_title"`
	TypeFunctionsText string        `yaml:"type_functions_text"`
	RequireTypedefs   bool          `yaml:"require_typedefs"`
	BorderRight       string        `yaml:"border_right"`
	CornerRadius      string        `yaml:"corner_radius"`
	NotePadding       string        `yaml:"note_padding"`
	ViewportOffset    string        `yaml:"viewport_offset"`
	FadeIn            time.Duration `yaml:"fade_in"`
	RelabelFrom       string        `yaml:"relabel_from"`
	RelabelTo         string        `yaml:"relabel_to"`
	Disabled          []string      `yaml:"disabled"`
}

func Default() Config {
	opts := decor.DefaultOptions()
	return Config{
		Input:         "html",
		Addr:          ":8090",
		Workers:       4,
		CacheTTL:      5 * time.Minute,
		Debounce:      300 * time.Millisecond,
		ChromeTimeout: 25 * time.Second,
		Decor: DecorConfig{
			MacrosTitle:       opts.MacrosTitle,
			MacrosNavText:     opts.MacrosNavText,
			TypedefsTitle:     opts.TypedefsTitle,
			TypeFunctionsText: opts.TypeFunctionsText,
			BorderRight:       opts.BorderRight,
			CornerRadius:      opts.CornerRadius,
			NotePadding:       opts.NotePadding,
			ViewportOffset:    opts.ViewportOffset,
			FadeIn:            opts.FadeIn,
			RelabelFrom:       opts.RelabelFrom,
			RelabelTo:         opts.RelabelTo,
		},
	}
}

// Load starts from Default, overlays the YAML file and then the environment.
// path may be empty: DOXYDECOR_CONFIG and then ./doxydecor.yaml are tried, and
// a missing implicit file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if path == "" {
		path = os.Getenv("DOXYDECOR_CONFIG")
		explicit = path != ""
	}
	if path == "" {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Input = envOr("DOXYDECOR_INPUT", c.Input)
	c.Output = envOr("DOXYDECOR_OUTPUT", c.Output)
	c.Addr = envOr("DOXYDECOR_ADDR", c.Addr)
	if port := os.Getenv("PORT"); port != "" {
		c.Addr = ":" + port
	}
	c.Workers = envInt("DOXYDECOR_WORKERS", c.Workers)
	c.CacheTTL = envDuration("DOXYDECOR_CACHE_TTL", c.CacheTTL)
	c.Debounce = envDuration("DOXYDECOR_DEBOUNCE", c.Debounce)
	c.ChromeTimeout = envDuration("DOXYDECOR_CHROME_TIMEOUT", c.ChromeTimeout)

	c.Decor.RequireTypedefs = envBool("DOXYDECOR_REQUIRE_TYPEDEFS", c.Decor.RequireTypedefs)
	c.Decor.ViewportOffset = envOr("DOXYDECOR_VIEWPORT_OFFSET", c.Decor.ViewportOffset)
	c.Decor.NotePadding = envOr("DOXYDECOR_NOTE_PADDING", c.Decor.NotePadding)
	c.Decor.FadeIn = envDuration("DOXYDECOR_FADE_IN", c.Decor.FadeIn)
	if raw := strings.TrimSpace(os.Getenv("DOXYDECOR_DISABLE")); raw != "" {
		c.Decor.Disabled = splitList(raw)
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Input) == "" {
		return fmt.Errorf("input directory is required")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must not be negative")
	}
	known := map[string]bool{}
	for _, name := range decor.StepNames() {
		known[name] = true
	}
	for _, name := range c.Decor.Disabled {
		if !known[name] {
			return fmt.Errorf("unknown step %q in disabled list (known: %s)", name, strings.Join(decor.StepNames(), ", "))
		}
	}
	return nil
}

func (c Config) DecorOptions() decor.Options {
	d := c.Decor
	return decor.Options{
		MacrosTitle:       d.MacrosTitle,
		MacrosNavText:     d.MacrosNavText,
		TypedefsTitle:     d.TypedefsTitle,
		TypeFunctionsText: d.TypeFunctionsText,
		RequireTypedefs:   d.RequireTypedefs,
		BorderRight:       d.BorderRight,
		CornerRadius:      d.CornerRadius,
		NotePadding:       d.NotePadding,
		ViewportOffset:    d.ViewportOffset,
		FadeIn:            d.FadeIn,
		RelabelFrom:       d.RelabelFrom,
		RelabelTo:         d.RelabelTo,
		Disabled:          append([]string(nil), d.Disabled...),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
