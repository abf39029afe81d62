package tiktok

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config is built once at process start and handed to every component.
type Config struct {
	// Account is the profile handle to sample a video from. Ignored when
	// VideoURL is set.
	Account  string `yaml:"account"`
	VideoURL string `yaml:"video_url"`
	Headless bool   `yaml:"headless"`
	Proxy    string `yaml:"proxy"`
	Debug    bool   `yaml:"debug"`

	LogFile     string `yaml:"log_file"`
	CSVReport   string `yaml:"csv_report"`
	SnapshotDir string `yaml:"snapshot_dir"`

	BlockResources bool          `yaml:"block_resources"`
	NavTimeout     time.Duration `yaml:"nav_timeout"`
	StatePolicy    StatePolicy   `yaml:"state_policy"`

	Discovery DiscoveryConfig `yaml:"discovery"`
	Selectors Selectors       `yaml:"selectors"`
	Comments  CommentConfig   `yaml:"comments"`
	Delays    Delays          `yaml:"delays"`
}

func DefaultConfig() *Config {
	return &Config{
		Headless:       true,
		LogFile:        "tiktok_scraper_log.txt",
		CSVReport:      "tiktok_scraper_report.csv",
		BlockResources: true,
		NavTimeout:     40 * time.Second,
		StatePolicy:    StateWhenNoComments,
		Discovery:      DefaultDiscoveryConfig(),
		Selectors:      DefaultSelectors(),
		Comments:       DefaultCommentConfig(),
		Delays:         DefaultDelays(),
	}
}

// Load builds a Config from defaults, an optional YAML file, an optional
// .env file and the process environment, in that order of precedence.
func Load(configFile, envFile string) (*Config, error) {
	cfg := DefaultConfig()

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFile loads envFile, or ./.env when envFile is empty. A missing
// default .env is not an error.
func loadEnvFile(envFile string) error {
	if envFile == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("load env file %s: %w", envFile, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	setString("TIKTOK_ACCOUNT", &c.Account)
	setString("VIDEO_URL", &c.VideoURL)
	setString("PROXY", &c.Proxy)
	setString("LOG_FILE", &c.LogFile)
	setString("CSV_REPORT", &c.CSVReport)
	setString("SNAPSHOT_DIR", &c.SnapshotDir)

	if v := getenv("HEADLESS"); v != "" {
		c.Headless = ParseBool(v)
	}
	if v := getenv("DEBUG"); v != "" {
		c.Debug = ParseBool(v)
	}
	if v := getenv("STATE_POLICY"); v != "" {
		c.StatePolicy = StatePolicy(strings.ToLower(strings.TrimSpace(v)))
	}

	var errs []error
	if v := getenv("SCROLL_ITERATIONS"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("SCROLL_ITERATIONS: %w", err))
		}
		c.Discovery.ScrollIterations = n
	}
	if v := getenv("MAX_LINKS"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("MAX_LINKS: %w", err))
		}
		c.Discovery.MaxLinks = n
	}
	if v := getenv("NAV_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("NAV_TIMEOUT: %w", err))
		}
		c.NavTimeout = d
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ParseBool reports whether v is "true", ignoring case and surrounding space.
func ParseBool(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "true")
}

// Validate checks the settings a run depends on.
func (c *Config) Validate() error {
	var errs []error
	if c.VideoURL == "" && c.Account == "" {
		errs = append(errs, errors.New("one of TIKTOK_ACCOUNT or VIDEO_URL is required"))
	}
	if c.NavTimeout <= 0 {
		errs = append(errs, errors.New("nav timeout must be positive"))
	}
	if c.Discovery.MaxLinks <= 0 {
		errs = append(errs, errors.New("max links must be positive"))
	}
	if c.Discovery.ScrollIterations < 0 {
		errs = append(errs, errors.New("scroll iterations must not be negative"))
	}
	if c.Discovery.ScrollFraction <= 0 {
		errs = append(errs, errors.New("scroll fraction must be positive"))
	}
	switch c.StatePolicy {
	case StateWhenNoComments, StateWhenMissing:
	default:
		errs = append(errs, fmt.Errorf("unknown state policy %q", c.StatePolicy))
	}
	for name, p := range map[string]DelayPolicy{"render": c.Delays.Render, "scroll": c.Delays.Scroll} {
		if p.Min < 0 || p.Max < p.Min {
			errs = append(errs, fmt.Errorf("%s delay: invalid bounds [%v, %v]", name, p.Min, p.Max))
		}
	}
	if c.Comments.MinTags < 0 || c.Comments.MaxTags < c.Comments.MinTags {
		errs = append(errs, fmt.Errorf("hashtag count: invalid bounds [%d, %d]", c.Comments.MinTags, c.Comments.MaxTags))
	}
	if len(c.Comments.Phrases) == 0 {
		errs = append(errs, errors.New("comment phrase pool is empty"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Target returns the URL the run starts from and whether it is a profile.
func (c *Config) Target() (string, bool) {
	if c.VideoURL != "" {
		return c.VideoURL, false
	}
	return ProfileURL(c.Account), true
}

// DiscoveryConfig returns the discovery settings with the run-wide
// timeout and pacing applied.
func (c *Config) DiscoveryConfig() DiscoveryConfig {
	d := c.Discovery
	d.NavTimeout = c.NavTimeout
	d.Delays = c.Delays
	return d
}

func (c *Config) ExtractConfig() ExtractConfig {
	return ExtractConfig{
		NavTimeout:  c.NavTimeout,
		Selectors:   c.Selectors,
		StatePolicy: c.StatePolicy,
		Delays:      c.Delays,
	}
}

func (c *Config) SessionConfig(id SessionIdentity) SessionConfig {
	return SessionConfig{
		Headless:       c.Headless,
		Proxy:          c.Proxy,
		Identity:       id,
		BlockResources: c.BlockResources,
	}
}
