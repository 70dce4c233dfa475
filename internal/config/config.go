package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/rohmanhakim/legaldata/internal/site"
	"github.com/rohmanhakim/legaldata/pkg/hashutil"
	"github.com/spf13/viper"
)

const (
	AppName          = "legaldata"
	DefaultUserAgent = "Mozilla/5.0 pypi.org/project/legaldata/"
	DefaultSite      = "legislation"
)

type Config struct {
	//===============
	// Crawl scope
	//===============
	// Site adapter name: legislation or austlii
	site string
	// Index pages to crawl. Empty means every index of the site.
	indexURLs []string
	// Maximum number of documents taken from one index page; 0 is unlimited
	perDocumentLimit int

	//===============
	// Cache
	//===============
	// Directory holding the raw page and resource cache
	cacheDir string
	// Whether cached pages and resources are reused
	useCache bool

	//===============
	// Politeness
	//===============
	// Courtesy delay after every network fetch
	delay time.Duration
	// Whether robots.txt is consulted before every fetch
	respectRobots bool
	// Maximum attempts for one resource transfer
	maxAttempts int
	// Linear backoff unit: attempt n waits n*retryBaseDelay
	retryBaseDelay time.Duration

	//===============
	// Fetch
	//===============
	// Maximum time of a single HTTP request
	timeout time.Duration
	userAgent string
	// Largest accepted response body in bytes
	maxResourceSize int64

	//===============
	// Output
	//===============
	// Directory receiving the named files and their sidecars
	outputDir string
	// Prepended to every output file name
	namePrefix string
	// Content hash recorded per saved file
	hashAlgo hashutil.HashAlgo
	// Directory of the SQLite catalog; empty disables it
	catalogDir string

	//===============
	// Logging
	//===============
	logLevel string
	// Directory of the rotating log file; empty logs to the console only
	logDir string
}

// configDTO mirrors Config for viper. Pointer fields distinguish "absent"
// from a zero value.
type configDTO struct {
	Site             string        `mapstructure:"site"`
	IndexURLs        []string      `mapstructure:"indexUrls"`
	PerDocumentLimit *int          `mapstructure:"perDocumentLimit"`
	CacheDir         string        `mapstructure:"cacheDir"`
	UseCache         *bool         `mapstructure:"useCache"`
	Delay            time.Duration `mapstructure:"delay"`
	RespectRobots    *bool         `mapstructure:"respectRobots"`
	MaxAttempts      int           `mapstructure:"maxAttempts"`
	RetryBaseDelay   time.Duration `mapstructure:"retryBaseDelay"`
	Timeout          time.Duration `mapstructure:"timeout"`
	UserAgent        string        `mapstructure:"userAgent"`
	MaxResourceSize  int64         `mapstructure:"maxResourceSize"`
	OutputDir        string        `mapstructure:"outputDir"`
	NamePrefix       *string       `mapstructure:"namePrefix"`
	HashAlgo         string        `mapstructure:"hashAlgo"`
	CatalogDir       string        `mapstructure:"catalogDir"`
	LogLevel         string        `mapstructure:"logLevel"`
	LogDir           string        `mapstructure:"logDir"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	siteName := dto.Site
	if siteName == "" {
		siteName = DefaultSite
	}
	builder := WithDefault(siteName)

	if len(dto.IndexURLs) > 0 {
		builder.WithIndexURLs(dto.IndexURLs)
	}
	if dto.PerDocumentLimit != nil {
		builder.WithPerDocumentLimit(*dto.PerDocumentLimit)
	}
	if dto.CacheDir != "" {
		builder.WithCacheDir(dto.CacheDir)
	}
	if dto.UseCache != nil {
		builder.WithUseCache(*dto.UseCache)
	}
	if dto.Delay != 0 {
		builder.WithDelay(dto.Delay)
	}
	if dto.RespectRobots != nil {
		builder.WithRespectRobots(*dto.RespectRobots)
	}
	if dto.MaxAttempts != 0 {
		builder.WithMaxAttempts(dto.MaxAttempts)
	}
	if dto.RetryBaseDelay != 0 {
		builder.WithRetryBaseDelay(dto.RetryBaseDelay)
	}
	if dto.Timeout != 0 {
		builder.WithTimeout(dto.Timeout)
	}
	if dto.UserAgent != "" {
		builder.WithUserAgent(dto.UserAgent)
	}
	if dto.MaxResourceSize != 0 {
		builder.WithMaxResourceSize(dto.MaxResourceSize)
	}
	if dto.OutputDir != "" {
		builder.WithOutputDir(dto.OutputDir)
	}
	if dto.NamePrefix != nil {
		builder.WithNamePrefix(*dto.NamePrefix)
	}
	if dto.HashAlgo != "" {
		algo, err := hashutil.ParseHashAlgo(dto.HashAlgo)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
		}
		builder.WithHashAlgo(algo)
	}
	if dto.CatalogDir != "" {
		builder.WithCatalogDir(dto.CatalogDir)
	}
	if dto.LogLevel != "" {
		builder.WithLogLevel(dto.LogLevel)
	}
	if dto.LogDir != "" {
		builder.WithLogDir(dto.LogDir)
	}

	return builder.Build()
}

// WithConfigFile loads a JSON, YAML or TOML file (by extension) and overlays
// it on the defaults.
func WithConfigFile(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var parseErr viper.ConfigParseError
		if errors.As(err, &parseErr) {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
		}
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}

	dto := configDTO{}
	if err := v.Unmarshal(&dto); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	return newConfigFromDTO(dto)
}

// DefaultCacheDir is $XDG_CACHE_HOME/legaldata.
func DefaultCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// WithDefault creates a new Config for site with default values for all other fields.
func WithDefault(siteName string) *Config {
	defaultConfig := Config{
		site:             strings.ToLower(strings.TrimSpace(siteName)),
		indexURLs:        nil,
		perDocumentLimit: 0,
		cacheDir:         DefaultCacheDir(),
		useCache:         true,
		delay:            5 * time.Second,
		respectRobots:    false,
		maxAttempts:      5,
		retryBaseDelay:   10 * time.Second,
		timeout:          60 * time.Second,
		userAgent:        DefaultUserAgent,
		maxResourceSize:  512 << 20,
		outputDir:        "output",
		namePrefix:       "",
		hashAlgo:         hashutil.HashAlgoBLAKE3,
		catalogDir:       "",
		logLevel:         "info",
		logDir:           "",
	}
	return &defaultConfig
}

func (c *Config) WithSite(siteName string) *Config {
	c.site = strings.ToLower(strings.TrimSpace(siteName))
	return c
}

func (c *Config) WithIndexURLs(urls []string) *Config {
	c.indexURLs = append([]string(nil), urls...)
	return c
}

func (c *Config) WithPerDocumentLimit(limit int) *Config {
	c.perDocumentLimit = limit
	return c
}

func (c *Config) WithCacheDir(dir string) *Config {
	c.cacheDir = dir
	return c
}

func (c *Config) WithUseCache(useCache bool) *Config {
	c.useCache = useCache
	return c
}

func (c *Config) WithDelay(delay time.Duration) *Config {
	c.delay = delay
	return c
}

func (c *Config) WithRespectRobots(respect bool) *Config {
	c.respectRobots = respect
	return c
}

func (c *Config) WithMaxAttempts(attempts int) *Config {
	c.maxAttempts = attempts
	return c
}

func (c *Config) WithRetryBaseDelay(delay time.Duration) *Config {
	c.retryBaseDelay = delay
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithMaxResourceSize(size int64) *Config {
	c.maxResourceSize = size
	return c
}

func (c *Config) WithOutputDir(outputDir string) *Config {
	c.outputDir = outputDir
	return c
}

func (c *Config) WithNamePrefix(prefix string) *Config {
	c.namePrefix = prefix
	return c
}

func (c *Config) WithHashAlgo(algo hashutil.HashAlgo) *Config {
	c.hashAlgo = algo
	return c
}

func (c *Config) WithCatalogDir(dir string) *Config {
	c.catalogDir = dir
	return c
}

func (c *Config) WithLogLevel(level string) *Config {
	c.logLevel = strings.ToLower(strings.TrimSpace(level))
	return c
}

func (c *Config) WithLogDir(dir string) *Config {
	c.logDir = dir
	return c
}

func (c *Config) Build() (Config, error) {
	if !slices.Contains(site.Names(), c.site) {
		return Config{}, fmt.Errorf("%w: unknown site %q (supported: %s)",
			ErrInvalidConfig, c.site, strings.Join(site.Names(), ", "))
	}
	if c.perDocumentLimit < 0 {
		return Config{}, fmt.Errorf("%w: perDocumentLimit must not be negative", ErrInvalidConfig)
	}
	if c.maxAttempts < 1 {
		return Config{}, fmt.Errorf("%w: maxAttempts must be at least 1", ErrInvalidConfig)
	}
	if c.delay < 0 || c.retryBaseDelay < 0 {
		return Config{}, fmt.Errorf("%w: delays must not be negative", ErrInvalidConfig)
	}
	if c.timeout <= 0 {
		return Config{}, fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	if c.maxResourceSize <= 0 {
		return Config{}, fmt.Errorf("%w: maxResourceSize must be positive", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.cacheDir) == "" || strings.TrimSpace(c.outputDir) == "" {
		return Config{}, fmt.Errorf("%w: cacheDir and outputDir cannot be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.userAgent) == "" {
		return Config{}, fmt.Errorf("%w: userAgent cannot be empty", ErrInvalidConfig)
	}
	if _, err := hashutil.ParseHashAlgo(string(c.hashAlgo)); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
	}
	switch c.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.logLevel)
	}
	return *c, nil
}

func (c Config) Site() string {
	return c.site
}

func (c Config) IndexURLs() []string {
	urls := make([]string, len(c.indexURLs))
	copy(urls, c.indexURLs)
	return urls
}

func (c Config) PerDocumentLimit() int {
	return c.perDocumentLimit
}

func (c Config) CacheDir() string {
	return c.cacheDir
}

func (c Config) UseCache() bool {
	return c.useCache
}

func (c Config) Delay() time.Duration {
	return c.delay
}

func (c Config) RespectRobots() bool {
	return c.respectRobots
}

func (c Config) MaxAttempts() int {
	return c.maxAttempts
}

func (c Config) RetryBaseDelay() time.Duration {
	return c.retryBaseDelay
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) MaxResourceSize() int64 {
	return c.maxResourceSize
}

func (c Config) OutputDir() string {
	return c.outputDir
}

func (c Config) NamePrefix() string {
	return c.namePrefix
}

func (c Config) HashAlgo() hashutil.HashAlgo {
	return c.hashAlgo
}

func (c Config) CatalogDir() string {
	return c.catalogDir
}

func (c Config) LogLevel() string {
	return c.logLevel
}

func (c Config) LogDir() string {
	return c.logDir
}
