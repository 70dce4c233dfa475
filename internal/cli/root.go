package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rohmanhakim/legaldata/internal/config"
	"github.com/rohmanhakim/legaldata/internal/metadata"
	"github.com/rohmanhakim/legaldata/internal/site"
	"github.com/rohmanhakim/legaldata/pkg/hashutil"
	"github.com/spf13/cobra"
)

var (
	cfgFile          string
	siteName         string
	indexURLs        []string
	perDocumentLimit int
	cacheDir         string
	noCache          bool
	outputDir        string
	namePrefix       string
	delay            time.Duration
	delaySet         bool
	respectRobots    bool
	maxAttempts      int
	retryBaseDelay   time.Duration
	timeout          time.Duration
	userAgent        string
	maxResourceSize  int64
	hashAlgo         string
	catalogDir       string
	logLevel         string
	logDir           string
)

// adapterFactory resolves the site adapter; tests swap it to point at a local server.
var adapterFactory = site.ForName

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "legaldata",
	Short: "Fetch and cache Australian legislation documents.",
	Long: `legaldata crawls the index pages of legislation.gov.au or AustLII,
downloads every document file they link to and writes a JSON sidecar
describing each document next to the files.

Pages and files are cached on disk, so reruns are cheap and only go back to
the network for what is missing. Without a subcommand, legaldata crawls.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if f := cmd.Flags().Lookup("delay"); f != nil && f.Changed {
			delaySet = true
		}
	},
	RunE: runCrawl,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// RootCommand exposes the command tree, mainly for tests.
func RootCommand() *cobra.Command {
	return rootCmd
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config-file", "", "config file path (json, yaml or toml); wins over flags")
	flags.StringVar(&siteName, "site", config.DefaultSite, "site to crawl: legislation or austlii")
	flags.StringArrayVar(&indexURLs, "index-url", []string{}, "index page to crawl (can be repeated; default: every index of the site)")
	flags.IntVar(&perDocumentLimit, "limit", 0, "maximum documents per index page (0 for unlimited)")
	flags.StringVar(&cacheDir, "cache-dir", "", "cache directory (default $XDG_CACHE_HOME/legaldata)")
	flags.BoolVar(&noCache, "no-cache", false, "refetch everything instead of reusing the cache")
	flags.StringVar(&outputDir, "output-dir", "output", "directory receiving documents and sidecars")
	flags.StringVar(&namePrefix, "name-prefix", "", "prefix for every output file name")
	flags.DurationVar(&delay, "delay", 5*time.Second, "courtesy delay after every network fetch")
	flags.BoolVar(&respectRobots, "respect-robots", false, "skip URLs disallowed by robots.txt")
	flags.IntVar(&maxAttempts, "max-attempts", 0, "attempts per file download (default 5)")
	flags.DurationVar(&retryBaseDelay, "retry-base-delay", 0, "linear backoff unit between attempts (default 10s)")
	flags.DurationVar(&timeout, "timeout", 0, "timeout for HTTP requests (default 60s)")
	flags.StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	flags.Int64Var(&maxResourceSize, "max-resource-size", 0, "largest accepted response body in bytes (default 512MiB)")
	flags.StringVar(&hashAlgo, "hash", "", "content hash of saved files: blake3 or sha256")
	flags.StringVar(&catalogDir, "catalog-dir", "", "keep a SQLite catalog of records in this directory")
	flags.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	flags.StringVar(&logDir, "log-dir", "", "also write a rotating log file to this directory")

	rootCmd.AddCommand(crawlCmd, indexesCmd, catalogCmd, versionCmd)
}

// InitConfig reads in config file or flags.
func InitConfig() config.Config {
	cfg, err := InitConfigWithError()
	if err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}
	return cfg
}

// InitConfigWithError builds the config from the config file when one is
// given, otherwise from flags over the defaults. This makes it easier to
// test error cases.
func InitConfigWithError() (config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	configBuilder := config.WithDefault(siteName)

	if len(indexURLs) > 0 {
		configBuilder = configBuilder.WithIndexURLs(indexURLs)
	}
	if perDocumentLimit != 0 {
		configBuilder = configBuilder.WithPerDocumentLimit(perDocumentLimit)
	}
	if cacheDir != "" {
		configBuilder = configBuilder.WithCacheDir(cacheDir)
	}
	if noCache {
		configBuilder = configBuilder.WithUseCache(false)
	}
	if outputDir != "" {
		configBuilder = configBuilder.WithOutputDir(outputDir)
	}
	if namePrefix != "" {
		configBuilder = configBuilder.WithNamePrefix(namePrefix)
	}
	if delaySet {
		configBuilder = configBuilder.WithDelay(delay)
	}
	if respectRobots {
		configBuilder = configBuilder.WithRespectRobots(true)
	}
	if maxAttempts != 0 {
		configBuilder = configBuilder.WithMaxAttempts(maxAttempts)
	}
	if retryBaseDelay != 0 {
		configBuilder = configBuilder.WithRetryBaseDelay(retryBaseDelay)
	}
	if timeout != 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}
	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}
	if maxResourceSize != 0 {
		configBuilder = configBuilder.WithMaxResourceSize(maxResourceSize)
	}
	if hashAlgo != "" {
		configBuilder = configBuilder.WithHashAlgo(hashutil.HashAlgo(strings.ToLower(strings.TrimSpace(hashAlgo))))
	}
	if catalogDir != "" {
		configBuilder = configBuilder.WithCatalogDir(catalogDir)
	}
	if logLevel != "" {
		configBuilder = configBuilder.WithLogLevel(logLevel)
	}
	if logDir != "" {
		configBuilder = configBuilder.WithLogDir(logDir)
	}

	return configBuilder.Build()
}

func ResetFlags() {
	cfgFile = ""
	siteName = config.DefaultSite
	indexURLs = []string{}
	perDocumentLimit = 0
	cacheDir = ""
	noCache = false
	outputDir = ""
	namePrefix = ""
	delay = 0
	delaySet = false
	respectRobots = false
	maxAttempts = 0
	retryBaseDelay = 0
	timeout = 0
	userAgent = ""
	maxResourceSize = 0
	hashAlgo = ""
	catalogDir = ""
	logLevel = ""
	logDir = ""
	adapterFactory = site.ForName
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetSiteForTest(name string) {
	siteName = name
}

func SetIndexURLsForTest(urls []string) {
	indexURLs = urls
}

func SetLimitForTest(limit int) {
	perDocumentLimit = limit
}

func SetCacheDirForTest(dir string) {
	cacheDir = dir
}

func SetNoCacheForTest(disable bool) {
	noCache = disable
}

func SetOutputDirForTest(dir string) {
	outputDir = dir
}

func SetNamePrefixForTest(prefix string) {
	namePrefix = prefix
}

func SetDelayForTest(d time.Duration) {
	delay = d
	delaySet = true
}

func SetRespectRobotsForTest(respect bool) {
	respectRobots = respect
}

func SetMaxAttemptsForTest(attempts int) {
	maxAttempts = attempts
}

func SetRetryBaseDelayForTest(d time.Duration) {
	retryBaseDelay = d
}

func SetTimeoutForTest(t time.Duration) {
	timeout = t
}

func SetUserAgentForTest(agent string) {
	userAgent = agent
}

func SetHashForTest(algo string) {
	hashAlgo = algo
}

func SetCatalogDirForTest(dir string) {
	catalogDir = dir
}

func SetLogLevelForTest(level string) {
	logLevel = level
}

func SetAdapterFactoryForTest(fn func(name string, metadataSink metadata.MetadataSink) (site.Adapter, error)) {
	adapterFactory = fn
}
