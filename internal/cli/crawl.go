package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rohmanhakim/legaldata/internal/catalog"
	"github.com/rohmanhakim/legaldata/internal/config"
	"github.com/rohmanhakim/legaldata/internal/crawler"
	"github.com/rohmanhakim/legaldata/internal/fetcher"
	"github.com/rohmanhakim/legaldata/internal/metadata"
	"github.com/rohmanhakim/legaldata/internal/robots"
	"github.com/rohmanhakim/legaldata/internal/robots/cache"
	"github.com/rohmanhakim/legaldata/internal/storage"
	"github.com/rohmanhakim/legaldata/internal/store"
	"github.com/rohmanhakim/legaldata/pkg/limiter"
	"github.com/rohmanhakim/legaldata/pkg/retry"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl the configured site (the default command)",
	RunE:  runCrawl,
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := InitConfigWithError()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return Crawl(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// Crawl wires one crawl from cfg and runs it. Logs and the progress bar go
// to errOut, the final summary to out.
func Crawl(ctx context.Context, cfg config.Config, out io.Writer, errOut io.Writer) error {
	logConfig := metadata.DefaultLogConfig()
	logConfig.Level = cfg.LogLevel()
	logConfig.LogDir = cfg.LogDir()
	logConfig.Console = errOut
	logger, closer, err := metadata.NewLogger(logConfig)
	if err != nil {
		return fmt.Errorf("error initializing logger: %w", err)
	}
	defer closer.Close()

	recorder := metadata.NewRecorder(logger)

	adapter, err := adapterFactory(cfg.Site(), &recorder)
	if err != nil {
		return err
	}
	targets := cfg.IndexURLs()
	if len(targets) == 0 {
		targets = adapter.IndexURLs()
	}

	httpClient := &http.Client{Timeout: cfg.Timeout()}
	client := fetcher.NewClientWithHTTPClient(httpClient, cfg.UserAgent()).
		WithMaxBodySize(cfg.MaxResourceSize())
	localSink := storage.NewLocalSink(&recorder, cfg.HashAlgo())

	pages := store.NewPageStore(client, &recorder, cfg.CacheDir(), adapter.CachePrefix())
	resources := store.NewResourceStore(
		client,
		localSink,
		&recorder,
		cfg.CacheDir(),
		adapter.CachePrefix(),
		retry.NewRetryParam(cfg.RetryBaseDelay(), cfg.MaxAttempts()),
	)

	c := crawler.NewCrawler(
		&recorder,
		&recorder,
		adapter,
		pages,
		resources,
		localSink,
		limiter.NewIntervalThrottle(cfg.Delay()),
		crawler.Options{
			OutputDir:        cfg.OutputDir(),
			UseCache:         cfg.UseCache(),
			PerDocumentLimit: cfg.PerDocumentLimit(),
			NamePrefix:       cfg.NamePrefix(),
		},
	)

	if cfg.RespectRobots() {
		c.WithRobots(robots.NewRobot(&recorder, httpClient, cfg.UserAgent(), cache.NewMemoryCache(0)))
	}

	if cfg.CatalogDir() != "" {
		cat, catErr := catalog.Open(cfg.CatalogDir())
		if catErr != nil {
			return catErr
		}
		defer cat.Close()
		c.WithCatalog(cat)
	}

	bar := newProgressBar(len(targets), "indexes", errOut)
	c.WithProgress(func(p crawler.IndexProgress) {
		_ = bar.Add(1)
	})

	records, runErr := c.Run(ctx, targets)
	_ = bar.Finish()

	stats := c.Stats()
	fmt.Fprintf(out, "Run %s: %d documents, %d files saved, %d failed, %d skipped, %d errors across %d indexes\n",
		recorder.RunID(), len(records), stats.Resources, stats.Failed, stats.Skipped, stats.Errors, stats.Indexes)
	if stats.Collisions > 0 {
		fmt.Fprintf(out, "Warning: %d saved files overwrote a file of another link\n", stats.Collisions)
	}
	fmt.Fprintf(out, "Output: %s\n", cfg.OutputDir())

	if runErr != nil {
		return runErr
	}
	return nil
}

func newProgressBar(max int, description string, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
