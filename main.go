package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"go.uber.org/zap"

	"finsheet/internal/browser"
	"finsheet/internal/export"
	"finsheet/internal/merge"
	"finsheet/internal/scrape"
	"finsheet/internal/sites"
	_ "finsheet/internal/sites/eastmoney"
	"finsheet/internal/web"
)

var version = "dev"

var (
	ticker       string
	tickers      []string
	pageURL      string
	pageURLs     []string
	outputDir    string
	outputFile   string
	auditDir     string
	timeout      time.Duration
	pollInterval time.Duration
	maxSessions  int
	showUI       bool
	proxyURL     string
	onDuplicate  string
	partialDates string
	logLevel     string
	siteName     string

	serveAddr string
	redisAddr string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "finsheet",
		Short:   "Scrape financial-indicator tables into one workbook",
		Version: version,
		Long: `finsheet drives a headless browser through a stock's financial pages,
extracts each statement's table and merges tables from every requested
source into one workbook, aligned on the report date.`,
		Example: `  # One stock by ticker, default output build/zyzb_table.xlsx
  finsheet --ticker SH605136

  # Several stocks merged side by side, CSV output
  finsheet --tickers SH605136,SZ000729 --output-file merged.csv

  # A direct page URL, visible browser, custom timeout
  finsheet --url "https://emweb.securities.eastmoney.com/pc_hsf10/pages/index.html?type=web&code=SH605136&color=b#/cwfx" --showui -t 20s`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogger(logLevel)
		},
		RunE:         runScrape,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.DurationVarP(&timeout, "timeout", "t", 10*time.Second, "Per-panel load timeout")
	pf.DurationVar(&pollInterval, "poll-interval", 300*time.Millisecond, "Readiness poll interval")
	pf.IntVar(&maxSessions, "max-sessions", 3, "Maximum concurrent browser sessions")
	pf.BoolVar(&showUI, "showui", false, "Show browser UI (disable headless mode)")
	pf.StringVarP(&proxyURL, "proxy", "p", os.Getenv("FINSHEET_PROXY"), "Proxy URL, defaults to FINSHEET_PROXY env var")
	pf.StringVar(&onDuplicate, "on-duplicate-date", "keep-last", "Duplicate date policy within one source: keep-last or reject")
	pf.StringVar(&partialDates, "partial-dates", "keep", "Dates missing from some sources: keep (with markers) or drop")
	pf.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&siteName, "site", "eastmoney", "Site profile used for ticker resolution")

	rootCmd.Flags().StringVar(&ticker, "ticker", "", "Stock code to scrape, e.g. SH605136")
	rootCmd.Flags().StringSliceVar(&tickers, "tickers", nil, "Multiple stock codes to scrape")
	rootCmd.Flags().StringVar(&pageURL, "url", "", "Page URL to scrape")
	rootCmd.Flags().StringSliceVar(&pageURLs, "urls", nil, "Multiple page URLs to scrape")
	rootCmd.Flags().StringVar(&outputDir, "output-dir", "build", "Output directory")
	rootCmd.Flags().StringVarP(&outputFile, "output-file", "o", "zyzb_table.xlsx", "Output filename (.xlsx or .csv)")
	rootCmd.Flags().StringVar(&auditDir, "audit-dir", "", "Dump captured panel HTML as markdown into this directory")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scrape task HTTP API",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&redisAddr, "redis", os.Getenv("FINSHEET_REDIS"), "Redis address for workbook memoization (empty disables)")
	serveCmd.Flags().StringVar(&outputDir, "output-dir", "downloads", "Directory for generated workbooks")
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initLogger(level string) {
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.Encoding = "console"
	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	zap.ReplaceGlobals(logger)
}

func runScrape(cmd *cobra.Command, args []string) error {
	urls, codes := gatherSources()
	if len(urls)+len(codes) == 0 {
		return fmt.Errorf("no sources: provide --ticker, --tickers, --url or --urls")
	}
	if err := validatePolicies(); err != nil {
		return err
	}

	outPath := filepath.Join(outputDir, outputFile)
	if err := runPipeline(cmd.Context(), urls, codes, outPath); err != nil {
		zap.L().Error("run failed", zap.Error(err))
		return err
	}
	fmt.Fprintf(os.Stderr, "Output written to: %s\n", outPath)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	// Deployment config comes from .env in serve mode; a missing file
	// is fine.
	_ = godotenv.Load()
	if err := validatePolicies(); err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	var cache *web.Cache
	if redisAddr != "" {
		var err error
		cache, err = web.NewCache(redisAddr, time.Hour)
		if err != nil {
			return fmt.Errorf("connect redis %s: %w", redisAddr, err)
		}
	}

	srv := web.NewServer(runPipeline, outputDir, cache)
	zap.L().Info("serving", zap.String("addr", serveAddr))
	return http.ListenAndServe(serveAddr, srv.Handler())
}

func gatherSources() (urls, codes []string) {
	urls = append(urls, pageURLs...)
	if pageURL != "" {
		urls = append(urls, pageURL)
	}
	codes = append(codes, tickers...)
	if ticker != "" {
		codes = append(codes, ticker)
	}
	return urls, codes
}

func validatePolicies() error {
	switch onDuplicate {
	case "keep-last", "reject":
	default:
		return fmt.Errorf("invalid --on-duplicate-date: %s", onDuplicate)
	}
	switch partialDates {
	case "keep", "drop":
	default:
		return fmt.Errorf("invalid --partial-dates: %s", partialDates)
	}
	return nil
}

func mergePolicy() merge.Policy {
	p := merge.Policy{}
	if onDuplicate == "reject" {
		p.OnDuplicate = merge.DuplicateReject
	}
	if partialDates == "drop" {
		p.PartialDates = merge.PartialDrop
	}
	return p
}

// runPipeline is the whole run: resolve sources, scrape each on its
// own session, merge, export. Shared by the CLI and the web API.
func runPipeline(ctx context.Context, urls, codes []string, outPath string) error {
	jobs, err := sites.BuildJobs(urls, codes, siteName)
	if err != nil {
		return err
	}

	b, err := browser.New(browser.Config{ProxyURL: proxyURL, Headless: !showUI})
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	defer b.Close()

	agg := &scrape.Aggregator{
		Opener: b,
		Navigator: &scrape.Navigator{
			Poller:     scrape.Poller{Interval: pollInterval, Timeout: timeout},
			KeepMarkup: auditDir != "",
		},
		MaxSessions: maxSessions,
	}
	collections, err := agg.Run(ctx, jobs)
	if err != nil {
		return err
	}

	if auditDir != "" {
		if err := export.DumpAudit(collections, auditDir); err != nil {
			return err
		}
	}

	ds, err := merge.Merge(collections, mergePolicy())
	if err != nil {
		return err
	}
	return export.Write(ds, outPath)
}
