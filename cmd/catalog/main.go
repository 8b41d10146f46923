package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aluiziolira/go-tech-catalog/api"
	"github.com/aluiziolira/go-tech-catalog/catalog"
	"github.com/aluiziolira/go-tech-catalog/config"
	"github.com/aluiziolira/go-tech-catalog/fallback"
	"github.com/aluiziolira/go-tech-catalog/scraper"
)

const service = "catalog"

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg.Verbose)
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s, err := scraper.NewScraper(cfg,
		scraper.WithMetrics(scraper.NewMetrics(reg)),
		scraper.WithLogger(log.Named("scraper")),
	)
	if err != nil {
		log.Fatal("initialising scraper", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache := catalog.NewCache(s, log)
	for _, src := range s.Sources() {
		log.Info("source configured", zap.String("source", src.Name), zap.String("url", src.URL))
	}
	log.Info("initialising product data", zap.Int("fallback_records", fallback.Len()))
	snap, result := cache.Load(ctx)
	log.Info("product data ready",
		zap.Int("products", len(snap.Products)),
		zap.String("fallback", string(result.Fallback)),
	)

	h := api.NewHandler(&api.Server{Cache: cache, Log: log}, api.HTTPDeps{
		Log:            log,
		Registry:       reg,
		MetricsEnabled: cfg.MetricsEnabled,
	})

	if err := api.Run(ctx, cfg.Addr(), h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
	log.Info("server stopped")
}

func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()

	if v, ok := config.EnvString("HOST"); ok {
		cfg.Host = v
	}
	if v, ok, err := config.EnvInt("PORT"); err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	} else if ok {
		cfg.Port = v
	}
	if v, ok, err := config.EnvBool("CATALOG_METRICS"); err != nil {
		return nil, fmt.Errorf("invalid CATALOG_METRICS: %w", err)
	} else if ok {
		cfg.MetricsEnabled = v
	}

	flag.StringVar(&cfg.Host, "host", cfg.Host, "Interface to listen on")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "Port to listen on")
	flag.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-request fetch timeout")
	flag.DurationVar(&cfg.SourceDelay, "source-delay", cfg.SourceDelay, "Pause between source fetches")
	flag.BoolVar(&cfg.RespectRobotsTxt, "respect-robots", cfg.RespectRobotsTxt, "Respect robots.txt directives")
	flag.BoolVar(&cfg.MetricsEnabled, "metrics", cfg.MetricsEnabled, "Expose Prometheus metrics on /metrics")
	flag.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Enable verbose logging")
	flag.Parse()

	return cfg, nil
}

func newLogger(verbose bool) *zap.Logger {
	var zcfg zap.Config
	if isTerminal(os.Stdout) {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.OutputPaths = []string{"stdout"}
	zcfg.InitialFields = map[string]any{"service": service}
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	l, err := zcfg.Build()
	if err != nil {
		return zap.NewExample()
	}
	return l
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
