package scraper

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/aluiziolira/go-tech-catalog/config"
	"github.com/aluiziolira/go-tech-catalog/fallback"
	"github.com/aluiziolira/go-tech-catalog/models"
	"github.com/aluiziolira/go-tech-catalog/pipeline"
	"github.com/gocolly/colly/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const runKey = "run"

// Sleeper pauses between sources. It returns early with ctx.Err() on cancellation.
type Sleeper func(ctx context.Context, d time.Duration) error

// Option customises a Scraper.
type Option func(*Scraper)

// WithSources replaces the default search pages.
func WithSources(sources ...Source) Option {
	return func(s *Scraper) {
		s.sources = sources
	}
}

// WithSleeper replaces the inter-source sleep, e.g. with a no-op in tests.
func WithSleeper(sleep Sleeper) Option {
	return func(s *Scraper) {
		s.sleep = sleep
	}
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(s *Scraper) {
		s.Metrics = m
	}
}

// WithLogger sets the logger used for scrape diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(s *Scraper) {
		s.log = log
	}
}

// Scraper wraps the colly collector and turns the configured search pages into
// a catalog snapshot, falling back to static data when needed.
type Scraper struct {
	cfg       *config.Config
	collector *colly.Collector
	sources   []Source
	sleep     Sleeper
	log       *zap.Logger
	Metrics   *Metrics

	handlersOnce sync.Once
}

// sourceRun carries per-request state through colly callbacks.
type sourceRun struct {
	source    Source
	fetchedAt time.Time
	outcomes  []models.ItemOutcome
	err       *FetchError
}

// NewScraper builds a scraper instance configured from cfg.
func NewScraper(cfg *config.Config, opts ...Option) (*Scraper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)

	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = !cfg.RespectRobotsTxt
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	s := &Scraper{
		cfg:       cfg,
		collector: collector,
		sources:   DefaultSources(),
		sleep:     sleepContext,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Metrics == nil {
		s.Metrics = NewMetrics(prometheus.NewRegistry())
	}
	if s.sleep == nil {
		s.sleep = func(context.Context, time.Duration) error { return nil }
	}
	return s, nil
}

// Sources returns the configured search pages.
func (s *Scraper) Sources() []Source {
	out := make([]Source, len(s.sources))
	copy(out, s.sources)
	return out
}

// Run scrapes every source and assembles the catalog. It never fails: transport
// errors and thin results are padded with fallback data, and an aborted run is
// replaced by the whole fallback dataset.
func (s *Scraper) Run(ctx context.Context) (result *models.ScrapeResult) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.configureHandlers()

	result = &models.ScrapeResult{
		StartTime:     time.Now(),
		SkippedByType: make(map[models.SkipReason]int),
		ErrorsByType:  make(map[string]int),
		Fallback:      models.FallbackNone,
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("scrape aborted, using fallback dataset", zap.Any("panic", r))
			s.substitute(result)
		}
		result.EndTime = time.Now()
		s.Metrics.IncRefresh(string(result.Fallback))
		s.log.Info("scrape finished",
			zap.Int("products", len(result.Products)),
			zap.Int("scraped", result.ScrapedCount),
			zap.String("fallback", string(result.Fallback)),
			zap.Strings("failed_sources", result.FailedSources),
			zap.Duration("duration", result.EndTime.Sub(result.StartTime)),
		)
	}()

	p, err := pipeline.NewPipeline(s.cfg)
	if err != nil {
		s.log.Error("scrape aborted, using fallback dataset", zap.Error(err))
		s.substitute(result)
		return result
	}

	if err := s.scrapeSources(ctx, p, result); err != nil {
		s.log.Error("scrape aborted, using fallback dataset", zap.Error(err))
		s.substitute(result)
		return result
	}

	accepted := p.Accepted()
	assembly := p.Finalize(fallback.Products())
	if assembly.Fallback == models.FallbackPadded {
		s.log.Warn("insufficient scraped data, using fallback data",
			zap.Int("scraped", accepted),
			zap.Int("min_scraped", s.cfg.MinScraped),
		)
	}
	s.log.Debug("pipeline metrics", zap.Any("metrics", p.GetMetrics()))
	result.Products = assembly.Products
	result.Fallback = assembly.Fallback
	return result
}

func (s *Scraper) scrapeSources(ctx context.Context, p *pipeline.Pipeline, result *models.ScrapeResult) error {
	for i, src := range s.sources {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("scrape cancelled: %w", err)
		}
		if i > 0 {
			if err := s.sleep(ctx, s.cfg.SourceDelay); err != nil {
				return fmt.Errorf("delay before %s: %w", src.Name, err)
			}
		}

		run := s.fetch(src)
		result.RequestCount++
		if run.err != nil {
			label := errorTypeLabel(run.err)
			result.ErrorsByType[label]++
			result.FailedSources = append(result.FailedSources, src.Name)
			s.Metrics.IncError(label)
			s.log.Warn("source failed, continuing",
				zap.String("source", src.Name),
				zap.String("url", src.URL),
				zap.String("category", label),
				zap.Error(run.err),
			)
			continue
		}

		outcomes, err := p.Process(run.outcomes...)
		if err != nil {
			return fmt.Errorf("process %s items: %w", src.Name, err)
		}
		for _, outcome := range outcomes {
			if outcome.Accepted() {
				result.ScrapedCount++
				s.Metrics.IncItems()
				continue
			}
			result.SkippedByType[outcome.Skip]++
			s.Metrics.IncSkipped(string(outcome.Skip))
			s.log.Debug("item skipped",
				zap.String("source", outcome.Source),
				zap.Int("index", outcome.Index),
				zap.String("reason", string(outcome.Skip)),
			)
		}
	}
	return nil
}

func (s *Scraper) fetch(src Source) *sourceRun {
	run := &sourceRun{source: src}

	reqCtx := colly.NewContext()
	reqCtx.Put(runKey, run)
	hdr := http.Header{}
	hdr.Set("User-Agent", s.cfg.UserAgent)
	hdr.Set("Accept-Language", "en-US,en;q=0.9")

	err := s.collector.Request(http.MethodGet, src.URL, nil, reqCtx, hdr)
	if err != nil && run.err == nil {
		run.err = classifyError(err, 0)
	}
	if run.err != nil {
		run.err.Source = src.Name
	}
	return run
}

func (s *Scraper) configureHandlers() {
	s.handlersOnce.Do(func() {
		s.collector.OnRequest(func(r *colly.Request) {
			r.Ctx.Put("start", time.Now())
			s.Metrics.IncRequest("started")
			s.log.Debug("scraper request", zap.String("url", r.URL.String()))
		})

		s.collector.OnResponse(func(r *colly.Response) {
			if run, ok := r.Request.Ctx.GetAny(runKey).(*sourceRun); ok {
				run.fetchedAt = time.Now()
			}
			if start, ok := r.Request.Ctx.GetAny("start").(time.Time); ok {
				s.Metrics.ObserveDuration(time.Since(start))
			}
			s.Metrics.IncRequest("completed")
		})

		s.collector.OnError(func(r *colly.Response, err error) {
			statusCode := 0
			if r != nil {
				statusCode = r.StatusCode
			}
			if r == nil || r.Request == nil {
				return
			}
			if run, ok := r.Request.Ctx.GetAny(runKey).(*sourceRun); ok {
				run.err = classifyError(err, statusCode)
			}
		})

		s.collector.OnHTML("body", func(e *colly.HTMLElement) {
			run, ok := e.Request.Ctx.GetAny(runKey).(*sourceRun)
			if !ok {
				return
			}
			fetchedAt := run.fetchedAt
			if fetchedAt.IsZero() {
				fetchedAt = time.Now()
			}
			outcomes, err := extractItems(e.DOM, run.source, s.cfg.MaxItemsPerSource, fetchedAt)
			if err != nil {
				run.err = &FetchError{Kind: KindOther, Err: err}
				return
			}
			run.outcomes = append(run.outcomes, outcomes...)
		})
	})
}

func (s *Scraper) substitute(result *models.ScrapeResult) {
	assembly := pipeline.Substitute(fallback.Products(), s.cfg.MaxProducts)
	result.Products = assembly.Products
	result.Fallback = assembly.Fallback
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
