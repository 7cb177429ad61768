package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/eugenenazirov/given-names/internal/config"
	"github.com/eugenenazirov/given-names/internal/sparql"
	"github.com/eugenenazirov/given-names/internal/storage"
)

// App encapsulates the runner and its storage.
type App struct {
	cfg     config.AppConfig
	storage storage.Storage
	runner  *sparql.Runner
	logger  *zap.Logger
}

// Option configures App construction.
type Option func(*options)

type options struct {
	querier sparql.Querier
}

// WithQuerier replaces the HTTP SPARQL client (primarily for tests).
func WithQuerier(q sparql.Querier) Option {
	return func(o *options) {
		o.querier = q
	}
}

// New initializes the application from the resolved configuration.
func New(cfg config.AppConfig, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Paths.Out == "" {
		return nil, fmt.Errorf("output path is not configured")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.querier == nil {
		if cfg.Wikidata.Endpoint == "" {
			return nil, fmt.Errorf("wikidata endpoint is not configured")
		}
		o.querier = sparql.NewClient(cfg.Wikidata.Endpoint, cfg.HTTP.UserAgent, cfg.HTTP.Timeout())
	}

	runner := sparql.NewRunner(o.querier, logger,
		sparql.WithLocale(cfg.Locale),
		sparql.WithInterval(cfg.Sparql.Interval()),
	)

	return &App{
		cfg:     cfg,
		storage: storage.NewFileStorage(cfg.Paths.Out),
		runner:  runner,
		logger:  logger,
	}, nil
}

// Estimate reads the seed file and reports the cost of a run without
// sending any query.
func (a *App) Estimate(seedsPath string, queriesPerSeed int) (sparql.Estimate, error) {
	seeds, err := a.storage.ReadSeeds(a.resolveSeedsPath(seedsPath))
	if err != nil {
		return sparql.Estimate{}, err
	}
	return a.runner.Estimate(len(seeds), queriesPerSeed), nil
}

// Run resolves every seed and writes the results file, returning its path.
// Nothing is written when a seed fails.
func (a *App) Run(ctx context.Context, seedsPath string) (string, error) {
	path := a.resolveSeedsPath(seedsPath)
	seeds, err := a.storage.ReadSeeds(path)
	if err != nil {
		return "", err
	}
	a.logger.Debug("seeds loaded", zap.String("path", path), zap.Int("count", len(seeds)))

	results, err := a.runner.Run(ctx, seeds)
	if err != nil {
		return "", err
	}

	out, err := a.storage.WriteResults(storage.ResultsFile, results)
	if err != nil {
		return "", fmt.Errorf("write results: %w", err)
	}
	a.logger.Info("results saved", zap.String("path", out), zap.Int("results", len(results)))
	return out, nil
}

// Semantic runs a concept-cluster query and writes the matches file,
// returning its path and the number of matches.
func (a *App) Semantic(ctx context.Context, opts sparql.SemanticOptions) (string, int, error) {
	matches, err := a.runner.Semantic(ctx, opts)
	if err != nil {
		return "", 0, err
	}

	out, err := a.storage.WriteResults(storage.SemanticResultsFile, matches)
	if err != nil {
		return "", 0, fmt.Errorf("write semantic results: %w", err)
	}
	a.logger.Info("semantic results saved", zap.String("path", out), zap.Int("matches", len(matches)))
	return out, len(matches), nil
}

// resolveSeedsPath returns p when it exists as given, otherwise the same
// name inside the configured sources directory when that exists.
func (a *App) resolveSeedsPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	if _, err := os.Stat(p); err == nil {
		return p
	}
	if a.cfg.Paths.Sources != "" {
		candidate := filepath.Join(a.cfg.Paths.Sources, p)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return p
}
