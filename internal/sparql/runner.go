package sparql

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const fallbackLanguage = "en"

// Runner resolves given names against a SPARQL endpoint, waiting on a rate
// limiter before every query.
type Runner struct {
	querier  Querier
	limiter  limiter
	logger   *zap.Logger
	locale   string
	interval time.Duration
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLocale sets the locale names are looked up in.
func WithLocale(locale string) RunnerOption {
	return func(r *Runner) {
		r.locale = locale
	}
}

// WithInterval sets the minimum delay between two queries.
func WithInterval(interval time.Duration) RunnerOption {
	return func(r *Runner) {
		r.interval = interval
	}
}

// WithLimiter overrides the query limiter (primarily for tests).
func WithLimiter(l limiter) RunnerOption {
	return func(r *Runner) {
		r.limiter = l
	}
}

// NewRunner creates a Runner sending queries through querier.
func NewRunner(querier Querier, logger *zap.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		querier: querier,
		logger:  logger,
		locale:  fallbackLanguage,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.limiter == nil {
		r.limiter = newIntervalLimiter(r.interval)
	}
	return r
}

// Estimate describes the cost of a run before any query is sent.
type Estimate struct {
	Seeds          int
	QueriesPerSeed int
	TotalQueries   int
	Interval       time.Duration
	Duration       time.Duration
}

// QueriesPerSecond is the query rate implied by the interval, or 0 when
// unlimited.
func (e Estimate) QueriesPerSecond() float64 {
	if e.Interval <= 0 {
		return 0
	}
	return float64(time.Second) / float64(e.Interval)
}

// Estimate computes how long resolving seeds would take at the runner's rate.
func (r *Runner) Estimate(seeds, queriesPerSeed int) Estimate {
	if queriesPerSeed <= 0 {
		queriesPerSeed = 1
	}
	total := seeds * queriesPerSeed
	return Estimate{
		Seeds:          seeds,
		QueriesPerSeed: queriesPerSeed,
		TotalQueries:   total,
		Interval:       r.interval,
		Duration:       totalDuration(total, r.interval),
	}
}

// totalDuration is n*interval, saturating instead of overflowing.
func totalDuration(n int, interval time.Duration) time.Duration {
	if n <= 0 || interval <= 0 {
		return 0
	}
	if interval > time.Duration(math.MaxInt64)/time.Duration(n) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(n) * interval
}

// Run resolves every seed in the runner's locale. It stops at the first
// failure and returns the results gathered so far along with the error.
func (r *Runner) Run(ctx context.Context, seeds []string) ([]NameEnrichment, error) {
	runID := uuid.NewString()
	logger := r.logger.With(zap.String("run_id", runID))
	logger.Info("starting SPARQL run",
		zap.Int("seeds", len(seeds)),
		zap.String("locale", r.locale),
		zap.Duration("interval", r.interval),
	)

	results := make([]NameEnrichment, 0, len(seeds))
	for _, seed := range seeds {
		res, err := r.ResolveName(ctx, seed, r.locale)
		if err != nil {
			logger.Error("seed failed", zap.String("seed", seed), zap.Error(err))
			return results, fmt.Errorf("resolve %q: %w", seed, err)
		}
		logger.Info("seed resolved",
			zap.String("seed", seed),
			zap.String("qid", res.QID),
			zap.Int("variants", len(res.Variants)),
			zap.Int("translations", len(res.Translations)),
		)
		results = append(results, res)
	}

	logger.Info("SPARQL run finished", zap.Int("results", len(results)))
	return results, nil
}

// ResolveName looks the name up, falling back to English when the locale's
// language finds nothing, then collects the item's variants and translations.
func (r *Runner) ResolveName(ctx context.Context, name, locale string) (NameEnrichment, error) {
	result := emptyEnrichment(name, locale)

	lookup, err := r.query(ctx, LookupQuery(name, locale))
	if err != nil {
		return result, fmt.Errorf("lookup: %w", err)
	}
	if len(lookup) == 0 && language(locale) != fallbackLanguage {
		r.logger.Debug("no match in locale, retrying in English",
			zap.String("name", name),
			zap.String("locale", locale),
		)
		lookup, err = r.query(ctx, LookupQuery(name, fallbackLanguage))
		if err != nil {
			return result, fmt.Errorf("lookup: %w", err)
		}
	}
	if len(lookup) == 0 {
		r.logger.Debug("no QID found", zap.String("name", name), zap.String("locale", locale))
		return result, nil
	}

	qid := qidFromURI(lookup[0]["item"].Value)
	if qid == "" {
		return result, nil
	}
	result.QID = qid

	variants, err := r.query(ctx, VariantsQuery(qid))
	if err != nil {
		return result, fmt.Errorf("variants of %s: %w", qid, err)
	}
	for _, row := range variants {
		if label := row["variantLabel"].Value; label != "" {
			result.Variants = append(result.Variants, label)
		}
	}

	translations, err := r.query(ctx, TranslationsQuery(qid))
	if err != nil {
		return result, fmt.Errorf("translations of %s: %w", qid, err)
	}
	for _, row := range translations {
		label := row["label"]
		lang := row["lang"].Value
		if lang == "" {
			lang = label.Lang
		}
		if lang == "" || label.Value == "" {
			continue
		}
		result.Translations = append(result.Translations, Translation{Lang: lang, Label: label.Value})
	}

	return result, nil
}

func (r *Runner) query(ctx context.Context, q string) ([]Binding, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	resp, err := r.querier.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return resp.Bindings(), nil
}
