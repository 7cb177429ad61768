package sparql

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeQuerier struct {
	mu      sync.Mutex
	queries []string
	respond func(q string) (*Response, error)
}

func (f *fakeQuerier) Query(_ context.Context, q string) (*Response, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	return f.respond(q)
}

type countingLimiter struct {
	calls int
	err   error
}

func (c *countingLimiter) Wait(context.Context) error {
	c.calls++
	return c.err
}

func rows(bindings ...Binding) *Response {
	resp := &Response{}
	resp.Results.Bindings = bindings
	return resp
}

func uri(v string) Term     { return Term{Type: "uri", Value: v} }
func literal(v string) Term { return Term{Type: "literal", Value: v} }

func isLookup(q string) bool   { return strings.Contains(q, "wdt:P31") }
func isVariants(q string) bool { return strings.Contains(q, "variantLabel") }
func lookupLang(q string) string {
	_, rest, _ := strings.Cut(q, `wikibase:language "`)
	lang, _, _ := strings.Cut(rest, ",")
	return lang
}

func newTestRunner(t *testing.T, q Querier, opts ...RunnerOption) *Runner {
	t.Helper()
	opts = append([]RunnerOption{WithLimiter(&countingLimiter{})}, opts...)
	return NewRunner(q, zaptest.NewLogger(t), opts...)
}

func TestResolveNameWithoutItem(t *testing.T) {
	q := &fakeQuerier{respond: func(string) (*Response, error) {
		return rows(Binding{"somethingElse": literal("junk")}), nil
	}}

	res, err := newTestRunner(t, q).ResolveName(context.Background(), "Foo", "en")
	require.NoError(t, err)
	assert.False(t, res.Found())
	assert.Empty(t, res.Variants)
	assert.Empty(t, res.Translations)
	assert.Len(t, q.queries, 1)
}

func TestResolveNameNoVariants(t *testing.T) {
	q := &fakeQuerier{respond: func(query string) (*Response, error) {
		if isLookup(query) {
			return rows(Binding{"item": uri("http://www.wikidata.org/entity/Q999")}), nil
		}
		return rows(), nil
	}}

	res, err := newTestRunner(t, q).ResolveName(context.Background(), "Foo", "en")
	require.NoError(t, err)
	assert.Equal(t, "Q999", res.QID)
	assert.Empty(t, res.Variants)
	assert.Empty(t, res.Translations)
}

func TestResolveNameCollectsVariantsAndTranslations(t *testing.T) {
	q := &fakeQuerier{respond: func(query string) (*Response, error) {
		switch {
		case isLookup(query):
			return rows(Binding{"item": uri("http://www.wikidata.org/entity/Q777")}), nil
		case isVariants(query):
			return rows(
				Binding{"variantLabel": literal("Rose")},
				Binding{"variant": uri("http://www.wikidata.org/entity/Q1")},
			), nil
		default:
			return rows(
				Binding{"lang": literal("fr"), "label": literal("Nom")},
				Binding{"label": Term{Type: "literal", Value: "Nombre", Lang: "es"}},
				Binding{"lang": literal("de")},
			), nil
		}
	}}

	res, err := newTestRunner(t, q).ResolveName(context.Background(), "Foo", "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"Rose"}, res.Variants)
	assert.Equal(t, []Translation{{Lang: "fr", Label: "Nom"}, {Lang: "es", Label: "Nombre"}}, res.Translations)
}

func TestResolveNameFallsBackToEnglish(t *testing.T) {
	q := &fakeQuerier{respond: func(query string) (*Response, error) {
		if isLookup(query) && lookupLang(query) == "en" {
			return rows(Binding{"item": uri("http://www.wikidata.org/entity/Q5")}), nil
		}
		return rows(), nil
	}}

	res, err := newTestRunner(t, q).ResolveName(context.Background(), "Josep", "ca-ES")
	require.NoError(t, err)
	assert.Equal(t, "Q5", res.QID)
	assert.Equal(t, "ca-ES", res.Locale)
	require.GreaterOrEqual(t, len(q.queries), 2)
	assert.Equal(t, "ca", lookupLang(q.queries[0]))
	assert.Equal(t, "en", lookupLang(q.queries[1]))
}

func TestResolveNameNoFallbackForEnglishLocale(t *testing.T) {
	q := &fakeQuerier{respond: func(string) (*Response, error) { return rows(), nil }}

	res, err := newTestRunner(t, q).ResolveName(context.Background(), "Zzz", "en-US")
	require.NoError(t, err)
	assert.False(t, res.Found())
	assert.Len(t, q.queries, 1)
}

func TestResolveNamePropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	q := &fakeQuerier{respond: func(string) (*Response, error) { return nil, boom }}

	_, err := newTestRunner(t, q).ResolveName(context.Background(), "Foo", "en")
	assert.ErrorIs(t, err, boom)
}

func TestRunWaitsOnLimiterForEveryQuery(t *testing.T) {
	lim := &countingLimiter{}
	q := &fakeQuerier{respond: func(query string) (*Response, error) {
		if isLookup(query) {
			return rows(Binding{"item": uri("http://www.wikidata.org/entity/Q1")}), nil
		}
		return rows(), nil
	}}

	r := NewRunner(q, zaptest.NewLogger(t), WithLimiter(lim), WithLocale("en"))
	results, err := r.Run(context.Background(), []string{"Rosa", "Maria"})
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, 6, lim.calls)
	assert.Equal(t, len(q.queries), lim.calls)
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	q := &fakeQuerier{respond: func(query string) (*Response, error) {
		if strings.Contains(query, `"maria"`) {
			return nil, &StatusError{Code: 500, Status: "Internal Server Error"}
		}
		return rows(), nil
	}}

	results, err := newTestRunner(t, q, WithLocale("en")).Run(context.Background(), []string{"Rosa", "Maria", "Josep"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), `"Maria"`)
	assert.Len(t, results, 1)
}

func TestRunLimiterErrorAborts(t *testing.T) {
	q := &fakeQuerier{respond: func(string) (*Response, error) { return rows(), nil }}
	lim := &countingLimiter{err: context.Canceled}

	_, err := NewRunner(q, zaptest.NewLogger(t), WithLimiter(lim)).Run(context.Background(), []string{"Rosa"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, q.queries)
}

func TestIntervalLimiterSpacesQueries(t *testing.T) {
	lim := newIntervalLimiter(30 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, lim.Wait(ctx))
	}
	assert.GreaterOrEqual(t, time.Since(start), 55*time.Millisecond)
}

func TestIntervalLimiterDisabled(t *testing.T) {
	lim := newIntervalLimiter(0)
	for i := 0; i < 100; i++ {
		require.NoError(t, lim.Wait(context.Background()))
	}
}

func TestEstimate(t *testing.T) {
	r := NewRunner(&fakeQuerier{}, nil, WithInterval(500*time.Millisecond))

	est := r.Estimate(10, 3)
	assert.Equal(t, 30, est.TotalQueries)
	assert.Equal(t, 15*time.Second, est.Duration)
	assert.InDelta(t, 2.0, est.QueriesPerSecond(), 1e-9)

	assert.Equal(t, 1, r.Estimate(4, 0).QueriesPerSeed)
}

func TestEstimateSaturatesHugeInterval(t *testing.T) {
	r := NewRunner(&fakeQuerier{}, nil, WithInterval(time.Duration(math.MaxInt64)))

	est := r.Estimate(10, 3)
	assert.Equal(t, time.Duration(math.MaxInt64), est.Duration)
	assert.Positive(t, est.QueriesPerSecond())
}

func TestIntervalLimiterThrottlesHugeInterval(t *testing.T) {
	lim := newIntervalLimiter(time.Duration(math.MaxInt64))

	require.NoError(t, lim.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, lim.Wait(ctx), "second query must wait for the interval")
}

func TestNameEnrichmentJSON(t *testing.T) {
	data, err := json.Marshal(emptyEnrichment("Foo", "en"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"qid": null, "name": "Foo", "locale": "en", "variants": [], "translations": []}`, string(data))

	data, err = json.Marshal(NameEnrichment{QID: "Q1", Name: "Rosa", Locale: "en"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"qid": "Q1", "name": "Rosa", "locale": "en", "variants": [], "translations": []}`, string(data))
}
