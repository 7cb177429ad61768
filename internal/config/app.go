package config

import (
	"math"
	"time"
)

// AppConfig is the typed view of the built-in schema.
type AppConfig struct {
	RootPath string
	Verbose  bool
	Locale   string
	Paths    PathsConfig
	Wikidata WikidataConfig
	HTTP     HTTPConfig
	Sparql   SparqlConfig
}

// PathsConfig holds directories, relative to the root path unless absolute.
type PathsConfig struct {
	Out     string
	Sources string
	SQL     string
}

// WikidataConfig locates the SPARQL endpoint.
type WikidataConfig struct {
	Endpoint string
}

// HTTPConfig tunes outgoing requests. Retries and BackoffMs are carried
// for completeness; the client does not retry.
type HTTPConfig struct {
	TimeoutMs float64
	Retries   int
	BackoffMs float64
	UserAgent string
}

// Timeout converts TimeoutMs to a duration.
func (h HTTPConfig) Timeout() time.Duration {
	return millis(h.TimeoutMs)
}

// SparqlConfig paces the queries sent to the endpoint.
type SparqlConfig struct {
	// RateLimitMs is the minimum delay between two queries.
	RateLimitMs float64
}

// Interval converts RateLimitMs to a duration.
func (s SparqlConfig) Interval() time.Duration {
	return millis(s.RateLimitMs)
}

// App decodes the tree into an AppConfig. Undefined leaves decode to zero
// values and relative paths are resolved against the root path.
func (c *ResolvedConfig) App() AppConfig {
	return AppConfig{
		RootPath: c.rootPath,
		Verbose:  c.GetBool("verbose"),
		Locale:   c.GetString("locale"),
		Paths: PathsConfig{
			Out:     c.ResolvePath(c.GetString("paths.out")),
			Sources: c.ResolvePath(c.GetString("paths.sources")),
			SQL:     c.ResolvePath(c.GetString("paths.sql")),
		},
		Wikidata: WikidataConfig{
			Endpoint: c.GetString("wikidata.endpoint"),
		},
		HTTP: HTTPConfig{
			TimeoutMs: c.GetNumber("http.timeoutMs"),
			Retries:   int(c.GetNumber("http.retries")),
			BackoffMs: c.GetNumber("http.backoffMs"),
			UserAgent: c.GetString("http.userAgent"),
		},
		Sparql: SparqlConfig{
			RateLimitMs: c.GetNumber("sparql.rateLimitMs"),
		},
	}
}

// millis converts milliseconds to a duration, saturating at the largest
// representable duration.
func millis(ms float64) time.Duration {
	if ms <= 0 || math.IsNaN(ms) {
		return 0
	}
	ns := ms * float64(time.Millisecond)
	if ns >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}
