package config

const (
	defaultLocale      = "en-US"
	defaultOutPath     = "./"
	defaultSourcesPath = "data/sources/"
	defaultSQLPath     = "data/sql/"
	defaultEndpoint    = "https://query.wikidata.org/sparql"
	defaultTimeoutMs   = 15000
	defaultRetries     = 2
	defaultBackoffMs   = 500
	defaultUserAgent   = "GivenNamesBot/1.0 (...)"
	defaultRateLimitMs = 1000
)

// Defaults returns the built-in configuration tree. Every recognised key
// appears here, and the type of each default is the type its overrides are
// coerced to.
func Defaults() Value {
	return NodeValue(map[string]Value{
		"verbose": BoolValue(false),
		"locale":  StringValue(defaultLocale),
		"paths": NodeValue(map[string]Value{
			"out":     StringValue(defaultOutPath),
			"sources": StringValue(defaultSourcesPath),
			"sql":     StringValue(defaultSQLPath),
		}),
		"wikidata": NodeValue(map[string]Value{
			"endpoint": StringValue(defaultEndpoint),
		}),
		"http": NodeValue(map[string]Value{
			"timeoutMs": NumberValue(defaultTimeoutMs),
			"retries":   NumberValue(defaultRetries),
			"backoffMs": NumberValue(defaultBackoffMs),
			"userAgent": StringValue(defaultUserAgent),
		}),
		"sparql": NodeValue(map[string]Value{
			"rateLimitMs": NumberValue(defaultRateLimitMs),
		}),
	})
}
