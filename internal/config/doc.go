// Package config resolves the runtime configuration from three layered
// sources with precedence: CLI flags > Environment variables > Config
// (built-in defaults overlaid with an optional config.json/yaml/toml file
// under the root path).
//
// A per-key policy table restricts which sources may set a key and marks
// keys that must end up with a value. Environment variable names derive from
// the dotted key (sparql.rateLimitMs -> SPARQL_RATE_LIMIT_MS); a .env file
// under the root path is consulted after the real environment. CLI keys use
// dot notation only, and anything not in the schema is kept aside as
// unrecognized arguments instead of failing.
//
// The merged tree is computed once per Manager and is immutable.
package config
