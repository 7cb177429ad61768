package config

import "strings"

// Source is a set of configuration sources.
type Source uint8

const (
	// SourceConfig covers built-in defaults and the override file.
	SourceConfig Source = 1 << iota
	SourceEnv
	SourceCLI

	AllSources = SourceConfig | SourceEnv | SourceCLI
)

// Has reports whether every source in other is part of s.
func (s Source) Has(other Source) bool { return s&other == other }

func (s Source) String() string {
	names := make([]string, 0, 3)
	if s.Has(SourceConfig) {
		names = append(names, "config")
	}
	if s.Has(SourceEnv) {
		names = append(names, "env")
	}
	if s.Has(SourceCLI) {
		names = append(names, "cli")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

// Policy restricts which sources may set a key and whether it must end up
// with a value.
type Policy struct {
	Allowed  Source
	Required bool
}

// Policies maps fully-qualified dotted keys to their Policy.
type Policies map[string]Policy

// DefaultPolicies returns the policy table for the built-in schema.
func DefaultPolicies() Policies {
	return Policies{
		// verbosity is a per-invocation choice, never inherited from the shell
		"verbose":            {Allowed: SourceConfig | SourceCLI},
		"locale":             {Allowed: AllSources},
		"paths.out":          {Allowed: SourceConfig | SourceCLI, Required: true},
		"paths.sources":      {Allowed: SourceConfig},
		"sparql.rateLimitMs": {Allowed: AllSources},
		"wikidata.endpoint":  {Allowed: SourceConfig | SourceEnv},
		"http.userAgent":     {Allowed: SourceConfig | SourceEnv},
	}
}

// For returns the explicit policy of key, or the implicit policy allowing
// every source without requiring a value.
func (p Policies) For(key string) Policy {
	if pol, ok := p[key]; ok {
		return pol
	}
	return Policy{Allowed: AllSources}
}

// PolicyFor looks key up in the built-in policy table.
func PolicyFor(key string) Policy {
	return DefaultPolicies().For(key)
}
