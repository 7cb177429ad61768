// Package sparql enriches given names with data from the Wikidata SPARQL
// endpoint: it looks up the Wikidata item of a name, then fetches its
// alternate forms and its labels in every language. Outbound queries are
// spaced by a token-bucket limiter so the public endpoint's usage policy is
// respected.
package sparql
