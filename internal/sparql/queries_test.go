package sparql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeQuotes(t *testing.T) {
	assert.Equal(t, `He said \"hello\"`, EscapeQuotes(`He said "hello"`))
	assert.Equal(t, `back\\slash`, EscapeQuotes(`back\slash`))
}

func TestLanguage(t *testing.T) {
	assert.Equal(t, "en", language("en_GB"))
	assert.Equal(t, "ca", language("ca-ES"))
	assert.Equal(t, "fr", language("FR"))
}

func TestLookupQuery(t *testing.T) {
	q := LookupQuery(`Ro"sa`, "ca-ES")

	assert.Contains(t, q, "wdt:P31 wd:Q202444")
	assert.Contains(t, q, `wikibase:language "ca,en,es,fr,ca"`)
	assert.Contains(t, q, `FILTER(LCASE(?itemLabel) = "ro\"sa")`)
	assert.Contains(t, q, "LIMIT 20")
}

func TestVariantsAndTranslationsQueries(t *testing.T) {
	assert.Contains(t, VariantsQuery("Q42"), "wd:Q42 wdt:P4970 ?variant")
	assert.Contains(t, VariantsQuery("Q42"), "?variantLabel")

	tq := TranslationsQuery("Q42")
	assert.Contains(t, tq, "wd:Q42 rdfs:label ?label")
	assert.Contains(t, tq, "BIND(LANG(?label) AS ?lang)")
}

func TestSemanticQuery(t *testing.T) {
	q, err := SemanticQuery(SemanticOptions{ConceptQIDs: []string{"Q506", "Q756"}})
	require.NoError(t, err)

	assert.Contains(t, q, "VALUES ?concept { wd:Q506 wd:Q756 }")
	assert.Contains(t, q, `wikibase:language "en,es,ca,fr,de"`)
	assert.Contains(t, q, "LIMIT 200")
	assert.Contains(t, q, "?origin wdt:P31 / wdt:P279* ?concept")

	q, err = SemanticQuery(SemanticOptions{ConceptQIDs: []string{"Q729"}, Languages: []string{"ca"}, Limit: 5})
	require.NoError(t, err)
	assert.Contains(t, q, `wikibase:language "ca"`)
	assert.Contains(t, q, "LIMIT 5")
}

func TestSemanticQueryRequiresConcepts(t *testing.T) {
	_, err := SemanticQuery(SemanticOptions{})
	assert.ErrorIs(t, err, ErrEmptyConcepts)
}
