package sparql

import (
	"fmt"
	"strings"
)

// givenNameClass is the Wikidata class "given name".
const givenNameClass = "Q202444"

var defaultLabelLanguages = []string{"en", "es", "ca", "fr", "de"}

const defaultSemanticLimit = 200

// EscapeQuotes escapes backslashes and double quotes for use inside a
// SPARQL string literal.
func EscapeQuotes(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// language returns the language part of a locale: "en" for "en_GB" or "en-US".
func language(locale string) string {
	lang, _, _ := strings.Cut(strings.ReplaceAll(locale, "_", "-"), "-")
	return strings.ToLower(lang)
}

// LookupQuery finds given-name items whose label, in the locale's language
// or a fallback, matches name case-insensitively.
func LookupQuery(name, locale string) string {
	return fmt.Sprintf(`
    SELECT ?item ?itemLabel WHERE {
      ?item wdt:P31 wd:%s.   # given name
      SERVICE wikibase:label { bd:serviceParam wikibase:language "%s,en,es,fr,ca". }
      FILTER(LCASE(?itemLabel) = "%s")
    }
    LIMIT 20
  `, givenNameClass, language(locale), strings.ToLower(EscapeQuotes(name)))
}

// VariantsQuery lists the alternate forms (P4970) of a given-name item.
func VariantsQuery(qid string) string {
	return fmt.Sprintf(`
    SELECT ?variant ?variantLabel WHERE {
      wd:%s wdt:P4970 ?variant.  # alternate form
      SERVICE wikibase:label { bd:serviceParam wikibase:language "en,es,ca,fr,de". }
    }
  `, qid)
}

// TranslationsQuery lists every label of an item with its language.
func TranslationsQuery(qid string) string {
	return fmt.Sprintf(`
    SELECT ?lang ?label WHERE {
      wd:%s rdfs:label ?label.
      BIND(LANG(?label) AS ?lang)
    }
  `, qid)
}

// SemanticOptions selects a cluster of given names by what they are named
// after.
type SemanticOptions struct {
	// ConceptQIDs are root concepts without the "wd:" prefix, e.g. Q729
	// (animal) or Q506 (flower).
	ConceptQIDs []string
	// Languages orders the label languages; defaults to en, es, ca, fr, de.
	Languages []string
	// Limit caps the number of rows; defaults to 200.
	Limit int
}

// SemanticQuery returns given names named after (P138) something that is a
// subclass of, or an instance of a subclass of, any of the concepts.
func SemanticQuery(opts SemanticOptions) (string, error) {
	if len(opts.ConceptQIDs) == 0 {
		return "", ErrEmptyConcepts
	}
	languages := opts.Languages
	if len(languages) == 0 {
		languages = defaultLabelLanguages
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSemanticLimit
	}

	values := make([]string, len(opts.ConceptQIDs))
	for i, qid := range opts.ConceptQIDs {
		values[i] = "wd:" + qid
	}

	return strings.TrimSpace(fmt.Sprintf(`
SELECT DISTINCT
  ?item ?itemLabel
  ?origin ?originLabel
  ?concept ?conceptLabel
WHERE {
  ?item wdt:P31 wd:%s .
  ?item wdt:P138 ?origin .

  VALUES ?concept { %s }

  {
    ?origin wdt:P279* ?concept .
  } UNION {
    ?origin wdt:P31 / wdt:P279* ?concept .
  }

  SERVICE wikibase:label { bd:serviceParam wikibase:language "%s". }
}
ORDER BY LCASE(STR(?itemLabel))
LIMIT %d
`, givenNameClass, strings.Join(values, " "), strings.Join(languages, ","), limit)), nil
}
