package sparql

import (
	"encoding/json"
	"strings"
)

// Term is one bound value in a SPARQL JSON result row.
type Term struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Lang  string `json:"xml:lang,omitempty"`
}

// Binding maps variable names to their bound terms.
type Binding map[string]Term

// Response is the application/sparql-results+json document.
type Response struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []Binding `json:"bindings"`
	} `json:"results"`
}

// Bindings returns the result rows, tolerating a nil response.
func (r *Response) Bindings() []Binding {
	if r == nil {
		return nil
	}
	return r.Results.Bindings
}

// Translation is a label of a name in one language.
type Translation struct {
	Lang  string `json:"lang"`
	Label string `json:"label"`
}

// NameEnrichment is everything found for one given name. QID is empty when
// the name has no Wikidata item.
type NameEnrichment struct {
	QID          string        `json:"-"`
	Name         string        `json:"name"`
	Locale       string        `json:"locale"`
	Variants     []string      `json:"variants"`
	Translations []Translation `json:"translations"`
}

// Found reports whether a Wikidata item was found for the name.
func (n NameEnrichment) Found() bool { return n.QID != "" }

// MarshalJSON writes a missing QID as null.
func (n NameEnrichment) MarshalJSON() ([]byte, error) {
	type plain NameEnrichment
	var qid *string
	if n.QID != "" {
		qid = &n.QID
	}
	if n.Variants == nil {
		n.Variants = []string{}
	}
	if n.Translations == nil {
		n.Translations = []Translation{}
	}
	return json.Marshal(struct {
		QID *string `json:"qid"`
		plain
	}{QID: qid, plain: plain(n)})
}

func emptyEnrichment(name, locale string) NameEnrichment {
	return NameEnrichment{
		Name:         name,
		Locale:       locale,
		Variants:     []string{},
		Translations: []Translation{},
	}
}

// qidFromURI returns the last path segment of an entity URI.
func qidFromURI(uri string) string {
	uri = strings.TrimRight(uri, "/")
	if i := strings.LastIndex(uri, "/"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}
