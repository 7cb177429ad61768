package sparql

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// SemanticMatch is one given name found through a concept cluster.
type SemanticMatch struct {
	QID         string `json:"qid"`
	Name        string `json:"name"`
	OriginQID   string `json:"originQid"`
	Origin      string `json:"origin"`
	ConceptQID  string `json:"conceptQid"`
	ConceptName string `json:"concept"`
}

// SemanticMatches converts rows of a SemanticQuery result. Rows without an
// item are skipped.
func SemanticMatches(bindings []Binding) []SemanticMatch {
	out := make([]SemanticMatch, 0, len(bindings))
	for _, row := range bindings {
		qid := qidFromURI(row["item"].Value)
		if qid == "" {
			continue
		}
		out = append(out, SemanticMatch{
			QID:         qid,
			Name:        row["itemLabel"].Value,
			OriginQID:   qidFromURI(row["origin"].Value),
			Origin:      row["originLabel"].Value,
			ConceptQID:  qidFromURI(row["concept"].Value),
			ConceptName: row["conceptLabel"].Value,
		})
	}
	return out
}

// Semantic runs a concept-cluster query through the limiter.
func (r *Runner) Semantic(ctx context.Context, opts SemanticOptions) ([]SemanticMatch, error) {
	q, err := SemanticQuery(opts)
	if err != nil {
		return nil, err
	}

	bindings, err := r.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("semantic query: %w", err)
	}

	matches := SemanticMatches(bindings)
	r.logger.Info("semantic query finished",
		zap.Strings("concepts", opts.ConceptQIDs),
		zap.Int("matches", len(matches)),
	)
	return matches, nil
}
