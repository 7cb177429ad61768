package sparql

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyConcepts is returned when a semantic query has no root concepts.
	ErrEmptyConcepts = errors.New("semantic query needs at least one concept QID (e.g. Q506)")
	// ErrUnexpectedStatus is matched by every *StatusError.
	ErrUnexpectedStatus = errors.New("unexpected SPARQL response status")
)

// StatusError reports a non-2xx response from the endpoint.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("SPARQL error %d: %s", e.Code, e.Status)
}

func (e *StatusError) Is(target error) bool { return target == ErrUnexpectedStatus }
