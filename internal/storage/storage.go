package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ResultsFile is the file name the enrichment results are written to.
	ResultsFile = "sparql_results.json"
	// SemanticResultsFile receives concept-cluster matches.
	SemanticResultsFile = "semantic_results.json"
)

var (
	// ErrSeedsNotFound indicates the seed file does not exist.
	ErrSeedsNotFound = errors.New("seed file not found")
	// ErrInvalidSeeds indicates the seed file is not a {"seeds": [...]} document.
	ErrInvalidSeeds = errors.New("seed file must be a JSON object with a seeds array of strings")
)

// Storage reads seed names and persists enrichment results.
type Storage interface {
	ReadSeeds(path string) ([]string, error)
	WriteResults(name string, payload any) (string, error)
}

// FileStorage keeps results as JSON files inside a single output directory.
type FileStorage struct {
	outDir string
}

// NewFileStorage creates storage writing into outDir.
func NewFileStorage(outDir string) *FileStorage {
	return &FileStorage{outDir: outDir}
}

// OutDir returns the directory results are written to.
func (s *FileStorage) OutDir() string {
	return s.outDir
}

type seedsFile struct {
	Seeds []string `json:"seeds"`
}

// ReadSeeds loads a seed file and returns its names trimmed, without blanks
// or duplicates, in file order.
func (s *FileStorage) ReadSeeds(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSeedsNotFound, path)
		}
		return nil, fmt.Errorf("read seeds: %w", err)
	}

	var doc seedsFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSeeds, path, err)
	}
	return normalizeSeeds(doc.Seeds), nil
}

// WriteResults writes payload as indented JSON to name inside the output
// directory, creating the directory when needed. The file is replaced
// atomically and its path is returned.
func (s *FileStorage) WriteResults(name string, payload any) (string, error) {
	if err := os.MkdirAll(s.outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode results: %w", err)
	}

	target := filepath.Join(s.outDir, name)
	tmp, err := os.CreateTemp(s.outDir, name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write results: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close results: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("move results into place: %w", err)
	}
	return target, nil
}

func normalizeSeeds(seeds []string) []string {
	out := make([]string, 0, len(seeds))
	seen := make(map[string]struct{}, len(seeds))
	for _, seed := range seeds {
		seed = strings.TrimSpace(seed)
		if seed == "" {
			continue
		}
		if _, dup := seen[seed]; dup {
			continue
		}
		seen[seed] = struct{}{}
		out = append(out, seed)
	}
	return out
}
