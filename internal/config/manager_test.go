package config

import (
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap/zaptest"
)

func newTestManager(t *testing.T, args []string, env map[string]string) *Manager {
	t.Helper()
	return NewManager(
		WithArgs(args),
		WithEnv(MapEnv(env)),
		WithLogger(zaptest.NewLogger(t)),
	)
}

func TestManagerRequiresRootPathOnFirstCall(t *testing.T) {
	m := newTestManager(t, nil, nil)

	if _, err := m.Config(""); !errors.Is(err, ErrMissingRootPath) {
		t.Fatalf("expected ErrMissingRootPath, got %v", err)
	}
	if m.Resolved() != nil {
		t.Fatalf("failed call must not cache a configuration")
	}

	rc, err := m.Config(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error after providing root path: %v", err)
	}
	if rc == nil {
		t.Fatalf("expected configuration")
	}
}

func TestManagerReturnsCachedInstance(t *testing.T) {
	m := newTestManager(t, []string{"--locale", "ca-ES"}, nil)
	first, err := m.Config(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := m.Config(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	third, err := m.Config("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second || first != third {
		t.Fatalf("expected the same cached instance")
	}
	if second.RootPath() != first.RootPath() {
		t.Fatalf("later root path must be ignored")
	}
}

func TestManagerInjectsAbsoluteRootPath(t *testing.T) {
	dir := t.TempDir()
	m := newTestManager(t, []string{"--paths.out", "results"}, nil)

	rc, err := m.Config(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !filepath.IsAbs(rc.RootPath()) || rc.RootPath() != dir {
		t.Fatalf("expected root path %s, got %s", dir, rc.RootPath())
	}
	if got := rc.Map()["rootPath"]; got != dir {
		t.Fatalf("expected rootPath field, got %v", got)
	}
	if got := rc.App().Paths.Out; got != filepath.Join(dir, "results") {
		t.Fatalf("expected out path resolved against root, got %s", got)
	}
}

func TestManagerAppliesOverrideAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.json", `{"locale": "ca-ES", "sparql": {"rateLimitMs": 500}, "legacy": true}`)
	writeFile(t, dir, ".env", "HTTP_TIMEOUT_MS=2000\nLOCALE=fr-FR\n")

	m := newTestManager(t, nil, map[string]string{"LOCALE": "es-ES"})
	rc, err := m.Config(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	app := rc.App()
	if app.Locale != "es-ES" {
		t.Fatalf("expected process env to win over .env and override, got %q", app.Locale)
	}
	if app.Sparql.RateLimitMs != 500 {
		t.Fatalf("expected override rate limit, got %v", app.Sparql.RateLimitMs)
	}
	if app.HTTP.TimeoutMs != 2000 {
		t.Fatalf("expected .env timeout, got %v", app.HTTP.TimeoutMs)
	}
	if got := rc.IgnoredOverrides(); len(got) != 1 || got[0] != "legacy" {
		t.Fatalf("expected legacy to be ignored, got %v", got)
	}
	if rc.OverridePath() != filepath.Join(dir, "config.json") {
		t.Fatalf("unexpected override path %s", rc.OverridePath())
	}
}

func TestManagerMalformedOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.json", "{not json")

	m := newTestManager(t, nil, nil)
	if _, err := m.Config(dir); !errors.Is(err, ErrMalformedOverride) {
		t.Fatalf("expected ErrMalformedOverride, got %v", err)
	}
}

func TestManagerOverrideTypeMismatchNamesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{"verbose": "yes"}`)

	m := newTestManager(t, nil, nil)
	_, err := m.Config(dir)
	var fileErr *OverrideFileError
	if !errors.As(err, &fileErr) || fileErr.Path != path {
		t.Fatalf("expected OverrideFileError for %s, got %v", path, err)
	}
}

func TestManagerMissingRequiredKey(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.json", `{"paths": {"sources": "seeds/"}}`)

	m := newTestManager(t, nil, map[string]string{"PATHS_OUT": "from-env"})
	if _, err := m.Config(dir); !errors.Is(err, ErrMissingRequiredKey) {
		t.Fatalf("expected ErrMissingRequiredKey, got %v", err)
	}
}

func TestManagerResolvesOnceUnderConcurrency(t *testing.T) {
	var lookups atomic.Int32
	env := func(name string) (string, bool) {
		if name == "LOCALE" {
			lookups.Add(1)
		}
		return "", false
	}
	m := NewManager(WithArgs(nil), WithEnv(env))
	dir := t.TempDir()

	const callers = 16
	results := make([]*ResolvedConfig, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rc, err := m.Config(dir)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			results[i] = rc
		}(i)
	}
	wg.Wait()

	for i, rc := range results {
		if rc != results[0] {
			t.Fatalf("caller %d observed a different instance", i)
		}
	}
	if got := lookups.Load(); got != 1 {
		t.Fatalf("expected a single resolution, saw %d", got)
	}
}

func TestManagerIgnoresProcessArguments(t *testing.T) {
	// the test binary runs with -test.* flags; none may reach the reader
	m := NewManager(WithEnv(MapEnv(nil)), WithLogger(zaptest.NewLogger(t)))

	rc, err := m.Config(t.TempDir())
	if err != nil {
		t.Fatalf("Config returned error: %v", err)
	}
	if extra, ok := rc.UnrecognizedArgs(); ok {
		t.Fatalf("expected no unrecognized args, got %v", extra)
	}
	if !rc.Tree().Equal(Defaults()) {
		t.Fatalf("expected defaults, got %v", rc.Tree())
	}
}
