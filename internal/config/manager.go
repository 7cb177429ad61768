package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// dotEnvFile is read from the root path and layered under the environment.
const dotEnvFile = ".env"

// Manager resolves the configuration once and hands out the cached result
// afterwards. Concurrent first calls are serialised; only the first
// successful resolution is ever stored.
type Manager struct {
	mu       sync.Mutex
	resolved atomic.Pointer[ResolvedConfig]

	args     []string
	env      EnvLookup
	schema   Value
	policies Policies
	logger   *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithArgs sets the command-line arguments to read, without the program name.
func WithArgs(args []string) Option {
	return func(m *Manager) {
		m.args = append([]string(nil), args...)
	}
}

// WithEnv replaces the process environment as the environment source.
func WithEnv(env EnvLookup) Option {
	return func(m *Manager) {
		m.env = env
	}
}

// WithSchema replaces the built-in defaults tree.
func WithSchema(schema Value) Option {
	return func(m *Manager) {
		m.schema = schema
	}
}

// WithPolicies replaces the built-in policy table.
func WithPolicies(policies Policies) Option {
	return func(m *Manager) {
		m.policies = policies
	}
}

// WithLogger sets the logger used while resolving.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager reading the process environment against the
// built-in schema unless configured otherwise. Command-line overrides are
// only read when passed with WithArgs; the program's own flags never reach
// the configuration reader.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		env:      OSEnv(),
		schema:   Defaults(),
		policies: DefaultPolicies(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	return m
}

// Config returns the resolved configuration. The first successful call
// resolves it for rootPath, which must not be empty; later calls ignore
// rootPath and return the same instance.
func (m *Manager) Config(rootPath string) (*ResolvedConfig, error) {
	if rc := m.resolved.Load(); rc != nil {
		return rc, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if rc := m.resolved.Load(); rc != nil {
		return rc, nil
	}
	if rootPath == "" {
		return nil, ErrMissingRootPath
	}

	rc, err := m.resolve(rootPath)
	if err != nil {
		return nil, err
	}
	m.resolved.Store(rc)
	return rc, nil
}

// Resolved returns the cached configuration, or nil before the first
// successful Config call.
func (m *Manager) Resolved() *ResolvedConfig {
	return m.resolved.Load()
}

func (m *Manager) resolve(rootPath string) (*ResolvedConfig, error) {
	root, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("resolve root path %q: %w", rootPath, err)
	}

	override, err := LoadOverride(root)
	if err != nil {
		return nil, err
	}
	schema, ignored, err := Overlay(m.schema, override.Tree)
	if err != nil {
		return nil, &OverrideFileError{Path: override.Path, Err: err}
	}
	if override.Path != "" {
		m.logger.Debug("applied override file", zap.String("path", override.Path))
	}

	env, err := WithDotEnv(filepath.Join(root, dotEnvFile), m.env)
	if err != nil {
		return nil, fmt.Errorf("load dotenv: %w", err)
	}

	engine := Engine{
		Schema:   schema,
		Policies: m.policies,
		Env:      env,
		Logger:   m.logger,
	}
	rc, err := engine.Merge(ParseArgs(m.args, schema))
	if err != nil {
		return nil, err
	}

	rc.rootPath = root
	rc.ignored = ignored
	rc.overridePath = override.Path

	m.logger.Debug("configuration resolved",
		zap.String("root_path", root),
		zap.Strings("ignored_overrides", ignored),
	)
	return rc, nil
}
