package config

import (
	"encoding/json"
	"path/filepath"
)

// ResolvedConfig is the merged configuration. It has the shape of the schema
// plus the root path it was resolved for and any unrecognised CLI arguments.
// It is immutable.
type ResolvedConfig struct {
	tree         Value
	rootPath     string
	unrecognized Value
	ignored      []string
	overridePath string
}

// Tree returns the merged tree without the rootPath and unrecognizedArgs
// fields.
func (c *ResolvedConfig) Tree() Value { return c.tree }

// RootPath is the absolute directory the configuration was resolved for.
func (c *ResolvedConfig) RootPath() string { return c.rootPath }

// UnrecognizedArgs returns CLI arguments that matched no schema key, nested
// by their dotted path. ok is false when there were none.
func (c *ResolvedConfig) UnrecognizedArgs() (Value, bool) {
	return c.unrecognized, c.unrecognized.Len() > 0
}

// IgnoredOverrides lists override file keys unknown to the schema.
func (c *ResolvedConfig) IgnoredOverrides() []string {
	out := make([]string, len(c.ignored))
	copy(out, c.ignored)
	return out
}

// OverridePath is the override file that was applied, if any.
func (c *ResolvedConfig) OverridePath() string { return c.overridePath }

// Lookup returns the value at a dotted key.
func (c *ResolvedConfig) Lookup(key string) (Value, bool) {
	return c.tree.Lookup(key)
}

// GetString returns a string leaf, or "" when the key is absent or undefined.
func (c *ResolvedConfig) GetString(key string) string {
	v, _ := c.tree.Lookup(key)
	s, _ := v.Str()
	return s
}

// GetNumber returns a numeric leaf, or 0.
func (c *ResolvedConfig) GetNumber(key string) float64 {
	v, _ := c.tree.Lookup(key)
	n, _ := v.Number()
	return n
}

// GetBool returns a boolean leaf, or false.
func (c *ResolvedConfig) GetBool(key string) bool {
	v, _ := c.tree.Lookup(key)
	b, _ := v.Bool()
	return b
}

// ResolvePath joins a configured relative path onto the root path.
func (c *ResolvedConfig) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.rootPath, p)
}

// Map returns the full configuration as plain Go values, including the
// rootPath and, when present, unrecognizedArgs top-level fields.
func (c *ResolvedConfig) Map() map[string]any {
	out, _ := c.tree.Interface().(map[string]any)
	if out == nil {
		out = map[string]any{}
	}
	out["rootPath"] = c.rootPath
	if c.unrecognized.Len() > 0 {
		out["unrecognizedArgs"] = c.unrecognized.Interface()
	}
	return out
}

func (c *ResolvedConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Map())
}

func (c *ResolvedConfig) MarshalYAML() (any, error) {
	return c.Map(), nil
}
