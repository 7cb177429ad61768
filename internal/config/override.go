package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// overrideFiles are looked up under the root path in order; the first one
// present is used.
var overrideFiles = []string{"config.json", "config.yaml", "config.yml", "config.toml"}

// Override is the user-supplied partial tree read from the root path.
type Override struct {
	// Path is empty when no override file exists.
	Path string
	Tree Value
}

// LoadOverride reads the first override file found under rootPath. A missing
// file yields an empty override; an unreadable or malformed one is an
// *OverrideFileError.
func LoadOverride(rootPath string) (Override, error) {
	for _, name := range overrideFiles {
		path := filepath.Join(rootPath, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Override{}, &OverrideFileError{Path: path, Err: err}
		}

		raw, err := decodeOverride(path, data)
		if err != nil {
			return Override{}, &OverrideFileError{Path: path, Err: err}
		}
		tree, err := FromAny(raw)
		if err != nil {
			return Override{}, &OverrideFileError{Path: path, Err: err}
		}
		return Override{Path: path, Tree: tree}, nil
	}
	return Override{Tree: NodeValue(nil)}, nil
}

func decodeOverride(path string, data []byte) (map[string]any, error) {
	raw := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse TOML: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
		if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
			return nil, errors.New("parse JSON: unexpected data after the top-level object")
		}
	}
	return raw, nil
}

// Overlay shallow-merges override over defaults: each top-level key of the
// override replaces the whole default entry. Leaves missing from a replaced
// subtree become undefined so the result keeps the shape of defaults. Keys
// the schema does not know are dropped and returned as dotted paths.
func Overlay(defaults, override Value) (Value, []string, error) {
	if !override.IsNode() || override.Len() == 0 {
		return defaults, nil, nil
	}

	out := make(map[string]Value, defaults.Len())
	for _, key := range defaults.Keys() {
		def, _ := defaults.Get(key)
		out[key] = def
	}

	var ignored []string
	for _, key := range override.Keys() {
		def, ok := defaults.Get(key)
		if !ok {
			ignored = append(ignored, key)
			continue
		}
		ov, _ := override.Get(key)
		replaced, dropped, err := conform(key, def, ov)
		if err != nil {
			return Value{}, nil, err
		}
		out[key] = replaced
		ignored = append(ignored, dropped...)
	}
	sort.Strings(ignored)
	return ownedNode(out), ignored, nil
}

// conform shapes ov like def, checking leaf types along the way.
func conform(path string, def, ov Value) (Value, []string, error) {
	if !def.IsNode() {
		switch {
		case ov.IsUndefined():
			return undefinedOf(def.leafKind()), nil, nil
		case ov.Kind() != def.leafKind():
			return Value{}, nil, fmt.Errorf("key %q: expected %s, got %s", path, def.leafKind(), ov.Kind())
		default:
			return ov, nil, nil
		}
	}

	if !ov.IsNode() && !ov.IsUndefined() {
		return Value{}, nil, fmt.Errorf("key %q: expected object, got %s", path, ov.Kind())
	}

	out := make(map[string]Value, def.Len())
	var ignored []string
	for _, key := range def.Keys() {
		child, _ := def.Get(key)
		sub, _ := ov.Get(key)
		v, dropped, err := conform(path+"."+key, child, sub)
		if err != nil {
			return Value{}, nil, err
		}
		out[key] = v
		ignored = append(ignored, dropped...)
	}
	for _, key := range ov.Keys() {
		if _, ok := def.Get(key); !ok {
			ignored = append(ignored, path+"."+key)
		}
	}
	return ownedNode(out), ignored, nil
}
