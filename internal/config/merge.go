package config

import (
	"go.uber.org/zap"
)

// Engine resolves a schema against its policy table and override sources.
type Engine struct {
	// Schema is the defaults tree, already overlaid with the override file.
	Schema   Value
	Policies Policies
	Env      EnvLookup
	Logger   *zap.Logger
}

// Merge walks the schema and picks, for every leaf, the first value offered
// by an allowed source in the order CLI, environment, config. It fails with a
// *MissingKeyError when a required leaf ends up without a value.
func (e *Engine) Merge(args RawArgs) (*ResolvedConfig, error) {
	tree, err := e.mergeNode("", e.Schema, args.Values)
	if err != nil {
		return nil, err
	}

	rc := &ResolvedConfig{tree: tree}
	if args.Unrecognized.Len() > 0 {
		rc.unrecognized = args.Unrecognized
	}
	return rc, nil
}

func (e *Engine) mergeNode(prefix string, schema, cli Value) (Value, error) {
	out := make(map[string]Value, schema.Len())
	for _, key := range schema.Keys() {
		def, _ := schema.Get(key)
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		cliVal, _ := cli.Get(key)

		if def.IsNode() {
			sub, err := e.mergeNode(path, def, cliVal)
			if err != nil {
				return Value{}, err
			}
			out[key] = sub
			continue
		}

		v, err := e.mergeLeaf(path, def, cliVal)
		if err != nil {
			return Value{}, err
		}
		out[key] = v
	}
	return ownedNode(out), nil
}

func (e *Engine) mergeLeaf(path string, def, cliVal Value) (Value, error) {
	policy := e.policies().For(path)

	envRaw, envSet := e.lookupEnv(NameToEnv(path))

	value := undefinedOf(def.leafKind())
	switch {
	case policy.Allowed.Has(SourceCLI) && cliVal.IsLeaf():
		value = cliVal
	case policy.Allowed.Has(SourceEnv) && envSet:
		value = e.coerceEnv(path, envRaw, def)
	case policy.Allowed.Has(SourceConfig):
		value = def
	}

	if value.IsUndefined() && policy.Required {
		return Value{}, &MissingKeyError{Key: path, Allowed: policy.Allowed}
	}
	return value, nil
}

// coerceEnv converts an environment string to the type of def. Values that
// do not parse as numbers fall back to def with a warning.
func (e *Engine) coerceEnv(path, raw string, def Value) Value {
	switch def.leafKind() {
	case KindNumber:
		n, ok := parseNumber(raw)
		if !ok {
			e.logger().Warn("environment value is not a number, keeping default",
				zap.String("key", path),
				zap.String("env", NameToEnv(path)),
				zap.String("value", raw),
			)
			return def
		}
		return NumberValue(n)
	case KindBool:
		return BoolValue(parseBool(raw))
	default:
		return StringValue(raw)
	}
}

func (e *Engine) lookupEnv(name string) (string, bool) {
	if e.Env == nil {
		return "", false
	}
	return e.Env(name)
}

func (e *Engine) policies() Policies {
	if e.Policies == nil {
		return Policies{}
	}
	return e.Policies
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}
