package config

import (
	"math"
	"strconv"
	"strings"
)

// RawArgs is the result of reading command-line overrides against a schema.
type RawArgs struct {
	// Values holds recognised keys, coerced to the schema type and stored
	// under the schema's spelling of each segment.
	Values Value
	// Unrecognized holds every other key verbatim as a string, nested by
	// its dotted path.
	Unrecognized Value
	// Positional holds arguments that are neither flags nor flag values.
	Positional []string
}

// argToken is one flag as written on the command line.
type argToken struct {
	key string
	// switched is set for bare (--flag) and negated (--no-flag) switches,
	// in which case state carries the value; otherwise text does.
	switched bool
	state    bool
	text     string
}

func (t argToken) verbatim() string {
	if t.switched {
		return strconv.FormatBool(t.state)
	}
	return t.text
}

// ParseArgs reads overrides from args (without the program name).
//
// Accepted forms are --key value, --key=value, --key.nested value, bare
// switches (--flag) and negations (--no-flag). Nesting is expressed with dots
// only; a camelCase spelling such as --sparqlRateLimitMs is not split and ends
// up unrecognised. Segments match the schema case-insensitively. When a key
// is repeated the last occurrence wins.
func ParseArgs(args []string, schema Value) RawArgs {
	tokens, positional := tokenize(args)

	known := treeBuilder{}
	unknown := treeBuilder{}
	for _, tok := range tokens {
		path := strings.Split(tok.key, ".")
		canonical, leaf, ok := matchPath(schema, path)
		if !ok {
			unknown.set(path, StringValue(tok.verbatim()))
			continue
		}
		known.set(canonical, coerceArg(tok, leaf))
	}

	return RawArgs{
		Values:       known.freeze(),
		Unrecognized: unknown.freeze(),
		Positional:   positional,
	}
}

func tokenize(args []string) ([]argToken, []string) {
	var (
		tokens     []argToken
		positional []string
	)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if !isFlag(arg) {
			positional = append(positional, arg)
			continue
		}

		name := strings.TrimLeft(arg, "-")
		if key, text, found := strings.Cut(name, "="); found {
			if key != "" {
				tokens = append(tokens, argToken{key: key, text: text})
			}
			continue
		}
		if name == "" {
			continue
		}
		if key, negated := strings.CutPrefix(name, "no-"); negated && key != "" {
			tokens = append(tokens, argToken{key: key, switched: true, state: false})
			continue
		}
		if i+1 < len(args) && !isFlag(args[i+1]) && args[i+1] != "--" {
			tokens = append(tokens, argToken{key: name, text: args[i+1]})
			i++
			continue
		}
		tokens = append(tokens, argToken{key: name, switched: true, state: true})
	}
	return tokens, positional
}

// isFlag reports whether arg starts a flag. Negative numbers are values.
func isFlag(arg string) bool {
	if len(arg) < 2 || arg[0] != '-' || arg == "--" {
		return false
	}
	if _, err := strconv.ParseFloat(arg, 64); err == nil {
		return false
	}
	return true
}

// matchPath resolves path against schema segment by segment, ignoring case.
// It succeeds only when the path ends on a leaf.
func matchPath(schema Value, path []string) ([]string, Value, bool) {
	canonical := make([]string, 0, len(path))
	cur := schema
	for _, seg := range path {
		if !cur.IsNode() {
			return nil, Value{}, false
		}
		key, ok := findKey(cur, seg)
		if !ok {
			return nil, Value{}, false
		}
		canonical = append(canonical, key)
		cur, _ = cur.Get(key)
	}
	if cur.IsNode() {
		return nil, Value{}, false
	}
	return canonical, cur, true
}

func findKey(node Value, seg string) (string, bool) {
	if _, ok := node.Get(seg); ok {
		return seg, true
	}
	for _, key := range node.Keys() {
		if strings.EqualFold(key, seg) {
			return key, true
		}
	}
	return "", false
}

// coerceArg converts a recognised flag to the type of its schema leaf. A
// number that does not parse falls back to the schema default.
func coerceArg(tok argToken, leaf Value) Value {
	switch leaf.leafKind() {
	case KindNumber:
		if tok.switched {
			return leaf
		}
		n, ok := parseNumber(tok.text)
		if !ok {
			return leaf
		}
		return NumberValue(n)
	case KindBool:
		if tok.switched {
			return BoolValue(tok.state)
		}
		return BoolValue(parseBool(tok.text))
	default:
		return StringValue(tok.verbatim())
	}
}

func parseNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// parseBool accepts "true" and "1" in any case; anything else is false.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1"
}
