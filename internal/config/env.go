package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
)

var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// NameToEnv converts a dotted camelCase key into the environment variable
// that may override it, e.g. "userProfile.idNumber" -> "USER_PROFILE_ID_NUMBER".
func NameToEnv(key string) string {
	parts := strings.Split(key, ".")
	for i, part := range parts {
		part = camelBoundary.ReplaceAllString(part, "${1}_${2}")
		part = strings.ReplaceAll(part, "-", "_")
		parts[i] = strings.ToUpper(part)
	}
	return strings.Join(parts, "_")
}

// EnvLookup returns the value of an environment variable and whether it is
// set. A variable set to the empty string counts as present.
type EnvLookup func(name string) (string, bool)

// OSEnv reads the process environment.
func OSEnv() EnvLookup {
	return os.LookupEnv
}

// MapEnv serves variables from a fixed map.
func MapEnv(vars map[string]string) EnvLookup {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

// WithDotEnv layers the variables of a dotenv file underneath next: a
// variable defined by next always wins. A missing file leaves next unchanged.
func WithDotEnv(path string, next EnvLookup) (EnvLookup, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return next, nil
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return func(name string) (string, bool) {
		if v, ok := next(name); ok {
			return v, true
		}
		v, ok := vars[name]
		return v, ok
	}, nil
}
