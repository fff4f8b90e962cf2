package endpoint

import (
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Env maps variable names to values. A key holding the empty string counts as unset.
type Env map[string]string

// Lookup returns the value for key and whether it is set to something non-empty.
func (e Env) Lookup(key string) (string, bool) {
	value, ok := e[key]
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// FromOS snapshots the process environment.
func FromOS() Env {
	return FromEnviron(os.Environ())
}

// FromEnviron parses KEY=VALUE pairs as returned by os.Environ.
func FromEnviron(pairs []string) Env {
	env := make(Env, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}
	return env
}

// LoadDotenv reads the given .env files. Values from later files override earlier ones.
func LoadDotenv(paths ...string) (Env, error) {
	env := Env{}
	for _, path := range paths {
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("read env file %s: %w", path, err)
		}
		maps.Copy(env, values)
	}
	return env, nil
}

// Merge combines layers into a new Env. Later layers win, except that an
// empty value never hides a value from an earlier layer.
func Merge(layers ...Env) Env {
	out := Env{}
	for _, layer := range layers {
		for key, value := range layer {
			if _, set := out.Lookup(key); set && value == "" {
				continue
			}
			out[key] = value
		}
	}
	return out
}

// Loader produces a fresh Env each time it is called.
type Loader func() (Env, error)

// NewLoader returns a Loader that layers the process environment over the
// given .env files, so files never override variables already set.
func NewLoader(envFiles []string) Loader {
	files := append([]string(nil), envFiles...)
	return func() (Env, error) {
		fileEnv, err := LoadDotenv(files...)
		if err != nil {
			return nil, err
		}
		return Merge(fileEnv, FromOS()), nil
	}
}
