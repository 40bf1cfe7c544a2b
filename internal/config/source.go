package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// A Source resolves configuration keys. Lookup reports whether the key
// resolved to a non-empty value; a miss carries no error because every
// key the loader asks for has a default.
type Source interface {
	Lookup(ctx context.Context, key string) (string, bool)
}

// EnvSource reads keys straight from the process environment.
type EnvSource struct{}

func (EnvSource) Lookup(ctx context.Context, key string) (string, bool) {
	value := os.Getenv(key)
	return value, value != ""
}

// FileSource reads keys from a directory of mounted secret files, one
// file per key: OPENAI_API_KEY resolves to <dir>/openai-api-key. File
// content is trimmed of surrounding whitespace. A missing file or
// directory is a miss, not an error, so the loader can fall through to
// the environment on machines without a secret mount.
type FileSource struct {
	dir string
}

func NewFileSource(dir string) FileSource {
	return FileSource{dir: dir}
}

func (f FileSource) Lookup(ctx context.Context, key string) (string, bool) {
	if f.dir == "" {
		return "", false
	}
	name := strings.ToLower(strings.ReplaceAll(key, "_", "-"))
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		return "", false
	}
	value := strings.TrimSpace(string(data))
	return value, value != ""
}

// Sources tries each source in order and returns the first hit.
type Sources []Source

func (s Sources) Lookup(ctx context.Context, key string) (string, bool) {
	for _, src := range s {
		if value, ok := src.Lookup(ctx, key); ok {
			return value, true
		}
	}
	return "", false
}
