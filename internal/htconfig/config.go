// Package htconfig loads the command line configuration.
//
// Values are layered in this order, later layers overriding earlier ones:
// [DefaultValues], each configuration file in the order given,
// environment variables, and finally explicit overrides
// (typically set from command line flags).
package htconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gordian-engine/hashtree/htitem"
	"github.com/gordian-engine/hashtree/internal/htlog"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable read by [Loader.Load].
// The key Tree.Hasher is read from HASHTREE_TREE_HASHER.
const EnvPrefix = "HASHTREE"

var ErrUnsupportedConfigFileType = errors.New("unsupported config file type")

type Config struct {
	Tree  TreeConfig
	Input InputConfig
	Log   LogConfig
}

type TreeConfig struct {
	// Name passed to hashtree.LookupHasher.
	Hasher string

	LeafWorkers       int
	ParallelThreshold int
}

type InputConfig struct {
	// One of the names accepted by htitem.ParseFormat.
	Format string
}

type LogConfig struct {
	Level  string
	Format string
}

// FileData is the content of one configuration file.
// The extension of Name selects the parser: .toml or .json.
type FileData struct {
	Name    string
	Content []byte
}

// ReadFiles reads every path into a FileData, in order.
func ReadFiles(paths []string) ([]FileData, error) {
	out := make([]FileData, 0, len(paths))
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		out = append(out, FileData{Name: p, Content: b})
	}
	return out, nil
}

// Loader merges configuration layers into a [Config].
type Loader struct {
	Files []FileData

	// Resolves environment variables; os.LookupEnv in production.
	// Nil disables the environment layer.
	LookupEnvFunc func(key string) (string, bool)

	// Overrides are applied last, keyed like "Tree.Hasher".
	Overrides map[string]any
}

// NewLoader returns a Loader over files that reads the process environment.
func NewLoader(files []FileData) *Loader {
	return &Loader{
		Files:         files,
		LookupEnvFunc: os.LookupEnv,
	}
}

// Load merges every layer, then validates and returns the result.
func (l *Loader) Load() (Config, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider([]byte(DefaultValues)), toml.Parser()); err != nil {
		panic(fmt.Errorf("BUG: failed to parse default config: %w", err))
	}
	known := k.Keys()

	for _, f := range l.Files {
		p, err := parserFor(f.Name)
		if err != nil {
			return Config{}, err
		}
		if err := k.Load(rawbytes.Provider(f.Content), p); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", f.Name, err)
		}
	}

	if err := checkKeys(k, known); err != nil {
		return Config{}, err
	}

	if l.LookupEnvFunc != nil {
		for _, key := range known {
			if v, ok := l.LookupEnvFunc(EnvName(key)); ok {
				if err := k.Set(key, v); err != nil {
					return Config{}, fmt.Errorf("failed to set %s from environment: %w", key, err)
				}
			}
		}
	}

	for key, v := range l.Overrides {
		if !slices.Contains(known, key) {
			panic(fmt.Errorf("BUG: override for unknown config key %q", key))
		}
		if err := k.Set(key, v); err != nil {
			return Config{}, fmt.Errorf("failed to override %s: %w", key, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// EnvName returns the environment variable read for a config key.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func parserFor(name string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".toml":
		return toml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedConfigFileType, name)
	}
}

// checkKeys rejects keys that do not appear in DefaultValues,
// which also catches keys spelled with the wrong case.
func checkKeys(k *koanf.Koanf, known []string) error {
	for _, key := range k.Keys() {
		if !slices.Contains(known, key) {
			return fmt.Errorf("unknown config key %q", key)
		}
	}
	return nil
}

// Validate reports the first invalid field, naming its key.
func (c Config) Validate() error {
	if c.Tree.Hasher == "" {
		return errors.New("Tree.Hasher must not be empty")
	}
	if c.Tree.LeafWorkers < 0 {
		return fmt.Errorf("Tree.LeafWorkers must not be negative (got %d)", c.Tree.LeafWorkers)
	}
	if c.Tree.ParallelThreshold < 0 {
		return fmt.Errorf("Tree.ParallelThreshold must not be negative (got %d)", c.Tree.ParallelThreshold)
	}
	if _, err := htitem.ParseFormat(c.Input.Format); err != nil {
		return fmt.Errorf("Input.Format: %w", err)
	}
	if _, err := htlog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("Log.Level: %w", err)
	}
	if err := htlog.CheckFormat(c.Log.Format); err != nil {
		return fmt.Errorf("Log.Format: %w", err)
	}
	return nil
}
