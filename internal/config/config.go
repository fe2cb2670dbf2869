// Package config locates and decodes bigrsa.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"bigrsa/internal/bignum"
)

// FileName is the configuration file looked up from the working directory.
const FileName = "bigrsa.toml"

// Config is the decoded configuration. Path and Root are empty when the
// defaults are in use.
type Config struct {
	Path string `toml:"-"`
	Root string `toml:"-"`

	Engine EngineConfig `toml:"engine"`
	Prime  PrimeConfig  `toml:"prime"`
	Key    KeyConfig    `toml:"key"`
}

// EngineConfig controls operand parsing.
type EngineConfig struct {
	Policy   string `toml:"policy"`
	MaxLimbs int    `toml:"max_limbs"`
}

// PrimeConfig controls prime search.
type PrimeConfig struct {
	Bits    int    `toml:"bits"`
	Rounds  int    `toml:"rounds"`
	Seed    uint32 `toml:"seed"`
	Workers int    `toml:"workers"`
	Store   string `toml:"store"`
}

// KeyConfig controls key generation and the key file location.
type KeyConfig struct {
	Bits     int    `toml:"bits"`
	Exponent string `toml:"exponent"`
	File     string `toml:"file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Engine: EngineConfig{Policy: "checked", MaxLimbs: 64},
		Prime: PrimeConfig{
			Bits:   256,
			Rounds: 20,
			Seed:   1,
			Store:  "primes.txt",
		},
		Key: KeyConfig{
			Bits:     512,
			Exponent: "0x10001",
			File:     "key.mp",
		},
	}
}

// Find walks up from startDir looking for bigrsa.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Discover loads the nearest bigrsa.toml above startDir, or the defaults
// when there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load decodes path over the defaults and validates the result. Keys the
// schema does not know are errors.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("key", "exponent") && strings.TrimSpace(cfg.Key.Exponent) == "" {
		return Config{}, fmt.Errorf("%s: [key].exponent is empty", path)
	}
	cfg.Path = path
	cfg.Root = filepath.Dir(path)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if _, err := bignum.ParsePolicy(c.Engine.Policy); err != nil {
		return fmt.Errorf("[engine].policy: %w", err)
	}
	if c.Engine.MaxLimbs < 0 {
		return fmt.Errorf("[engine].max_limbs must not be negative, got %d", c.Engine.MaxLimbs)
	}
	if c.Prime.Bits < 2 {
		return fmt.Errorf("[prime].bits must be at least 2, got %d", c.Prime.Bits)
	}
	if c.Prime.Rounds < 0 {
		return fmt.Errorf("[prime].rounds must not be negative, got %d", c.Prime.Rounds)
	}
	if c.Prime.Workers < 0 {
		return fmt.Errorf("[prime].workers must not be negative, got %d", c.Prime.Workers)
	}
	if c.Key.Bits < 8 {
		return fmt.Errorf("[key].bits must be at least 8, got %d", c.Key.Bits)
	}
	if _, err := c.Exponent(); err != nil {
		return err
	}
	return nil
}

// ParseOptions returns the bignum parse options for operands.
func (c Config) ParseOptions() bignum.Options {
	p, err := bignum.ParsePolicy(c.Engine.Policy)
	if err != nil {
		p = bignum.Checked
	}
	return bignum.Options{Policy: p, MaxLimbs: c.Engine.MaxLimbs}
}

// Exponent parses [key].exponent.
func (c Config) Exponent() (bignum.Int, error) {
	e, err := bignum.ParseHex(c.Key.Exponent)
	if err != nil {
		return bignum.Int{}, fmt.Errorf("[key].exponent: %w", err)
	}
	return e, nil
}

// Resolve makes a relative path relative to the directory holding the
// configuration file. With defaults it is returned unchanged.
func (c Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Root == "" {
		return p
	}
	return filepath.Join(c.Root, p)
}
