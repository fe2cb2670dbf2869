package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bigrsa/internal/bignum"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate(): %v", err)
	}
	e, err := Default().Exponent()
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := e.Uint64(); v != 65537 {
		t.Fatalf("default exponent = %d", v)
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	got, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find = %q, %v, %v", got, ok, err)
	}
	want, _ := filepath.EvalSymlinks(path)
	if g, _ := filepath.EvalSymlinks(got); g != want {
		t.Fatalf("Find = %q, want %q", got, path)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[engine]
policy = "lenient"
max_limbs = 8

[prime]
bits = 128
seed = 99
store = "out/primes.txt"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.Policy != "lenient" || cfg.Engine.MaxLimbs != 8 {
		t.Errorf("engine = %+v", cfg.Engine)
	}
	if cfg.Prime.Bits != 128 || cfg.Prime.Seed != 99 {
		t.Errorf("prime = %+v", cfg.Prime)
	}
	if cfg.Prime.Rounds != 20 || cfg.Key.Exponent != "0x10001" {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if opts := cfg.ParseOptions(); opts.Policy != bignum.Lenient || opts.MaxLimbs != 8 {
		t.Errorf("ParseOptions = %+v", opts)
	}
	if got := cfg.Resolve(cfg.Prime.Store); got != filepath.Join(dir, "out", "primes.txt") {
		t.Errorf("Resolve = %q", got)
	}
	if got := cfg.Resolve("/abs/key.mp"); got != "/abs/key.mp" {
		t.Errorf("Resolve(abs) = %q", got)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name, body, want string
	}{
		{"syntax", "[engine\n", "failed to parse TOML"},
		{"unknown key", "[prime]\nbitz = 3\n", "unknown keys: prime.bitz"},
		{"policy", "[engine]\npolicy = \"strict\"\n", "[engine].policy"},
		{"bits", "[prime]\nbits = 1\n", "[prime].bits"},
		{"negative workers", "[prime]\nworkers = -2\n", "[prime].workers"},
		{"exponent", "[key]\nexponent = \"65537\"\n", "[key].exponent"},
		{"empty exponent", "[key]\nexponent = \"\"\n", "[key].exponent is empty"},
	}
	for _, tt := range tests {
		path := writeConfig(t, t.TempDir(), tt.body)
		_, err := Load(path)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: err = %v, want it to mention %q", tt.name, err, tt.want)
		}
	}
}

func TestExponentLiteralError(t *testing.T) {
	cfg := Default()
	cfg.Key.Exponent = "65537"
	if _, err := cfg.Exponent(); !errors.Is(err, bignum.ErrUnsupportedLiteral) {
		t.Fatalf("err = %v, want ErrUnsupportedLiteral", err)
	}
}

func TestDiscoverWithoutFile(t *testing.T) {
	cfg, err := Discover(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Path != "" || cfg.Prime.Bits != Default().Prime.Bits {
		t.Fatalf("Discover = %+v", cfg)
	}
}
