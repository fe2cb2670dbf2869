package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bigrsa/internal/primestore"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	code := execute(context.Background(), args, &out, &errOut)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	r := run(t, args...)
	if r.code != 0 {
		t.Fatalf("bigrsa %s: exit %d\nstderr: %s", strings.Join(args, " "), r.code, r.stderr)
	}
	return r.stdout
}

func TestCalc(t *testing.T) {
	t.Chdir(t.TempDir())
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"calc", "0xff", "+", "0x1"}, "0x0000000000000100"},
		{[]string{"calc", "0x5", "-", "0x7"}, "0xfffffffffffffffe"},
		{[]string{"calc", "0xFFFFFFFFFFFFFFFF", "*", "0x2"}, "0x0000000000000001fffffffffffffffe"},
		{[]string{"calc", "0x64", "/", "0x7"}, "0x000000000000000e"},
		{[]string{"calc", "0x64", "%", "0x7"}, "0x0000000000000002"},
		{[]string{"calc", "0x1", "<<", "0x40"}, "0x00000000000000010000000000000000"},
		{[]string{"calc", "0xf0", "&", "0x3c"}, "0x0000000000000030"},
		{[]string{"calc", "0x2", "cmp", "0x3"}, "-1"},
		{[]string{"calc", "inc", "0xff"}, "0x0000000000000100"},
		{[]string{"calc", "0x1", "+", "０ｘ１"}, "0x0000000000000002"},
	}
	for _, tt := range tests {
		got := strings.TrimSpace(mustRun(t, tt.args...))
		if got != tt.want {
			t.Errorf("%v = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestCalcErrors(t *testing.T) {
	t.Chdir(t.TempDir())
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"calc", "0x1", "/", "0x0"}, "division by zero"},
		{[]string{"calc", "0x1", "**", "0x2"}, "unknown operator"},
		{[]string{"calc", "12", "+", "0x2"}, "decimal literal"},
		{[]string{"calc", "0xzz", "+", "0x2"}, "a:"},
		{[]string{"calc", "sqrt", "0x2"}, "unknown unary operator"},
		{[]string{"calc", "0x1", "<<", "0xffffffffffff"}, "shift amount out of range"},
		{[]string{"calc", "0x1", ">>", "0x10000000000000000"}, "shift amount out of range"},
	}
	for _, tt := range tests {
		r := run(t, tt.args...)
		if r.code == 0 || !strings.Contains(r.stderr, tt.want) {
			t.Errorf("%v: exit %d, stderr %q; want failure mentioning %q", tt.args, r.code, r.stderr, tt.want)
		}
	}
}

func TestLenientPolicy(t *testing.T) {
	t.Chdir(t.TempDir())
	got := strings.TrimSpace(mustRun(t, "--policy", "lenient", "calc", "0x1z", "+", "0x0"))
	if got != "0x0000000000000010" {
		t.Fatalf("lenient parse = %q", got)
	}
}

func TestNumberTheory(t *testing.T) {
	t.Chdir(t.TempDir())
	if got := strings.TrimSpace(mustRun(t, "powmod", "0x4", "0xd", "0x1f1")); got != "0x00000000000001bd" {
		t.Errorf("powmod = %q", got)
	}
	if r := run(t, "powmod", "0x4", "0xd", "0x0"); r.code == 0 {
		t.Errorf("powmod with zero modulus succeeded")
	}
	if got := strings.TrimSpace(mustRun(t, "gcd", "0x30", "0x12")); got != "0x0000000000000006" {
		t.Errorf("gcd = %q", got)
	}
	ext := mustRun(t, "gcd", "-x", "0x30", "0x12")
	for _, want := range []string{"g = 0x0000000000000006", "x = -0x0000000000000001", "y = 0x0000000000000003"} {
		if !strings.Contains(ext, want) {
			t.Errorf("gcd -x output missing %q:\n%s", want, ext)
		}
	}
	if got := strings.TrimSpace(mustRun(t, "inverse", "0x3", "0xb")); got != "0x0000000000000004" {
		t.Errorf("inverse = %q", got)
	}
	if r := run(t, "inverse", "0x6", "0x9"); r.code == 0 || !strings.Contains(r.stderr, "not invertible") {
		t.Errorf("inverse(6, 9): %+v", r)
	}
}

func TestIsPrime(t *testing.T) {
	t.Chdir(t.TempDir())
	out := mustRun(t, "isprime", "--rounds", "4", "0x231", "0x1eef", "0x1fffffffffffffff")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	want := []string{"0x231 composite", "0x1eef prime", "0x1fffffffffffffff probable prime"}
	if len(lines) != len(want) {
		t.Fatalf("output:\n%s", out)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestSearchAppendsToStore(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	store := filepath.Join(dir, "found.txt")
	out := mustRun(t, "search", "--bits", "32", "-n", "3", "-j", "2", "--ui", "off", "--store", store)
	if lines := strings.Fields(out); len(lines) != 3 {
		t.Fatalf("search printed:\n%s", out)
	}
	n, err := primestore.Open(store).Count()
	if err != nil || n != 3 {
		t.Fatalf("store has %d lines, %v", n, err)
	}
}

func TestKeyLifecycle(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	key := filepath.Join(dir, "k.mp")
	pub := filepath.Join(dir, "k.pub.mp")

	out := mustRun(t, "--quiet", "keygen", "--bits", "96", "--seed", "5", "-j", "1", "--rounds", "8", "-o", key, "--public-out", pub)
	if !strings.Contains(out, "n = 0x") || !strings.Contains(out, "e = 0x0000000000010001") {
		t.Fatalf("keygen output:\n%s", out)
	}

	c := strings.TrimSpace(mustRun(t, "encrypt", "-k", pub, "0x1234"))
	m := strings.TrimSpace(mustRun(t, "decrypt", "-k", key, c))
	if m != "0x0000000000001234" {
		t.Fatalf("decrypt(encrypt(0x1234)) = %q", m)
	}

	sig := strings.TrimSpace(mustRun(t, "sign", "-k", key, "0x42"))
	if got := strings.TrimSpace(mustRun(t, "verify", "-k", pub, "0x42", sig)); got != "valid" {
		t.Fatalf("verify = %q", got)
	}
	if r := run(t, "verify", "-k", pub, "0x43", sig); r.code == 0 {
		t.Fatalf("verify accepted a wrong message")
	}
	if r := run(t, "decrypt", "-k", pub, c); r.code == 0 {
		t.Fatalf("decrypt with a public key file succeeded")
	}
}

func TestKeygenFromPrimes(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	key := filepath.Join(dir, "k.mp")
	out := mustRun(t, "--quiet", "keygen", "--p", "0x3d", "--q", "0x35", "--exponent", "0x11", "-o", key)
	if !strings.Contains(out, "n = 0x0000000000000ca1") {
		t.Fatalf("keygen output:\n%s", out)
	}
	if got := strings.TrimSpace(mustRun(t, "encrypt", "-k", key, "0x41")); got != "0x0000000000000ae6" {
		t.Fatalf("encrypt(65) = %q", got)
	}
	if r := run(t, "keygen", "--p", "0x3d", "-o", key); r.code == 0 {
		t.Fatalf("keygen with only --p succeeded")
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	cfg := filepath.Join(dir, "custom.toml")
	writeFile(t, cfg, "[engine]\nmax_limbs = 1\n")
	if r := run(t, "--config", cfg, "calc", "0x10000000000000000", "+", "0x1"); r.code == 0 || !strings.Contains(r.stderr, "limit is 1") {
		t.Fatalf("max_limbs not enforced: %+v", r)
	}
	writeFile(t, filepath.Join(dir, "bigrsa.toml"), "[engine]\npolicy = \"bogus\"\n")
	if r := run(t, "calc", "0x1", "+", "0x1"); r.code == 0 || !strings.Contains(r.stderr, "[engine].policy") {
		t.Fatalf("bad discovered config accepted: %+v", r)
	}
}

func TestTraceAndTimings(t *testing.T) {
	t.Chdir(t.TempDir())
	r := run(t, "--trace", "-", "--timings", "powmod", "0x4", "0xd", "0x1f1")
	if r.code != 0 {
		t.Fatalf("exit %d: %s", r.code, r.stderr)
	}
	for _, want := range []string{"command:bigrsa powmod", "phase:powmod", "timings:", "total"} {
		if !strings.Contains(r.stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, r.stderr)
		}
	}
}

func TestTraceRingDumpOnFailure(t *testing.T) {
	t.Chdir(t.TempDir())
	r := run(t, "--trace-level", "error", "--trace-mode", "ring", "inverse", "0x6", "0x9")
	if r.code == 0 {
		t.Fatalf("inverse(6, 9) succeeded")
	}
	if !strings.Contains(r.stderr, "trace (most recent events):") || !strings.Contains(r.stderr, "phase:inverse") {
		t.Fatalf("no ring dump:\n%s", r.stderr)
	}
}

func TestProfilingFlags(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	cpu := filepath.Join(dir, "cpu.pprof")
	heap := filepath.Join(dir, "heap.pprof")
	mustRun(t, "--cpu-profile", cpu, "--mem-profile", heap, "isprime", "0x1fffffffffffffff")
	for _, path := range []string{cpu, heap} {
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Fatalf("%s not written: %v", filepath.Base(path), err)
		}
	}
	if r := run(t, "--cpu-profile", filepath.Join(dir, "no", "cpu.pprof"), "calc", "inc", "0x1"); r.code == 0 {
		t.Fatalf("unwritable profile path accepted")
	}
}

func TestVersionJSON(t *testing.T) {
	t.Chdir(t.TempDir())
	var payload versionPayload
	if err := json.Unmarshal([]byte(mustRun(t, "version", "--format", "json", "--hash")), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Tool != "bigrsa" || payload.Version == "" || payload.GitCommit != "unknown" {
		t.Fatalf("payload = %+v", payload)
	}
	if r := run(t, "version", "--format", "xml"); r.code == 0 {
		t.Fatalf("xml format accepted")
	}
}
