// Package primestore keeps found primes in a line-oriented text file, one
// hexadecimal value per line in bignum.Int's String form.
package primestore

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"bigrsa/internal/bignum"
)

// ErrLineRange indicates a line index outside the file.
var ErrLineRange = errors.New("line index out of range")

// File is a prime list on disk. Methods are safe for concurrent use within
// one process.
type File struct {
	mu   sync.Mutex
	path string
}

// Open returns a store backed by path. The file is created on first Append.
func Open(path string) *File {
	return &File{path: path}
}

// Path returns the backing file path.
func (f *File) Path() string { return f.path }

// Append writes p as a new line.
func (f *File) Append(p bignum.Int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fh, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open prime store: %w", err)
	}
	if _, err := fh.WriteString(p.String() + "\n"); err != nil {
		_ = fh.Close() //nolint:errcheck // write error wins
		return fmt.Errorf("append prime: %w", err)
	}
	return fh.Close()
}

// Nth returns the value on line n, counting from 0. Blank lines count.
func (f *File) Nth(n int) (bignum.Int, error) {
	if n < 0 {
		return bignum.Int{}, fmt.Errorf("%w: %d", ErrLineRange, n)
	}
	var (
		found bool
		line  string
	)
	err := f.scan(func(i int, text string) bool {
		if i == n {
			found, line = true, text
			return false
		}
		return true
	})
	if err != nil {
		return bignum.Int{}, err
	}
	if !found {
		return bignum.Int{}, fmt.Errorf("%w: %d", ErrLineRange, n)
	}
	v, err := bignum.ParseHex(line)
	if err != nil {
		return bignum.Int{}, fmt.Errorf("line %d: %w", n, err)
	}
	return v, nil
}

// Count returns the number of lines. A missing file has none.
func (f *File) Count() (int, error) {
	count := 0
	err := f.scan(func(int, string) bool {
		count++
		return true
	})
	return count, err
}

// All returns every value in file order.
func (f *File) All() ([]bignum.Int, error) {
	var (
		out      []bignum.Int
		parseErr error
	)
	err := f.scan(func(i int, text string) bool {
		v, err := bignum.ParseHex(text)
		if err != nil {
			parseErr = fmt.Errorf("line %d: %w", i, err)
			return false
		}
		out = append(out, v)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, parseErr
}

// scan calls fn for each line until it returns false.
func (f *File) scan(fn func(i int, text string) bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fh, err := os.Open(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open prime store: %w", err)
	}
	defer fh.Close()

	sc := bufio.NewScanner(fh)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<24)
	for i := 0; sc.Scan(); i++ {
		if !fn(i, strings.TrimSpace(sc.Text())) {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read prime store: %w", err)
	}
	return nil
}
