package rsakey

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"bigrsa/internal/bignum"
)

// keyFileSchema is bumped whenever keyFile changes shape.
const keyFileSchema uint16 = 1

// ErrSchema indicates a key file written by an incompatible version.
var ErrSchema = errors.New("unsupported key file schema")

// keyFile is the on-disk form. Values are stored in bignum's hex text form
// so the file stays independent of limb width.
type keyFile struct {
	Schema uint16 `msgpack:"schema"`
	N      string `msgpack:"n"`
	E      string `msgpack:"e"`
	D      string `msgpack:"d,omitempty"`
	P      string `msgpack:"p,omitempty"`
	Q      string `msgpack:"q,omitempty"`
}

// Save writes the key to path, replacing any existing file atomically.
func (k *PrivateKey) Save(path string) error {
	return writeKeyFile(path, &keyFile{
		Schema: keyFileSchema,
		N:      k.N.String(),
		E:      k.E.String(),
		D:      k.D.String(),
		P:      k.P.String(),
		Q:      k.Q.String(),
	})
}

// Save writes only the public half to path.
func (k *PublicKey) Save(path string) error {
	return writeKeyFile(path, &keyFile{
		Schema: keyFileSchema,
		N:      k.N.String(),
		E:      k.E.String(),
	})
}

func writeKeyFile(path string, kf *keyFile) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".key-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name()) //nolint:errcheck // best-effort cleanup
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(kf); err != nil {
		_ = f.Close() //nolint:errcheck // encode error wins
		return fmt.Errorf("encode key: %w", err)
	}
	if err = f.Chmod(0o600); err != nil {
		_ = f.Close() //nolint:errcheck // chmod error wins
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

func readKeyFile(path string) (*keyFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var kf keyFile
	if err := msgpack.NewDecoder(f).Decode(&kf); err != nil {
		return nil, fmt.Errorf("decode key %s: %w", path, err)
	}
	if kf.Schema != keyFileSchema {
		return nil, fmt.Errorf("%w: %d (want %d)", ErrSchema, kf.Schema, keyFileSchema)
	}
	return &kf, nil
}

// LoadPublic reads the public half of a key file.
func LoadPublic(path string) (*PublicKey, error) {
	kf, err := readKeyFile(path)
	if err != nil {
		return nil, err
	}
	return kf.public()
}

// Load reads a private key file and validates it.
func Load(path string) (*PrivateKey, error) {
	kf, err := readKeyFile(path)
	if err != nil {
		return nil, err
	}
	if kf.D == "" {
		return nil, fmt.Errorf("%s holds a public key only", path)
	}
	pub, err := kf.public()
	if err != nil {
		return nil, err
	}
	k := &PrivateKey{PublicKey: *pub}
	for _, field := range []struct {
		name string
		src  string
		dst  *bignum.Int
	}{
		{"d", kf.D, &k.D},
		{"p", kf.P, &k.P},
		{"q", kf.Q, &k.Q},
	} {
		if *field.dst, err = bignum.ParseHex(field.src); err != nil {
			return nil, fmt.Errorf("key field %s: %w", field.name, err)
		}
	}
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return k, nil
}

func (kf *keyFile) public() (*PublicKey, error) {
	n, err := bignum.ParseHex(kf.N)
	if err != nil {
		return nil, fmt.Errorf("key field n: %w", err)
	}
	e, err := bignum.ParseHex(kf.E)
	if err != nil {
		return nil, fmt.Errorf("key field e: %w", err)
	}
	return &PublicKey{N: n, E: e}, nil
}
