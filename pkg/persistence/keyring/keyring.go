// Package keyring manages the master key that protects stored transcripts.
//
// The master material lives in its own file, base64 encoded, away from the data it
// protects. The key handed to the encryption middleware is derived from it with
// HKDF-SHA256, so the raw material never touches a cipher directly.
package keyring

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/hkdf"
)

// KeySize is the length of both the master material and the derived key.
const KeySize = 32

// DataKeyInfo is the HKDF info string for the transcript data key.
const DataKeyInfo = "transcript/v1"

var (
	// ErrKeyMissing is returned when the key file does not exist and creation is disabled.
	ErrKeyMissing = errors.New("encryption key not found")

	// ErrKeyCorrupt is returned when the key file cannot be decoded to KeySize bytes.
	ErrKeyCorrupt = errors.New("encryption key corrupt")

	// ErrClosed is returned by DataKey after Close.
	ErrClosed = errors.New("keyring closed")
)

// Options control how Open behaves when the key file is absent.
type Options struct {
	// Create generates and writes a fresh key when none exists.
	Create bool
}

// Keyring holds the master key material for the life of the process.
type Keyring struct {
	path    string
	master  []byte
	created bool
}

// Open loads the key at path, optionally creating it.
func Open(path string, opts Options) (*Keyring, error) {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		master, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &Keyring{path: path, master: master}, nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read key file: %w", err)
	case !opts.Create:
		return nil, fmt.Errorf("%s: %w", path, ErrKeyMissing)
	}

	master := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, master); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	if err := write(path, master); err != nil {
		return nil, err
	}
	return &Keyring{path: path, master: master, created: true}, nil
}

func decode(data []byte) ([]byte, error) {
	master, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyCorrupt, err)
	}
	if len(master) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrKeyCorrupt, len(master), KeySize)
	}
	return master, nil
}

type keyFile interface {
	io.StringWriter
	Sync() error
	Close() error
}

// openKeyFile uses O_EXCL so two processes racing on first run cannot overwrite each other's key.
var openKeyFile = func(path string) (keyFile, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
}

func write(path string, master []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create key directory: %w", err)
	}
	f, err := openKeyFile(path)
	if err != nil {
		return fmt.Errorf("create key file: %w", err)
	}

	// A partial key would be reported as corrupt on every later run.
	fail := func(op string, err error) error {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("%s key file: %w", op, err)
	}
	if _, err := f.WriteString(base64.StdEncoding.EncodeToString(master) + "\n"); err != nil {
		return fail("write", err)
	}
	if err := f.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("close key file: %w", err)
	}
	return nil
}

// Path returns the key file location.
func (k *Keyring) Path() string {
	return k.path
}

// Created reports whether Open generated the key.
func (k *Keyring) Created() bool {
	return k.created
}

// DataKey derives the AES-256 key used to seal transcripts.
func (k *Keyring) DataKey() ([]byte, error) {
	return k.Derive(DataKeyInfo)
}

// Derive returns a KeySize key bound to info.
func (k *Keyring) Derive(info string) ([]byte, error) {
	if k.master == nil {
		return nil, ErrClosed
	}
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, k.master, nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

// Close zeroes the key material. It is safe to call more than once.
func (k *Keyring) Close() error {
	clear(k.master)
	k.master = nil
	return nil
}
