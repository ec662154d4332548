package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// ErrOpen is returned when a sealed value cannot be authenticated.
var ErrOpen = errors.New("cryptox: unable to open sealed value")

const sealInfo = "ownerportal/storage/v1"

// Sealer encrypts values at rest with XChaCha20-Poly1305.
type Sealer struct {
	key []byte
}

// NewSealer derives the storage key from the given master key material.
func NewSealer(masterKey []byte) (*Sealer, error) {
	if len(masterKey) == 0 {
		return nil, errors.New("cryptox: empty master key")
	}

	key := make([]byte, chacha20poly1305.KeySize)
	r := hkdf.New(sha256.New, masterKey, nil, []byte(sealInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("failed to derive storage key: %w", err)
	}
	return &Sealer{key: key}, nil
}

// Seal encrypts plaintext. The output is [24-byte nonce][ciphertext+tag].
// aad binds the ciphertext to its storage key so values cannot be swapped.
func (s *Sealer) Seal(plaintext, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plaintext, aad), nil
}

// Open reverses Seal. Any tampering, truncation, or key mismatch yields ErrOpen.
func (s *Sealer) Open(sealed, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrOpen
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrOpen
	}
	return plaintext, nil
}

// LoadOrCreateMasterKey returns the master key material. envKey wins when set.
// Otherwise the key is read from path, and a fresh key is written there
// (mode 0600) if the file does not exist yet.
func LoadOrCreateMasterKey(path, envKey string) ([]byte, error) {
	if envKey != "" {
		return []byte(envKey), nil
	}
	if path == "" {
		return nil, errors.New("cryptox: no master key path or value configured")
	}

	path = filepath.Clean(path)
	data, err := os.ReadFile(path)
	if err == nil {
		key := strings.TrimSpace(string(data))
		if key == "" {
			return nil, fmt.Errorf("master key file %s is empty", path)
		}
		return []byte(key), nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read master key file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create master key directory: %w", err)
	}
	key, err := GenerateToken(TokenSize256)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, []byte(key), 0600); err != nil {
		return nil, fmt.Errorf("failed to write master key file: %w", err)
	}
	return []byte(key), nil
}
