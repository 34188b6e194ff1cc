package storage

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/CreonHQ/creon/pkg/errors"
)

// Sealer encrypts paid post payloads before they reach public storage.
// Each post gets its own subkey derived from the platform master key, so
// a leaked subkey exposes one payload only.
type Sealer struct {
	master []byte
}

// NewSealer builds a sealer from a hex-encoded 32-byte master key.
func NewSealer(masterHex string) (*Sealer, error) {
	master, err := hex.DecodeString(masterHex)
	if err != nil {
		return nil, errors.Wrap(err, "invalid seal key encoding")
	}
	if len(master) != chacha20poly1305.KeySize {
		return nil, errors.Newf("seal key must be %d bytes, got %d",
			chacha20poly1305.KeySize, len(master))
	}
	return &Sealer{master: master}, nil
}

// Seal encrypts plaintext under a subkey bound to postTag. The nonce is
// prepended to the ciphertext.
func (s *Sealer) Seal(postTag string, plaintext []byte) ([]byte, error) {
	aead, err := s.aeadFor(postTag)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Wrap(err, "failed to generate nonce")
	}

	sealed := aead.Seal(nonce, nonce, plaintext, nil)
	return sealed, nil
}

// Open decrypts a payload previously produced by Seal with the same postTag.
func (s *Sealer) Open(postTag string, sealed []byte) ([]byte, error) {
	aead, err := s.aeadFor(postTag)
	if err != nil {
		return nil, err
	}
	if len(sealed) < aead.NonceSize() {
		return nil, errors.New("sealed payload too short")
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sealed payload")
	}
	return plaintext, nil
}

func (s *Sealer) aeadFor(postTag string) (cipher.AEAD, error) {
	subkey := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, s.master, nil, []byte("creon/post/"+postTag))
	if _, err := io.ReadFull(kdf, subkey); err != nil {
		return nil, errors.Wrap(err, "failed to derive payload key")
	}
	return chacha20poly1305.NewX(subkey)
}
