package storage

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/yndnr/fitplan-go/internal/core/domain"
)

// CipherType identifies an AEAD algorithm.
type CipherType string

const (
	CipherAESGCM   CipherType = "aes-gcm"
	CipherChaCha20 CipherType = "chacha20-poly1305"
)

// sealedPrefix marks a sealed value and its format version.
const sealedPrefix = "sealed:v1:"

// ErrNotSealed is returned when a sealed store finds a plaintext value.
var ErrNotSealed = errors.New("stored credentials are not sealed")

// Cipher is an AEAD that prepends its nonce to the ciphertext.
type Cipher struct {
	typ  CipherType
	aead cipher.AEAD
}

// NewCipher creates a cipher of the given type. An empty type picks AES-GCM
// on platforms with AES instructions and ChaCha20-Poly1305 elsewhere.
func NewCipher(key []byte, typ CipherType) (*Cipher, error) {
	if typ == "" {
		typ = defaultCipher()
	}

	var (
		aead cipher.AEAD
		err  error
	)
	switch typ {
	case CipherAESGCM:
		switch len(key) {
		case 16, 24, 32:
		default:
			return nil, errors.New("invalid key size for AES-GCM: must be 16, 24, or 32 bytes")
		}
		var block cipher.Block
		block, err = aes.NewCipher(key)
		if err == nil {
			aead, err = cipher.NewGCM(block)
		}
	case CipherChaCha20:
		if len(key) != chacha20poly1305.KeySize {
			return nil, errors.New("invalid key size for ChaCha20-Poly1305: must be 32 bytes")
		}
		aead, err = chacha20poly1305.New(key)
	default:
		return nil, fmt.Errorf("unknown cipher type %q", typ)
	}
	if err != nil {
		return nil, err
	}
	return &Cipher{typ: typ, aead: aead}, nil
}

func defaultCipher() CipherType {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		return CipherAESGCM
	default:
		return CipherChaCha20
	}
}

// Type returns the algorithm.
func (c *Cipher) Type() CipherType {
	return c.typ
}

// Seal encrypts plaintext. The output is nonce || ciphertext || tag.
func (c *Cipher) Seal(plaintext, additionalData []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, plaintext, additionalData), nil
}

// Open decrypts the output of Seal.
func (c *Cipher) Open(sealed, additionalData []byte) ([]byte, error) {
	if len(sealed) < c.aead.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, ciphertext := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	return c.aead.Open(nil, nonce, ciphertext, additionalData)
}

// SealedStore encrypts tokens before handing them to the wrapped store.
type SealedStore struct {
	inner  Store
	cipher *Cipher
}

// NewSealedStore wraps inner.
func NewSealedStore(inner Store, c *Cipher) *SealedStore {
	return &SealedStore{inner: inner, cipher: c}
}

// additionalData ties sealed values to the credentials slot.
var additionalData = []byte("fitplan/credentials")

// Read decrypts the stored token. A plaintext or tampered value is an error.
func (s *SealedStore) Read(ctx context.Context) (domain.Token, bool, error) {
	raw, ok, err := s.inner.Read(ctx)
	if err != nil || !ok {
		return "", false, err
	}

	encoded, found := strings.CutPrefix(raw.Reveal(), sealedPrefix)
	if !found {
		return "", false, ErrNotSealed
	}
	sealed, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil {
		return "", false, fmt.Errorf("decode sealed credentials: %w", err)
	}
	plain, err := s.cipher.Open(sealed, additionalData)
	if err != nil {
		return "", false, fmt.Errorf("open sealed credentials: %w", err)
	}

	tok := domain.Token(plain)
	return tok, !tok.IsZero(), nil
}

// Write encrypts and stores token.
func (s *SealedStore) Write(ctx context.Context, token domain.Token) error {
	sealed, err := s.cipher.Seal([]byte(token.Reveal()), additionalData)
	if err != nil {
		return fmt.Errorf("seal credentials: %w", err)
	}
	return s.inner.Write(ctx, domain.Token(sealedPrefix+base64.RawStdEncoding.EncodeToString(sealed)))
}

// Clear clears the wrapped store.
func (s *SealedStore) Clear(ctx context.Context) error {
	return s.inner.Clear(ctx)
}

// Close closes the wrapped store.
func (s *SealedStore) Close() error {
	return s.inner.Close()
}
