package storage

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/yndnr/fitplan-go/internal/core/domain"
	"github.com/yndnr/fitplan-go/internal/storage/memory"
	"github.com/yndnr/fitplan-go/internal/telemetry/logger"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("credential store closed")

// Store is a credential slot that owns resources.
type Store interface {
	Read(ctx context.Context) (domain.Token, bool, error)
	Write(ctx context.Context, token domain.Token) error
	Clear(ctx context.Context) error
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Backend string
	// Path is the credentials file, or the database directory for badger.
	Path string
	// EncryptionKey is a hex-encoded key. When set, tokens are sealed.
	EncryptionKey string
	// Cipher is "aes-gcm" or "chacha20-poly1305". Empty picks by platform.
	Cipher string
}

// Open creates the configured store.
func Open(cfg Config, log logger.Logger) (Store, error) {
	if log == nil {
		log = logger.Nop()
	}

	var (
		store Store
		err   error
	)
	switch strings.ToLower(cfg.Backend) {
	case "", BackendFile:
		store, err = NewFileStore(cfg.Path)
	case BackendBadger:
		store, err = OpenBadgerStore(cfg.Path, log)
	case BackendMemory:
		store = memory.New()
	default:
		return nil, fmt.Errorf("unknown credentials backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	if cfg.EncryptionKey == "" {
		return store, nil
	}

	key, err := hex.DecodeString(cfg.EncryptionKey)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	aead, err := NewCipher(key, CipherType(cfg.Cipher))
	if err != nil {
		store.Close()
		return nil, err
	}
	log.Debug("sealing credentials at rest", "cipher", string(aead.Type()))
	return NewSealedStore(store, aead), nil
}
