package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v3"

	"github.com/yndnr/fitplan-go/internal/core/domain"
	"github.com/yndnr/fitplan-go/internal/telemetry/logger"
)

var tokenKey = []byte("credentials/token")

// BadgerStore keeps the token under a single key in a Badger database.
type BadgerStore struct {
	mu     sync.RWMutex
	db     *badger.DB
	log    logger.Logger
	closed bool
}

// OpenBadgerStore opens or creates the database in dir.
func OpenBadgerStore(dir string, log logger.Logger) (*BadgerStore, error) {
	if dir == "" {
		return nil, errors.New("badger: dir is required")
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("component", "badger")

	opts := badger.DefaultOptions(dir)
	opts.Logger = &badgerLogger{log: log}
	opts.SyncWrites = true
	opts.NumVersionsToKeep = 1
	opts.ValueLogFileSize = 1 << 20

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	log.Debug("credential db opened", "dir", dir)
	return &BadgerStore{db: db, log: log}, nil
}

// Read returns the stored token.
func (s *BadgerStore) Read(_ context.Context) (domain.Token, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, ErrClosed
	}

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tokenKey)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("badger: read token: %w", err)
	}

	tok := domain.Token(value)
	return tok, !tok.IsZero(), nil
}

// Write stores the token.
func (s *BadgerStore) Write(_ context.Context, token domain.Token) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(tokenKey, []byte(token.Reveal()))
	})
	if err != nil {
		return fmt.Errorf("badger: write token: %w", err)
	}
	return nil
}

// Clear deletes the token.
func (s *BadgerStore) Clear(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(tokenKey)
	})
	if err != nil {
		return fmt.Errorf("badger: clear token: %w", err)
	}
	return nil
}

// Close runs one value log GC pass and closes the database.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.db.RunValueLogGC(0.5); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		s.log.Debug("value log gc skipped", "error", err)
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("badger: close db: %w", err)
	}
	return nil
}

// badgerLogger adapts Logger to Badger's logger interface. Badger is chatty
// at info level, so info is demoted to debug.
type badgerLogger struct {
	log logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, args...))
}
