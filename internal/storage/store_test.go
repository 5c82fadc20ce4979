package storage

import (
	"bytes"
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yndnr/fitplan-go/internal/core/domain"
	"github.com/yndnr/fitplan-go/internal/storage/memory"
	"github.com/yndnr/fitplan-go/internal/telemetry/logger"
)

// exerciseSlot runs the single-slot contract against any backend.
func exerciseSlot(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		tok, ok, err := s.Read(ctx)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if ok || !tok.IsZero() {
			t.Errorf("Read() = (%q, %v), want empty slot", tok.Reveal(), ok)
		}
	})

	t.Run("clear empty", func(t *testing.T) {
		if err := s.Clear(ctx); err != nil {
			t.Errorf("Clear() on empty slot error = %v", err)
		}
	})

	t.Run("write and read", func(t *testing.T) {
		if err := s.Write(ctx, "eyJhbGciOiJIUzI1NiJ9.first.sig"); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if err := s.Write(ctx, "eyJhbGciOiJIUzI1NiJ9.second.sig"); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		tok, ok, err := s.Read(ctx)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if !ok || tok != "eyJhbGciOiJIUzI1NiJ9.second.sig" {
			t.Errorf("Read() = (%q, %v), want second token", tok.Reveal(), ok)
		}
	})

	t.Run("clear", func(t *testing.T) {
		if err := s.Clear(ctx); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		if _, ok, _ := s.Read(ctx); ok {
			t.Error("slot should be empty after Clear")
		}
	})
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "credentials"))
	if err != nil {
		t.Fatal(err)
	}
	exerciseSlot(t, s)
}

func TestFileStore_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials")
	s, _ := NewFileStore(path)

	if err := s.Write(context.Background(), "tok"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, want 600", perm)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only the credentials file, found %d entries", len(entries))
	}
}

func TestFileStore_BlankFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials")
	if err := os.WriteFile(path, []byte("  \n"), 0o600); err != nil {
		t.Fatal(err)
	}
	s, _ := NewFileStore(path)

	if _, ok, err := s.Read(context.Background()); ok || err != nil {
		t.Errorf("Read() = (_, %v, %v), want empty slot", ok, err)
	}
}

func TestFileStore_RequiresPath(t *testing.T) {
	if _, err := NewFileStore(""); err == nil {
		t.Error("NewFileStore(\"\") should fail")
	}
}

func TestBadgerStore(t *testing.T) {
	s, err := OpenBadgerStore(t.TempDir(), logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	exerciseSlot(t, s)
}

func TestBadgerStore_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := OpenBadgerStore(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Write(ctx, "tok-persisted"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if _, _, err := s.Read(ctx); err != ErrClosed {
		t.Errorf("Read() after Close error = %v, want ErrClosed", err)
	}

	s2, err := OpenBadgerStore(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	tok, ok, err := s2.Read(ctx)
	if err != nil || !ok || tok != "tok-persisted" {
		t.Errorf("Read() after reopen = (%q, %v, %v)", tok.Reveal(), ok, err)
	}
}

func testKey(n int) []byte {
	return bytes.Repeat([]byte{0x42}, n)
}

func TestSealedStore(t *testing.T) {
	for _, typ := range []CipherType{CipherAESGCM, CipherChaCha20} {
		t.Run(string(typ), func(t *testing.T) {
			c, err := NewCipher(testKey(32), typ)
			if err != nil {
				t.Fatal(err)
			}
			exerciseSlot(t, NewSealedStore(memory.New(), c))
		})
	}
}

func TestSealedStore_CiphertextAtRest(t *testing.T) {
	ctx := context.Background()
	inner := memory.New()
	c, _ := NewCipher(testKey(32), CipherChaCha20)
	s := NewSealedStore(inner, c)

	if err := s.Write(ctx, "plain-token-value"); err != nil {
		t.Fatal(err)
	}

	raw, _, _ := inner.Read(ctx)
	if strings.Contains(raw.Reveal(), "plain-token-value") {
		t.Error("token stored in plaintext")
	}
	if !strings.HasPrefix(raw.Reveal(), sealedPrefix) {
		t.Errorf("stored value %q lacks sealed prefix", raw.Reveal())
	}
}

func TestSealedStore_RejectsPlaintextAndWrongKey(t *testing.T) {
	ctx := context.Background()
	inner := memory.New()
	c1, _ := NewCipher(testKey(32), CipherAESGCM)
	c2, _ := NewCipher(bytes.Repeat([]byte{0x07}, 32), CipherAESGCM)

	_ = inner.Write(ctx, "legacy-plaintext")
	if _, _, err := NewSealedStore(inner, c1).Read(ctx); err != ErrNotSealed {
		t.Errorf("Read() of plaintext error = %v, want ErrNotSealed", err)
	}

	_ = NewSealedStore(inner, c1).Write(ctx, "tok")
	if _, _, err := NewSealedStore(inner, c2).Read(ctx); err == nil {
		t.Error("Read() with wrong key should fail")
	}
}

func TestNewCipher(t *testing.T) {
	tests := []struct {
		name    string
		keyLen  int
		typ     CipherType
		wantErr bool
	}{
		{"aes-128", 16, CipherAESGCM, false},
		{"aes-256", 32, CipherAESGCM, false},
		{"aes bad key", 20, CipherAESGCM, true},
		{"chacha", 32, CipherChaCha20, false},
		{"chacha short key", 16, CipherChaCha20, true},
		{"default", 32, "", false},
		{"unknown", 32, "rot13", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCipher(testKey(tt.keyLen), tt.typ)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewCipher() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && tt.typ != "" && c.Type() != tt.typ {
				t.Errorf("Type() = %s, want %s", c.Type(), tt.typ)
			}
		})
	}
}

func TestCipher_OpenTampered(t *testing.T) {
	c, _ := NewCipher(testKey(32), CipherAESGCM)
	sealed, err := c.Seal([]byte("secret"), nil)
	if err != nil {
		t.Fatal(err)
	}
	sealed[len(sealed)-1] ^= 0xFF

	if _, err := c.Open(sealed, nil); err == nil {
		t.Error("Open() of tampered ciphertext should fail")
	}
	if _, err := c.Open([]byte{1, 2}, nil); err == nil {
		t.Error("Open() of short input should fail")
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	key := hex.EncodeToString(testKey(32))

	tests := []struct {
		name    string
		cfg     Config
		sealed  bool
		wantErr bool
	}{
		{"default file", Config{Path: filepath.Join(dir, "a")}, false, false},
		{"memory", Config{Backend: "memory"}, false, false},
		{"badger", Config{Backend: "badger", Path: filepath.Join(dir, "db")}, false, false},
		{"sealed file", Config{Backend: "file", Path: filepath.Join(dir, "b"), EncryptionKey: key, Cipher: "chacha20-poly1305"}, true, false},
		{"bad hex", Config{Backend: "memory", EncryptionKey: "zz"}, false, true},
		{"bad cipher", Config{Backend: "memory", EncryptionKey: key, Cipher: "des"}, false, true},
		{"unknown backend", Config{Backend: "etcd"}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.cfg, logger.Nop())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer s.Close()

			if _, ok := s.(*SealedStore); ok != tt.sealed {
				t.Errorf("sealed = %v, want %v", ok, tt.sealed)
			}
			if err := s.Write(context.Background(), domain.Token("tok")); err != nil {
				t.Errorf("Write() error = %v", err)
			}
		})
	}
}
