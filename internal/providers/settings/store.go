// Package settings stores provider API keys.
//
// Keys live under a single KV entry. With a passphrase configured the entry
// is sealed with XChaCha20-Poly1305 under an argon2id-derived key; the salt
// is kept in a sibling entry.
package settings

import (
	"bytes"
	"context"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/storage"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/providers/llm"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/types"
	"github.com/bytedance/sonic"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// Key is the KV entry holding the settings document
	Key = "systemSettings"
	// SaltKey is the KV entry holding the key-derivation salt
	SaltKey = "systemSettings.salt"
)

var sealedMagic = []byte("ADS1")

var (
	// ErrSealed is returned when stored settings are encrypted and no passphrase was given
	ErrSealed = errors.New("settings are encrypted; passphrase required")
	// ErrBadPassphrase is returned when sealed settings cannot be opened
	ErrBadPassphrase = errors.New("settings passphrase does not match")
)

type document struct {
	APIKeys map[string]string `json:"apiKeys" toml:"apiKeys"`
}

// Store holds API keys in memory and writes through to the KV
type Store struct {
	mu     sync.RWMutex
	kv     storage.KV
	aead   cipher.AEAD
	keys   map[string]string
	logger *zap.Logger
}

// Open loads the stored settings. An empty passphrase keeps them in plaintext.
func Open(ctx context.Context, kv storage.KV, passphrase string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{kv: kv, keys: make(map[string]string), logger: logger}

	if passphrase != "" {
		aead, err := deriveAEAD(ctx, kv, passphrase)
		if err != nil {
			return nil, err
		}
		s.aead = aead
	}

	raw, ok, err := kv.Get(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if !ok {
		return s, nil
	}

	sealed := bytes.HasPrefix(raw, sealedMagic)
	if sealed {
		if s.aead == nil {
			return nil, ErrSealed
		}
		if raw, err = s.open(raw); err != nil {
			return nil, err
		}
	}

	var doc document
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		logger.Warn("discarding unreadable settings", zap.Error(err))
		return s, nil
	}
	for provider, key := range doc.APIKeys {
		if key != "" {
			s.keys[provider] = key
		}
	}

	if !sealed && s.aead != nil {
		// plaintext written before a passphrase was configured
		if err := s.saveLocked(ctx); err != nil {
			return nil, err
		}
		logger.Info("sealed existing settings")
	}
	return s, nil
}

func deriveAEAD(ctx context.Context, kv storage.KV, passphrase string) (cipher.AEAD, error) {
	salt, ok, err := kv.Get(ctx, SaltKey)
	if err != nil {
		return nil, fmt.Errorf("read settings salt: %w", err)
	}
	if !ok {
		salt = make([]byte, 16)
		if _, err := rand.Read(salt); err != nil {
			return nil, fmt.Errorf("generate salt: %w", err)
		}
		if err := kv.Set(ctx, SaltKey, salt); err != nil {
			return nil, fmt.Errorf("write settings salt: %w", err)
		}
	}

	key := argon2.IDKey([]byte(passphrase), salt, 1, 64*1024, 4, chacha20poly1305.KeySize)
	return chacha20poly1305.NewX(key)
}

func (s *Store) seal(plain []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize(), len(sealedMagic)+s.aead.NonceSize()+len(plain)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	out := append([]byte{}, sealedMagic...)
	out = append(out, nonce...)
	return s.aead.Seal(out, nonce, plain, sealedMagic), nil
}

func (s *Store) open(raw []byte) ([]byte, error) {
	body := raw[len(sealedMagic):]
	n := s.aead.NonceSize()
	if len(body) < n {
		return nil, ErrBadPassphrase
	}
	plain, err := s.aead.Open(nil, body[:n], body[n:], sealedMagic)
	if err != nil {
		return nil, ErrBadPassphrase
	}
	return plain, nil
}

func (s *Store) saveLocked(ctx context.Context) error {
	raw, err := sonic.Marshal(document{APIKeys: s.keys})
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if s.aead != nil {
		if raw, err = s.seal(raw); err != nil {
			return fmt.Errorf("seal settings: %w", err)
		}
	}
	if err := s.kv.Set(ctx, Key, raw); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// GetCredential returns the API key of a provider family
func (s *Store) GetCredential(provider string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.keys[provider]
	return key, ok
}

// SetCredential stores a key. An empty key removes the credential.
func (s *Store) SetCredential(ctx context.Context, provider, key string) error {
	return s.update(ctx, map[string]string{provider: key})
}

// DeleteCredential removes a provider's key
func (s *Store) DeleteCredential(ctx context.Context, provider string) error {
	return s.update(ctx, map[string]string{provider: ""})
}

// Apply saves the credentials entered in a settings window
func (s *Store) Apply(ctx context.Context, payload types.SettingsPayload) error {
	return s.update(ctx, payload.Credentials)
}

// ImportFile seeds credentials from a TOML file with an [apiKeys] table
func (s *Store) ImportFile(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read credentials file: %w", err)
	}

	var doc document
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return 0, fmt.Errorf("parse credentials file: %w", err)
	}

	changes := make(map[string]string, len(doc.APIKeys))
	for provider, key := range doc.APIKeys {
		if strings.TrimSpace(key) != "" {
			changes[provider] = key
		}
	}
	if err := s.update(ctx, changes); err != nil {
		return 0, err
	}
	s.logger.Info("imported credentials", zap.String("path", path), zap.Int("count", len(changes)))
	return len(changes), nil
}

// Providers reports which families have a key, without revealing it
func (s *Store) Providers() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]bool)
	for _, family := range llm.Families() {
		_, out[family] = s.keys[family]
	}
	return out
}

// Masked returns the stored keys with all but the last four characters hidden
func (s *Store) Masked() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.keys))
	for provider, key := range s.keys {
		out[provider] = types.MaskSecret(key)
	}
	return out
}

func (s *Store) update(ctx context.Context, changes map[string]string) error {
	if len(changes) == 0 {
		return nil
	}

	names := make([]string, 0, len(changes))
	for provider := range changes {
		if !known(provider) {
			return fmt.Errorf("%w: %s", llm.ErrUnknownProvider, provider)
		}
		names = append(names, provider)
	}
	sort.Strings(names)

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := make(map[string]string, len(s.keys))
	for k, v := range s.keys {
		prev[k] = v
	}

	for _, provider := range names {
		key := strings.TrimSpace(changes[provider])
		if current, ok := s.keys[provider]; ok && key == types.MaskSecret(current) {
			// the masked value shown in a settings window means "unchanged"
			continue
		}
		if key == "" {
			delete(s.keys, provider)
			continue
		}
		s.keys[provider] = key
	}

	if err := s.saveLocked(ctx); err != nil {
		s.keys = prev
		return err
	}
	s.logger.Debug("credentials updated", zap.Strings("providers", names))
	return nil
}

func known(provider string) bool {
	for _, family := range llm.Families() {
		if family == provider {
			return true
		}
	}
	return false
}
