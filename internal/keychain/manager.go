// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides centralized, thread-safe keychain operations for sfquery.
// It keeps the saved CRM username and password in the OS credential store
// (macOS Keychain, Windows Credential Manager, Secret Service, KWallet or pass)
// so that they never land in the plain-text config file.
package keychain

import (
	"encoding/json"
	"errors"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

// Global keychain manager instance
var (
	globalManager *Manager
	mu            sync.Mutex
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "sfquery"

// KeyCredentials is the item holding the saved login.
const KeyCredentials = "crm_credentials"

// ErrNotFound is returned when nothing is saved.
var ErrNotFound = errors.New("no saved credentials")

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// SavedCredentials is the stored login.
type SavedCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// NewManager creates a new keychain manager with the OS keyring initialized.
func NewManager() (*Manager, error) {
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring}, nil
}

// NewManagerWithRing wraps an already opened keyring.
func NewManagerWithRing(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// GetManager returns the global keychain manager instance.
// If initialization fails, it will retry on subsequent calls.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}
	m, err := NewManager()
	if err != nil {
		return nil, err
	}
	globalManager = m
	return globalManager, nil
}

// openRing opens the OS keyring using native platform backends only.
// There is deliberately no encrypted-file fallback.
func openRing() (keyring.Keyring, error) {
	var allowed []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowed = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowed = []keyring.BackendType{keyring.WinCredBackend}
	case "linux", "freebsd", "openbsd":
		allowed = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	default:
		return nil, errors.New("secure storage not supported on this OS")
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowed,
		PassPrefix:      ServiceName,
		WinCredPrefix:   ServiceName,
	}
	return keyring.Open(cfg)
}

// SaveCredentials stores the login in the OS keychain.
func (m *Manager) SaveCredentials(c SavedCredentials) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ring.Set(keyring.Item{
		Key:         KeyCredentials,
		Data:        b,
		Label:       "sfquery CRM login",
		Description: "username and password for the CRM SOAP login",
	})
}

// LoadCredentials retrieves the saved login, or ErrNotFound.
func (m *Manager) LoadCredentials() (SavedCredentials, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var c SavedCredentials
	it, err := m.ring.Get(KeyCredentials)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return c, ErrNotFound
		}
		return c, err
	}
	if len(it.Data) == 0 {
		return c, ErrNotFound
	}
	if err := json.Unmarshal(it.Data, &c); err != nil {
		return c, err
	}
	return c, nil
}

// ClearCredentials removes the saved login. Missing items are ignored.
func (m *Manager) ClearCredentials() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ring.Remove(KeyCredentials); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}
