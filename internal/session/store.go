// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists the raw login response to a single file.
type Store struct {
	Path string
}

// NewStore returns a Store writing to path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Exists reports whether a cached login response is present.
func (s *Store) Exists() bool {
	info, err := os.Stat(s.Path)
	return err == nil && !info.IsDir()
}

// Save writes the raw login response with 0600 permissions.
func (s *Store) Save(raw []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(s.Path, raw, 0o600); err != nil {
		return fmt.Errorf("write session cache: %w", err)
	}
	return nil
}

// Load parses the cached login response.
func (s *Store) Load(restPrefix string) (Session, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return Session{}, err
	}
	return ParseLoginResponse(raw, restPrefix)
}

// Clear removes the cached login response. A missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
