package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

type fileContents struct {
	Token string `json:"token"`
}

// SaveFile writes the current token to path with owner-only permissions.
// A logged-out store removes the file.
func (s *Store) SaveFile(path string) error {
	token := s.Token()
	if token == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing session file: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	raw, err := json.Marshal(fileContents{Token: token})
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return os.Rename(tmp, path)
}

// LoadFile replaces the session with the token stored at path. A missing or
// empty file, or an expired token, logs the session out.
func (s *Store) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		s.Logout()
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading session file: %w", err)
	}

	var contents fileContents
	if err := json.Unmarshal(raw, &contents); err != nil {
		return fmt.Errorf("parsing session file: %w", err)
	}
	if contents.Token == "" {
		s.Logout()
		return nil
	}
	if err := s.Login(contents.Token); err != nil {
		s.Logout()
		if errors.Is(err, ErrExpired) {
			return nil
		}
		return err
	}
	return nil
}
