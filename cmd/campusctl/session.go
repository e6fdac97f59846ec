package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mkrupp/campuslink/internal/domain"
)

// sessionFile is the path holding the session token of the logged-in user.
type sessionFile string

func (f sessionFile) load() (string, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", domain.ErrNoAuthToken
		}

		return "", fmt.Errorf("read session file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", domain.ErrNoAuthToken
	}

	return token, nil
}

func (f sessionFile) save(token string) error {
	if err := os.MkdirAll(filepath.Dir(string(f)), 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	if err := os.WriteFile(string(f), []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}

	return nil
}

// clear removes the session file and reports whether there was one.
func (f sessionFile) clear() (bool, error) {
	if err := os.Remove(string(f)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}

		return false, fmt.Errorf("remove session file: %w", err)
	}

	return true, nil
}
