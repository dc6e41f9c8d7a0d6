package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ErrNoSession means nobody is logged in.
var ErrNoSession = errors.New("not logged in")

// Session is the persisted login state shared by the CLI and TUI.
type Session struct {
	Username   string    `toml:"username"`
	Role       string    `toml:"role"`
	LoggedInAt time.Time `toml:"logged_in_at"`
}

// SessionPath returns the session file location.
func SessionPath() string {
	return filepath.Join(ConfigDir(), "session.toml")
}

// LoadSession returns the current session. ERP_USER, when set, takes
// precedence over the session file.
func LoadSession() (Session, error) {
	if u := strings.TrimSpace(os.Getenv("ERP_USER")); u != "" {
		return Session{Username: u}, nil
	}

	var s Session
	data, err := os.ReadFile(SessionPath())
	if err != nil {
		if os.IsNotExist(err) {
			return s, ErrNoSession
		}
		return s, fmt.Errorf("reading session: %w", err)
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing session: %w", err)
	}
	if s.Username == "" {
		return s, ErrNoSession
	}
	return s, nil
}

// SaveSession persists s.
func SaveSession(s Session) error {
	if err := os.MkdirAll(ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(SessionPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating session file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(s)
}

// ClearSession removes the session file. A missing file is not an error.
func ClearSession() error {
	err := os.Remove(SessionPath())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}
