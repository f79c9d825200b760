// Package config persists user settings and the translation credential
// between runs.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"subgen/internal/stage"
)

const (
	settingsFileName   = "settings.toml"
	credentialFileName = "deepl_key"
)

// Settings are the persisted defaults applied under explicit flags.
type Settings struct {
	Languages     []string `toml:"languages"`
	Model         string   `toml:"model"`
	Format        string   `toml:"format"`
	Provider      string   `toml:"provider"`
	OutputBaseDir string   `toml:"output_base_dir"`
}

// Defaults returns the settings used when no file exists yet.
func Defaults() Settings {
	return Settings{
		Languages: []string{"en"},
		Model:     "large",
		Format:    "srt",
		Provider:  "deepl",
	}
}

// Store reads and writes the settings and credential files under one
// directory, by default <user config dir>/subgen.
type Store struct {
	dir string
}

// NewStore builds a store rooted at the user's config directory.
func NewStore() (*Store, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	return NewStoreAt(filepath.Join(base, "subgen")), nil
}

// NewStoreAt builds a store rooted at an explicit directory.
func NewStoreAt(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// Load returns the persisted settings, or Defaults when no file exists.
func (s *Store) Load() (Settings, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, settingsFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return Settings{}, stage.Wrap(stage.ErrPersistence, "config", "read settings", err)
	}

	settings := Defaults()
	if err := toml.Unmarshal(data, &settings); err != nil {
		return Settings{}, stage.Wrap(stage.ErrPersistence, "config", "parse settings", err)
	}
	return settings, nil
}

// Save writes the settings file, creating the config directory if needed.
func (s *Store) Save(settings Settings) error {
	data, err := toml.Marshal(settings)
	if err != nil {
		return stage.Wrap(stage.ErrPersistence, "config", "encode settings", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return stage.Wrap(stage.ErrPersistence, "config", "create config dir", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, settingsFileName), data, 0o644); err != nil {
		return stage.Wrap(stage.ErrPersistence, "config", "write settings", err)
	}
	return nil
}

// LoadCredential returns the cached translation credential. A missing
// file and the literal value "free" both mean no credential, which the
// translation stage treats as degraded mode.
func (s *Store) LoadCredential() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, credentialFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", stage.Wrap(stage.ErrPersistence, "config", "read credential", err)
	}
	credential := strings.TrimSpace(string(data))
	if credential == "free" {
		return "", nil
	}
	return credential, nil
}

// SaveCredential caches the credential for later runs. The file is
// user-only since it holds a secret.
func (s *Store) SaveCredential(credential string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return stage.Wrap(stage.ErrPersistence, "config", "create config dir", err)
	}
	path := filepath.Join(s.dir, credentialFileName)
	if err := os.WriteFile(path, []byte(strings.TrimSpace(credential)+"\n"), 0o600); err != nil {
		return stage.Wrap(stage.ErrPersistence, "config", "write credential", err)
	}
	return nil
}
