package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/macropower/notemover/api/v1beta1/settings"
	"github.com/macropower/notemover/pkg/config"
	"github.com/macropower/notemover/pkg/vault"
)

// loadSettings reads the settings file, falling back to defaults when it
// does not exist yet.
func (ra *RootArgs) loadSettings() (*settings.Settings, error) {
	s, err := settings.Load(ra.SettingsPath, config.WithColorErrors(isTerminal(os.Stderr)))
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("settings file not found, using defaults", slog.String("path", ra.SettingsPath))
		return settings.New(), nil
	}
	if err != nil {
		return nil, err //nolint:wrapcheck // Already wrapped.
	}

	return s, nil
}

// saveSettings writes s to the settings file.
func (ra *RootArgs) saveSettings(s *settings.Settings) error {
	err := s.Save(ra.SettingsPath)
	if err != nil {
		return err //nolint:wrapcheck // Already wrapped.
	}

	slog.Debug("saved settings", slog.String("path", ra.SettingsPath))

	return nil
}

// editSettings loads the settings, applies edit and saves the result.
func (ra *RootArgs) editSettings(edit func(*settings.Settings) (*settings.Settings, error)) (*settings.Settings, error) {
	s, err := ra.loadSettings()
	if err != nil {
		return nil, err
	}

	s, err = edit(s)
	if err != nil {
		return nil, err
	}

	err = ra.saveSettings(s)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// openVault opens the vault directory configured by s.
func (ra *RootArgs) openVault(s *settings.Settings) (*vault.Vault, error) {
	v, err := vault.Open(ra.VaultDir,
		vault.WithConfigDir(s.ConfigDir),
		vault.WithNestedTags(s.ExpandNestedTags),
	)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}

	return v, nil
}

func closeVault(v *vault.Vault) {
	err := v.Close()
	if err != nil {
		slog.Error("close vault", slog.Any("err", err))
	}
}
