// Package paths provides centralized path handling for configcore.
// The configuration store lives at a fixed per-platform location
// (%APPDATA%\AitherZero on Windows, ~/.aitherzero elsewhere) for
// compatibility with existing AitherZero installations; auxiliary
// directories (state, cache) follow the XDG Base Directory spec.
package paths

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/aitherzero/configcore/pkg/errors"
)

// Environment variable names
const (
	// EnvConfigDir overrides the configuration directory entirely
	EnvConfigDir = "AITHER_CONFIG_DIR"

	// EnvAppData is the Windows roaming application data directory
	EnvAppData = "APPDATA"
)

// Default directories and files
// IMPORTANT: These constants define the store's on-disk layout and are NOT
// user-configurable. They must remain consistent across installations so
// that different tools reading the same store agree on where things live.
const (
	// AppDirName is the directory name under APPDATA on Windows
	AppDirName = "AitherZero"

	// UnixDirName is the hidden directory name under $HOME elsewhere
	UnixDirName = ".aitherzero"

	// ConfigFileName is the name of the configuration store file
	ConfigFileName = "configuration.json"

	// BackupsDir is the subdirectory for configuration backups
	BackupsDir = "backups"

	// BackupIndexFile is the sidecar metadata file for backups
	BackupIndexFile = "backups.json"

	// ExportsDir is the default subdirectory for exports
	ExportsDir = "exports"
)

// Paths provides centralized path management for the configuration store
type Paths struct {
	configDir    string
	usedOverride bool
}

// New creates a Paths instance. If configDir is non-empty it takes
// precedence over both the AITHER_CONFIG_DIR environment variable and
// the platform default.
func New(configDir string) (*Paths, error) {
	if configDir != "" {
		return &Paths{configDir: filepath.Clean(configDir), usedOverride: true}, nil
	}

	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return &Paths{configDir: filepath.Clean(dir), usedOverride: true}, nil
	}

	dir, err := platformConfigDir()
	if err != nil {
		return nil, err
	}
	return &Paths{configDir: dir}, nil
}

// platformConfigDir returns the fixed per-platform configuration directory.
func platformConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		appData := os.Getenv(EnvAppData)
		if appData == "" {
			return "", errors.New(errors.ErrConfigLoad, "APPDATA is not set")
		}
		return filepath.Join(appData, AppDirName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrConfigLoad, "cannot determine home directory")
	}
	return filepath.Join(home, UnixDirName), nil
}

// ConfigDir returns the configuration directory
func (p *Paths) ConfigDir() string {
	return p.configDir
}

// UsedOverride reports whether the directory came from an explicit
// override rather than the platform default.
func (p *Paths) UsedOverride() bool {
	return p.usedOverride
}

// ConfigFile returns the full path of the configuration store file
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.configDir, ConfigFileName)
}

// BackupsPath returns the directory holding configuration backups
func (p *Paths) BackupsPath() string {
	return filepath.Join(p.configDir, BackupsDir)
}

// BackupIndexPath returns the backup metadata sidecar file
func (p *Paths) BackupIndexPath() string {
	return filepath.Join(p.BackupsPath(), BackupIndexFile)
}

// ExportsPath returns the default directory for exported configuration
func (p *Paths) ExportsPath() string {
	return filepath.Join(p.configDir, ExportsDir)
}

// StateDir returns the XDG state directory for configcore (logs etc.)
func (p *Paths) StateDir() string {
	return filepath.Join(xdg.StateHome, "configcore")
}

// CacheDir returns the XDG cache directory for configcore
func (p *Paths) CacheDir() string {
	return filepath.Join(xdg.CacheHome, "configcore")
}

// EnsureConfigDir creates the configuration directory if missing
func (p *Paths) EnsureConfigDir() error {
	if err := os.MkdirAll(p.configDir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create config directory %s", p.configDir)
	}
	return nil
}

// EnsureBackupsDir creates the backups directory if missing
func (p *Paths) EnsureBackupsDir() error {
	if err := os.MkdirAll(p.BackupsPath(), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create backups directory %s", p.BackupsPath())
	}
	return nil
}
