// Package testutil provides helpers for tests that need a configuration
// store in a temporary directory or controlled AITHER_* environment
// variables.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aitherzero/configcore/pkg/events"
	"github.com/aitherzero/configcore/pkg/paths"
	"github.com/aitherzero/configcore/pkg/store"
)

// TempStore opens a store in a fresh temp directory.
func TempStore(t *testing.T) *store.Store {
	t.Helper()
	p, err := paths.New(t.TempDir())
	require.NoError(t, err)
	s, err := store.Open(p, events.NewBus())
	require.NoError(t, err)
	return s
}

// SetModuleEnv sets an AITHER_<MODULE>_<KEY> override for the duration
// of the test. Key is the dotted setting path.
func SetModuleEnv(t *testing.T, module, key, value string) {
	t.Helper()
	name := store.EnvVarPrefix + strings.ToUpper(module) + "_" +
		strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	t.Setenv(name, value)
}

// ClearModuleEnv unsets every AITHER_* variable for the duration of the
// test, isolating it from the surrounding shell.
func ClearModuleEnv(t *testing.T) {
	t.Helper()
	for _, entry := range os.Environ() {
		if strings.HasPrefix(entry, store.EnvVarPrefix) {
			name, _, _ := strings.Cut(entry, "=")
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
}

// WriteConfigFile drops raw bytes at the store file location, bypassing
// the store. Used to simulate external edits and corrupt files.
func WriteConfigFile(t *testing.T, p *paths.Paths, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p.ConfigFile()), 0755))
	require.NoError(t, os.WriteFile(p.ConfigFile(), data, 0644))
}
