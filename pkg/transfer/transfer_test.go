package transfer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aitherzero/configcore/pkg/errors"
	"github.com/aitherzero/configcore/pkg/events"
	"github.com/aitherzero/configcore/pkg/paths"
	"github.com/aitherzero/configcore/pkg/schema"
	"github.com/aitherzero/configcore/pkg/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	p, err := paths.New(t.TempDir())
	require.NoError(t, err)
	s, err := store.Open(p, events.NewBus())
	require.NoError(t, err)
	return s
}

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	s := newTestStore(t)
	sc := &schema.Schema{
		Properties: map[string]*schema.Property{
			"port":     {Type: "int", Min: floatPtr(1), Max: floatPtr(65535), Default: 8080},
			"logLevel": {Type: "string", Enum: []interface{}{"debug", "info", "warn"}},
		},
	}
	require.NoError(t, s.RegisterModule("labrunner", sc, map[string]interface{}{"logLevel": "info"}))
	require.NoError(t, s.CreateEnvironment("staging", "staging lab"))
	require.NoError(t, s.Set("labrunner", "staging", "port", 9090))
	return s
}

func floatPtr(f float64) *float64 { return &f }

// asFloat normalizes the int/float64 split that JSON decoding introduces.
func asFloat(t *testing.T, v interface{}) float64 {
	t.Helper()
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	}
	t.Fatalf("not a number: %T(%v)", v, v)
	return 0
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"toml", FormatTOML, false},
		{"xml", FormatXML, false},
		{"ini", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.True(t, errors.IsErrorCode(err, errors.ErrFormatUnknown), tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestDetectFormat(t *testing.T) {
	got, err := DetectFormat("/tmp/export.Yml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, got)

	_, err = DetectFormat("/tmp/export")
	assert.True(t, errors.IsErrorCode(err, errors.ErrFormatUnknown))
}

func TestModuleAndEnvironmentExportsAreExclusive(t *testing.T) {
	s := seededStore(t)
	_, err := Export(s, ExportOptions{Module: "labrunner", Environment: "staging"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestWholeStoreRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML, FormatTOML, FormatXML} {
		t.Run(string(format), func(t *testing.T) {
			src := seededStore(t)
			path := filepath.Join(t.TempDir(), "export."+string(format))
			require.NoError(t, WriteFile(src, path, ExportOptions{}))

			dst := newTestStore(t)
			require.NoError(t, Import(dst, path, ImportOptions{Replace: true}))

			assert.True(t, dst.HasModule("labrunner"))
			assert.True(t, dst.HasEnvironment("staging"))

			overlay, err := dst.EnvironmentOverlay("staging", "labrunner")
			require.NoError(t, err)
			assert.InDelta(t, 9090, asFloat(t, overlay["port"]), 0)

			base, err := dst.BaseSettings("labrunner")
			require.NoError(t, err)
			assert.Equal(t, "info", base["logLevel"])
		})
	}
}

func TestModuleExportShape(t *testing.T) {
	s := seededStore(t)
	require.NoError(t, s.SwitchEnvironment("staging"))

	data, err := Export(s, ExportOptions{Format: FormatJSON, Module: "labrunner"})
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, "labrunner", payload["module"])
	assert.Equal(t, "staging", payload["environment"])

	settings, ok := payload["settings"].(map[string]interface{})
	require.True(t, ok)
	// Effective view: overlay port wins, base logLevel survives
	assert.InDelta(t, 9090, asFloat(t, settings["port"]), 0)
	assert.Equal(t, "info", settings["logLevel"])
}

func TestModuleImportAppliesBaseSettings(t *testing.T) {
	src := seededStore(t)
	path := filepath.Join(t.TempDir(), "labrunner.json")
	require.NoError(t, WriteFile(src, path, ExportOptions{Module: "labrunner"}))

	dst := seededStore(t)
	require.NoError(t, Import(dst, path, ImportOptions{}))

	base, err := dst.BaseSettings("labrunner")
	require.NoError(t, err)
	// The export carried the effective view, so port lands in base settings
	assert.InDelta(t, 8080, asFloat(t, base["port"]), 0)
}

func TestEnvironmentExportImport(t *testing.T) {
	src := seededStore(t)
	path := filepath.Join(t.TempDir(), "staging.yaml")
	require.NoError(t, WriteFile(src, path, ExportOptions{Environment: "staging"}))

	dst := seededStore(t)
	require.NoError(t, dst.Set("labrunner", "staging", "port", 1111))
	require.NoError(t, Import(dst, path, ImportOptions{}))

	overlay, err := dst.EnvironmentOverlay("staging", "labrunner")
	require.NoError(t, err)
	assert.InDelta(t, 9090, asFloat(t, overlay["port"]), 0, "imported overlay wins over the local value")
}

func TestExportUnknownEnvironment(t *testing.T) {
	s := seededStore(t)
	_, err := Export(s, ExportOptions{Environment: "nope"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrEnvNotFound))
}

func TestImportRejectsInvalidSettings(t *testing.T) {
	dst := seededStore(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	payload := map[string]interface{}{
		"module":   "labrunner",
		"settings": map[string]interface{}{"port": 700000},
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	err = Import(dst, path, ImportOptions{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))

	v, err := dst.Get("labrunner", "port")
	require.NoError(t, err)
	assert.InDelta(t, 8080, asFloat(t, v), 0, "failed import must not change the store")
}

func TestImportUnparseableFile(t *testing.T) {
	dst := newTestStore(t)
	path := filepath.Join(t.TempDir(), "garbage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	err := Import(dst, path, ImportOptions{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrImportFailed))
}

func TestTOMLExportHasNoNulls(t *testing.T) {
	s := seededStore(t)
	require.NoError(t, s.Set("labrunner", "", "token", nil))

	data, err := Export(s, ExportOptions{Format: FormatTOML})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "token")
}

func TestXMLRoundTripPreservesTypes(t *testing.T) {
	payload := map[string]interface{}{
		"name":    "lab",
		"count":   float64(3),
		"enabled": true,
		"missing": nil,
		"nested":  map[string]interface{}{"ratio": 0.5},
		"tags":    []interface{}{"a", "b"},
	}
	data, err := encodeXML(payload)
	require.NoError(t, err)

	got, err := decodeXML(data)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}
