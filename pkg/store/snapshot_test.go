package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aitherzero/configcore/pkg/errors"
	"github.com/aitherzero/configcore/pkg/events"
)

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.RegisterModule("labrunner", labSchema(), nil))

	snap, err := s.Snapshot()
	require.NoError(t, err)

	snap.Modules["labrunner"].Settings["port"] = 1

	v, err := s.Get("labrunner", "port")
	require.NoError(t, err)
	assert.Equal(t, 8080, intOf(v), "mutating the snapshot must not touch the store")
}

func TestImportMergesSettings(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.RegisterModule("labrunner", labSchema(), nil))
	require.NoError(t, s.Set("labrunner", "", "hostname", "keep-me"))

	incoming := newDocument()
	incoming.Modules["labrunner"] = &ModuleSection{Settings: map[string]interface{}{
		"port": 9000,
	}}
	incoming.Modules["isomanager"] = &ModuleSection{Settings: map[string]interface{}{
		"cachedir": "/var/iso",
	}}

	var imported int
	s.Bus().Subscribe(func(events.Event) { imported++ }, events.EventConfigImported)

	require.NoError(t, s.ImportDocument(incoming, false))

	v, err := s.Get("labrunner", "port")
	require.NoError(t, err)
	assert.Equal(t, 9000, intOf(v))
	v, err = s.Get("labrunner", "hostname")
	require.NoError(t, err)
	assert.Equal(t, "keep-me", v, "merge import preserves keys absent from the incoming document")
	assert.True(t, s.HasModule("isomanager"))
	assert.Equal(t, 1, imported)
}

func TestImportReplace(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.RegisterModule("labrunner", labSchema(), nil))

	incoming := newDocument()
	incoming.Modules["isomanager"] = &ModuleSection{Settings: map[string]interface{}{
		"cachedir": "/var/iso",
	}}

	require.NoError(t, s.ImportDocument(incoming, true))

	assert.False(t, s.HasModule("labrunner"))
	assert.True(t, s.HasModule("isomanager"))
}

func TestImportRejectsInvalidResult(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.RegisterModule("labrunner", labSchema(), nil))

	incoming := newDocument()
	incoming.Modules["labrunner"] = &ModuleSection{Settings: map[string]interface{}{
		"port": -1,
	}}

	err := s.ImportDocument(incoming, false)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrImportFailed))

	v, getErr := s.Get("labrunner", "port")
	require.NoError(t, getErr)
	assert.Equal(t, 8080, intOf(v), "failed import must not change the store")
}

func TestImportPreservesEnvironments(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.RegisterModule("labrunner", labSchema(), nil))
	require.NoError(t, s.CreateEnvironment("staging", "local"))

	incoming := newDocument()
	incoming.Environments["staging"] = &Environment{
		Settings: map[string]map[string]interface{}{
			"labrunner": {"port": 9443},
		},
	}
	incoming.Environments["prod"] = &Environment{Description: "production"}

	require.NoError(t, s.ImportDocument(incoming, false))

	overlay, err := s.EnvironmentOverlay("staging", "labrunner")
	require.NoError(t, err)
	assert.Equal(t, 9443, intOf(overlay["port"]))

	infos := s.Environments()
	names := make([]string, 0, len(infos))
	for _, i := range infos {
		names = append(names, i.Name)
	}
	assert.Equal(t, []string{"default", "prod", "staging"}, names)
}
