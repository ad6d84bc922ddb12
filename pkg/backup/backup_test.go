package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aitherzero/configcore/pkg/errors"
	"github.com/aitherzero/configcore/pkg/events"
	"github.com/aitherzero/configcore/pkg/paths"
	"github.com/aitherzero/configcore/pkg/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	p, err := paths.New(t.TempDir())
	require.NoError(t, err)
	s, err := store.Open(p, events.NewBus())
	require.NoError(t, err)
	require.NoError(t, s.RegisterModule("labrunner", nil, map[string]interface{}{"port": 8080}))
	return s
}

func TestCreateAndList(t *testing.T) {
	s := newTestStore(t)
	m := NewManager(s)

	var created int
	s.Bus().Subscribe(func(events.Event) { created++ }, events.EventBackupCreated)

	info, err := m.Create("before upgrade")
	require.NoError(t, err)
	assert.Contains(t, info.Name, "configuration-")
	assert.Equal(t, "before upgrade", info.Note)
	assert.NotEmpty(t, info.Checksum)
	assert.FileExists(t, filepath.Join(s.Paths().BackupsPath(), info.Name))
	assert.Equal(t, 1, created)

	list, err := m.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, info.Name, list[0].Name)
}

func TestCreateWithoutStoreFile(t *testing.T) {
	p, err := paths.New(t.TempDir())
	require.NoError(t, err)
	s, err := store.Open(p, nil)
	require.NoError(t, err)

	_, err = NewManager(s).Create("")
	assert.True(t, errors.IsErrorCode(err, errors.ErrBackupCreate))
}

func TestSameSecondSnapshotsGetDistinctNames(t *testing.T) {
	s := newTestStore(t)
	m := NewManager(s)

	a, err := m.Create("")
	require.NoError(t, err)
	b, err := m.Create("")
	require.NoError(t, err)

	assert.NotEqual(t, a.Name, b.Name)

	list, err := m.List()
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestRetentionPrunesOldest(t *testing.T) {
	s := newTestStore(t)
	m := NewManager(s).WithRetention(2)

	var names []string
	for i := 0; i < 4; i++ {
		info, err := m.Create("")
		require.NoError(t, err)
		names = append(names, info.Name)
		time.Sleep(5 * time.Millisecond) // distinct CreatedAt ordering
	}

	list, err := m.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, names[3], list[0].Name)
	assert.Equal(t, names[2], list[1].Name)

	// Pruned snapshot files are gone from disk too
	for _, old := range names[:2] {
		_, err := os.Stat(filepath.Join(s.Paths().BackupsPath(), old))
		assert.True(t, os.IsNotExist(err), "snapshot %s should be pruned", old)
	}
}

func TestFindUnknownBackup(t *testing.T) {
	s := newTestStore(t)
	m := NewManager(s)

	_, err := m.Find("configuration-19990101-000000.json")
	assert.True(t, errors.IsErrorCode(err, errors.ErrBackupNotFound))
}

func TestLatestWithNoBackups(t *testing.T) {
	s := newTestStore(t)
	_, err := NewManager(s).Latest()
	assert.True(t, errors.IsErrorCode(err, errors.ErrBackupNotFound))
}

func TestRestoreDryRunTouchesNothing(t *testing.T) {
	s := newTestStore(t)
	m := NewManager(s)

	info, err := m.Create("")
	require.NoError(t, err)
	require.NoError(t, s.Set("labrunner", "", "port", 9999))
	before, err := os.ReadFile(s.Paths().ConfigFile())
	require.NoError(t, err)

	plan, err := m.Restore(info.Name, true)
	require.NoError(t, err)
	assert.Equal(t, s.Paths().ConfigFile(), plan.Target)
	assert.NotEmpty(t, plan.SafetyCopy)

	after, err := os.ReadFile(s.Paths().ConfigFile())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRestoreRevertsChanges(t *testing.T) {
	s := newTestStore(t)
	m := NewManager(s)

	info, err := m.Create("good state")
	require.NoError(t, err)
	require.NoError(t, s.Set("labrunner", "", "port", 9999))

	var restored int
	s.Bus().Subscribe(func(events.Event) { restored++ }, events.EventBackupRestored)

	_, err = m.Restore(info.Name, false)
	require.NoError(t, err)

	v, err := s.Get("labrunner", "port")
	require.NoError(t, err)
	assert.InDelta(t, 8080, v.(float64), 0, "restore must bring back the snapshotted value")
	assert.Equal(t, 1, restored)

	// The pre-restore state is preserved as a safety copy
	entries, err := os.ReadDir(s.Paths().BackupsPath())
	require.NoError(t, err)
	found := false
	for _, e := range entries {
		if len(e.Name()) > len(safetyPrefix) && e.Name()[:len(safetyPrefix)] == safetyPrefix {
			found = true
		}
	}
	assert.True(t, found, "expected a pre-restore safety copy")
}

func TestRestoreLatestByDefault(t *testing.T) {
	s := newTestStore(t)
	m := NewManager(s)

	_, err := m.Create("older")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, s.Set("labrunner", "", "port", 1234))
	newest, err := m.Create("newer")
	require.NoError(t, err)

	plan, err := m.Restore("", false)
	require.NoError(t, err)
	assert.Contains(t, plan.Snapshot, newest.Name)

	v, err := s.Get("labrunner", "port")
	require.NoError(t, err)
	assert.InDelta(t, 1234, v.(float64), 0)
}

func TestRestoreUnknownName(t *testing.T) {
	s := newTestStore(t)
	m := NewManager(s)
	_, err := m.Restore("configuration-19990101-000000.json", false)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBackupNotFound))
}
