// Package backup manages snapshots of the configuration store file:
// timestamped copies under <configdir>/backups with a sidecar metadata
// index and a retention cap. Restore runs as a synthfs pipeline (safety
// copy of the current file, then the snapshot copied over it) so it can
// be previewed with dry-run and never leaves a half-applied state.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/aitherzero/configcore/pkg/errors"
	"github.com/aitherzero/configcore/pkg/events"
	"github.com/aitherzero/configcore/pkg/logging"
	"github.com/aitherzero/configcore/pkg/store"
)

// DefaultRetention is how many snapshots are kept unless configured.
const DefaultRetention = 10

// nameFormat produces configuration-YYYYMMDD-HHMMSS.json.
const nameFormat = "configuration-20060102-150405.json"

// safetyPrefix marks the pre-restore copy of the live file.
const safetyPrefix = "pre-restore-"

// Info describes one snapshot.
type Info struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Note      string    `json:"note,omitempty"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum"`
}

// Manager creates, lists, prunes and restores snapshots for one store.
type Manager struct {
	st        *store.Store
	logger    zerolog.Logger
	retention int
}

// NewManager creates a backup manager with the default retention cap.
func NewManager(st *store.Store) *Manager {
	return &Manager{
		st:        st,
		logger:    logging.GetLogger("backup"),
		retention: DefaultRetention,
	}
}

// WithRetention overrides the retention cap. Values below 1 keep 1.
func (m *Manager) WithRetention(n int) *Manager {
	if n < 1 {
		n = 1
	}
	m.retention = n
	return m
}

// Create snapshots the current store file and prunes old snapshots to
// the retention cap. Emits backup.created.
func (m *Manager) Create(note string) (*Info, error) {
	p := m.st.Paths()
	data, err := os.ReadFile(p.ConfigFile())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrBackupCreate, "no configuration file to back up")
		}
		return nil, errors.Wrap(err, errors.ErrBackupCreate, "failed to read configuration file")
	}
	if err := p.EnsureBackupsDir(); err != nil {
		return nil, err
	}

	name := time.Now().Format(nameFormat)
	target := filepath.Join(p.BackupsPath(), name)
	// A second snapshot within the same second keeps both files apart.
	for i := 1; ; i++ {
		if _, err := os.Stat(target); os.IsNotExist(err) {
			break
		}
		target = filepath.Join(p.BackupsPath(), fmt.Sprintf("%s.%d", name, i))
	}
	name = filepath.Base(target)

	if err := os.WriteFile(target, data, 0644); err != nil {
		return nil, errors.Wrapf(err, errors.ErrBackupCreate, "failed to write snapshot %s", name)
	}

	info := Info{
		Name:      name,
		CreatedAt: time.Now(),
		Note:      note,
		Size:      int64(len(data)),
		Checksum:  store.FileChecksum(target),
	}

	index, err := m.readIndex()
	if err != nil {
		return nil, err
	}
	index = append(index, info)
	if err := m.writeIndex(index); err != nil {
		return nil, err
	}

	pruned, err := m.pruneLocked(index, name)
	if err != nil {
		m.logger.Warn().Err(err).Msg("Snapshot retention prune failed")
	} else if pruned > 0 {
		m.logger.Debug().Int("pruned", pruned).Msg("Old snapshots pruned")
	}

	m.logger.Info().Str("name", name).Int64("size", info.Size).Msg("Backup created")
	m.st.Bus().Publish(events.New(events.EventBackupCreated, "", "", map[string]interface{}{
		"name": name,
		"note": note,
	}))
	return &info, nil
}

// List returns all snapshots, newest first.
func (m *Manager) List() ([]Info, error) {
	index, err := m.readIndex()
	if err != nil {
		return nil, err
	}
	sort.Slice(index, func(i, j int) bool { return index[i].CreatedAt.After(index[j].CreatedAt) })
	return index, nil
}

// Latest returns the newest snapshot.
func (m *Manager) Latest() (*Info, error) {
	list, err := m.List()
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errors.New(errors.ErrBackupNotFound, "no backups exist")
	}
	return &list[0], nil
}

// Find returns the snapshot with the given file name.
func (m *Manager) Find(name string) (*Info, error) {
	list, err := m.List()
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].Name == name {
			return &list[i], nil
		}
	}
	return nil, errors.Newf(errors.ErrBackupNotFound, "backup %q does not exist", name)
}

// Prune removes snapshots beyond the retention cap, oldest first, and
// returns how many were removed.
func (m *Manager) Prune() (int, error) {
	index, err := m.readIndex()
	if err != nil {
		return 0, err
	}
	return m.pruneLocked(index, "")
}

// pruneLocked drops the oldest entries beyond the cap. keep is a name
// excluded from deletion regardless of age (the snapshot just taken or
// being restored).
func (m *Manager) pruneLocked(index []Info, keep string) (int, error) {
	if len(index) <= m.retention {
		return 0, nil
	}
	sort.Slice(index, func(i, j int) bool { return index[i].CreatedAt.After(index[j].CreatedAt) })

	kept := index[:m.retention]
	doomed := index[m.retention:]

	removed := 0
	var survivors []Info
	for _, info := range doomed {
		if info.Name == keep {
			survivors = append(survivors, info)
			continue
		}
		path := filepath.Join(m.st.Paths().BackupsPath(), info.Name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			m.logger.Warn().Err(err).Str("name", info.Name).Msg("Failed to remove old snapshot")
			survivors = append(survivors, info)
			continue
		}
		removed++
	}

	if err := m.writeIndex(append(kept, survivors...)); err != nil {
		return removed, err
	}
	return removed, nil
}

func (m *Manager) readIndex() ([]Info, error) {
	data, err := os.ReadFile(m.st.Paths().BackupIndexPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to read backup index")
	}
	var index []Info
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "backup index is corrupt")
	}
	return index, nil
}

func (m *Manager) writeIndex(index []Info) error {
	sort.Slice(index, func(i, j int) bool { return index[i].CreatedAt.After(index[j].CreatedAt) })
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to serialize backup index")
	}
	if err := m.st.Paths().EnsureBackupsDir(); err != nil {
		return err
	}
	if err := os.WriteFile(m.st.Paths().BackupIndexPath(), data, 0644); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to write backup index")
	}
	return nil
}
