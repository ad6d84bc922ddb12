package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/synthfs/pkg/synthfs"
	"github.com/arthur-debert/synthfs/pkg/synthfs/core"
	"github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/arthur-debert/synthfs/pkg/synthfs/operations"

	"github.com/aitherzero/configcore/pkg/errors"
	"github.com/aitherzero/configcore/pkg/events"
)

// RestorePlan describes the file operations a restore would perform.
type RestorePlan struct {
	Snapshot   string `json:"snapshot"`
	SafetyCopy string `json:"safetyCopy,omitempty"`
	Target     string `json:"target"`
}

// Restore copies a snapshot over the live configuration file. An empty
// name restores the latest snapshot. The current file is first copied to
// a pre-restore safety snapshot inside the backups directory. With
// dryRun the plan is returned without touching disk. After a real
// restore the store reloads and backup.restored is emitted.
func (m *Manager) Restore(name string, dryRun bool) (*RestorePlan, error) {
	var info *Info
	var err error
	if name == "" {
		info, err = m.Latest()
	} else {
		info, err = m.Find(name)
	}
	if err != nil {
		return nil, err
	}

	p := m.st.Paths()
	snapshot := filepath.Join(p.BackupsPath(), info.Name)
	if _, err := os.Stat(snapshot); err != nil {
		return nil, errors.Wrapf(err, errors.ErrBackupNotFound, "snapshot file %s is missing", info.Name)
	}

	plan := &RestorePlan{
		Snapshot: snapshot,
		Target:   p.ConfigFile(),
	}
	if _, err := os.Stat(p.ConfigFile()); err == nil {
		plan.SafetyCopy = filepath.Join(p.BackupsPath(),
			safetyPrefix+time.Now().Format("20060102-150405")+".json")
	}

	if dryRun {
		m.logger.Info().
			Str("snapshot", plan.Snapshot).
			Str("target", plan.Target).
			Str("safetyCopy", plan.SafetyCopy).
			Msg("Dry run - restore plan")
		return plan, nil
	}

	if err := m.executePlan(plan); err != nil {
		return nil, err
	}

	if err := m.st.Reload(); err != nil {
		return nil, errors.Wrap(err, errors.ErrRestoreFailed, "restored file failed to load")
	}

	m.logger.Info().Str("name", info.Name).Msg("Backup restored")
	m.st.Bus().Publish(events.New(events.EventBackupRestored, "", "", map[string]interface{}{
		"name": info.Name,
	}))
	return plan, nil
}

// executePlan runs the restore as an ordered synthfs pipeline: the
// safety copy first, then the snapshot over the live file.
func (m *Manager) executePlan(plan *RestorePlan) error {
	var ops []synthfs.Operation

	if plan.SafetyCopy != "" {
		op, err := copyOperation("restore-safety", plan.Target, plan.SafetyCopy)
		if err != nil {
			return err
		}
		ops = append(ops, op)
	}
	op, err := copyOperation("restore-apply", plan.Snapshot, plan.Target)
	if err != nil {
		return err
	}
	ops = append(ops, op)

	pipeline := synthfs.NewMemPipeline()
	for _, op := range ops {
		if err := pipeline.Add(op); err != nil {
			return errors.Wrap(err, errors.ErrRestoreFailed, "failed to assemble restore pipeline")
		}
	}

	executor := synthfs.NewExecutor()
	result := executor.Run(context.Background(), pipeline, filesystem.NewOSFileSystem("/"))
	if result.GetError() != nil {
		return errors.Wrap(result.GetError(), errors.ErrRestoreFailed, "restore pipeline failed")
	}
	return nil
}

// copyOperation builds a synthfs copy with paths made relative to the
// filesystem root, as the OS filesystem adapter expects.
func copyOperation(id, source, target string) (synthfs.Operation, error) {
	relSource, err := filepath.Rel("/", source)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "failed to convert path: %s", source)
	}
	relTarget, err := filepath.Rel("/", target)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "failed to convert path: %s", target)
	}

	opID := core.OperationID(fmt.Sprintf("%s-%s", id, filepath.Base(target)))
	copyOp := operations.NewCopyOperation(opID, relTarget)
	copyOp.SetPaths(relSource, relTarget)
	return synthfs.NewOperationsPackageAdapter(copyOp), nil
}
