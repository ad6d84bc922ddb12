// Package snapshot implements the backup commands: create, list, prune
// and restore.
package snapshot

import (
	"github.com/aitherzero/configcore/pkg/backup"
	"github.com/aitherzero/configcore/pkg/commands/internal/session"
	"github.com/aitherzero/configcore/pkg/logging"
)

// CreateBackupOptions defines the options for the CreateBackup command.
type CreateBackupOptions struct {
	ConfigDir string
	// Note is an optional free-form annotation stored with the backup.
	Note string
	// Retention overrides the default backup cap when positive.
	Retention int
}

// CreateBackupResult reports the created backup.
type CreateBackupResult struct {
	Backup backup.Info
}

// CreateBackup snapshots the store file into the backups directory and
// prunes snapshots beyond the retention cap, oldest first.
func CreateBackup(opts CreateBackupOptions) (*CreateBackupResult, error) {
	log := logging.GetLogger("commands.snapshot")
	log.Debug().Str("command", "CreateBackup").Msg("Executing command")

	s, err := session.Open(opts.ConfigDir)
	if err != nil {
		return nil, err
	}
	m := backup.NewManager(s)
	if opts.Retention > 0 {
		m = m.WithRetention(opts.Retention)
	}

	info, err := m.Create(opts.Note)
	if err != nil {
		return nil, err
	}

	log.Info().Str("command", "CreateBackup").Str("backup", info.Name).Msg("Command finished")
	return &CreateBackupResult{Backup: *info}, nil
}

// ListBackupsOptions defines the options for the ListBackups command.
type ListBackupsOptions struct {
	ConfigDir string
}

// ListBackupsResult lists backups, newest first.
type ListBackupsResult struct {
	Backups []backup.Info
}

// ListBackups returns all known backups, newest first.
func ListBackups(opts ListBackupsOptions) (*ListBackupsResult, error) {
	log := logging.GetLogger("commands.snapshot")
	log.Debug().Str("command", "ListBackups").Msg("Executing command")

	s, err := session.Open(opts.ConfigDir)
	if err != nil {
		return nil, err
	}
	list, err := backup.NewManager(s).List()
	if err != nil {
		return nil, err
	}
	return &ListBackupsResult{Backups: list}, nil
}

// PruneBackupsOptions defines the options for the PruneBackups command.
type PruneBackupsOptions struct {
	ConfigDir string
	// Keep is how many of the newest backups survive.
	Keep int
}

// PruneBackupsResult reports what pruning removed.
type PruneBackupsResult struct {
	Removed int
	Kept    int
}

// PruneBackups deletes all but the newest Keep backups.
func PruneBackups(opts PruneBackupsOptions) (*PruneBackupsResult, error) {
	log := logging.GetLogger("commands.snapshot")
	log.Debug().Str("command", "PruneBackups").Int("keep", opts.Keep).Msg("Executing command")

	s, err := session.Open(opts.ConfigDir)
	if err != nil {
		return nil, err
	}
	m := backup.NewManager(s)
	if opts.Keep > 0 {
		m = m.WithRetention(opts.Keep)
	}
	removed, err := m.Prune()
	if err != nil {
		return nil, err
	}
	list, err := m.List()
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("command", "PruneBackups").
		Int("removed", removed).
		Int("kept", len(list)).
		Msg("Command finished")
	return &PruneBackupsResult{Removed: removed, Kept: len(list)}, nil
}

// RestoreBackupOptions defines the options for the RestoreBackup command.
type RestoreBackupOptions struct {
	ConfigDir string
	// Name selects the backup; empty restores the latest.
	Name string
	// DryRun reports the plan without touching the store.
	DryRun bool
}

// RestoreBackupResult reports the executed (or planned) restore.
type RestoreBackupResult struct {
	Plan   backup.RestorePlan
	DryRun bool
}

// RestoreBackup replaces the store file with a snapshot. The current
// store file is preserved as a safety copy first, and the in-memory
// store reloads from the restored file.
func RestoreBackup(opts RestoreBackupOptions) (*RestoreBackupResult, error) {
	log := logging.GetLogger("commands.snapshot")
	log.Debug().
		Str("command", "RestoreBackup").
		Str("backup", opts.Name).
		Bool("dryRun", opts.DryRun).
		Msg("Executing command")

	s, err := session.Open(opts.ConfigDir)
	if err != nil {
		return nil, err
	}
	plan, err := backup.NewManager(s).Restore(opts.Name, opts.DryRun)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("command", "RestoreBackup").
		Str("snapshot", plan.Snapshot).
		Bool("dryRun", opts.DryRun).
		Msg("Command finished")
	return &RestoreBackupResult{Plan: *plan, DryRun: opts.DryRun}, nil
}
