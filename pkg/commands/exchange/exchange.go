// Package exchange implements the export and import commands on top of
// the transfer package.
package exchange

import (
	"os"

	"github.com/aitherzero/configcore/pkg/backup"
	"github.com/aitherzero/configcore/pkg/commands/internal/session"
	"github.com/aitherzero/configcore/pkg/logging"
	"github.com/aitherzero/configcore/pkg/transfer"
)

// ExportConfigOptions defines the options for the ExportConfig command.
type ExportConfigOptions struct {
	ConfigDir string
	// Path is the output file. Its extension decides the format unless
	// Format is set.
	Path string
	// Format is json, yaml, toml or xml.
	Format string
	// Module exports one module's effective configuration.
	Module string
	// Environment exports one environment section. Mutually exclusive
	// with Module.
	Environment string
}

// ExportConfigResult reports what was written.
type ExportConfigResult struct {
	Path   string
	Format transfer.Format
}

// ExportConfig serializes store content to a file.
func ExportConfig(opts ExportConfigOptions) (*ExportConfigResult, error) {
	log := logging.GetLogger("commands.exchange")
	log.Debug().Str("command", "ExportConfig").Str("path", opts.Path).Msg("Executing command")

	format := transfer.Format("")
	if opts.Format != "" {
		f, err := transfer.ParseFormat(opts.Format)
		if err != nil {
			return nil, err
		}
		format = f
	} else {
		f, err := transfer.DetectFormat(opts.Path)
		if err != nil {
			return nil, err
		}
		format = f
	}

	s, err := session.Open(opts.ConfigDir)
	if err != nil {
		return nil, err
	}
	err = transfer.WriteFile(s, opts.Path, transfer.ExportOptions{
		Format:      format,
		Module:      opts.Module,
		Environment: opts.Environment,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("command", "ExportConfig").
		Str("path", opts.Path).
		Str("format", string(format)).
		Msg("Command finished")
	return &ExportConfigResult{Path: opts.Path, Format: format}, nil
}

// ImportConfigOptions defines the options for the ImportConfig command.
type ImportConfigOptions struct {
	ConfigDir string
	// Path is the input file. Its extension decides the format unless
	// Format is set.
	Path string
	// Format is json, yaml, toml or xml.
	Format string
	// Replace swaps the whole store for the imported document instead of
	// deep-merging into it.
	Replace bool
	// SkipBackup disables the automatic pre-import backup.
	SkipBackup bool
}

// ImportConfigResult reports the import and the backup taken before it.
type ImportConfigResult struct {
	Path     string
	Replaced bool
	// Backup is the name of the pre-import snapshot, empty when the
	// store had no file yet or SkipBackup was set.
	Backup string
}

// ImportConfig applies a configuration file to the store, taking a
// backup of the current store file first. A failed import leaves the
// store untouched.
func ImportConfig(opts ImportConfigOptions) (*ImportConfigResult, error) {
	log := logging.GetLogger("commands.exchange")
	log.Debug().
		Str("command", "ImportConfig").
		Str("path", opts.Path).
		Bool("replace", opts.Replace).
		Msg("Executing command")

	var format transfer.Format
	if opts.Format != "" {
		f, err := transfer.ParseFormat(opts.Format)
		if err != nil {
			return nil, err
		}
		format = f
	}

	s, err := session.Open(opts.ConfigDir)
	if err != nil {
		return nil, err
	}

	result := &ImportConfigResult{Path: opts.Path, Replaced: opts.Replace}
	if !opts.SkipBackup {
		if _, err := os.Stat(s.Paths().ConfigFile()); err == nil {
			info, err := backup.NewManager(s).Create("pre-import")
			if err != nil {
				return nil, err
			}
			result.Backup = info.Name
		}
	}

	err = transfer.Import(s, opts.Path, transfer.ImportOptions{
		Format:  format,
		Replace: opts.Replace,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("command", "ImportConfig").
		Str("path", opts.Path).
		Str("backup", result.Backup).
		Msg("Command finished")
	return result, nil
}
