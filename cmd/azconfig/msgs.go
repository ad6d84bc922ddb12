package azconfig

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort     = "Layered configuration store for lab environments"
	MsgInitShort     = "Create the configuration store"
	MsgRegisterShort = "Register a module with optional schema and defaults"
	MsgGetShort      = "Resolve a setting through all layers"
	MsgSetShort      = "Write a setting"
	MsgUnsetShort    = "Remove a setting"
	MsgShowShort     = "Show effective configuration"
	MsgValidateShort = "Validate configuration against registered schemas"
	MsgEnvShort      = "Manage environments"
	MsgEnvListShort  = "List environments"
	MsgEnvNewShort   = "Create an environment"
	MsgEnvUseShort   = "Switch the current environment"
	MsgEnvRmShort    = "Delete an environment"
	MsgBackupShort   = "Manage configuration backups"
	MsgBackupNew     = "Create a backup of the store file"
	MsgBackupList    = "List backups, newest first"
	MsgBackupPrune   = "Delete backups beyond the retention cap"
	MsgRestoreShort  = "Restore the store from a backup"
	MsgExportShort   = "Export configuration to a file"
	MsgImportShort   = "Import configuration from a file"
	MsgWatchShort    = "Watch the store file and hot-reload on changes"
	MsgWatchEnable   = "Enable hot reload for this store"
	MsgWatchDisable  = "Disable hot reload for this store"
	MsgModulesShort  = "Manage registered modules"
	MsgModulesList   = "List registered modules"
	MsgVersionShort  = "Print the azconfig version"
	MsgCompletion    = "Generate shell completion script"

	// Status messages
	MsgStoreCreated     = "Created configuration store at %s\n"
	MsgStoreExists      = "Configuration store already exists at %s\n"
	MsgModuleRegistered = "Registered module '%s'\n"
	MsgValueSet         = "%s.%s = %v\n"
	MsgValueUnset       = "Removed %s.%s\n"
	MsgAllValid         = "All modules valid in environment '%s'\n"
	MsgEnvCreated       = "Created environment '%s'\n"
	MsgEnvSwitched      = "Switched environment: %s -> %s\n"
	MsgEnvDeleted       = "Deleted environment '%s'\n"
	MsgEnvCurrent       = "* %s"
	MsgBackupCreated    = "Created backup %s (%d bytes)\n"
	MsgBackupPruned     = "Pruned %d backups, %d kept\n"
	MsgNoBackups        = "No backups found."
	MsgRestorePlanned   = "Would restore %s over %s\n"
	MsgRestoreDone      = "Restored %s\n"
	MsgExported         = "Exported to %s (%s)\n"
	MsgImported         = "Imported %s\n"
	MsgImportBackup     = "Pre-import backup: %s\n"
	MsgWatching         = "Watching %s (Ctrl-C to stop)\n"
	MsgReloaded         = "Reloaded, changed modules: %s\n"
	MsgHotReloadOn      = "Hot reload enabled (debounce %dms)\n"
	MsgHotReloadOff     = "Hot reload disabled"

	// Flag descriptions
	MsgFlagVerbose     = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfigDir   = "Configuration directory (default: platform config dir)"
	MsgFlagEnvironment = "Target environment instead of the current one"
	MsgFlagModule      = "Limit to one module"
	MsgFlagSchema      = "Path to a JSON or YAML schema document"
	MsgFlagDefaults    = "Path to a JSON or YAML defaults document"
	MsgFlagString      = "Store the value verbatim without JSON interpretation"
	MsgFlagFormat      = "Serialization format: json, yaml, toml or xml"
	MsgFlagReplace     = "Replace the whole store instead of merging"
	MsgFlagSkipBackup  = "Skip the automatic pre-import backup"
	MsgFlagNote        = "Free-form note stored with the backup"
	MsgFlagRetention   = "How many backups to keep"
	MsgFlagDryRun      = "Preview the restore without touching the store"
	MsgFlagDebounce    = "Debounce interval in milliseconds"
	MsgFlagForce       = "Watch even when hot reload is disabled in the store"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)
)
