// Package commands provides high-level command implementations for the
// configuration store.
//
// This package contains the command orchestration layer that coordinates
// between the CLI interface and the store functionality.
//
// Each command is implemented in its own subdirectory:
//   - initialize/ - InitStore command
//   - register/   - RegisterModule command
//   - get/        - GetValue command
//   - set/        - SetValue command
//   - unset/      - UnsetValue command
//   - show/       - ShowConfig command
//   - validate/   - ValidateConfig command
//   - envs/       - environment management commands
//   - snapshot/   - backup and restore commands
//   - exchange/   - export and import commands
//   - watch/      - WatchStore command
//   - internal/   - shared store session logic
//
// This file serves as the main entry point and re-exports all command
// functions to keep call sites on a single import.
package commands

import (
	"context"

	"github.com/aitherzero/configcore/pkg/commands/envs"
	"github.com/aitherzero/configcore/pkg/commands/exchange"
	"github.com/aitherzero/configcore/pkg/commands/get"
	"github.com/aitherzero/configcore/pkg/commands/initialize"
	"github.com/aitherzero/configcore/pkg/commands/register"
	"github.com/aitherzero/configcore/pkg/commands/set"
	"github.com/aitherzero/configcore/pkg/commands/show"
	"github.com/aitherzero/configcore/pkg/commands/snapshot"
	"github.com/aitherzero/configcore/pkg/commands/unset"
	"github.com/aitherzero/configcore/pkg/commands/validate"
	"github.com/aitherzero/configcore/pkg/commands/watch"
)

// Re-export all command types and functions to maintain a stable API

// InitStore creates the configuration store file if it does not exist.
type InitStoreOptions = initialize.InitStoreOptions
type InitStoreResult = initialize.InitStoreResult

func InitStore(opts InitStoreOptions) (*InitStoreResult, error) {
	return initialize.InitStore(opts)
}

// RegisterModule registers a module section with optional schema and defaults.
type RegisterModuleOptions = register.RegisterModuleOptions
type RegisterModuleResult = register.RegisterModuleResult

func RegisterModule(opts RegisterModuleOptions) (*RegisterModuleResult, error) {
	return register.RegisterModule(opts)
}

// GetValue resolves one setting through the full layer stack.
type GetValueOptions = get.GetValueOptions
type GetValueResult = get.GetValueResult

func GetValue(opts GetValueOptions) (*GetValueResult, error) {
	return get.GetValue(opts)
}

// SetValue writes one setting, validating the result first.
type SetValueOptions = set.SetValueOptions
type SetValueResult = set.SetValueResult

func SetValue(opts SetValueOptions) (*SetValueResult, error) {
	return set.SetValue(opts)
}

// UnsetValue removes one setting.
type UnsetValueOptions = unset.UnsetValueOptions
type UnsetValueResult = unset.UnsetValueResult

func UnsetValue(opts UnsetValueOptions) (*UnsetValueResult, error) {
	return unset.UnsetValue(opts)
}

// ShowConfig resolves the effective configuration of one or all modules.
type ShowConfigOptions = show.ShowConfigOptions
type ShowConfigResult = show.ShowConfigResult

func ShowConfig(opts ShowConfigOptions) (*ShowConfigResult, error) {
	return show.ShowConfig(opts)
}

// ValidateConfig checks module configuration against registered schemas.
type ValidateConfigOptions = validate.ValidateConfigOptions
type ValidateConfigResult = validate.ValidateConfigResult

func ValidateConfig(opts ValidateConfigOptions) (*ValidateConfigResult, error) {
	return validate.ValidateConfig(opts)
}

// Environment management commands.
type ListEnvironmentsOptions = envs.ListEnvironmentsOptions
type ListEnvironmentsResult = envs.ListEnvironmentsResult
type CreateEnvironmentOptions = envs.CreateEnvironmentOptions
type CreateEnvironmentResult = envs.CreateEnvironmentResult
type SwitchEnvironmentOptions = envs.SwitchEnvironmentOptions
type SwitchEnvironmentResult = envs.SwitchEnvironmentResult
type DeleteEnvironmentOptions = envs.DeleteEnvironmentOptions
type DeleteEnvironmentResult = envs.DeleteEnvironmentResult

func ListEnvironments(opts ListEnvironmentsOptions) (*ListEnvironmentsResult, error) {
	return envs.ListEnvironments(opts)
}

func CreateEnvironment(opts CreateEnvironmentOptions) (*CreateEnvironmentResult, error) {
	return envs.CreateEnvironment(opts)
}

func SwitchEnvironment(opts SwitchEnvironmentOptions) (*SwitchEnvironmentResult, error) {
	return envs.SwitchEnvironment(opts)
}

func DeleteEnvironment(opts DeleteEnvironmentOptions) (*DeleteEnvironmentResult, error) {
	return envs.DeleteEnvironment(opts)
}

// Backup and restore commands.
type CreateBackupOptions = snapshot.CreateBackupOptions
type CreateBackupResult = snapshot.CreateBackupResult
type ListBackupsOptions = snapshot.ListBackupsOptions
type ListBackupsResult = snapshot.ListBackupsResult
type PruneBackupsOptions = snapshot.PruneBackupsOptions
type PruneBackupsResult = snapshot.PruneBackupsResult
type RestoreBackupOptions = snapshot.RestoreBackupOptions
type RestoreBackupResult = snapshot.RestoreBackupResult

func CreateBackup(opts CreateBackupOptions) (*CreateBackupResult, error) {
	return snapshot.CreateBackup(opts)
}

func ListBackups(opts ListBackupsOptions) (*ListBackupsResult, error) {
	return snapshot.ListBackups(opts)
}

func PruneBackups(opts PruneBackupsOptions) (*PruneBackupsResult, error) {
	return snapshot.PruneBackups(opts)
}

func RestoreBackup(opts RestoreBackupOptions) (*RestoreBackupResult, error) {
	return snapshot.RestoreBackup(opts)
}

// Export and import commands.
type ExportConfigOptions = exchange.ExportConfigOptions
type ExportConfigResult = exchange.ExportConfigResult
type ImportConfigOptions = exchange.ImportConfigOptions
type ImportConfigResult = exchange.ImportConfigResult

func ExportConfig(opts ExportConfigOptions) (*ExportConfigResult, error) {
	return exchange.ExportConfig(opts)
}

func ImportConfig(opts ImportConfigOptions) (*ImportConfigResult, error) {
	return exchange.ImportConfig(opts)
}

// WatchStore hot-reloads the store on external file changes.
type WatchStoreOptions = watch.WatchStoreOptions
type WatchStoreResult = watch.WatchStoreResult

func WatchStore(ctx context.Context, opts WatchStoreOptions) (*WatchStoreResult, error) {
	return watch.WatchStore(ctx, opts)
}

// SetHotReload toggles and tunes the persisted hot-reload settings.
type SetHotReloadOptions = watch.SetHotReloadOptions
type SetHotReloadResult = watch.SetHotReloadResult

func SetHotReload(opts SetHotReloadOptions) (*SetHotReloadResult, error) {
	return watch.SetHotReload(opts)
}
