package azconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/aitherzero/configcore/internal/version"
	"github.com/aitherzero/configcore/pkg/commands"
	"github.com/aitherzero/configcore/pkg/ui/styles"
)

// moduleNamesCompletion provides shell completion for registered module names
func moduleNamesCompletion(configDir *string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		result, err := commands.ShowConfig(commands.ShowConfigOptions{ConfigDir: *configDir})
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		names := make([]string, 0, len(result.Modules))
		for name := range result.Modules {
			names = append(names, name)
		}
		sort.Strings(names)
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}

// environmentNamesCompletion provides shell completion for environment names
func environmentNamesCompletion(configDir *string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		result, err := commands.ListEnvironments(commands.ListEnvironmentsOptions{ConfigDir: *configDir})
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		names := make([]string, 0, len(result.Environments))
		for _, e := range result.Environments {
			names = append(names, e.Name)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func newInitCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:     "init",
		Short:   MsgInitShort,
		GroupID: "store",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.InitStore(commands.InitStoreOptions{ConfigDir: *configDir})
			if err != nil {
				return err
			}
			if result.Created {
				fmt.Fprintf(cmd.OutOrStdout(), MsgStoreCreated, result.ConfigFile)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), MsgStoreExists, result.ConfigFile)
			}
			return nil
		},
	}
}

func newRegisterCmd(configDir *string) *cobra.Command {
	var schemaPath, defaultsPath string
	cmd := &cobra.Command{
		Use:     "register <module>",
		Short:   MsgRegisterShort,
		GroupID: "store",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.RegisterModule(commands.RegisterModuleOptions{
				ConfigDir:    *configDir,
				Module:       args[0],
				SchemaPath:   schemaPath,
				DefaultsPath: defaultsPath,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgModuleRegistered, result.Module)
			return printJSON(cmd, result.Settings)
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", MsgFlagSchema)
	cmd.Flags().StringVar(&defaultsPath, "defaults", "", MsgFlagDefaults)
	return cmd
}

func newGetCmd(configDir *string) *cobra.Command {
	var environment string
	cmd := &cobra.Command{
		Use:               "get <module> [key]",
		Short:             MsgGetShort,
		GroupID:           "store",
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: moduleNamesCompletion(configDir),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) == 2 {
				key = args[1]
			}
			result, err := commands.GetValue(commands.GetValueOptions{
				ConfigDir:   *configDir,
				Module:      args[0],
				Key:         key,
				Environment: environment,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, result.Value)
		},
	}
	cmd.Flags().StringVarP(&environment, "env", "e", "", MsgFlagEnvironment)
	return cmd
}

func newSetCmd(configDir *string) *cobra.Command {
	var environment string
	var asString bool
	cmd := &cobra.Command{
		Use:               "set <module> <key> <value>",
		Short:             MsgSetShort,
		GroupID:           "store",
		Args:              cobra.ExactArgs(3),
		ValidArgsFunction: moduleNamesCompletion(configDir),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.SetValue(commands.SetValueOptions{
				ConfigDir:   *configDir,
				Module:      args[0],
				Key:         args[1],
				Value:       args[2],
				Environment: environment,
				AsString:    asString,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgValueSet, result.Module, result.Key, result.Value)
			return nil
		},
	}
	cmd.Flags().StringVarP(&environment, "env", "e", "", MsgFlagEnvironment)
	cmd.Flags().BoolVar(&asString, "string", false, MsgFlagString)
	return cmd
}

func newUnsetCmd(configDir *string) *cobra.Command {
	var environment string
	cmd := &cobra.Command{
		Use:               "unset <module> <key>",
		Short:             MsgUnsetShort,
		GroupID:           "store",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: moduleNamesCompletion(configDir),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.UnsetValue(commands.UnsetValueOptions{
				ConfigDir:   *configDir,
				Module:      args[0],
				Key:         args[1],
				Environment: environment,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgValueUnset, result.Module, result.Key)
			return nil
		},
	}
	cmd.Flags().StringVarP(&environment, "env", "e", "", MsgFlagEnvironment)
	return cmd
}

func newModulesCmd(configDir *string) *cobra.Command {
	modulesCmd := &cobra.Command{
		Use:     "modules",
		Short:   MsgModulesShort,
		GroupID: "store",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: MsgModulesList,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.ShowConfig(commands.ShowConfigOptions{ConfigDir: *configDir})
			if err != nil {
				return err
			}
			names := make([]string, 0, len(result.Modules))
			for name := range result.Modules {
				names = append(names, name)
			}
			sort.Strings(names)
			moduleStyle := styles.GetStyle("Module")
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), moduleStyle.Render("  "+name))
			}
			return nil
		},
	}

	registerCmd := newRegisterCmd(configDir)
	registerCmd.GroupID = ""

	modulesCmd.AddCommand(listCmd, registerCmd)
	return modulesCmd
}

func newShowCmd(configDir *string) *cobra.Command {
	var module, environment string
	cmd := &cobra.Command{
		Use:     "show",
		Short:   MsgShowShort,
		GroupID: "store",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.ShowConfig(commands.ShowConfigOptions{
				ConfigDir:   *configDir,
				Module:      module,
				Environment: environment,
			})
			if err != nil {
				return err
			}
			header := styles.GetStyle("Environment")
			fmt.Fprintln(cmd.OutOrStdout(), header.Render("environment: "+result.Environment))
			return printJSON(cmd, result.Modules)
		},
	}
	cmd.Flags().StringVarP(&module, "module", "m", "", MsgFlagModule)
	cmd.Flags().StringVarP(&environment, "env", "e", "", MsgFlagEnvironment)
	return cmd
}

func newValidateCmd(configDir *string) *cobra.Command {
	var module, environment string
	cmd := &cobra.Command{
		Use:     "validate",
		Short:   MsgValidateShort,
		GroupID: "store",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.ValidateConfig(commands.ValidateConfigOptions{
				ConfigDir:   *configDir,
				Module:      module,
				Environment: environment,
			})
			if err != nil {
				return err
			}
			if result.Valid {
				success := styles.GetStyle("Success")
				fmt.Fprint(cmd.OutOrStdout(), success.Render(fmt.Sprintf(MsgAllValid, result.Environment)))
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			}

			errStyle := styles.GetStyle("Error")
			for name, violations := range result.Violations {
				fmt.Fprintln(cmd.OutOrStdout(), errStyle.Render(name+":"))
				for _, v := range violations {
					fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", v)
				}
			}
			return fmt.Errorf("%d modules failed validation", len(result.Violations))
		},
	}
	cmd.Flags().StringVarP(&module, "module", "m", "", MsgFlagModule)
	cmd.Flags().StringVarP(&environment, "env", "e", "", MsgFlagEnvironment)
	return cmd
}

func newEnvCmd(configDir *string) *cobra.Command {
	envCmd := &cobra.Command{
		Use:     "env",
		Short:   MsgEnvShort,
		GroupID: "env",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: MsgEnvListShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.ListEnvironments(commands.ListEnvironmentsOptions{ConfigDir: *configDir})
			if err != nil {
				return err
			}
			current := styles.GetStyle("Environment")
			muted := styles.GetStyle("Muted")
			for _, e := range result.Environments {
				line := "  " + e.Name
				if e.Name == result.Current {
					line = current.Render(fmt.Sprintf(MsgEnvCurrent, e.Name))
				}
				if e.Description != "" {
					line += muted.Render("  " + e.Description)
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	var description string
	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: MsgEnvNewShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := commands.CreateEnvironment(commands.CreateEnvironmentOptions{
				ConfigDir:   *configDir,
				Name:        args[0],
				Description: description,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgEnvCreated, args[0])
			return nil
		},
	}
	createCmd.Flags().StringVarP(&description, "description", "d", "", "Environment description")

	useCmd := &cobra.Command{
		Use:               "use <name>",
		Aliases:           []string{"switch"},
		Short:             MsgEnvUseShort,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: environmentNamesCompletion(configDir),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.SwitchEnvironment(commands.SwitchEnvironmentOptions{
				ConfigDir: *configDir,
				Name:      args[0],
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgEnvSwitched, result.Previous, result.Current)
			if len(result.ChangedModules) > 0 {
				sort.Strings(result.ChangedModules)
				fmt.Fprintf(cmd.OutOrStdout(), MsgReloaded, result.ChangedModules)
			}
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:               "delete <name>",
		Short:             MsgEnvRmShort,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: environmentNamesCompletion(configDir),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := commands.DeleteEnvironment(commands.DeleteEnvironmentOptions{
				ConfigDir: *configDir,
				Name:      args[0],
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgEnvDeleted, args[0])
			return nil
		},
	}

	envCmd.AddCommand(listCmd, createCmd, useCmd, deleteCmd)
	return envCmd
}

func newBackupCmd(configDir *string) *cobra.Command {
	backupCmd := &cobra.Command{
		Use:     "backup",
		Short:   MsgBackupShort,
		GroupID: "safety",
	}

	var note string
	var retention int
	createCmd := &cobra.Command{
		Use:   "create",
		Short: MsgBackupNew,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.CreateBackup(commands.CreateBackupOptions{
				ConfigDir: *configDir,
				Note:      note,
				Retention: retention,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgBackupCreated, result.Backup.Name, result.Backup.Size)
			return nil
		},
	}
	createCmd.Flags().StringVar(&note, "note", "", MsgFlagNote)
	createCmd.Flags().IntVar(&retention, "retention", 0, MsgFlagRetention)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: MsgBackupList,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.ListBackups(commands.ListBackupsOptions{ConfigDir: *configDir})
			if err != nil {
				return err
			}
			if len(result.Backups) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), MsgNoBackups)
				return nil
			}
			muted := styles.GetStyle("Muted")
			for _, b := range result.Backups {
				line := fmt.Sprintf("  %s  %s", b.Name, b.CreatedAt.Format("2006-01-02 15:04:05"))
				if b.Note != "" {
					line += muted.Render("  " + b.Note)
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	var keep int
	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: MsgBackupPrune,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.PruneBackups(commands.PruneBackupsOptions{
				ConfigDir: *configDir,
				Keep:      keep,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgBackupPruned, result.Removed, result.Kept)
			return nil
		},
	}
	pruneCmd.Flags().IntVar(&keep, "keep", 0, MsgFlagRetention)

	backupCmd.AddCommand(createCmd, listCmd, pruneCmd)
	return backupCmd
}

func newRestoreCmd(configDir *string) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:     "restore [backup-name]",
		Short:   MsgRestoreShort,
		GroupID: "safety",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			result, err := commands.RestoreBackup(commands.RestoreBackupOptions{
				ConfigDir: *configDir,
				Name:      name,
				DryRun:    dryRun,
			})
			if err != nil {
				return err
			}
			if result.DryRun {
				fmt.Fprintf(cmd.OutOrStdout(), MsgRestorePlanned, result.Plan.Snapshot, result.Plan.Target)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), MsgRestoreDone, result.Plan.Snapshot)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, MsgFlagDryRun)
	return cmd
}

func newExportCmd(configDir *string) *cobra.Command {
	var format, module, environment string
	cmd := &cobra.Command{
		Use:     "export <file>",
		Short:   MsgExportShort,
		GroupID: "safety",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.ExportConfig(commands.ExportConfigOptions{
				ConfigDir:   *configDir,
				Path:        args[0],
				Format:      format,
				Module:      module,
				Environment: environment,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgExported, result.Path, result.Format)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", MsgFlagFormat)
	cmd.Flags().StringVarP(&module, "module", "m", "", MsgFlagModule)
	cmd.Flags().StringVarP(&environment, "env", "e", "", MsgFlagEnvironment)
	return cmd
}

func newImportCmd(configDir *string) *cobra.Command {
	var format string
	var replace, skipBackup bool
	cmd := &cobra.Command{
		Use:     "import <file>",
		Short:   MsgImportShort,
		GroupID: "safety",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.ImportConfig(commands.ImportConfigOptions{
				ConfigDir:  *configDir,
				Path:       args[0],
				Format:     format,
				Replace:    replace,
				SkipBackup: skipBackup,
			})
			if err != nil {
				return err
			}
			if result.Backup != "" {
				fmt.Fprintf(cmd.OutOrStdout(), MsgImportBackup, result.Backup)
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgImported, result.Path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", MsgFlagFormat)
	cmd.Flags().BoolVar(&replace, "replace", false, MsgFlagReplace)
	cmd.Flags().BoolVar(&skipBackup, "skip-backup", false, MsgFlagSkipBackup)
	return cmd
}

func newWatchCmd(configDir *string) *cobra.Command {
	var debounceMs int
	var force bool
	cmd := &cobra.Command{
		Use:     "watch",
		Short:   MsgWatchShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), MsgWatching, *configDir)
			_, err := commands.WatchStore(ctx, commands.WatchStoreOptions{
				ConfigDir:  *configDir,
				DebounceMs: debounceMs,
				Force:      force,
				OnReload: func(changed []string) {
					fmt.Fprintf(cmd.OutOrStdout(), MsgReloaded, changed)
				},
			})
			return err
		},
	}
	cmd.Flags().IntVar(&debounceMs, "debounce", 0, MsgFlagDebounce)
	cmd.Flags().BoolVar(&force, "force", false, MsgFlagForce)

	enableCmd := &cobra.Command{
		Use:   "enable",
		Short: MsgWatchEnable,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.SetHotReload(commands.SetHotReloadOptions{
				ConfigDir:  *configDir,
				Enabled:    true,
				DebounceMs: debounceMs,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgHotReloadOn, result.Settings.DebounceMs)
			return nil
		},
	}
	enableCmd.Flags().IntVar(&debounceMs, "debounce", 0, MsgFlagDebounce)

	disableCmd := &cobra.Command{
		Use:   "disable",
		Short: MsgWatchDisable,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := commands.SetHotReload(commands.SetHotReloadOptions{
				ConfigDir: *configDir,
				Enabled:   false,
			}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), MsgHotReloadOff)
			return nil
		},
	}

	cmd.AddCommand(enableCmd, disableCmd)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "azconfig %s\n", version.Version)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletion,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		Run: func(cmd *cobra.Command, args []string) {
			switch args[0] {
			case "bash":
				if err := cmd.Root().GenBashCompletion(cmd.OutOrStdout()); err != nil {
					log.Error().Err(err).Msg("Failed to generate bash completion")
				}
			case "zsh":
				if err := cmd.Root().GenZshCompletion(cmd.OutOrStdout()); err != nil {
					log.Error().Err(err).Msg("Failed to generate zsh completion")
				}
			case "fish":
				if err := cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true); err != nil {
					log.Error().Err(err).Msg("Failed to generate fish completion")
				}
			case "powershell":
				if err := cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout()); err != nil {
					log.Error().Err(err).Msg("Failed to generate powershell completion")
				}
			}
		},
	}
}
