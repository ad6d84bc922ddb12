package azconfig

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/aitherzero/configcore/internal/version"
	"github.com/aitherzero/configcore/pkg/cobrax/topics"
	"github.com/aitherzero/configcore/pkg/logging"
)

//go:embed topics/*.md
var topicFiles embed.FS

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var (
		verbosity int
		configDir string
	)

	rootCmd := &cobra.Command{
		Use:     "azconfig",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging based on verbosity
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand: show help but flag the misuse
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", MsgFlagConfigDir)

	// Disable automatic help command (replaced by the topics help)
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.AddGroup(&cobra.Group{
		ID:    "store",
		Title: "STORE COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "env",
		Title: "ENVIRONMENT COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "safety",
		Title: "BACKUP AND TRANSFER:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	rootCmd.AddCommand(newInitCmd(&configDir))
	rootCmd.AddCommand(newRegisterCmd(&configDir))
	rootCmd.AddCommand(newModulesCmd(&configDir))
	rootCmd.AddCommand(newGetCmd(&configDir))
	rootCmd.AddCommand(newSetCmd(&configDir))
	rootCmd.AddCommand(newUnsetCmd(&configDir))
	rootCmd.AddCommand(newShowCmd(&configDir))
	rootCmd.AddCommand(newValidateCmd(&configDir))
	rootCmd.AddCommand(newEnvCmd(&configDir))
	rootCmd.AddCommand(newBackupCmd(&configDir))
	rootCmd.AddCommand(newRestoreCmd(&configDir))
	rootCmd.AddCommand(newExportCmd(&configDir))
	rootCmd.AddCommand(newImportCmd(&configDir))
	rootCmd.AddCommand(newWatchCmd(&configDir))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	// Topic-based help from the embedded markdown files
	if sub, err := fs.Sub(topicFiles, "topics"); err == nil {
		_ = topics.InitializeWithOptions(rootCmd, sub, topics.Options{
			Extensions: []string{".md"},
			Renderer:   topics.NewGlamourRenderer(),
		})
	}

	return rootCmd
}
