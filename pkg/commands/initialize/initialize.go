package initialize

import (
	"os"

	"github.com/aitherzero/configcore/pkg/commands/internal/session"
	"github.com/aitherzero/configcore/pkg/logging"
)

// InitStoreOptions defines the options for the InitStore command.
type InitStoreOptions struct {
	// ConfigDir overrides the platform default configuration directory.
	ConfigDir string
}

// InitStoreResult reports where the store lives and whether this call
// created it.
type InitStoreResult struct {
	ConfigFile  string
	Environment string
	Created     bool
}

// InitStore creates the configuration store file if it does not exist.
// Running it against an existing store is harmless.
func InitStore(opts InitStoreOptions) (*InitStoreResult, error) {
	log := logging.GetLogger("commands.initialize")
	log.Debug().Str("command", "InitStore").Msg("Executing command")

	s, err := session.Open(opts.ConfigDir)
	if err != nil {
		return nil, err
	}

	created := false
	if _, err := os.Stat(s.Paths().ConfigFile()); os.IsNotExist(err) {
		if err := s.Save(); err != nil {
			return nil, err
		}
		created = true
	}

	log.Info().
		Str("command", "InitStore").
		Str("configFile", s.Paths().ConfigFile()).
		Bool("created", created).
		Msg("Command finished")

	return &InitStoreResult{
		ConfigFile:  s.Paths().ConfigFile(),
		Environment: s.CurrentEnvironment(),
		Created:     created,
	}, nil
}
