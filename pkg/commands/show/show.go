package show

import (
	"github.com/aitherzero/configcore/pkg/commands/internal/session"
	"github.com/aitherzero/configcore/pkg/logging"
)

// ShowConfigOptions defines the options for the ShowConfig command.
type ShowConfigOptions struct {
	ConfigDir string
	// Module limits output to one module; empty shows all.
	Module string
	// Environment resolves against a specific environment instead of the
	// current one.
	Environment string
}

// ShowConfigResult holds the effective configuration per module.
type ShowConfigResult struct {
	Environment string
	Modules     map[string]map[string]interface{}
}

// ShowConfig resolves the effective configuration of one or all modules.
func ShowConfig(opts ShowConfigOptions) (*ShowConfigResult, error) {
	log := logging.GetLogger("commands.show")
	log.Debug().Str("command", "ShowConfig").Str("module", opts.Module).Msg("Executing command")

	s, err := session.Open(opts.ConfigDir)
	if err != nil {
		return nil, err
	}

	environment := opts.Environment
	if environment == "" {
		environment = s.CurrentEnvironment()
	}

	modules := s.Modules()
	if opts.Module != "" {
		modules = []string{opts.Module}
	}

	result := &ShowConfigResult{
		Environment: environment,
		Modules:     make(map[string]map[string]interface{}, len(modules)),
	}
	for _, module := range modules {
		effective, err := s.EffectiveConfigIn(module, environment)
		if err != nil {
			return nil, err
		}
		result.Modules[module] = effective
	}

	log.Info().
		Str("command", "ShowConfig").
		Int("moduleCount", len(result.Modules)).
		Msg("Command finished")
	return result, nil
}
