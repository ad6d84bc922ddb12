package validate

import (
	"github.com/aitherzero/configcore/pkg/commands/internal/session"
	"github.com/aitherzero/configcore/pkg/logging"
	"github.com/aitherzero/configcore/pkg/schema"
)

// ValidateConfigOptions defines the options for the ValidateConfig command.
type ValidateConfigOptions struct {
	ConfigDir string
	// Module limits validation to one module; empty validates all.
	Module string
	// Environment validates against a specific environment instead of
	// the current one.
	Environment string
}

// ValidateConfigResult lists schema violations per module. Modules
// without a schema are always valid.
type ValidateConfigResult struct {
	Environment string
	Valid       bool
	Violations  map[string][]string
}

// ValidateConfig checks every selected module's effective configuration
// against its registered schema.
func ValidateConfig(opts ValidateConfigOptions) (*ValidateConfigResult, error) {
	log := logging.GetLogger("commands.validate")
	log.Debug().Str("command", "ValidateConfig").Str("module", opts.Module).Msg("Executing command")

	s, err := session.Open(opts.ConfigDir)
	if err != nil {
		return nil, err
	}

	environment := opts.Environment
	if environment == "" {
		environment = s.CurrentEnvironment()
	}

	result := &ValidateConfigResult{
		Environment: environment,
		Valid:       true,
		Violations:  make(map[string][]string),
	}

	if opts.Module != "" {
		if err := s.Validate(opts.Module, environment); err != nil {
			collect(result, opts.Module, err)
		}
	} else {
		for module, err := range s.ValidateAll(environment) {
			collect(result, module, err)
		}
	}

	log.Info().
		Str("command", "ValidateConfig").
		Bool("valid", result.Valid).
		Int("failingModules", len(result.Violations)).
		Msg("Command finished")
	return result, nil
}

func collect(result *ValidateConfigResult, module string, err error) {
	result.Valid = false
	if violations := schema.Violations(err); len(violations) > 0 {
		result.Violations[module] = violations
		return
	}
	result.Violations[module] = []string{err.Error()}
}
