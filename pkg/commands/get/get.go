package get

import (
	"github.com/aitherzero/configcore/pkg/commands/internal/session"
	"github.com/aitherzero/configcore/pkg/logging"
)

// GetValueOptions defines the options for the GetValue command.
type GetValueOptions struct {
	ConfigDir string
	Module    string
	// Key is a dotted settings path, e.g. "tls.enabled".
	Key string
	// Environment resolves against a specific environment instead of the
	// current one.
	Environment string
}

// GetValueResult carries the resolved value.
type GetValueResult struct {
	Module      string
	Key         string
	Environment string
	Value       interface{}
}

// GetValue resolves one setting through the full layer stack: schema
// defaults, base settings, environment overlay, environment variables.
func GetValue(opts GetValueOptions) (*GetValueResult, error) {
	log := logging.GetLogger("commands.get")
	log.Debug().Str("command", "GetValue").Str("module", opts.Module).Str("key", opts.Key).Msg("Executing command")

	s, err := session.Open(opts.ConfigDir)
	if err != nil {
		return nil, err
	}

	environment := opts.Environment
	if environment == "" {
		environment = s.CurrentEnvironment()
	}

	effective, err := s.EffectiveConfigIn(opts.Module, environment)
	if err != nil {
		return nil, err
	}

	var value interface{} = effective
	if opts.Key != "" {
		v, err := s.GetIn(opts.Module, environment, opts.Key)
		if err != nil {
			return nil, err
		}
		value = v
	}

	return &GetValueResult{
		Module:      opts.Module,
		Key:         opts.Key,
		Environment: environment,
		Value:       value,
	}, nil
}
