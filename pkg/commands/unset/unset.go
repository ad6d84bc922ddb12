package unset

import (
	"github.com/aitherzero/configcore/pkg/commands/internal/session"
	"github.com/aitherzero/configcore/pkg/errors"
	"github.com/aitherzero/configcore/pkg/logging"
)

// UnsetValueOptions defines the options for the UnsetValue command.
type UnsetValueOptions struct {
	ConfigDir string
	Module    string
	// Key is a dotted settings path.
	Key string
	// Environment removes from an environment overlay instead of the
	// module's base settings.
	Environment string
}

// UnsetValueResult reports what was removed.
type UnsetValueResult struct {
	Module      string
	Key         string
	Environment string
}

// UnsetValue removes one setting. Schema defaults are unaffected:
// unsetting a defaulted key reverts it to the default. Removing a
// required key is rejected by validation.
func UnsetValue(opts UnsetValueOptions) (*UnsetValueResult, error) {
	log := logging.GetLogger("commands.unset")
	log.Debug().
		Str("command", "UnsetValue").
		Str("module", opts.Module).
		Str("key", opts.Key).
		Msg("Executing command")

	if opts.Key == "" {
		return nil, errors.New(errors.ErrInvalidInput, "key cannot be empty")
	}

	s, err := session.Open(opts.ConfigDir)
	if err != nil {
		return nil, err
	}
	if err := s.Unset(opts.Module, opts.Environment, opts.Key); err != nil {
		return nil, err
	}

	return &UnsetValueResult{
		Module:      opts.Module,
		Key:         opts.Key,
		Environment: opts.Environment,
	}, nil
}
