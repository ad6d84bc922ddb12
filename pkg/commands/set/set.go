package set

import (
	"encoding/json"
	"strings"

	"github.com/aitherzero/configcore/pkg/commands/internal/session"
	"github.com/aitherzero/configcore/pkg/errors"
	"github.com/aitherzero/configcore/pkg/logging"
)

// SetValueOptions defines the options for the SetValue command.
type SetValueOptions struct {
	ConfigDir string
	Module    string
	// Key is a dotted settings path.
	Key string
	// Value is the raw value as typed on the command line. JSON literals
	// (numbers, booleans, null, quoted strings, arrays, objects) keep
	// their type; anything else is stored as a string.
	Value string
	// Environment writes into an environment overlay instead of the
	// module's base settings.
	Environment string
	// AsString skips JSON interpretation and stores the value verbatim.
	AsString bool
}

// SetValueResult reports the stored value.
type SetValueResult struct {
	Module      string
	Key         string
	Environment string
	Value       interface{}
}

// SetValue writes one setting. The store validates the resulting
// configuration against the module's schema before anything is
// persisted, so an invalid write changes nothing.
func SetValue(opts SetValueOptions) (*SetValueResult, error) {
	log := logging.GetLogger("commands.set")
	log.Debug().
		Str("command", "SetValue").
		Str("module", opts.Module).
		Str("key", opts.Key).
		Str("environment", opts.Environment).
		Msg("Executing command")

	if opts.Key == "" {
		return nil, errors.New(errors.ErrInvalidInput, "key cannot be empty")
	}

	value := parseValue(opts.Value, opts.AsString)

	s, err := session.Open(opts.ConfigDir)
	if err != nil {
		return nil, err
	}
	if err := s.Set(opts.Module, opts.Environment, opts.Key, value); err != nil {
		return nil, err
	}

	log.Info().
		Str("command", "SetValue").
		Str("module", opts.Module).
		Str("key", opts.Key).
		Msg("Command finished")

	return &SetValueResult{
		Module:      opts.Module,
		Key:         opts.Key,
		Environment: opts.Environment,
		Value:       value,
	}, nil
}

// parseValue interprets a command-line value the same way the AITHER_*
// environment overrides are interpreted, extended to JSON composites.
func parseValue(raw string, asString bool) interface{} {
	if asString {
		return raw
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return raw
	}
	var parsed interface{}
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
		return parsed
	}
	return raw
}
