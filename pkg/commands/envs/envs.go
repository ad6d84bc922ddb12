// Package envs implements the environment management commands: list,
// create, switch and delete.
package envs

import (
	"github.com/aitherzero/configcore/pkg/commands/internal/session"
	"github.com/aitherzero/configcore/pkg/events"
	"github.com/aitherzero/configcore/pkg/logging"
	"github.com/aitherzero/configcore/pkg/store"
)

// ListEnvironmentsOptions defines the options for the ListEnvironments command.
type ListEnvironmentsOptions struct {
	ConfigDir string
}

// ListEnvironmentsResult names the environments and which one is active.
type ListEnvironmentsResult struct {
	Current      string
	Environments []store.EnvironmentInfo
}

// ListEnvironments returns all environments in the store.
func ListEnvironments(opts ListEnvironmentsOptions) (*ListEnvironmentsResult, error) {
	log := logging.GetLogger("commands.envs")
	log.Debug().Str("command", "ListEnvironments").Msg("Executing command")

	s, err := session.Open(opts.ConfigDir)
	if err != nil {
		return nil, err
	}
	return &ListEnvironmentsResult{
		Current:      s.CurrentEnvironment(),
		Environments: s.Environments(),
	}, nil
}

// CreateEnvironmentOptions defines the options for the CreateEnvironment command.
type CreateEnvironmentOptions struct {
	ConfigDir   string
	Name        string
	Description string
}

// CreateEnvironmentResult reports the created environment.
type CreateEnvironmentResult struct {
	Name        string
	Description string
}

// CreateEnvironment adds a new empty environment overlay.
func CreateEnvironment(opts CreateEnvironmentOptions) (*CreateEnvironmentResult, error) {
	log := logging.GetLogger("commands.envs")
	log.Debug().Str("command", "CreateEnvironment").Str("environment", opts.Name).Msg("Executing command")

	s, err := session.Open(opts.ConfigDir)
	if err != nil {
		return nil, err
	}
	if err := s.CreateEnvironment(opts.Name, opts.Description); err != nil {
		return nil, err
	}

	log.Info().Str("command", "CreateEnvironment").Str("environment", opts.Name).Msg("Command finished")
	return &CreateEnvironmentResult{Name: opts.Name, Description: opts.Description}, nil
}

// SwitchEnvironmentOptions defines the options for the SwitchEnvironment command.
type SwitchEnvironmentOptions struct {
	ConfigDir string
	Name      string
}

// SwitchEnvironmentResult reports the switch, including the modules
// whose effective configuration changed with it.
type SwitchEnvironmentResult struct {
	Previous       string
	Current        string
	ChangedModules []string
}

// SwitchEnvironment makes the named environment current. The target is
// validated first: if any module's configuration would be invalid
// there, the switch is rejected and the store is untouched.
func SwitchEnvironment(opts SwitchEnvironmentOptions) (*SwitchEnvironmentResult, error) {
	log := logging.GetLogger("commands.envs")
	log.Debug().Str("command", "SwitchEnvironment").Str("environment", opts.Name).Msg("Executing command")

	s, err := session.Open(opts.ConfigDir)
	if err != nil {
		return nil, err
	}

	previous := s.CurrentEnvironment()
	result := &SwitchEnvironmentResult{Previous: previous, Current: opts.Name}

	unsubscribe := s.Bus().Subscribe(func(e events.Event) {
		result.ChangedModules = append(result.ChangedModules, e.Module)
	}, events.EventConfigChanged)
	defer unsubscribe()

	if err := s.SwitchEnvironment(opts.Name); err != nil {
		return nil, err
	}

	log.Info().
		Str("command", "SwitchEnvironment").
		Str("from", previous).
		Str("to", opts.Name).
		Int("changedModules", len(result.ChangedModules)).
		Msg("Command finished")
	return result, nil
}

// DeleteEnvironmentOptions defines the options for the DeleteEnvironment command.
type DeleteEnvironmentOptions struct {
	ConfigDir string
	Name      string
}

// DeleteEnvironmentResult reports the deleted environment.
type DeleteEnvironmentResult struct {
	Name string
}

// DeleteEnvironment removes an environment and its overlays. The
// default and current environments are protected.
func DeleteEnvironment(opts DeleteEnvironmentOptions) (*DeleteEnvironmentResult, error) {
	log := logging.GetLogger("commands.envs")
	log.Debug().Str("command", "DeleteEnvironment").Str("environment", opts.Name).Msg("Executing command")

	s, err := session.Open(opts.ConfigDir)
	if err != nil {
		return nil, err
	}
	if err := s.DeleteEnvironment(opts.Name); err != nil {
		return nil, err
	}

	log.Info().Str("command", "DeleteEnvironment").Str("environment", opts.Name).Msg("Command finished")
	return &DeleteEnvironmentResult{Name: opts.Name}, nil
}
