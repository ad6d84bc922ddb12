package store

import (
	"regexp"
	"sort"

	"github.com/aitherzero/configcore/pkg/errors"
	"github.com/aitherzero/configcore/pkg/events"
)

var envNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-_]*$`)

// EnvironmentInfo describes one environment for listing.
type EnvironmentInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Current     bool   `json:"current"`
	// Overrides counts the modules this environment overlays.
	Overrides int `json:"overrides"`
}

// CurrentEnvironment returns the name of the active environment.
func (s *Store) CurrentEnvironment() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.CurrentEnvironment
}

// Environments lists all environments sorted by name.
func (s *Store) Environments() []EnvironmentInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]EnvironmentInfo, 0, len(s.doc.Environments))
	for name, e := range s.doc.Environments {
		infos = append(infos, EnvironmentInfo{
			Name:        name,
			Description: e.Description,
			Current:     name == s.doc.CurrentEnvironment,
			Overrides:   len(e.Settings),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// HasEnvironment reports whether the named environment exists.
func (s *Store) HasEnvironment(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.doc.Environments[name]
	return ok
}

// EnvironmentOverlay returns a copy of the overlay an environment holds
// for one module. An empty map means no overrides.
func (s *Store) EnvironmentOverlay(name, module string) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.doc.Environments[name]
	if !ok {
		return nil, errors.Newf(errors.ErrEnvNotFound, "environment %q does not exist", name)
	}
	return Merge(e.Settings[module], nil), nil
}

// CreateEnvironment adds a new named overlay. Names are lowercase
// alphanumeric with dashes/underscores.
func (s *Store) CreateEnvironment(name, description string) error {
	if !envNamePattern.MatchString(name) {
		return errors.Newf(errors.ErrEnvInvalid, "invalid environment name %q", name)
	}

	s.mu.Lock()
	if _, ok := s.doc.Environments[name]; ok {
		s.mu.Unlock()
		return errors.Newf(errors.ErrAlreadyExists, "environment %q already exists", name)
	}
	s.doc.Environments[name] = &Environment{
		Description: description,
		Settings:    make(map[string]map[string]interface{}),
	}
	if err := s.save(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.logger.Info().Str("environment", name).Msg("Environment created")
	s.bus.Publish(events.NewEnvironmentEvent(events.EventEnvCreated, name, nil))
	return nil
}

// SwitchEnvironment makes the named environment current. Every module
// with a registered schema is validated against its effective
// configuration in the target environment first; any failure rejects the
// switch. Emits environment.switched plus config.changed for each module
// whose effective configuration differs between the two environments.
func (s *Store) SwitchEnvironment(name string) error {
	s.mu.Lock()
	if _, ok := s.doc.Environments[name]; !ok {
		s.mu.Unlock()
		return errors.Newf(errors.ErrEnvNotFound, "environment %q does not exist", name)
	}
	previous := s.doc.CurrentEnvironment
	if previous == name {
		s.mu.Unlock()
		return nil
	}

	for module, sc := range s.doc.Schemas {
		if sc == nil {
			continue
		}
		effective := s.effectiveLocked(module, name, nil, nil)
		if err := sc.Validate(effective); err != nil {
			s.mu.Unlock()
			return errors.Wrapf(err, errors.ErrEnvInvalid,
				"module %q is invalid in environment %q", module, name).
				WithDetail("module", module).
				WithDetail("environment", name)
		}
	}

	var changed []string
	for module := range s.doc.Modules {
		before := s.effectiveLocked(module, previous, nil, nil)
		after := s.effectiveLocked(module, name, nil, nil)
		if !equalMaps(before, after) {
			changed = append(changed, module)
		}
	}
	sort.Strings(changed)

	s.doc.CurrentEnvironment = name
	if err := s.save(); err != nil {
		s.doc.CurrentEnvironment = previous
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.logger.Info().Str("from", previous).Str("to", name).Msg("Environment switched")
	s.bus.Publish(events.NewEnvironmentEvent(events.EventEnvSwitched, name, map[string]interface{}{
		"previous": previous,
	}))
	for _, module := range changed {
		s.bus.Publish(events.New(events.EventConfigChanged, module, name, nil))
	}
	return nil
}

// DeleteEnvironment removes a named overlay. The default and the current
// environment are protected.
func (s *Store) DeleteEnvironment(name string) error {
	s.mu.Lock()
	if name == DefaultEnvironment {
		s.mu.Unlock()
		return errors.New(errors.ErrEnvProtected, "the default environment cannot be deleted")
	}
	if name == s.doc.CurrentEnvironment {
		s.mu.Unlock()
		return errors.Newf(errors.ErrEnvProtected, "environment %q is current; switch away before deleting", name)
	}
	if _, ok := s.doc.Environments[name]; !ok {
		s.mu.Unlock()
		return errors.Newf(errors.ErrEnvNotFound, "environment %q does not exist", name)
	}
	delete(s.doc.Environments, name)
	if err := s.save(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.logger.Info().Str("environment", name).Msg("Environment deleted")
	s.bus.Publish(events.NewEnvironmentEvent(events.EventEnvDeleted, name, nil))
	return nil
}
