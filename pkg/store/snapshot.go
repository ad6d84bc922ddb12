package store

import (
	"encoding/json"

	"github.com/aitherzero/configcore/pkg/errors"
	"github.com/aitherzero/configcore/pkg/events"
)

// Snapshot returns a deep copy of the store document, suitable for
// serialization by the transfer package.
func (s *Store) Snapshot() (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyDocument(s.doc)
}

func copyDocument(doc *Document) (*Document, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to copy store document")
	}
	var out Document
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to copy store document")
	}
	if err := out.normalize(); err != nil {
		return nil, err
	}
	return &out, nil
}

// ImportDocument merges an incoming document into the store, or replaces
// the store wholesale when replace is true. Every module carrying a
// registered schema (existing or incoming) is validated against its
// post-import configuration in the current environment (stored layers,
// without env-var overrides) before anything is persisted. Emits
// config.imported on success.
func (s *Store) ImportDocument(incoming *Document, replace bool) error {
	if incoming == nil {
		return errors.New(errors.ErrInvalidInput, "nothing to import")
	}
	if err := incoming.normalize(); err != nil {
		return err
	}
	for name, sc := range incoming.Schemas {
		if err := sc.Check(); err != nil {
			return errors.Wrapf(err, errors.ErrImportFailed, "imported schema for module %q is invalid", name)
		}
	}

	s.mu.Lock()
	var merged *Document
	if replace {
		copied, err := copyDocument(incoming)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		merged = copied
	} else {
		m, err := mergeDocuments(s.doc, incoming)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		merged = m
	}

	// Validate against the post-import state before committing.
	previous := s.doc
	s.doc = merged
	for module, sc := range merged.Schemas {
		if sc == nil {
			continue
		}
		if _, ok := merged.Modules[module]; !ok {
			continue
		}
		// Stored layers only, matching mutate: a shell override must not
		// block a persistent write.
		effective := s.storedEffectiveLocked(module, merged.CurrentEnvironment, nil, nil)
		if err := sc.Validate(effective); err != nil {
			s.doc = previous
			s.mu.Unlock()
			return errors.Wrapf(err, errors.ErrImportFailed, "module %q would be invalid after import", module)
		}
	}

	if err := s.save(); err != nil {
		s.doc = previous
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.logger.Info().Bool("replace", replace).Msg("Configuration imported")
	s.bus.Publish(events.New(events.EventConfigImported, "", "", map[string]interface{}{
		"replace": replace,
	}))
	return nil
}

// mergeDocuments deep-merges incoming onto base: module settings and
// environment overlays merge key-wise, incoming schemas and descriptions
// win, currentEnvironment is taken from incoming only if it exists there.
func mergeDocuments(base, incoming *Document) (*Document, error) {
	out, err := copyDocument(base)
	if err != nil {
		return nil, err
	}

	for name, mod := range incoming.Modules {
		existing, ok := out.Modules[name]
		if !ok {
			out.Modules[name] = &ModuleSection{Settings: Merge(mod.Settings, nil)}
			continue
		}
		existing.Settings = Merge(existing.Settings, mod.Settings)
	}

	for name, env := range incoming.Environments {
		existing, ok := out.Environments[name]
		if !ok {
			out.Environments[name] = &Environment{
				Description: env.Description,
				Settings:    copyOverlays(env.Settings),
			}
			continue
		}
		if env.Description != "" {
			existing.Description = env.Description
		}
		for module, overlay := range env.Settings {
			existing.Settings[module] = Merge(existing.Settings[module], overlay)
		}
	}

	for name, sc := range incoming.Schemas {
		out.Schemas[name] = sc
	}

	if incoming.CurrentEnvironment != "" {
		if _, ok := out.Environments[incoming.CurrentEnvironment]; ok {
			out.CurrentEnvironment = incoming.CurrentEnvironment
		}
	}
	return out, nil
}

func copyOverlays(in map[string]map[string]interface{}) map[string]map[string]interface{} {
	out := make(map[string]map[string]interface{}, len(in))
	for module, overlay := range in {
		out[module] = Merge(overlay, nil)
	}
	return out
}
