// Package store implements the AitherZero layered configuration store:
// per-module settings with schema validation, named environment overlays,
// a single JSON document persisted atomically, and change events.
//
// Effective configuration for a module is the deep merge of four layers,
// lowest precedence first: schema defaults, base module settings, the
// current environment's overlay, and AITHER_<MODULE>_* environment
// variables.
package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aitherzero/configcore/pkg/errors"
	"github.com/aitherzero/configcore/pkg/events"
	"github.com/aitherzero/configcore/pkg/logging"
	"github.com/aitherzero/configcore/pkg/paths"
	"github.com/aitherzero/configcore/pkg/schema"
)

// Store is a layered configuration store backed by one JSON file.
// It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	paths  *paths.Paths
	bus    *events.Bus
	logger zerolog.Logger

	doc *Document

	// checksum of the last file content this store wrote or read, used
	// by the watcher to tell its own saves from external edits
	lastSum string
}

// Open loads the store from disk, creating a fresh in-memory document if
// the file does not exist yet. Nothing is written until the first
// mutating operation.
func Open(p *paths.Paths, bus *events.Bus) (*Store, error) {
	if bus == nil {
		bus = events.NewBus()
	}
	doc, sum, err := loadDocument(p.ConfigFile())
	if err != nil {
		return nil, err
	}
	return &Store{
		paths:   p,
		bus:     bus,
		logger:  logging.GetLogger("store"),
		doc:     doc,
		lastSum: sum,
	}, nil
}

// Bus returns the event bus this store publishes to.
func (s *Store) Bus() *events.Bus {
	return s.bus
}

// Paths returns the path set the store was opened with.
func (s *Store) Paths() *paths.Paths {
	return s.paths
}

// LastChecksum returns the checksum of the last file content the store
// wrote or read.
func (s *Store) LastChecksum() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSum
}

// HotReloadSettings returns the persisted hot-reload settings.
func (s *Store) HotReloadSettings() HotReload {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.HotReload
}

// SetHotReload updates and persists the hot-reload settings.
func (s *Store) SetHotReload(hr HotReload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hr.DebounceMs <= 0 {
		hr.DebounceMs = DefaultDebounceMs
	}
	s.doc.HotReload = hr
	return s.save()
}

// Save persists the current document. Exposed for callers that assembled
// a store state through several accessors and want a single write.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save persists the document. Callers must hold the write lock.
func (s *Store) save() error {
	sum, err := saveDocument(s.paths, s.doc)
	if err != nil {
		return err
	}
	s.lastSum = sum
	return nil
}

// RegisterModule records a module's schema and seeds its base settings.
// Schema defaults and the provided defaults become the floor; settings
// already present in the store win over both. The registration is
// persisted and module.registered is emitted.
func (s *Store) RegisterModule(name string, sc *schema.Schema, defaults map[string]interface{}) error {
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "module name is required")
	}
	if err := sc.Check(); err != nil {
		return err
	}

	s.mu.Lock()
	existing := map[string]interface{}{}
	if mod, ok := s.doc.Modules[name]; ok {
		existing = mod.Settings
	}
	seeded := MergeAll(sc.Defaults(), defaults, existing)

	if sc == nil {
		delete(s.doc.Schemas, name)
	} else {
		s.doc.Schemas[name] = sc
	}
	s.doc.Modules[name] = &ModuleSection{Settings: seeded}

	if err := s.save(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.logger.Info().Str("module", name).Msg("Module registered")
	s.bus.Publish(events.NewModuleEvent(events.EventModuleRegistered, name, nil))
	return nil
}

// Modules returns the sorted names of all registered modules.
func (s *Store) Modules() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.doc.Modules))
	for name := range s.doc.Modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasModule reports whether a module is registered.
func (s *Store) HasModule(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.doc.Modules[name]
	return ok
}

// Schema returns the registered schema for a module, nil if none.
func (s *Store) Schema(name string) *schema.Schema {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Schemas[name]
}

// BaseSettings returns a copy of a module's base settings.
func (s *Store) BaseSettings(name string) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mod, ok := s.doc.Modules[name]
	if !ok {
		return nil, errors.Newf(errors.ErrModuleNotFound, "module %q is not registered", name)
	}
	return Merge(mod.Settings, nil), nil
}

// Set writes value at the dotted key in a module's base settings, or in
// the named environment's overlay when env is non-empty. The resulting
// effective configuration (without the env-var layer) is validated
// against the module's schema before anything is persisted; an invalid
// write leaves the store untouched.
func (s *Store) Set(module, env, key string, value interface{}) error {
	if key == "" {
		return errors.New(errors.ErrInvalidInput, "setting key is required")
	}
	return s.mutate(module, env, func(target map[string]interface{}) {
		setPath(target, key, value)
	})
}

// Unset removes the dotted key from a module's base settings or from an
// environment overlay. Removing an absent key is a no-op that still
// validates and saves.
func (s *Store) Unset(module, env, key string) error {
	if key == "" {
		return errors.New(errors.ErrInvalidInput, "setting key is required")
	}
	return s.mutate(module, env, func(target map[string]interface{}) {
		deletePath(target, key)
	})
}

// mutate applies fn to the chosen settings map on a scratch copy,
// validates, then commits and persists.
func (s *Store) mutate(module, env string, fn func(map[string]interface{})) error {
	if module == "" {
		return errors.New(errors.ErrInvalidInput, "module name is required")
	}

	s.mu.Lock()
	mod, ok := s.doc.Modules[module]
	if !ok {
		s.mu.Unlock()
		return errors.Newf(errors.ErrModuleNotFound, "module %q is not registered", module)
	}

	validateEnv := s.doc.CurrentEnvironment
	var scratch map[string]interface{}
	if env == "" {
		scratch = Merge(mod.Settings, nil)
	} else {
		e, ok := s.doc.Environments[env]
		if !ok {
			s.mu.Unlock()
			return errors.Newf(errors.ErrEnvNotFound, "environment %q does not exist", env)
		}
		validateEnv = env
		scratch = Merge(e.Settings[module], nil)
	}

	fn(scratch)

	// Validate the stored configuration with the mutation applied. The
	// env-var layer is left out here: shell overrides are transient and
	// must not block or mask a persistent write.
	var effective map[string]interface{}
	if env == "" {
		effective = s.storedEffectiveLocked(module, validateEnv, scratch, nil)
	} else {
		effective = s.storedEffectiveLocked(module, validateEnv, nil, scratch)
	}
	if sc := s.doc.Schemas[module]; sc != nil {
		if err := sc.Validate(effective); err != nil {
			s.mu.Unlock()
			return err
		}
	}

	if env == "" {
		mod.Settings = scratch
	} else {
		s.doc.Environments[env].Settings[module] = scratch
	}

	if err := s.save(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.bus.Publish(events.New(events.EventConfigChanged, module, env, nil))
	return nil
}

// Validate checks a module's effective configuration in the given
// environment ("" means current) against its registered schema.
func (s *Store) Validate(module, env string) error {
	s.mu.RLock()
	if _, ok := s.doc.Modules[module]; !ok {
		s.mu.RUnlock()
		return errors.Newf(errors.ErrModuleNotFound, "module %q is not registered", module)
	}
	if env == "" {
		env = s.doc.CurrentEnvironment
	}
	if _, ok := s.doc.Environments[env]; !ok {
		s.mu.RUnlock()
		return errors.Newf(errors.ErrEnvNotFound, "environment %q does not exist", env)
	}
	sc := s.doc.Schemas[module]
	effective := s.effectiveLocked(module, env, nil, nil)
	s.mu.RUnlock()

	if sc == nil {
		return nil
	}
	return sc.Validate(effective)
}

// ValidateAll validates every registered module in the given environment
// ("" means current). It returns a map of module name to validation
// error for the modules that failed.
func (s *Store) ValidateAll(env string) map[string]error {
	failed := make(map[string]error)
	for _, name := range s.Modules() {
		if err := s.Validate(name, env); err != nil {
			failed[name] = err
		}
	}
	return failed
}

// Reload re-reads the store file and emits config.reloaded with the
// modules whose effective configuration changed. The in-memory document
// is replaced wholesale.
func (s *Store) Reload() error {
	s.mu.Lock()
	doc, sum, err := loadDocument(s.paths.ConfigFile())
	if err != nil {
		s.mu.Unlock()
		return err
	}

	before := s.effectiveSnapshotLocked()
	s.doc = doc
	s.lastSum = sum
	after := s.effectiveSnapshotLocked()
	s.mu.Unlock()

	changed := diffSnapshots(before, after)
	if len(changed) == 0 {
		s.logger.Debug().Msg("Reload produced no effective changes")
		return nil
	}

	s.logger.Info().Strs("modules", changed).Msg("Configuration reloaded")
	s.bus.Publish(events.New(events.EventConfigReloaded, "", "", map[string]interface{}{
		"modules": changed,
	}))
	for _, name := range changed {
		s.bus.Publish(events.NewModuleEvent(events.EventConfigChanged, name, nil))
	}
	return nil
}

// effectiveSnapshotLocked computes effective config for every module in
// the current environment. Callers must hold at least the read lock.
func (s *Store) effectiveSnapshotLocked() map[string]map[string]interface{} {
	snap := make(map[string]map[string]interface{}, len(s.doc.Modules))
	for name := range s.doc.Modules {
		snap[name] = s.effectiveLocked(name, s.doc.CurrentEnvironment, nil, nil)
	}
	return snap
}

// equalMaps compares two settings maps by canonical JSON so that values
// decoded from disk (float64) and values set in memory (int) compare
// equal when they serialize the same.
func equalMaps(a, b map[string]interface{}) bool {
	return canonical(a) == canonical(b)
}

func canonical(m map[string]interface{}) string {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Sprintf("%#v", m)
	}
	return string(data)
}

// diffSnapshots returns the sorted union of modules whose effective
// configuration differs between two snapshots.
func diffSnapshots(before, after map[string]map[string]interface{}) []string {
	var changed []string
	seen := make(map[string]bool)
	for name, b := range before {
		seen[name] = true
		a, ok := after[name]
		if !ok || !equalMaps(a, b) {
			changed = append(changed, name)
		}
	}
	for name := range after {
		if !seen[name] {
			changed = append(changed, name)
		}
	}
	sort.Strings(changed)
	return changed
}
