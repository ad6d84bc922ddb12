package store

import (
	"encoding/json"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/aitherzero/configcore/pkg/errors"
)

// EnvVarPrefix is the prefix for environment-variable overrides:
// AITHER_<MODULE>_<KEY> overrides <key> in <module>'s effective
// configuration. Underscores in the variable name become dots, so
// AITHER_LABRUNNER_TLS_ENABLED targets labrunner's tls.enabled.
const EnvVarPrefix = "AITHER_"

// EffectiveConfig resolves a module's effective configuration in the
// current environment: schema defaults, base settings, environment
// overlay, then AITHER_* environment variables, later layers winning.
func (s *Store) EffectiveConfig(module string) (map[string]interface{}, error) {
	return s.EffectiveConfigIn(module, "")
}

// EffectiveConfigIn resolves a module's effective configuration in the
// named environment ("" means current).
func (s *Store) EffectiveConfigIn(module, environment string) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.doc.Modules[module]; !ok {
		return nil, errors.Newf(errors.ErrModuleNotFound, "module %q is not registered", module)
	}
	if environment == "" {
		environment = s.doc.CurrentEnvironment
	}
	if _, ok := s.doc.Environments[environment]; !ok {
		return nil, errors.Newf(errors.ErrEnvNotFound, "environment %q does not exist", environment)
	}
	return s.effectiveLocked(module, environment, nil, nil), nil
}

// Get returns the value at a dotted key in a module's effective
// configuration, nil if the key is absent.
func (s *Store) Get(module, key string) (interface{}, error) {
	return s.GetIn(module, "", key)
}

// GetIn is Get resolved against the named environment ("" means current).
func (s *Store) GetIn(module, environment, key string) (interface{}, error) {
	effective, err := s.EffectiveConfigIn(module, environment)
	if err != nil {
		return nil, err
	}
	return getPath(effective, key), nil
}

// effectiveLocked assembles the full koanf layer stack for one module,
// AITHER_* overrides included. Callers must hold at least the read lock.
func (s *Store) effectiveLocked(module, environment string, baseOverride, overlayOverride map[string]interface{}) map[string]interface{} {
	return s.layeredLocked(module, environment, baseOverride, overlayOverride, true)
}

// storedEffectiveLocked resolves without the env-var layer. Mutations
// validate against this so a transient shell override cannot block or
// mask a persistent write.
func (s *Store) storedEffectiveLocked(module, environment string, baseOverride, overlayOverride map[string]interface{}) map[string]interface{} {
	return s.layeredLocked(module, environment, baseOverride, overlayOverride, false)
}

// layeredLocked builds the layer stack. baseOverride and overlayOverride
// substitute the stored base settings or environment overlay when
// non-nil (used to validate mutations before committing them).
func (s *Store) layeredLocked(module, environment string, baseOverride, overlayOverride map[string]interface{}, withEnv bool) map[string]interface{} {
	defaults := map[string]interface{}{}
	if sc := s.doc.Schemas[module]; sc != nil {
		defaults = sc.Defaults()
	}

	base := baseOverride
	if base == nil {
		if mod := s.doc.Modules[module]; mod != nil {
			base = mod.Settings
		}
	}

	overlay := overlayOverride
	if overlay == nil {
		if e := s.doc.Environments[environment]; e != nil {
			overlay = e.Settings[module]
		}
	}

	k := koanf.New(".")
	_ = k.Load(confmap.Provider(defaults, "."), nil)
	_ = k.Load(confmap.Provider(base, "."), nil)
	_ = k.Load(confmap.Provider(overlay, "."), nil)
	if withEnv {
		_ = k.Load(envProvider(module), nil)
	}
	return k.Raw()
}

// envProvider builds the AITHER_<MODULE>_* override layer. Values that
// parse as JSON scalars (numbers, booleans, null) are typed accordingly;
// everything else stays a string.
func envProvider(module string) *env.Env {
	prefix := EnvVarPrefix + strings.ToUpper(module) + "_"
	return env.ProviderWithValue(prefix, ".", func(key, value string) (string, interface{}) {
		name := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, prefix)), "_", ".")
		return name, coerceEnvValue(value)
	})
}

func coerceEnvValue(value string) interface{} {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return value
	}
	var parsed interface{}
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
		switch parsed.(type) {
		case float64, bool, nil:
			return parsed
		}
	}
	return value
}
