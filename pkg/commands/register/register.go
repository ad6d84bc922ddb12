package register

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aitherzero/configcore/pkg/commands/internal/session"
	"github.com/aitherzero/configcore/pkg/errors"
	"github.com/aitherzero/configcore/pkg/logging"
	"github.com/aitherzero/configcore/pkg/schema"
)

// RegisterModuleOptions defines the options for the RegisterModule command.
type RegisterModuleOptions struct {
	ConfigDir string
	// Module is the name of the module to register.
	Module string
	// SchemaPath is an optional JSON or YAML schema document.
	SchemaPath string
	// DefaultsPath is an optional JSON or YAML settings document.
	DefaultsPath string
}

// RegisterModuleResult reports the module's settings after registration.
type RegisterModuleResult struct {
	Module    string
	HasSchema bool
	Settings  map[string]interface{}
}

// RegisterModule registers a module section, seeding its base settings
// from schema defaults and the optional defaults file. Re-registering
// keeps existing values.
func RegisterModule(opts RegisterModuleOptions) (*RegisterModuleResult, error) {
	log := logging.GetLogger("commands.register")
	log.Debug().Str("command", "RegisterModule").Str("module", opts.Module).Msg("Executing command")

	if opts.Module == "" {
		return nil, errors.New(errors.ErrInvalidInput, "module name cannot be empty")
	}

	var sc *schema.Schema
	if opts.SchemaPath != "" {
		loaded, err := loadSchema(opts.SchemaPath)
		if err != nil {
			return nil, err
		}
		sc = loaded
	}

	var defaults map[string]interface{}
	if opts.DefaultsPath != "" {
		loaded, err := loadSettings(opts.DefaultsPath)
		if err != nil {
			return nil, err
		}
		defaults = loaded
	}

	s, err := session.Open(opts.ConfigDir)
	if err != nil {
		return nil, err
	}
	if err := s.RegisterModule(opts.Module, sc, defaults); err != nil {
		return nil, err
	}

	settings, err := s.BaseSettings(opts.Module)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("command", "RegisterModule").
		Str("module", opts.Module).
		Bool("hasSchema", sc != nil).
		Msg("Command finished")

	return &RegisterModuleResult{
		Module:    opts.Module,
		HasSchema: sc != nil,
		Settings:  settings,
	}, nil
}

func loadSchema(path string) (*schema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read schema %s", path)
	}
	var sc schema.Schema
	if err := decode(path, data, &sc); err != nil {
		return nil, errors.Wrapf(err, errors.ErrSchemaInvalid, "failed to parse schema %s", path)
	}
	return &sc, nil
}

func loadSettings(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read defaults %s", path)
	}
	var m map[string]interface{}
	if err := decode(path, data, &m); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse defaults %s", path)
	}
	return m, nil
}

func decode(path string, data []byte, out interface{}) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, out)
	default:
		return json.Unmarshal(data, out)
	}
}
