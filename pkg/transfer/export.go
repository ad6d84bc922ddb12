package transfer

import (
	"encoding/json"
	"os"
	"path/filepath"

	gotoml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/aitherzero/configcore/pkg/errors"
	"github.com/aitherzero/configcore/pkg/store"
)

// ExportOptions selects what to export and how.
type ExportOptions struct {
	Format Format
	// Module exports a single module's effective configuration.
	Module string
	// Environment exports one environment section. Mutually exclusive
	// with Module.
	Environment string
}

// Export serializes store content per the options.
func Export(s *store.Store, opts ExportOptions) ([]byte, error) {
	if opts.Module != "" && opts.Environment != "" {
		return nil, errors.New(errors.ErrInvalidInput, "module and environment exports are mutually exclusive")
	}

	payload, err := exportPayload(s, opts)
	if err != nil {
		return nil, err
	}
	return encode(payload, opts.Format)
}

// WriteFile exports to a file, creating parent directories. The format
// falls back to the file extension when unset.
func WriteFile(s *store.Store, path string, opts ExportOptions) error {
	if opts.Format == "" {
		f, err := DetectFormat(path)
		if err != nil {
			return err
		}
		opts.Format = f
	}
	data, err := Export(s, opts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrExportFailed, "failed to write %s", path)
	}
	return nil
}

func exportPayload(s *store.Store, opts ExportOptions) (map[string]interface{}, error) {
	switch {
	case opts.Module != "":
		effective, err := s.EffectiveConfig(opts.Module)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"module":      opts.Module,
			"environment": s.CurrentEnvironment(),
			"settings":    effective,
		}, nil

	case opts.Environment != "":
		overlays := map[string]interface{}{}
		var description string
		found := false
		for _, info := range s.Environments() {
			if info.Name == opts.Environment {
				description = info.Description
				found = true
			}
		}
		if !found {
			return nil, errors.Newf(errors.ErrEnvNotFound, "environment %q does not exist", opts.Environment)
		}
		for _, module := range s.Modules() {
			overlay, err := s.EnvironmentOverlay(opts.Environment, module)
			if err != nil {
				return nil, err
			}
			if len(overlay) > 0 {
				overlays[module] = overlay
			}
		}
		return map[string]interface{}{
			"environment": opts.Environment,
			"description": description,
			"settings":    overlays,
		}, nil

	default:
		doc, err := s.Snapshot()
		if err != nil {
			return nil, err
		}
		return documentToMap(doc)
	}
}

// documentToMap converts the typed document to a plain map through its
// JSON form, so every format encoder sees the same shape.
func documentToMap(doc *store.Document) (map[string]interface{}, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrExportFailed, "failed to serialize store")
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, errors.ErrExportFailed, "failed to serialize store")
	}
	return m, nil
}

func encode(payload map[string]interface{}, format Format) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrExportFailed, "JSON encoding failed")
		}
		return append(data, '\n'), nil

	case FormatYAML:
		data, err := yaml.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrExportFailed, "YAML encoding failed")
		}
		return data, nil

	case FormatTOML:
		data, err := gotoml.Marshal(stripNulls(payload))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrExportFailed, "TOML encoding failed")
		}
		return data, nil

	case FormatXML:
		return encodeXML(payload)
	}
	return nil, errors.Newf(errors.ErrFormatUnknown, "unknown format %q", format)
}

// stripNulls removes nil values recursively; TOML has no null literal.
func stripNulls(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case nil:
			continue
		case map[string]interface{}:
			out[k] = stripNulls(val)
		default:
			out[k] = v
		}
	}
	return out
}
