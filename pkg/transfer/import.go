package transfer

import (
	"encoding/json"
	"os"

	ktoml "github.com/knadh/koanf/parsers/toml"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/aitherzero/configcore/pkg/errors"
	"github.com/aitherzero/configcore/pkg/store"
)

// ImportOptions controls how an import is applied.
type ImportOptions struct {
	// Format overrides extension-based detection.
	Format Format
	// Replace swaps the whole store for the imported document instead of
	// deep-merging into it.
	Replace bool
}

// Import reads a configuration file and applies it to the store.
// Whole-store documents merge (or replace) the store; module exports
// apply to the module's base settings; environment exports apply to
// that environment's overlays. Validation and atomicity are handled by
// the store: nothing is persisted if the result would be invalid.
// Callers wanting a pre-import backup take one before calling.
func Import(s *store.Store, path string, opts ImportOptions) error {
	format := opts.Format
	if format == "" {
		f, err := DetectFormat(path)
		if err != nil {
			return err
		}
		format = f
	}

	payload, err := decodeFile(path, format)
	if err != nil {
		return err
	}

	doc, err := payloadToDocument(payload)
	if err != nil {
		return err
	}
	return s.ImportDocument(doc, opts.Replace)
}

func decodeFile(path string, format Format) (map[string]interface{}, error) {
	switch format {
	case FormatJSON:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrImportFailed, "failed to read %s", path)
		}
		var m map[string]interface{}
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrapf(err, errors.ErrImportFailed, "failed to parse %s", path)
		}
		return m, nil

	case FormatYAML:
		return loadWithParser(path, kyaml.Parser())

	case FormatTOML:
		return loadWithParser(path, ktoml.Parser())

	case FormatXML:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrImportFailed, "failed to read %s", path)
		}
		return decodeXML(data)
	}
	return nil, errors.Newf(errors.ErrFormatUnknown, "unknown format %q", format)
}

func loadWithParser(path string, parser koanf.Parser) (map[string]interface{}, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, errors.Wrapf(err, errors.ErrImportFailed, "failed to parse %s", path)
	}
	return k.Raw(), nil
}

// payloadToDocument interprets the decoded map: a module export, an
// environment export, or a whole store document.
func payloadToDocument(payload map[string]interface{}) (*store.Document, error) {
	if module, ok := payload["module"].(string); ok {
		settings, ok := payload["settings"].(map[string]interface{})
		if !ok {
			return nil, errors.New(errors.ErrImportFailed, "module import has no settings map")
		}
		doc := &store.Document{
			Modules: map[string]*store.ModuleSection{
				module: {Settings: settings},
			},
		}
		return doc, nil
	}

	if env, ok := payload["environment"].(string); ok {
		if _, hasModules := payload["modules"]; !hasModules {
			overlays := map[string]map[string]interface{}{}
			if settings, ok := payload["settings"].(map[string]interface{}); ok {
				for module, overlay := range settings {
					if m, ok := overlay.(map[string]interface{}); ok {
						overlays[module] = m
					}
				}
			}
			description, _ := payload["description"].(string)
			doc := &store.Document{
				Environments: map[string]*store.Environment{
					env: {Description: description, Settings: overlays},
				},
			}
			return doc, nil
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrImportFailed, "failed to interpret document")
	}
	var doc store.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrImportFailed, "document does not match the store shape")
	}
	return &doc, nil
}
