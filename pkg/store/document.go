package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aitherzero/configcore/pkg/errors"
	"github.com/aitherzero/configcore/pkg/paths"
	"github.com/aitherzero/configcore/pkg/schema"
)

// DocumentVersion is the current store format version.
const DocumentVersion = 1

// DefaultEnvironment always exists and cannot be deleted.
const DefaultEnvironment = "default"

// DefaultDebounceMs is the hot-reload debounce when the store does not
// specify one.
const DefaultDebounceMs = 500

// Document is the on-disk shape of the configuration store.
type Document struct {
	Version            int                       `json:"version"`
	CurrentEnvironment string                    `json:"currentEnvironment"`
	Modules            map[string]*ModuleSection `json:"modules"`
	Environments       map[string]*Environment   `json:"environments"`
	Schemas            map[string]*schema.Schema `json:"schemas"`
	HotReload          HotReload                 `json:"hotReload"`
}

// ModuleSection holds the environment-independent base settings of one module.
type ModuleSection struct {
	Settings map[string]interface{} `json:"settings"`
}

// Environment is a named overlay: per-module setting overrides.
type Environment struct {
	Description string                            `json:"description,omitempty"`
	Settings    map[string]map[string]interface{} `json:"settings"`
}

// HotReload carries the file-watcher settings.
type HotReload struct {
	Enabled    bool `json:"enabled"`
	DebounceMs int  `json:"debounceMs,omitempty"`
}

// newDocument returns a fresh store document with the default environment.
func newDocument() *Document {
	return &Document{
		Version:            DocumentVersion,
		CurrentEnvironment: DefaultEnvironment,
		Modules:            make(map[string]*ModuleSection),
		Environments: map[string]*Environment{
			DefaultEnvironment: {
				Description: "Default environment",
				Settings:    make(map[string]map[string]interface{}),
			},
		},
		Schemas: make(map[string]*schema.Schema),
		HotReload: HotReload{
			Enabled:    false,
			DebounceMs: DefaultDebounceMs,
		},
	}
}

// normalize repairs nil maps after JSON decoding and enforces the
// structural invariants a loaded document must satisfy.
func (d *Document) normalize() error {
	if d.Version == 0 {
		d.Version = DocumentVersion
	}
	if d.Version > DocumentVersion {
		return errors.Newf(errors.ErrConfigParse, "store version %d is newer than supported version %d", d.Version, DocumentVersion)
	}
	if d.Modules == nil {
		d.Modules = make(map[string]*ModuleSection)
	}
	for name, mod := range d.Modules {
		if mod == nil {
			d.Modules[name] = &ModuleSection{Settings: make(map[string]interface{})}
		} else if mod.Settings == nil {
			mod.Settings = make(map[string]interface{})
		}
	}
	if d.Environments == nil {
		d.Environments = make(map[string]*Environment)
	}
	if _, ok := d.Environments[DefaultEnvironment]; !ok {
		d.Environments[DefaultEnvironment] = &Environment{
			Description: "Default environment",
			Settings:    make(map[string]map[string]interface{}),
		}
	}
	for name, env := range d.Environments {
		if env == nil {
			d.Environments[name] = &Environment{Settings: make(map[string]map[string]interface{})}
		} else if env.Settings == nil {
			env.Settings = make(map[string]map[string]interface{})
		}
	}
	if d.CurrentEnvironment == "" {
		d.CurrentEnvironment = DefaultEnvironment
	}
	if _, ok := d.Environments[d.CurrentEnvironment]; !ok {
		return errors.Newf(errors.ErrConfigParse, "current environment %q does not exist in the store", d.CurrentEnvironment)
	}
	if d.Schemas == nil {
		d.Schemas = make(map[string]*schema.Schema)
	}
	if d.HotReload.DebounceMs <= 0 {
		d.HotReload.DebounceMs = DefaultDebounceMs
	}
	return nil
}

// loadDocument reads and validates the store file. A missing file yields
// a fresh document; a corrupt one is an error, never a silent reset.
func loadDocument(path string) (*Document, string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return newDocument(), "", nil
	}
	if err != nil {
		return nil, "", errors.Wrapf(err, errors.ErrConfigLoad, "failed to read %s", path)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, "", errors.Wrapf(err, errors.ErrConfigParse, "failed to parse %s", path)
	}
	if err := doc.normalize(); err != nil {
		return nil, "", err
	}
	return &doc, checksum(data), nil
}

// saveDocument writes the document atomically (temp file + rename in the
// same directory) and returns the checksum of the written bytes.
func saveDocument(p *paths.Paths, doc *Document) (string, error) {
	if err := p.EnsureConfigDir(); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrConfigSave, "failed to serialize store")
	}
	data = append(data, '\n')

	target := p.ConfigFile()
	tmp, err := os.CreateTemp(filepath.Dir(target), ".configuration-*.json.tmp")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrConfigSave, "failed to create temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", errors.Wrap(err, errors.ErrFileWrite, "failed to write store")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", errors.Wrap(err, errors.ErrFileWrite, "failed to close temp file")
	}
	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return "", errors.Wrap(err, errors.ErrConfigSave, "failed to replace store file")
	}
	return checksum(data), nil
}

// checksum returns the hex SHA-256 of data.
func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FileChecksum returns the hex SHA-256 of a file's contents, or "" if the
// file cannot be read. Used by the hot-reload watcher to suppress events
// caused by the store's own saves.
func FileChecksum(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return checksum(data)
}
