// Package transfer moves configuration in and out of the store as
// JSON, YAML, TOML or XML. Whole-store documents round-trip through
// export and import; module and environment exports produce smaller
// documents that import back into the matching section.
package transfer

import (
	"path/filepath"
	"strings"

	"github.com/aitherzero/configcore/pkg/errors"
)

// Format names a supported serialization format.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatXML  Format = "xml"
)

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "xml":
		return FormatXML, nil
	}
	return "", errors.Newf(errors.ErrFormatUnknown, "unknown format %q", name)
}

// DetectFormat infers the format from a file extension.
func DetectFormat(path string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return "", errors.Newf(errors.ErrFormatUnknown, "cannot detect format of %q: no extension", path)
	}
	return ParseFormat(ext)
}
