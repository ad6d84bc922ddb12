package schema

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/aitherzero/configcore/pkg/errors"
)

// Validate checks a settings map against the schema. The returned error
// carries code ErrConfigValid with one message per failed property, plus
// a "violations" detail listing them individually.
func (s *Schema) Validate(settings map[string]interface{}) error {
	if s == nil || len(s.Properties) == 0 {
		return nil
	}
	if settings == nil {
		settings = map[string]interface{}{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(s.Compile()),
		gojsonschema.NewGoLoader(settings),
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrSchemaCompile, "schema evaluation failed")
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return errors.New(errors.ErrConfigValid, strings.Join(msgs, "; ")).
		WithDetail("violations", msgs)
}

// Violations returns the individual validation messages from an error
// produced by Validate, or nil for other errors.
func Violations(err error) []string {
	details := errors.GetErrorDetails(err)
	if details == nil {
		return nil
	}
	if msgs, ok := details["violations"].([]string); ok {
		return msgs
	}
	return nil
}
