package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aitherzero/configcore/pkg/errors"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func labRunnerSchema() *Schema {
	return &Schema{
		Description: "Lab runner settings",
		Properties: map[string]*Property{
			"port": {
				Type:     TypeInt,
				Required: true,
				Min:      floatPtr(1),
				Max:      floatPtr(65535),
				Default:  8080,
			},
			"hostname": {
				Type:      TypeString,
				Pattern:   `^[a-z][a-z0-9-]*$`,
				MinLength: intPtr(1),
				Default:   "localhost",
			},
			"logLevel": {
				Type:    TypeString,
				Enum:    []interface{}{"debug", "info", "warn", "error"},
				Default: "info",
			},
			"tls": {
				Type: TypeObject,
				Properties: map[string]*Property{
					"enabled": {Type: TypeBool, Default: false},
					"cert":    {Type: TypeString},
				},
			},
		},
	}
}

func TestCheckAcceptsValidSchema(t *testing.T) {
	require.NoError(t, labRunnerSchema().Check())
}

func TestCheckRejectsUnknownType(t *testing.T) {
	s := &Schema{Properties: map[string]*Property{
		"x": {Type: "decimal"},
	}}
	err := s.Check()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSchemaInvalid))
}

func TestCheckRejectsBadPattern(t *testing.T) {
	s := &Schema{Properties: map[string]*Property{
		"x": {Type: TypeString, Pattern: "["},
	}}
	err := s.Check()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSchemaInvalid))
}

func TestCheckRejectsNestedPropertiesOnScalar(t *testing.T) {
	s := &Schema{Properties: map[string]*Property{
		"x": {Type: TypeString, Properties: map[string]*Property{
			"y": {Type: TypeString},
		}},
	}}
	require.Error(t, s.Check())
}

func TestDefaults(t *testing.T) {
	defaults := labRunnerSchema().Defaults()

	assert.Equal(t, 8080, defaults["port"])
	assert.Equal(t, "localhost", defaults["hostname"])
	assert.Equal(t, "info", defaults["logLevel"])

	tls, ok := defaults["tls"].(map[string]interface{})
	require.True(t, ok, "nested object defaults should materialize")
	assert.Equal(t, false, tls["enabled"])
	_, hasCert := tls["cert"]
	assert.False(t, hasCert, "properties without defaults are omitted")
}

func TestValidateAcceptsGoodSettings(t *testing.T) {
	s := labRunnerSchema()
	err := s.Validate(map[string]interface{}{
		"port":     443,
		"hostname": "lab-01",
		"logLevel": "warn",
		"tls":      map[string]interface{}{"enabled": true, "cert": "/etc/certs/lab.pem"},
	})
	assert.NoError(t, err)
}

func TestValidateReportsViolations(t *testing.T) {
	s := labRunnerSchema()
	err := s.Validate(map[string]interface{}{
		"port":     70000,       // above max
		"hostname": "UPPERCASE", // pattern mismatch
		"logLevel": "loud",      // not in enum
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))

	msgs := Violations(err)
	assert.Len(t, msgs, 3)
}

func TestValidateRequiresDeclaredRequired(t *testing.T) {
	err := labRunnerSchema().Validate(map[string]interface{}{
		"hostname": "lab-01",
	})
	require.Error(t, err)
}

func TestValidateAllowsUndeclaredKeys(t *testing.T) {
	err := labRunnerSchema().Validate(map[string]interface{}{
		"port":   8080,
		"undocumented": "value",
	})
	assert.NoError(t, err)
}

func TestValidateIntRejectsFraction(t *testing.T) {
	err := labRunnerSchema().Validate(map[string]interface{}{
		"port": 80.5,
	})
	require.Error(t, err)
}

func TestValidateIntegralFloatAccepted(t *testing.T) {
	// JSON decoding yields float64 for all numbers; integral values
	// must still satisfy type int.
	err := labRunnerSchema().Validate(map[string]interface{}{
		"port": float64(8080),
	})
	assert.NoError(t, err)
}

func TestEmptySchemaValidatesAnything(t *testing.T) {
	var s *Schema
	assert.NoError(t, s.Validate(map[string]interface{}{"anything": 1}))
	assert.NoError(t, (&Schema{}).Validate(nil))
}

func TestCompileShape(t *testing.T) {
	doc := labRunnerSchema().Compile()

	assert.Equal(t, "object", doc["type"])
	assert.Equal(t, true, doc["additionalProperties"])
	assert.Equal(t, []string{"port"}, doc["required"])

	props := doc["properties"].(map[string]interface{})
	port := props["port"].(map[string]interface{})
	assert.Equal(t, "integer", port["type"])
	assert.Equal(t, float64(65535), port["maximum"])
}
