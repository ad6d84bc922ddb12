package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeOverrideWins(t *testing.T) {
	base := map[string]interface{}{"a": 1, "b": 2}
	override := map[string]interface{}{"b": 3}

	out := Merge(base, override)

	assert.Equal(t, 1, out["a"])
	assert.Equal(t, 3, out["b"])
	assert.Equal(t, 2, base["b"], "base must not be mutated")
}

func TestMergeRecursesIntoMaps(t *testing.T) {
	base := map[string]interface{}{
		"tls": map[string]interface{}{"enabled": false, "cert": "/etc/cert.pem"},
	}
	override := map[string]interface{}{
		"tls": map[string]interface{}{"enabled": true},
	}

	out := Merge(base, override)

	tls := out["tls"].(map[string]interface{})
	assert.Equal(t, true, tls["enabled"])
	assert.Equal(t, "/etc/cert.pem", tls["cert"], "keys absent from override are preserved")
}

func TestMergeReplacesWhenNotBothMaps(t *testing.T) {
	base := map[string]interface{}{
		"hosts": []interface{}{"a", "b"},
		"port":  map[string]interface{}{"value": 1},
	}
	override := map[string]interface{}{
		"hosts": []interface{}{"c"},
		"port":  8080,
	}

	out := Merge(base, override)

	assert.Equal(t, []interface{}{"c"}, out["hosts"], "arrays replace, never concatenate")
	assert.Equal(t, 8080, out["port"])
}

func TestMergeNilInputs(t *testing.T) {
	assert.Equal(t, map[string]interface{}{"a": 1}, Merge(nil, map[string]interface{}{"a": 1}))
	assert.Equal(t, map[string]interface{}{"a": 1}, Merge(map[string]interface{}{"a": 1}, nil))
	assert.Empty(t, Merge(nil, nil))
}

func TestMergeAllPrecedence(t *testing.T) {
	out := MergeAll(
		map[string]interface{}{"a": "defaults", "b": "defaults"},
		map[string]interface{}{"b": "base", "c": "base"},
		map[string]interface{}{"c": "overlay"},
	)

	assert.Equal(t, "defaults", out["a"])
	assert.Equal(t, "base", out["b"])
	assert.Equal(t, "overlay", out["c"])
}

func TestPathHelpers(t *testing.T) {
	m := map[string]interface{}{}

	setPath(m, "tls.ciphers.min", "tls12")
	assert.Equal(t, "tls12", getPath(m, "tls.ciphers.min"))
	assert.Nil(t, getPath(m, "tls.missing"))

	setPath(m, "flat", 1)
	assert.Equal(t, 1, getPath(m, "flat"))

	deletePath(m, "tls.ciphers.min")
	assert.Nil(t, getPath(m, "tls.ciphers.min"))
}

func TestSetPathReplacesScalarIntermediate(t *testing.T) {
	m := map[string]interface{}{"x": 1}
	setPath(m, "x.y", 2)
	assert.Equal(t, 2, getPath(m, "x.y"))
}
