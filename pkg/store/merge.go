package store

import (
	"github.com/knadh/koanf/maps"
)

// Merge returns base with override layered on top: recursive key-wise
// override, last-write-wins per leaf, base keys absent from the override
// preserved. When either side of a key is not a map the override value
// replaces wholesale, so arrays replace rather than concatenate. Neither
// input is mutated.
func Merge(base, override map[string]interface{}) map[string]interface{} {
	out := maps.Copy(base)
	if out == nil {
		out = make(map[string]interface{})
	}
	maps.Merge(maps.Copy(override), out)
	return out
}

// MergeAll layers each map over the previous, lowest precedence first.
func MergeAll(layers ...map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for _, layer := range layers {
		if len(layer) == 0 {
			continue
		}
		maps.Merge(maps.Copy(layer), out)
	}
	return out
}

// pathOf splits a dotted key into its path segments.
func pathOf(dotted string) []string {
	var path []string
	start := 0
	for i := 0; i < len(dotted); i++ {
		if dotted[i] == '.' {
			path = append(path, dotted[start:i])
			start = i + 1
		}
	}
	return append(path, dotted[start:])
}

// setPath writes value at the dotted path inside m, creating intermediate
// maps as needed. A non-map intermediate is replaced.
func setPath(m map[string]interface{}, dotted string, value interface{}) {
	path := pathOf(dotted)
	cur := m
	for _, seg := range path[:len(path)-1] {
		next, ok := cur[seg].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			cur[seg] = next
		}
		cur = next
	}
	cur[path[len(path)-1]] = value
}

// getPath reads the value at the dotted path, nil if absent.
func getPath(m map[string]interface{}, dotted string) interface{} {
	return maps.Search(m, pathOf(dotted))
}

// deletePath removes the value at the dotted path. Empty intermediate
// maps are left in place.
func deletePath(m map[string]interface{}, dotted string) {
	maps.Delete(m, pathOf(dotted))
}
