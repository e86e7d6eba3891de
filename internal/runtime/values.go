package runtime

import (
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/spherecal/pkg/ports"
)

// Typed accessors over the raw config store. A missing key and an
// uncoercible value are indistinguishable on purpose: both mean "absent",
// which sends the wizard into fresh collection instead of aborting. The CLI
// shares them for its pre-flight reads and the show command.

func decodeValue(raw any, out any) bool {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return false
	}
	return dec.Decode(raw) == nil
}

// StoredInts reads a flat integer list.
func StoredInts(s ports.ConfigStore, key string) ([]int, bool) {
	raw, found := s.Get(key)
	if !found {
		return nil, false
	}
	var out []int
	if !decodeValue(raw, &out) {
		return nil, false
	}
	return out, true
}

// StoredIntLists reads a list of flat integer lists.
func StoredIntLists(s ports.ConfigStore, key string) ([][]int, bool) {
	raw, found := s.Get(key)
	if !found {
		return nil, false
	}
	var out [][]int
	if !decodeValue(raw, &out) {
		return nil, false
	}
	return out, true
}

// StoredFloats reads a float list and requires exactly n values when n > 0.
func StoredFloats(s ports.ConfigStore, key string, n int) ([]float64, bool) {
	raw, found := s.Get(key)
	if !found {
		return nil, false
	}
	var out []float64
	if !decodeValue(raw, &out) {
		return nil, false
	}
	if n > 0 && len(out) != n {
		return nil, false
	}
	return out, true
}

// StoredFloat reads a single numeric value. YAML hands back int or float64
// depending on how the operator wrote it.
func StoredFloat(s ports.ConfigStore, key string) (float64, bool) {
	raw, found := s.Get(key)
	if !found {
		return 0, false
	}
	var out float64
	if !decodeValue(raw, &out) {
		return 0, false
	}
	return out, true
}

// StoredString reads a string value.
func StoredString(s ports.ConfigStore, key string) (string, bool) {
	raw, found := s.Get(key)
	if !found {
		return "", false
	}
	var out string
	if !decodeValue(raw, &out) {
		return "", false
	}
	return out, true
}
