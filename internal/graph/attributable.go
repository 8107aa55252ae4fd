package graph

import "sync"

// Attributable holds four disjoint attribute stores keyed by string name:
// toggles (a set of names), strings, ints, and floats. A name may coexist
// across stores (e.g. both an int and a float attribute named "Foo");
// numeric lookup prefers the float store, then the int store.
//
// Thread Safety:
//
//	Safe for concurrent use.
type Attributable struct {
	mu      sync.RWMutex
	toggles map[string]struct{}
	strings map[string]string
	ints    map[string]int64
	floats  map[string]float64
}

func (a *Attributable) init() {
	if a.toggles == nil {
		a.toggles = make(map[string]struct{})
		a.strings = make(map[string]string)
		a.ints = make(map[string]int64)
		a.floats = make(map[string]float64)
	}
}

// =============================================================================
// TOGGLES
// =============================================================================

// SetToggle adds name to the toggle set.
func (a *Attributable) SetToggle(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.init()
	a.toggles[name] = struct{}{}
}

// ClearToggle removes name from the toggle set.
func (a *Attributable) ClearToggle(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.init()
	delete(a.toggles, name)
}

// HasToggle reports whether name is set.
func (a *Attributable) HasToggle(name string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.toggles[name]
	return ok
}

// =============================================================================
// STRINGS
// =============================================================================

func (a *Attributable) SetString(name, value string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.init()
	a.strings[name] = value
}

func (a *Attributable) GetString(name string) (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	v, ok := a.strings[name]
	return v, ok
}

// =============================================================================
// INTS
// =============================================================================

func (a *Attributable) SetInt(name string, value int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.init()
	a.ints[name] = value
}

func (a *Attributable) GetInt(name string) (int64, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	v, ok := a.ints[name]
	return v, ok
}

// IncrementInt adds delta to the current int value of name (0 if unset)
// and returns the new value.
func (a *Attributable) IncrementInt(name string, delta int64) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.init()
	v := a.ints[name] + delta
	a.ints[name] = v
	return v
}

// =============================================================================
// FLOATS
// =============================================================================

func (a *Attributable) SetFloat(name string, value float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.init()
	a.floats[name] = value
}

func (a *Attributable) GetFloat(name string) (float64, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	v, ok := a.floats[name]
	return v, ok
}

// GetNumeric returns the numeric value of name, preferring the float store
// then the int store.
func (a *Attributable) GetNumeric(name string) (float64, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if v, ok := a.floats[name]; ok {
		return v, true
	}
	if v, ok := a.ints[name]; ok {
		return float64(v), true
	}
	return 0, false
}

// =============================================================================
// ENUMERATION
// =============================================================================

// ToggleNames returns every set toggle name, in no particular order. Used
// by serialisers that must walk all attributes of an element rather than
// look one up by name.
func (a *Attributable) ToggleNames() []string { return a.names(a.toggles) }

// StringNames returns every string attribute name.
func (a *Attributable) StringNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(a.strings))
	for k := range a.strings {
		out = append(out, k)
	}
	return out
}

// IntNames returns every int attribute name.
func (a *Attributable) IntNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(a.ints))
	for k := range a.ints {
		out = append(out, k)
	}
	return out
}

// FloatNames returns every float attribute name.
func (a *Attributable) FloatNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(a.floats))
	for k := range a.floats {
		out = append(out, k)
	}
	return out
}

func (a *Attributable) names(m map[string]struct{}) []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// =============================================================================
// RANGE ATTRIBUTE SUGAR
// =============================================================================

// SetRangeAttribute stores r as four int attributes under the given name:
// "<name>_StartLine", "<name>_EndLine", and, when present, "<name>_StartCharacter"
// / "<name>_EndCharacter".
func (a *Attributable) SetRangeAttribute(name string, r Range) {
	a.SetInt(name+"_StartLine", int64(r.StartLine))
	a.SetInt(name+"_EndLine", int64(r.EndLine))
	if r.StartChar != nil {
		a.SetInt(name+"_StartCharacter", int64(*r.StartChar))
	}
	if r.EndChar != nil {
		a.SetInt(name+"_EndCharacter", int64(*r.EndChar))
	}
}

// RangeAttribute reads back a range stored by SetRangeAttribute. ok is
// false if the mandatory start/end line components are both absent.
func (a *Attributable) RangeAttribute(name string) (Range, bool) {
	startLine, hasStart := a.GetInt(name + "_StartLine")
	endLine, hasEnd := a.GetInt(name + "_EndLine")
	if !hasStart && !hasEnd {
		return Range{}, false
	}
	r := Range{StartLine: int(startLine), EndLine: int(endLine)}
	if v, ok := a.GetInt(name + "_StartCharacter"); ok {
		c := int(v)
		r.StartChar = &c
	}
	if v, ok := a.GetInt(name + "_EndCharacter"); ok {
		c := int(v)
		r.EndChar = &c
	}
	return r, true
}

// =============================================================================
// COMPARISON
// =============================================================================

// HasSameAttributes reports whether a and other carry identical values
// across all four attribute stores. It is reflexive, symmetric and
// transitive, and backs Node.IsIsomorphicTo. Node deduplication in the
// importer uses HasSameAttributesIgnoringStrings instead.
func (a *Attributable) HasSameAttributes(other *Attributable) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	other.mu.RLock()
	defer other.mu.RUnlock()

	if len(a.toggles) != len(other.toggles) {
		return false
	}
	for k := range a.toggles {
		if _, ok := other.toggles[k]; !ok {
			return false
		}
	}

	if len(a.strings) != len(other.strings) {
		return false
	}
	for k, v := range a.strings {
		if ov, ok := other.strings[k]; !ok || ov != v {
			return false
		}
	}

	return a.hasSameNumericAttributes(other)
}

// HasSameAttributesIgnoringStrings is HasSameAttributes with the named
// string keys excluded from both the count and the key-by-key comparison.
// Used to compare a not-yet-added candidate node (which never carries
// "Linkage.Name") against already-added nodes (which always do, as a
// SetID side effect) without the comparison being permanently skewed by
// that one generated key.
func (a *Attributable) HasSameAttributesIgnoringStrings(other *Attributable, ignore map[string]bool) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	other.mu.RLock()
	defer other.mu.RUnlock()

	if len(a.toggles) != len(other.toggles) {
		return false
	}
	for k := range a.toggles {
		if _, ok := other.toggles[k]; !ok {
			return false
		}
	}

	an, on := 0, 0
	for k := range a.strings {
		if !ignore[k] {
			an++
		}
	}
	for k := range other.strings {
		if !ignore[k] {
			on++
		}
	}
	if an != on {
		return false
	}
	for k, v := range a.strings {
		if ignore[k] {
			continue
		}
		if ov, ok := other.strings[k]; !ok || ov != v {
			return false
		}
	}

	return a.hasSameNumericAttributes(other)
}

func (a *Attributable) hasSameNumericAttributes(other *Attributable) bool {
	if len(a.ints) != len(other.ints) {
		return false
	}
	for k, v := range a.ints {
		if ov, ok := other.ints[k]; !ok || ov != v {
			return false
		}
	}

	if len(a.floats) != len(other.floats) {
		return false
	}
	for k, v := range a.floats {
		if ov, ok := other.floats[k]; !ok || ov != v {
			return false
		}
	}

	return true
}
