// Package header implements the header adapter (C4): bridging the HTTP
// engine's flat raw-header-pair list and fetch's ordered Headers
// container.
package header

// Headers is the minimal ordered multimap fetch.Headers is built on top
// of; it lives here, beside the conversions to and from the engine's
// flat pair list (FromPairs, Pairs), and fetch re-exports it.
type Headers struct {
	keys   []string
	values map[string][]string
}

func New() *Headers {
	return &Headers{values: map[string][]string{}}
}

// FromPairs converts the engine's flat [k0, v0, k1, v1, ...] raw-header
// list into a Headers container by Set-ing each pair, not appending —
// matching the observed teacher behavior this module preserves (spec.md
// §4.4, §9: this collapses repeated headers such as multiple Set-Cookie
// into one; left as an open question, not fixed here).
func FromPairs(pairs []string) *Headers {
	h := New()
	for i := 0; i+1 < len(pairs); i += 2 {
		h.Set(pairs[i], pairs[i+1])
	}
	return h
}

// Pairs renders Headers back to the engine's flat raw-header-pair shape.
func (h *Headers) Pairs() []string {
	pairs := make([]string, 0, len(h.keys)*2)
	for _, k := range h.keys {
		for _, v := range h.values[canonical(k)] {
			pairs = append(pairs, k, v)
		}
	}
	return pairs
}

func (h *Headers) Get(name string) string {
	values := h.values[canonical(name)]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func (h *Headers) Has(name string) bool {
	_, ok := h.values[canonical(name)]
	return ok
}

func (h *Headers) Values(name string) []string {
	return h.values[canonical(name)]
}

func (h *Headers) Set(name, value string) {
	key := canonical(name)
	if _, ok := h.values[key]; !ok {
		h.keys = append(h.keys, name)
	}
	h.values[key] = []string{value}
}

func (h *Headers) Append(name, value string) {
	key := canonical(name)
	if _, ok := h.values[key]; !ok {
		h.keys = append(h.keys, name)
	}
	h.values[key] = append(h.values[key], value)
}

func (h *Headers) Delete(name string) {
	key := canonical(name)
	if _, ok := h.values[key]; !ok {
		return
	}
	delete(h.values, key)
	for i, k := range h.keys {
		if canonical(k) == key {
			h.keys = append(h.keys[:i], h.keys[i+1:]...)
			break
		}
	}
}

// Names returns header names in first-seen order.
func (h *Headers) Names() []string {
	out := make([]string, len(h.keys))
	copy(out, h.keys)
	return out
}

// Clone makes an independent copy, used by the orchestrator when it needs
// to mutate headers across a redirect hop without touching the caller's
// original Headers.
func (h *Headers) Clone() *Headers {
	clone := New()
	for _, k := range h.keys {
		clone.keys = append(clone.keys, k)
		values := make([]string, len(h.values[canonical(k)]))
		copy(values, h.values[canonical(k)])
		clone.values[canonical(k)] = values
	}
	return clone
}

func canonical(name string) string {
	b := []byte(name)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c - 'A' + 'a'
		}
	}
	return string(b)
}
