package fetch

import "github.com/nojima/go-fetch/header"

// Headers is the ordered header multimap the conceptual Headers type
// spec.md §1 assumes the host provides. It is implemented in package
// header so the engine adapter (C4) can use the same type without
// depending on fetch.
type Headers = header.Headers

// NewHeaders returns an empty Headers container.
func NewHeaders() *Headers { return header.New() }

// HeadersFrom builds a Headers container from any of the
// "Headers-compatible" shapes spec.md §6 lists: a *Headers, a
// map[string]string, a map[string][]string, or an ordered pair list
// ([][2]string).
func HeadersFrom(v interface{}) (*Headers, error) {
	switch h := v.(type) {
	case nil:
		return NewHeaders(), nil
	case *Headers:
		return h.Clone(), nil
	case map[string]string:
		out := NewHeaders()
		for k, val := range h {
			out.Set(k, val)
		}
		return out, nil
	case map[string][]string:
		out := NewHeaders()
		for k, values := range h {
			for _, val := range values {
				out.Append(k, val)
			}
		}
		return out, nil
	case [][2]string:
		out := NewHeaders()
		for _, pair := range h {
			out.Append(pair[0], pair[1])
		}
		return out, nil
	default:
		return nil, &TypeError{Message: "fetch: headers must be a Headers, map[string]string, map[string][]string, or [][2]string"}
	}
}

// mergeHeaders applies init's headers over base's, with init winning on
// name conflicts (spec.md §8: "init.headers wins on key conflicts").
// Names not present in init are carried over from base untouched.
func mergeHeaders(base, init *Headers) *Headers {
	merged := base.Clone()
	for _, name := range init.Names() {
		merged.Delete(name)
		for _, v := range init.Values(name) {
			merged.Append(name, v)
		}
	}
	return merged
}
