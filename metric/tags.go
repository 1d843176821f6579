package metric

import (
	"sort"
	"strings"
)

// Tags distinguish the incarnations of a metric. Two tag sets with the
// same key/value pairs identify the same incarnation regardless of
// insertion order.
type Tags map[string]string

// key returns the canonical, order-independent encoding used as the
// incarnation map key. An empty or nil tag set encodes to "".
func (t Tags) key() string {
	if len(t) == 0 {
		return ""
	}
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(t[k])
	}
	return b.String()
}

// clone returns a defensive copy so callers cannot mutate an
// incarnation's identity after creation.
func (t Tags) clone() Tags {
	if len(t) == 0 {
		return nil
	}
	c := make(Tags, len(t))
	for k, v := range t {
		c[k] = v
	}
	return c
}

// String returns the canonical encoding. Useful in logs and descriptors.
func (t Tags) String() string {
	return t.key()
}
