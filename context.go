// context.go — immutable key/value context attached to diagnostics.
//
// Design:
//   • Internal representation: append-only []Field (deterministic order).
//   • Builders are non-mutating: return NEW slices (no aliasing).
//   • Public view: copy-on-read map; host view: a single "k=v k=v" line sent
//     through the host's context field (errcontext_msg).
package pgguard

import (
	"fmt"
	"strings"
)

// Field represents a single contextual key-value pair attached to a report.
// Keys SHOULD be snake_case for consistency, but the core does not enforce it.
type Field struct {
	Key string
	Val any
}

// fields is the internal immutable representation of context.
// Treat it as append-only; never modify elements in place once published.
type fields []Field

// ctxCloneAppend returns a NEW slice with dst's contents followed by add.
// It always allocates a fresh backing array to avoid aliasing via append.
func ctxCloneAppend(dst fields, add ...Field) fields {
	if len(dst)+len(add) == 0 {
		return nil
	}
	out := make(fields, len(dst)+len(add))
	copy(out, dst)
	copy(out[len(dst):], add)
	return out
}

// ctxFromKV parses a variadic list of key-value arguments into fields.
//
// Rules:
//   • Pairs are read left-to-right as (key, value).
//   • A non-string key drops the ENTIRE PAIR so later pairs stay aligned.
//   • A trailing key with no value becomes (key, nil).
func ctxFromKV(kv ...any) fields {
	if len(kv) == 0 {
		return nil
	}
	out := make(fields, 0, len(kv)/2+1)
	for i := 0; i < len(kv); {
		k, ok := kv[i].(string)
		if !ok {
			i += 2
			continue
		}
		var v any
		if i+1 < len(kv) {
			v = kv[i+1]
		}
		i += 2
		out = append(out, Field{Key: k, Val: v})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ctxToMap creates a NEW map from fields (copy-on-read).
// Later duplicate keys overwrite earlier ones (last-write-wins).
func ctxToMap(fs fields) map[string]any {
	if len(fs) == 0 {
		return nil
	}
	m := make(map[string]any, len(fs))
	for _, f := range fs {
		m[f.Key] = f.Val
	}
	return m
}

// render joins fields as "k1=v1 k2=v2" in insertion order; "" when empty.
func (fs fields) render() string {
	if len(fs) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, f := range fs {
		if f.Key == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s=%v", f.Key, f.Val)
	}
	return sb.String()
}
