package aspect

import "strings"

// TypeKey carries the short type name of an unwrapped union member.
const TypeKey = "__type"

var namespacePrefixes = []string{"com.linkedin.pegasus2avro.", "com.linkedin."}

// Normalize rewrites the service's JSON encoding of unions into plain values.
//
// A single-key object whose key is a fully qualified type name is a union
// member. When the member is an object it becomes that object plus
// "__type": <short name>; otherwise the bare member value is returned. Null
// values are dropped from objects. Normalize does not modify its input.
func Normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		if len(val) == 1 {
			for key, member := range val {
				if short, ok := unionMemberName(key); ok {
					if obj, isObj := Normalize(member).(map[string]interface{}); isObj {
						obj[TypeKey] = short
						return obj
					}
					return Normalize(member)
				}
			}
		}
		out := make(map[string]interface{}, len(val))
		for key, member := range val {
			if member == nil {
				continue
			}
			out[key] = Normalize(member)
		}
		return out

	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = Normalize(item)
		}
		return out

	default:
		return v
	}
}

// unionMemberName returns the short type name for a namespaced union key,
// e.g. "StringType" for "com.linkedin.schema.StringType".
func unionMemberName(key string) (string, bool) {
	for _, prefix := range namespacePrefixes {
		if strings.HasPrefix(key, prefix) {
			rest := key[len(prefix):]
			if i := strings.LastIndexByte(rest, '.'); i >= 0 {
				rest = rest[i+1:]
			}
			return rest, rest != ""
		}
	}
	return "", false
}
