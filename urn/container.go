package urn

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"unicode/utf16"

	"github.com/teranos/gmsctl/errors"
)

// ContainerKey identifies a container (database, schema, project, ...) the way
// ingestion sources key them. The guid is stable for equal keys.
type ContainerKey struct {
	Platform string
	// Instance is the platform instance; empty means unset.
	Instance string

	// BackcompatInstance stands in for Instance in the guid when Instance is
	// empty. Older sources stored the env there.
	BackcompatInstance string

	// Fields are the subtype-specific parts, e.g. {"database": "db", "schema": "public"}.
	Fields map[string]string
}

// DatabaseKey keys a database container.
func DatabaseKey(platform, instance, database string) ContainerKey {
	return ContainerKey{Platform: platform, Instance: instance, Fields: map[string]string{"database": database}}
}

// SchemaKey keys a schema container.
func SchemaKey(platform, instance, database, schema string) ContainerKey {
	return ContainerKey{Platform: platform, Instance: instance, Fields: map[string]string{"database": database, "schema": schema}}
}

// GUIDDict returns the map the guid is computed from. Platform and every
// entry of Fields are always present, empty or not. Instance is present only
// when it, or BackcompatInstance, is non-empty.
func (k ContainerKey) GUIDDict() map[string]string {
	bag := map[string]string{"platform": k.Platform}
	for name, value := range k.Fields {
		bag[name] = value
	}
	instance := k.Instance
	if instance == "" {
		instance = k.BackcompatInstance
	}
	if instance != "" {
		bag["instance"] = instance
	}
	return bag
}

// GUID is the hex md5 of the compact, key-sorted, ASCII-escaped JSON of GUIDDict.
func (k ContainerKey) GUID() (string, error) {
	if k.Platform == "" {
		return "", errors.New("container key requires a platform")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(k.GUIDDict()); err != nil {
		return "", errors.Wrap(err, "failed to encode container key")
	}

	sum := md5.Sum(asciiEscape(bytes.TrimRight(buf.Bytes(), "\n")))
	return hex.EncodeToString(sum[:]), nil
}

// Urn returns the container urn for the key.
func (k ContainerKey) Urn() (string, error) {
	guid, err := k.GUID()
	if err != nil {
		return "", err
	}
	return MakeContainerUrn(guid), nil
}

// asciiEscape rewrites every non-ASCII rune as \uXXXX (surrogate pairs above
// the BMP), the form other clients hash.
func asciiEscape(data []byte) []byte {
	var out bytes.Buffer
	for _, r := range string(data) {
		switch {
		case r < 0x80:
			out.WriteRune(r)
		case r > 0xFFFF:
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(&out, `\u%04x\u%04x`, hi, lo)
		default:
			fmt.Fprintf(&out, `\u%04x`, r)
		}
	}
	return out.Bytes()
}
