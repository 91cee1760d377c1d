// Package urn handles entity identifiers: percent-encoding, entity type
// inference and construction of the platform, dataset and container urns.
package urn

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/teranos/gmsctl/errors"
)

// Prefixes recognized on input
const (
	Prefix        = "urn:"
	EncodedPrefix = "urn%3A"
	LinkedInRoot  = "urn:li:"
)

// Encode percent-encodes every byte outside [A-Za-z0-9_.~-], including '/'
// and ':'. Spaces become %20.
func Encode(urn string) string {
	return strings.ReplaceAll(url.QueryEscape(urn), "+", "%20")
}

// Decode reverses Encode.
func Decode(encoded string) (string, error) {
	decoded, err := url.PathUnescape(encoded)
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "failed to decode urn %q", encoded), errors.ErrInvalidUrn)
	}
	return decoded, nil
}

// IsEncoded reports whether s looks like an already percent-encoded urn.
func IsEncoded(s string) bool {
	return strings.HasPrefix(s, EncodedPrefix)
}

// ForPath returns s in the form used as a path segment: an encoded urn is
// returned unchanged, a raw urn is encoded, anything else is rejected with an
// error marked errors.ErrInvalidUrn.
func ForPath(s string) (string, error) {
	switch {
	case IsEncoded(s):
		return s, nil
	case strings.HasPrefix(s, Prefix):
		return Encode(s), nil
	default:
		err := errors.Newf("urn %s does not seem to be a valid raw (starts with %s) or encoded urn (starts with %s)",
			s, Prefix, EncodedPrefix)
		return "", errors.Mark(err, errors.ErrInvalidUrn)
	}
}

// GuessEntityType returns the entity type segment of a urn:li: urn, e.g.
// "dataset" for urn:li:dataset:(...).
func GuessEntityType(urn string) (string, error) {
	if !strings.HasPrefix(urn, LinkedInRoot) {
		return "", errors.Mark(errors.Newf("urn %q must start with %s", urn, LinkedInRoot), errors.ErrInvalidUrn)
	}
	parts := strings.SplitN(urn, ":", 4)
	if len(parts) < 4 || parts[2] == "" {
		return "", errors.Mark(errors.Newf("urn %q has no entity type", urn), errors.ErrInvalidUrn)
	}
	return parts[2], nil
}

// MakeDataPlatformUrn returns urn:li:dataPlatform:<platform>, leaving an
// already-qualified platform urn untouched.
func MakeDataPlatformUrn(platform string) string {
	if strings.HasPrefix(platform, "urn:li:dataPlatform:") {
		return platform
	}
	return "urn:li:dataPlatform:" + platform
}

// MakeDataPlatformInstanceUrn returns the urn of a named platform instance.
func MakeDataPlatformInstanceUrn(platform, instance string) string {
	if strings.HasPrefix(instance, "urn:li:dataPlatformInstance") {
		return instance
	}
	return fmt.Sprintf("urn:li:dataPlatformInstance:(%s,%s)", MakeDataPlatformUrn(platform), instance)
}

// MakeDatasetUrn returns urn:li:dataset:(<platform urn>,<name>,<env>).
func MakeDatasetUrn(platform, name, env string) string {
	return fmt.Sprintf("urn:li:dataset:(%s,%s,%s)", MakeDataPlatformUrn(platform), name, env)
}

// MakeContainerUrn returns urn:li:container:<guid>. A value already carrying the
// prefix is returned unchanged.
func MakeContainerUrn(guid string) string {
	if strings.HasPrefix(guid, "urn:li:container:") {
		return guid
	}
	return "urn:li:container:" + guid
}
