package session

import (
	"os"
	"strings"

	"github.com/teranos/gmsctl/errors"
)

// InterpolateEnv substitutes {VAR} placeholders in s with values from the process
// environment. "{{" and "}}" produce literal braces.
func InterpolateEnv(s string) (string, error) {
	return Interpolate(s, os.LookupEnv)
}

// Interpolate substitutes {NAME} placeholders using lookup. A name lookup cannot
// resolve, an empty name or an unbalanced brace is an error marked
// errors.ErrConfiguration.
func Interpolate(s string, lookup func(string) (string, bool)) (string, error) {
	if !strings.ContainsAny(s, "{}") {
		return s, nil
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '{' && i+1 < len(s) && s[i+1] == '{':
			b.WriteByte('{')
			i++
		case c == '}' && i+1 < len(s) && s[i+1] == '}':
			b.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(s[i+1:], '}')
			if end < 0 {
				return "", tokenError(errors.New("unbalanced '{' in token"))
			}
			name := s[i+1 : i+1+end]
			if name == "" {
				return "", tokenError(errors.New("empty placeholder in token"))
			}
			value, ok := lookup(name)
			if !ok {
				return "", tokenError(errors.Newf("token references unset environment variable %q", name))
			}
			b.WriteString(value)
			i += end + 1
		case c == '}':
			return "", tokenError(errors.New("single '}' in token"))
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

func tokenError(err error) error {
	err = errors.Mark(err, errors.ErrConfiguration)
	return errors.WithHint(err, "use {{ and }} for literal braces in the token")
}
