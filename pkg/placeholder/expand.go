package placeholder

import (
	"strings"

	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/arthur-debert/homebin/pkg/paths"
)

// Expand renders template against a match context.
func Expand(template string, mc *MatchContext) (string, error) {
	if mc == nil {
		return ExpandMap(template, nil)
	}
	return ExpandMap(template, mc.Values())
}

// ExpandMap renders template against a plain key/value map. Unknown keys,
// unterminated or stray braces are ErrPlaceholder errors.
func ExpandMap(template string, values map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(template))

	for i := 0; i < len(template); i++ {
		c := template[i]
		switch c {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexAny(template[i+1:], "{}")
			if end < 0 || template[i+1+end] != '}' {
				return "", placeholderError("unterminated placeholder", template, "")
			}
			key := template[i+1 : i+1+end]
			value, ok := values[key]
			if !ok {
				return "", placeholderError("unknown placeholder {"+key+"}", template, key)
			}
			b.WriteString(value)
			i += end + 1
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", placeholderError("single '}' in template", template, "")
		default:
			b.WriteByte(c)
		}
	}

	return b.String(), nil
}

// ResolvePath expands a leading ~ and makes an expanded target absolute.
func ResolvePath(path string) (string, error) {
	if path == "" {
		return "", errors.New(errors.ErrPlaceholder, "target expanded to an empty path")
	}
	return paths.Resolve(path)
}

func placeholderError(msg, template, key string) error {
	err := errors.New(errors.ErrPlaceholder, msg).WithDetail("template", template)
	if key != "" {
		err.WithDetail("key", key)
	}
	return err
}
