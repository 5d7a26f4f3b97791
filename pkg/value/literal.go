package value

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
)

// ErrUnrepresentable is returned by [Literal] for values that have no TOML
// literal form: nil values and strings that are not valid UTF-8.
var ErrUnrepresentable = errors.New("value has no TOML literal representation")

var bareKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Key renders k as a TOML key: bare when possible, quoted otherwise.
func Key(k string) (string, error) {
	if bareKey.MatchString(k) {
		return k, nil
	}
	return scalarLiteral(k)
}

// Literal renders v in TOML inline-literal syntax. Tables render as
// `{ a = 1.0, b = "x" }` with keys in lexical order, lists as `[a, b]`, and
// scalars with the TOML encoder's canonical formatting.
func Literal(v Value) (string, error) {
	var b strings.Builder
	if err := writeLiteral(&b, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeLiteral(b *strings.Builder, v Value) error {
	switch x := v.(type) {
	case String:
		s, err := scalarLiteral(string(x))
		if err != nil {
			return err
		}
		b.WriteString(s)
	case Float:
		s, err := scalarLiteral(float64(x))
		if err != nil {
			return err
		}
		b.WriteString(s)
	case Bool:
		if x {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case List:
		b.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := writeLiteral(b, e); err != nil {
				return fmt.Errorf("index %d: %w", i, err)
			}
		}
		b.WriteByte(']')
	case Table:
		if len(x) == 0 {
			b.WriteString("{}")
			return nil
		}
		b.WriteString("{ ")
		for i, k := range x.Keys() {
			if i > 0 {
				b.WriteString(", ")
			}
			key, err := Key(k)
			if err != nil {
				return err
			}
			b.WriteString(key)
			b.WriteString(" = ")
			if err := writeLiteral(b, x[k]); err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
		}
		b.WriteString(" }")
	default:
		return ErrUnrepresentable
	}
	return nil
}

// scalarLiteral formats a string or float through the TOML encoder so that
// quoting, escaping and float spelling (1.0, nan, inf) match the format.
func scalarLiteral(x any) (string, error) {
	if s, ok := x.(string); ok && !utf8.ValidString(s) {
		return "", fmt.Errorf("%w: invalid UTF-8 in %q", ErrUnrepresentable, s)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(map[string]any{"v": x}); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnrepresentable, err)
	}
	out := strings.TrimSpace(buf.String())
	lit, ok := strings.CutPrefix(out, "v = ")
	if !ok {
		return "", fmt.Errorf("%w: unexpected encoding %q", ErrUnrepresentable, out)
	}
	return lit, nil
}
