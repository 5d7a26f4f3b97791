package literal

import (
	"strconv"

	"github.com/matzehuels/tuigraph/pkg/value"
)

// Format renders v as the text a user would type to produce it again, so
// an editor can pre-fill a field. Strings are returned unquoted; lists and
// tables use TOML literal syntax.
func Format(v value.Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case value.String:
		return string(x)
	case value.Float:
		return strconv.FormatFloat(float64(x), 'g', -1, 64)
	case value.Bool:
		return strconv.FormatBool(bool(x))
	}
	s, err := value.Literal(v)
	if err != nil {
		return ""
	}
	return s
}
