package resolve

import (
	"github.com/matzehuels/tuigraph/pkg/catalog"
	"github.com/matzehuels/tuigraph/pkg/value"
)

// ApplyRender shapes v for output.
//
//   - RenderScalar unwraps a single-element list. Longer lists pass through.
//   - RenderList wraps a non-list value in a one-element list.
//   - With no hint, a list parameter declared with len = 1 is unwrapped.
//
// Anything else is returned unchanged.
func ApplyRender(v value.Value, def catalog.ParamDef) value.Value {
	if def.Render != nil {
		switch *def.Render {
		case catalog.RenderScalar:
			return unwrap(v)
		case catalog.RenderList:
			if _, ok := v.(value.List); ok {
				return v
			}
			return value.List{v}
		}
		return v
	}
	if def.Kind == catalog.ParamList && def.Len != nil && *def.Len == 1 {
		return unwrap(v)
	}
	return v
}

func unwrap(v value.Value) value.Value {
	if l, ok := v.(value.List); ok && len(l) == 1 {
		return l[0]
	}
	return v
}
