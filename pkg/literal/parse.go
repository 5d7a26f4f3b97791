package literal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/tuigraph/pkg/catalog"
	"github.com/matzehuels/tuigraph/pkg/value"
)

// Parse converts raw user input into a value of the parameter's kind.
// The returned error, if any, is a *ParseError.
func Parse(raw string, def catalog.ParamDef) (value.Value, error) {
	switch def.Kind {
	case catalog.ParamString:
		return value.String(raw), nil
	case catalog.ParamFloat:
		f, ok := parseFloat(raw)
		if !ok {
			return nil, &ParseError{Kind: ErrExpectedFloat, Raw: raw}
		}
		return f, nil
	case catalog.ParamBool:
		b, ok := parseBool(raw)
		if !ok {
			return nil, &ParseError{Kind: ErrExpectedBool, Raw: raw}
		}
		return b, nil
	case catalog.ParamList:
		return parseList(raw, def)
	case catalog.ParamTable:
		return parseTable(raw, def)
	}
	return nil, &ParseError{Kind: ErrMalformed, Raw: raw, Err: fmt.Errorf("unsupported param type %s", def.Kind)}
}

func parseFloat(raw string) (value.Float, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return value.Float(f), true
}

func parseBool(raw string) (value.Bool, bool) {
	switch strings.TrimSpace(raw) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func parseList(raw string, def catalog.ParamDef) (value.Value, error) {
	list, ok := nativeList(raw)
	if !ok {
		elem := def.ElemType()
		tokens := splitTokens(stripBrackets(raw))
		list = make(value.List, len(tokens))
		for i, tok := range tokens {
			list[i] = parseToken(tok, elem)
		}
	}

	if def.Len != nil && len(list) != *def.Len {
		return nil, &ParseError{Kind: ErrExpectedListLength, Raw: raw, Len: *def.Len, Got: len(list)}
	}
	if elem := def.ElemType(); elem != catalog.ValueAny {
		for i, v := range list {
			if !matches(v, elem) {
				return nil, &ParseError{Kind: ErrListTypeMismatch, Raw: raw, Index: i, Want: elem}
			}
		}
	}
	return list, nil
}

// nativeList decodes raw as a TOML array literal.
func nativeList(raw string) (value.List, bool) {
	v, err := decodeLiteral(raw)
	if err != nil {
		return nil, false
	}
	list, ok := v.(value.List)
	return list, ok
}

// stripBrackets removes one pair of enclosing brackets so that "[a, b]",
// which is not a valid TOML array, still splits into a and b.
func stripBrackets(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']' {
		return s[1 : len(s)-1]
	}
	return raw
}

// splitTokens splits on commas when present, otherwise on whitespace.
// Tokens are trimmed and empty tokens dropped.
func splitTokens(raw string) []string {
	var parts []string
	if strings.Contains(raw, ",") {
		parts = strings.Split(raw, ",")
	} else {
		parts = strings.Fields(raw)
	}
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseToken converts one bare list token. Tokens that do not parse as the
// requested type are kept as strings and rejected by element validation.
func parseToken(tok string, elem catalog.ValueType) value.Value {
	switch elem {
	case catalog.ValueString:
		return value.String(unquote(tok))
	case catalog.ValueFloat:
		if f, ok := parseFloat(tok); ok {
			return f
		}
	case catalog.ValueBool:
		if b, ok := parseBool(tok); ok {
			return b
		}
	default:
		if v, err := decodeLiteral(tok); err == nil {
			return v
		}
	}
	return value.String(unquote(tok))
}

func unquote(tok string) string {
	if len(tok) < 2 {
		return tok
	}
	first, last := tok[0], tok[len(tok)-1]
	if first != last || (first != '"' && first != '\'') {
		return tok
	}
	if first == '"' {
		if s, err := strconv.Unquote(tok); err == nil {
			return s
		}
	}
	return tok[1 : len(tok)-1]
}

func matches(v value.Value, elem catalog.ValueType) bool {
	switch elem {
	case catalog.ValueString:
		_, ok := v.(value.String)
		return ok
	case catalog.ValueFloat:
		_, ok := v.(value.Float)
		return ok
	case catalog.ValueBool:
		_, ok := v.(value.Bool)
		return ok
	}
	return true
}

func parseTable(raw string, def catalog.ParamDef) (value.Value, error) {
	if def.ValueType != nil && *def.ValueType == catalog.ValueFloat {
		if tokens := splitTokens(raw); len(tokens) == 2 {
			x, okX := parseFloat(tokens[0])
			y, okY := parseFloat(tokens[1])
			if okX && okY {
				return value.Table{"x": x, "y": y}, nil
			}
		}
	}

	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "{") {
		s = "{" + s + "}"
	}
	v, err := decodeLiteral(s)
	if err != nil {
		return nil, &ParseError{Kind: ErrMalformed, Raw: raw, Err: err}
	}
	t, ok := v.(value.Table)
	if !ok {
		return nil, &ParseError{Kind: ErrMalformed, Raw: raw, Err: fmt.Errorf("not a table")}
	}
	return t, nil
}

// decodeLiteral parses s as the right-hand side of a TOML key/value pair.
func decodeLiteral(s string) (value.Value, error) {
	var doc map[string]any
	if _, err := toml.Decode("v = "+s, &doc); err != nil {
		return nil, err
	}
	if len(doc) != 1 {
		return nil, fmt.Errorf("trailing content after literal")
	}
	raw, ok := doc["v"]
	if !ok {
		return nil, fmt.Errorf("no literal")
	}
	return value.FromAny(raw)
}
