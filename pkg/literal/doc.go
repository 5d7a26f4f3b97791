// Package literal converts free text typed by a user into typed values.
//
// [Parse] interprets the text according to a parameter's declared kind:
//
//   - string: the text verbatim
//   - float: a 64-bit float
//   - bool: exactly "true" or "false"
//   - list: a TOML array literal such as `["a", "b"]`, or a bare
//     comma-separated ("a, b, c") or whitespace-separated ("1 2 3") list
//   - table: a TOML inline table, with or without the surrounding braces,
//     or for float-typed tables the "x y" coordinate shorthand
//
// Lists are then checked against the declared element type and exact length.
// Failures are reported as [*ParseError] values whose Kind tells the caller
// what went wrong, so an editor can show a per-field message and keep the
// field's previous value.
//
// [Format] is the inverse used to pre-fill an input box with a stored value.
package literal
