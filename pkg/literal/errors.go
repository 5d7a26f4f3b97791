package literal

import (
	"errors"
	"fmt"

	"github.com/matzehuels/tuigraph/pkg/catalog"
	errs "github.com/matzehuels/tuigraph/pkg/errors"
)

// ErrorKind classifies a parse failure.
type ErrorKind int

// Parse failure kinds.
const (
	ErrExpectedFloat ErrorKind = iota + 1
	ErrExpectedBool
	ErrExpectedListLength
	ErrListTypeMismatch
	ErrMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case ErrExpectedFloat:
		return "expected float"
	case ErrExpectedBool:
		return "expected bool"
	case ErrExpectedListLength:
		return "expected list length"
	case ErrListTypeMismatch:
		return "list type mismatch"
	case ErrMalformed:
		return "malformed literal"
	}
	return fmt.Sprintf("error_kind(%d)", int(k))
}

// ParseError describes why raw input could not be converted.
type ParseError struct {
	Kind ErrorKind
	Raw  string

	// Len is the required element count for ErrExpectedListLength and Got
	// the count that was parsed.
	Len int
	Got int

	// Index and Want locate the offending element for ErrListTypeMismatch.
	Index int
	Want  catalog.ValueType

	// Err is the underlying decoder error for ErrMalformed.
	Err error
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case ErrExpectedFloat:
		return fmt.Sprintf("expected a number, got %q", e.Raw)
	case ErrExpectedBool:
		return fmt.Sprintf("expected true or false, got %q", e.Raw)
	case ErrExpectedListLength:
		return fmt.Sprintf("expected %d elements, got %d", e.Len, e.Got)
	case ErrListTypeMismatch:
		return fmt.Sprintf("element %d is not a %s", e.Index+1, e.Want)
	case ErrMalformed:
		if e.Err != nil {
			return fmt.Sprintf("malformed literal %q: %v", e.Raw, e.Err)
		}
		return fmt.Sprintf("malformed literal %q", e.Raw)
	}
	return e.Kind.String()
}

// Unwrap returns the underlying decoder error, if any.
func (e *ParseError) Unwrap() error { return e.Err }

// Code reports the error code shared by all literal failures.
func (e *ParseError) Code() errs.Code { return errs.ErrCodeInvalidLiteral }

// KindOf returns the ErrorKind of the first ParseError in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}
