package errs

import (
	"errors"
	"strconv"
	"strings"
)

// CodeError carries a stable numeric code alongside the message so the
// HTTP layer can map it to a status and clients can branch on it.
type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func NewCodeError(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

func (e *CodeError) Error() string {
	v := make([]string, 0, 3)
	v = append(v, strconv.Itoa(e.Code), e.Msg)
	if e.Detail != "" {
		v = append(v, e.Detail)
	}
	return strings.Join(v, " ")
}

// WithDetail returns a copy so the sentinel itself is never mutated.
func (e *CodeError) WithDetail(detail string) *CodeError {
	d := detail
	if e.Detail != "" {
		d = e.Detail + ", " + detail
	}
	return &CodeError{Code: e.Code, Msg: e.Msg, Detail: d}
}

func (e *CodeError) Is(err error) bool {
	var other *CodeError
	if !errors.As(err, &other) {
		return false
	}
	return e.Code == other.Code
}

// Is reports whether err carries the same code as target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Code extracts the numeric code from err, or 0 when err is not a CodeError.
func Code(err error) int {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return 0
}

func AsCodeError(err error) (*CodeError, bool) {
	var ce *CodeError
	ok := errors.As(err, &ce)
	return ce, ok
}
