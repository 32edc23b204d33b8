package errs

// Error codes grouped the same way the HTTP layer maps them:
// 10xx generic, 11xx validation/state, 15xx upstream.
const (
	CodeForbidden      = 1003
	CodeNotFound       = 1004
	CodeEmptyContent   = 1101
	CodeExpired        = 1102
	CodeAlreadyRevoked = 1103
	CodeUpstream       = 1500
)

var (
	ErrNotFound       = NewCodeError(CodeNotFound, "record not found")
	ErrForbidden      = NewCodeError(CodeForbidden, "operation not permitted")
	ErrEmptyContent   = NewCodeError(CodeEmptyContent, "content cannot be empty")
	ErrExpired        = NewCodeError(CodeExpired, "mutation window elapsed")
	ErrAlreadyRevoked = NewCodeError(CodeAlreadyRevoked, "message already revoked")
	ErrUpstream       = NewCodeError(CodeUpstream, "upstream failure")
)
