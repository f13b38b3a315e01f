package service

import (
	"errors"
	"fmt"
)

// ==================== 错误分类 ====================
// 业务错误都归属于下列分类之一, 控制器通过 errors.Is 映射为 HTTP 状态码,
// 分类的文本同时作为响应中机器可读的 reason

var (
	ErrValidation    = errors.New("validation_error")
	ErrItemsNotFound = errors.New("items_not_found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrPermission    = errors.New("permission_denied")
	ErrNotFound      = errors.New("not_found")
	ErrFormat        = errors.New("format_error")
	ErrFetch         = errors.New("fetch_error")
)

// kindError 带分类的业务错误, Error() 只返回面向用户的描述
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newKindError(kind error, format string, args ...interface{}) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func validationErr(format string, args ...interface{}) error {
	return newKindError(ErrValidation, format, args...)
}

func notFoundErr(format string, args ...interface{}) error {
	return newKindError(ErrNotFound, format, args...)
}

// Reason 返回错误所属分类, 未分类的错误返回 internal_error
func Reason(err error) string {
	for _, kind := range []error{
		ErrValidation, ErrItemsNotFound, ErrUnauthorized, ErrPermission,
		ErrNotFound, ErrFormat, ErrFetch,
	} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "internal_error"
}
