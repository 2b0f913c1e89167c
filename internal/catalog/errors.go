package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRecordNotFound is returned by repositories when a row is absent.
// The service maps it to the matching business error.
var ErrRecordNotFound = errors.New("record not found")

// ErrorCode identifies a business rule failure. Codes are stable and part
// of the API contract.
type ErrorCode string

const (
	CodeBookNotFound            ErrorCode = "BOOK_NOT_FOUND"
	CodeCategoryNotFound        ErrorCode = "CATEGORY_NOT_FOUND"
	CodeCategoryExists          ErrorCode = "CATEGORY_ALREADY_EXISTS"
	CodeDuplicateISBN           ErrorCode = "DUPLICATE_ISBN"
	CodeInvalidStatusTransition ErrorCode = "INVALID_STATUS_TRANSITION"
	CodeCategoryHasBooks        ErrorCode = "CATEGORY_HAS_ASSOCIATED_BOOKS"
	CodeInvalidParameter        ErrorCode = "INVALID_PARAMETER"
)

// Error is a structured business failure. It carries the context relevant
// to its code: MissingIDs for CATEGORY_NOT_FOUND, BookCount for
// CATEGORY_HAS_ASSOCIATED_BOOKS.
type Error struct {
	Code       ErrorCode
	Message    string
	MissingIDs []string
	BookCount  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf extracts the business error code from err, or "" if err is not a
// business error.
func CodeOf(err error) ErrorCode {
	var be *Error
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// IsCode reports whether err is a business error with the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

func errBookNotFound(id string) *Error {
	return &Error{Code: CodeBookNotFound, Message: fmt.Sprintf("book not found: %s", id)}
}

func errCategoryNotFound(missing []string) *Error {
	return &Error{
		Code:       CodeCategoryNotFound,
		Message:    fmt.Sprintf("categories not found: %s", strings.Join(missing, ", ")),
		MissingIDs: missing,
	}
}

func errCategoryExists(name string) *Error {
	return &Error{Code: CodeCategoryExists, Message: fmt.Sprintf("category name already taken: %s", name)}
}

func errDuplicateISBN(isbn string) *Error {
	return &Error{Code: CodeDuplicateISBN, Message: fmt.Sprintf("isbn already in use: %s", isbn)}
}

func errInvalidTransition(from, to Status) *Error {
	return &Error{
		Code:    CodeInvalidStatusTransition,
		Message: fmt.Sprintf("illegal status transition %s -> %s", from, to),
	}
}

func errCategoryHasBooks(id string, count int) *Error {
	return &Error{
		Code:      CodeCategoryHasBooks,
		Message:   fmt.Sprintf("category %s still has %d associated book(s)", id, count),
		BookCount: count,
	}
}

func errInvalidParameter(msg string) *Error {
	return &Error{Code: CodeInvalidParameter, Message: msg}
}
