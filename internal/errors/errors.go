package errors

import (
	stderrors "errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

type ErrorType string

const (
	ErrTypeFetch         ErrorType = "FETCH_ERROR"
	ErrTypeParseDegraded ErrorType = "PARSE_DEGRADED"
	ErrTypeNoRecords     ErrorType = "NO_RECORDS"
	ErrTypeRunAborted    ErrorType = "RUN_ABORTED"
	ErrTypeInvalidInput  ErrorType = "INVALID_INPUT"
	ErrTypeNotFound      ErrorType = "NOT_FOUND"
	ErrTypeInternal      ErrorType = "INTERNAL"
)

type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Stack   []byte
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) StackTrace() []byte {
	return e.Stack
}

func New(errType ErrorType, message string, err error) *DomainError {
	var stack []byte
	if err != nil {
		if stackErr, ok := err.(*goerrors.Error); ok {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

// IsType reports whether any error in err's chain is a DomainError of type t.
func IsType(err error, t ErrorType) bool {
	var de *DomainError
	for err != nil {
		if !stderrors.As(err, &de) {
			return false
		}
		if de.Type == t {
			return true
		}
		err = de.Err
	}
	return false
}

func Fetch(message string, err error) *DomainError {
	return New(ErrTypeFetch, message, err)
}

func ParseDegraded(message string, err error) *DomainError {
	return New(ErrTypeParseDegraded, message, err)
}

func NoRecords(message string) *DomainError {
	return New(ErrTypeNoRecords, message, nil)
}

func RunAborted(message string, err error) *DomainError {
	return New(ErrTypeRunAborted, message, err)
}

func InvalidInput(message string, err error) *DomainError {
	return New(ErrTypeInvalidInput, message, err)
}

func NotFound(message string, err error) *DomainError {
	return New(ErrTypeNotFound, message, err)
}

func Internal(message string, err error) *DomainError {
	return New(ErrTypeInternal, message, err)
}
