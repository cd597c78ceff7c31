package ordering

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidItem     = errors.New("invalid item")
	ErrUnknownItem     = errors.New("unknown item")
	ErrOrderOutOfRange = errors.New("order out of range")
)

// Code classifies engine failures.
type Code string

const (
	CodeInvalidArgument Code = "invalid_argument"
	CodeInvalidItem     Code = "invalid_item"
	CodeUnknownItem     Code = "unknown_item"
	CodeOutOfRange      Code = "out_of_range"
)

// Error carries the offending data of a failed engine call. errors.Is matches
// it against the sentinel of its Code.
type Error struct {
	Code    Code
	Message string
	// Item is the offending item or change, if any.
	Item   any
	Config Config
	// Value, Min and Max are set for CodeOutOfRange.
	Value int
	Min   int
	Max   int
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	switch e.Code {
	case CodeInvalidArgument:
		return ErrInvalidArgument
	case CodeInvalidItem:
		return ErrInvalidItem
	case CodeUnknownItem:
		return ErrUnknownItem
	case CodeOutOfRange:
		return ErrOrderOutOfRange
	default:
		return nil
	}
}

// CodeOf returns the Code of err, or "" when err is not an *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func invalidArgumentError(cfg Config) *Error {
	return &Error{
		Code:    CodeInvalidArgument,
		Message: "invalid argument provided: it should be a valid slice",
		Config:  cfg,
	}
}

func invalidItemError(item any, cfg Config) *Error {
	return &Error{
		Code: CodeInvalidItem,
		Message: fmt.Sprintf("invalid item provided: %v (primary key %q, order key %q, config %+v)",
			item, cfg.PrimaryKey, cfg.OrderKey, cfg),
		Item:   item,
		Config: cfg,
	}
}

func unknownItemError(item any, key any, cfg Config) *Error {
	return &Error{
		Code:    CodeUnknownItem,
		Message: fmt.Sprintf("invalid item with '%s' = %v", cfg.PrimaryKey, key),
		Item:    item,
		Config:  cfg,
	}
}

func outOfRangeError(item any, key any, value, minOrder, maxOrder int, cfg Config) *Error {
	return &Error{
		Code: CodeOutOfRange,
		Message: fmt.Sprintf("invalid '%s' = %d for item with '%s' = %v: allowed range is [%d, %d]",
			cfg.OrderKey, value, cfg.PrimaryKey, key, minOrder, maxOrder),
		Item:   item,
		Config: cfg,
		Value:  value,
		Min:    minOrder,
		Max:    maxOrder,
	}
}
