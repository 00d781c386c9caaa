package convert

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per failure kind. Match with errors.Is.
var (
	ErrInputTooLarge           = errors.New("input too large")
	ErrUnsafePath              = errors.New("unsafe path")
	ErrInvalidEncoding         = errors.New("invalid encoding")
	ErrParseFailure            = errors.New("parse failure")
	ErrSanitizationUnavailable = errors.New("sanitization unavailable")
	ErrEmissionFailure         = errors.New("emission failure")
)

// Kind classifies a conversion failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindInputTooLarge
	KindUnsafePath
	KindInvalidEncoding
	KindParseFailure
	KindSanitizationUnavailable
	KindEmissionFailure
)

var kindNames = map[Kind]string{
	KindUnknown:                 "Unknown",
	KindInputTooLarge:           "InputTooLarge",
	KindUnsafePath:              "UnsafePath",
	KindInvalidEncoding:         "InvalidEncoding",
	KindParseFailure:            "ParseFailure",
	KindSanitizationUnavailable: "SanitizationUnavailable",
	KindEmissionFailure:         "EmissionFailure",
}

var kindSentinels = map[Kind]error{
	KindInputTooLarge:           ErrInputTooLarge,
	KindUnsafePath:              ErrUnsafePath,
	KindInvalidEncoding:         ErrInvalidEncoding,
	KindParseFailure:            ErrParseFailure,
	KindSanitizationUnavailable: ErrSanitizationUnavailable,
	KindEmissionFailure:         ErrEmissionFailure,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText renders the kind name in reports.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Error is a failed conversion of one document.
type Error struct {
	Kind   Kind
	Path   string
	Detail string
	Err    error
}

func newError(kind Kind, path, detail string, cause error) *Error {
	return &Error{Kind: kind, Path: path, Detail: detail, Err: cause}
}

func (e *Error) Error() string {
	msg := "convert"
	if e.Path != "" {
		msg += " " + e.Path
	}
	if s, ok := kindSentinels[e.Kind]; ok {
		msg += ": " + s.Error()
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	var errs []error
	if s, ok := kindSentinels[e.Kind]; ok {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the failure kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	for kind, sentinel := range kindSentinels {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindUnknown
}
