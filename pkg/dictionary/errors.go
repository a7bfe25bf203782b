package dictionary

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies why a lookup failed.
type Kind string

const (
	KindTimeout Kind = "timeout"
	KindNetwork Kind = "network"
	KindStatus  Kind = "status"
	KindDecode  Kind = "decode"
	KindShape   Kind = "shape"
)

var (
	// ErrTimeout is a lookup that ran past its deadline.
	ErrTimeout = errors.New("lookup timed out")
	// ErrNetwork is a transport failure, including cancellation.
	ErrNetwork = errors.New("lookup transport failed")
	// ErrStatus is a non-200 response.
	ErrStatus = errors.New("unexpected response status")
	// ErrDecode is a body that is not valid JSON.
	ErrDecode = errors.New("response is not valid JSON")
	// ErrShape is valid JSON without a definition where one is expected.
	ErrShape = errors.New("response has no definition")
)

var kindErrors = map[Kind]error{
	KindTimeout: ErrTimeout,
	KindNetwork: ErrNetwork,
	KindStatus:  ErrStatus,
	KindDecode:  ErrDecode,
	KindShape:   ErrShape,
}

// LookupError reports a failed lookup of Word.
type LookupError struct {
	Word string
	Kind Kind
	Err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("define %q: %s: %v", e.Word, e.Kind, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind, so errors.Is(err,
// ErrTimeout) holds for every timeout regardless of the underlying cause.
func (e *LookupError) Is(target error) bool {
	return kindErrors[e.Kind] == target
}

// KindOf returns the failure kind of err, or "" when err is not a
// LookupError.
func KindOf(err error) Kind {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}

// transportKind separates deadline failures from other transport errors.
func transportKind(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	return KindNetwork
}
