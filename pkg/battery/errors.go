package battery

import (
	"fmt"

	"github.com/charlie0129/battmon/pkg/platform"
)

// ErrorKind tells which step of acquisition or sampling failed.
type ErrorKind int

// Acquisition failures are fatal. Sampling failures only affect one poll.
const (
	NoDeviceClass ErrorKind = iota + 1
	NoBatteryPresent
	PathResolutionFailed
	OpenFailed
	TagQueryFailed
	InfoQueryFailed
	StatusQueryFailed
	SystemStateUnavailable
)

var kindNames = map[ErrorKind]string{
	NoDeviceClass:          "NoDeviceClass",
	NoBatteryPresent:       "NoBatteryPresent",
	PathResolutionFailed:   "PathResolutionFailed",
	OpenFailed:             "OpenFailed",
	TagQueryFailed:         "TagQueryFailed",
	InfoQueryFailed:        "InfoQueryFailed",
	StatusQueryFailed:      "StatusQueryFailed",
	SystemStateUnavailable: "SystemStateUnavailable",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Retryable reports whether the next poll may succeed.
func (k ErrorKind) Retryable() bool {
	return k == StatusQueryFailed || k == SystemStateUnavailable
}

// Fatal reports whether the process cannot go on without a battery handle.
func (k ErrorKind) Fatal() bool {
	return !k.Retryable()
}

// Error is returned by Acquire and Sample.
type Error struct {
	Kind ErrorKind
	// Op names the primitive that failed.
	Op string
	// Code is the platform error code, 0 if the platform gave none.
	Code uint32
	Err  error
}

// Sentinels to match with errors.Is. Only the kind is compared.
var (
	ErrNoDeviceClass          = &Error{Kind: NoDeviceClass}
	ErrNoBatteryPresent       = &Error{Kind: NoBatteryPresent}
	ErrPathResolutionFailed   = &Error{Kind: PathResolutionFailed}
	ErrOpenFailed             = &Error{Kind: OpenFailed}
	ErrTagQueryFailed         = &Error{Kind: TagQueryFailed}
	ErrInfoQueryFailed        = &Error{Kind: InfoQueryFailed}
	ErrStatusQueryFailed      = &Error{Kind: StatusQueryFailed}
	ErrSystemStateUnavailable = &Error{Kind: SystemStateUnavailable}
)

func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{
		Kind: kind,
		Op:   op,
		Code: platform.Code(err),
		Err:  err,
	}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg += ": " + e.Op
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Code != 0 {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}
