package common

import (
	"fmt"
	"strings"
)

// OpError is returned across the service boundary. Kind is one of the
// sentinels in this package; Err is the underlying cause, if any.
//
//	errors.Is(err, common.ErrAccessDenied) // matches Kind
//	errors.Is(err, sql.ErrConnDone)        // matches Err
type OpError struct {
	Op          string
	Kind        error
	RecordingID int64
	UserID      int64
	Err         error
}

// NewOpError constructs an OpError. Zero ids are omitted from the message.
func NewOpError(op string, kind error, recordingID, userID int64, err error) *OpError {
	return &OpError{Op: op, Kind: kind, RecordingID: recordingID, UserID: userID, Err: err}
}

func (e *OpError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.RecordingID != 0 {
		fmt.Fprintf(&b, " (recording %d)", e.RecordingID)
	}
	if e.UserID != 0 {
		fmt.Fprintf(&b, " (user %d)", e.UserID)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
