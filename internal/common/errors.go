// Package common defines the sentinel errors shared by the voicevault
// packages and the OpError type services use to attach recording and user
// ids to them. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// ErrStoreFailed wraps metadata store failures at the service boundary.
	ErrStoreFailed = errors.New("metadata store failed")

	// Crypto errors raised by the cipher and the key wrapper.
	ErrOperationFailed = errors.New("crypto operation failed")
	ErrUnwrapFailed    = errors.New("key unwrap failed")

	// Authorization errors.
	ErrAccessDenied = errors.New("access denied")
	ErrNotOwner     = errors.New("requester is not the recording owner")

	// Lookup errors.
	ErrRecordingNotFound   = errors.New("recording not found")
	ErrRecipientNotFound   = errors.New("recipient not found")
	ErrRecipientKeyMissing = errors.New("recipient has no key pair")

	// Playback errors.
	ErrKeyUnavailable     = errors.New("key unavailable")
	ErrDecryptFailed      = errors.New("decrypt failed")
	ErrStorageUnavailable = errors.New("storage unavailable")

	// Session errors.
	ErrCaptureInProgress = errors.New("capture already in progress")
	ErrNoActiveCapture   = errors.New("no active capture")
	ErrCaptureFailed     = errors.New("audio capture failed")
)
