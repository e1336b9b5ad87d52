// Package models defines the records persisted by voicevault: recordings,
// share grants, user key pairs, notifications and users.
package models

import "time"

// Recording is the metadata row of one encrypted voice message. The audio
// itself lives in the blob store at StorageLocation.
type Recording struct {
	// ID is assigned by the store on insert.
	ID int64

	// Name is the display string.
	Name string

	OwnerUserID int64

	CreatedAt time.Time

	// DurationSeconds is derived from the PCM byte length and the fixed
	// capture format.
	DurationSeconds int

	// StorageLocation is the blob key of the ciphertext.
	StorageLocation string

	// WrappedKey is the recording's symmetric key wrapped under the owner's
	// public key, Base64. Without it the recording cannot be decrypted.
	WrappedKey string

	// Checksum is the hex digest of the stored ciphertext. Empty for rows
	// written before the column existed.
	Checksum string
}

// IsOwnedBy reports whether userID owns the recording.
func (r *Recording) IsOwnedBy(userID int64) bool {
	return r.OwnerUserID == userID
}
