package models

import "time"

// ShareGrant lets TargetUserID decrypt a re-encrypted copy of a recording.
// The copy at StorageLocation is encrypted under a key generated for this
// grant alone; WrappedKeyForTarget is that key wrapped for the target.
type ShareGrant struct {
	ID                  int64
	RecordingID         int64
	SourceUserID        int64
	TargetUserID        int64
	WrappedKeyForTarget string
	StorageLocation     string
	Checksum            string
	SharedAt            time.Time

	// RecordingName and DurationSeconds are copied from the recording when
	// the grant is made, so the copy stays usable after the owner deletes it.
	RecordingName   string
	DurationSeconds int
}
