package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/voicevault/internal/blobstore"
	"github.com/dmitrijs2005/voicevault/internal/common"
	"github.com/dmitrijs2005/voicevault/internal/cryptox"
	"github.com/dmitrijs2005/voicevault/internal/dbx"
	"github.com/dmitrijs2005/voicevault/internal/logging"
	"github.com/dmitrijs2005/voicevault/internal/models"
	"github.com/dmitrijs2005/voicevault/internal/repositories/repomanager"
	"github.com/google/uuid"
)

// maxKeyAttempts bounds regeneration when a fresh key collides with the
// recording's own key.
const maxKeyAttempts = 4

// Sharing re-encrypts a recording under a new key for one recipient.
type Sharing struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blobstore.Store
	cipher      cryptox.Cipher
	wrapper     *cryptox.KeyWrapper
	keys        *KeyStore
	lifecycle   *Lifecycle
	directory   UserDirectory
	sink        NotificationSink
	log         logging.Logger
	now         func() time.Time
}

func NewSharing(db *sql.DB, m repomanager.RepositoryManager, blobs blobstore.Store, cipher cryptox.Cipher,
	keys *KeyStore, lifecycle *Lifecycle, directory UserDirectory, sink NotificationSink, log logging.Logger) *Sharing {
	return &Sharing{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		cipher:      cipher,
		wrapper:     cryptox.NewKeyWrapper(),
		keys:        keys,
		lifecycle:   lifecycle,
		directory:   directory,
		sink:        sink,
		log:         log,
		now:         time.Now,
	}
}

// SharedLocation derives the blob key of a grant's ciphertext.
func SharedLocation(location string, targetID int64) string {
	return fmt.Sprintf("%s.shared-%d-%s", location, targetID, uuid.New())
}

// Share gives targetEmail an independent, freshly keyed copy of a recording
// owned by sourceUserID. Every call creates a new grant. The grant row and
// the recipient's notification are committed together; a blob written before
// a failed commit is left behind.
func (s *Sharing) Share(ctx context.Context, recordingID, sourceUserID int64, targetEmail string) (*models.ShareGrant, error) {
	const op = "share recording"

	targetID, ok, err := s.directory.ResolveUserIDByEmail(ctx, targetEmail)
	if err != nil {
		return nil, common.NewOpError(op, common.ErrStoreFailed, recordingID, sourceUserID, err)
	}
	if !ok {
		return nil, common.NewOpError(op, common.ErrRecipientNotFound, recordingID, sourceUserID, fmt.Errorf("no user with email %q", targetEmail))
	}

	targetKey, ok, err := s.keys.GetPublicKey(ctx, targetID)
	if err != nil {
		return nil, common.NewOpError(op, common.ErrRecipientKeyMissing, recordingID, targetID, err)
	}
	if !ok {
		return nil, common.NewOpError(op, common.ErrRecipientKeyMissing, recordingID, targetID, nil)
	}

	rec, err := s.repomanager.Recordings(s.db).GetByID(ctx, recordingID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.NewOpError(op, common.ErrRecordingNotFound, recordingID, sourceUserID, nil)
	}
	if err != nil {
		return nil, common.NewOpError(op, common.ErrStoreFailed, recordingID, sourceUserID, err)
	}
	if !rec.IsOwnedBy(sourceUserID) {
		return nil, common.NewOpError(op, common.ErrNotOwner, recordingID, sourceUserID, nil)
	}

	_, pcm, err := s.lifecycle.Open(ctx, recordingID, sourceUserID)
	if err != nil {
		return nil, err
	}

	key, err := s.freshKey(ctx, rec, sourceUserID)
	if err != nil {
		return nil, common.NewOpError(op, common.ErrOperationFailed, recordingID, sourceUserID, err)
	}
	ciphertext, err := s.cipher.Encrypt(pcm, key)
	if err != nil {
		return nil, common.NewOpError(op, common.ErrOperationFailed, recordingID, sourceUserID, err)
	}

	grant := &models.ShareGrant{
		RecordingID:     recordingID,
		SourceUserID:    sourceUserID,
		TargetUserID:    targetID,
		StorageLocation: SharedLocation(rec.StorageLocation, targetID),
		Checksum:        cryptox.Hash(ciphertext),
		SharedAt:        s.now().UTC(),
		RecordingName:   rec.Name,
		DurationSeconds: rec.DurationSeconds,
	}
	if err := s.blobs.Put(ctx, grant.StorageLocation, ciphertext); err != nil {
		return nil, common.NewOpError(op, common.ErrStorageUnavailable, recordingID, sourceUserID, err)
	}

	grant.WrappedKeyForTarget, err = s.wrapper.Wrap(cryptox.EncodeKey(key), targetKey)
	if err != nil {
		return nil, common.NewOpError(op, common.ErrOperationFailed, recordingID, targetID, err)
	}

	message := s.message(ctx, rec, sourceUserID)
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		id, err := s.repomanager.ShareGrants(tx).Insert(ctx, grant)
		if err != nil {
			return err
		}
		grant.ID = id
		_, err = s.repomanager.Notifications(tx).Insert(ctx, &models.Notification{
			UserID:      targetID,
			Message:     message,
			CreatedAt:   grant.SharedAt,
			RecordingID: recordingID,
		})
		return err
	})
	if err != nil {
		grant.ID = 0
		s.log.Warn(ctx, "share aborted, blob left behind", "recording_id", recordingID, "location", grant.StorageLocation, "error", err)
		return nil, common.NewOpError(op, common.ErrStoreFailed, recordingID, sourceUserID, err)
	}

	s.log.Info(ctx, "recording shared", "recording_id", recordingID, "grant_id", grant.ID, "source", sourceUserID, "target", targetID)
	if s.sink != nil {
		s.sink.Notify(ctx, targetID, message, recordingID)
	}
	return grant, nil
}

// freshKey generates a key that differs from the recording's own key.
func (s *Sharing) freshKey(ctx context.Context, rec *models.Recording, ownerID int64) (cryptox.Key, error) {
	var original cryptox.Key
	if priv, ok, err := s.keys.privateKey(ctx, ownerID); err == nil && ok {
		if text, err := s.wrapper.Unwrap(rec.WrappedKey, priv); err == nil {
			original, _ = cryptox.DecodeKey(text)
		}
	}

	for range maxKeyAttempts {
		key, err := s.cipher.GenerateKey()
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(key, original) {
			return key, nil
		}
	}
	return nil, fmt.Errorf("could not generate a key distinct from the original")
}

func (s *Sharing) message(ctx context.Context, rec *models.Recording, sourceUserID int64) string {
	from := fmt.Sprintf("user %d", sourceUserID)
	if email, err := s.directory.GetEmail(ctx, sourceUserID); err == nil && email != "" {
		from = email
	}
	return fmt.Sprintf("%s shared %q with you", from, rec.Name)
}
