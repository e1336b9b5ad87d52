package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/voicevault/internal/audio"
	"github.com/dmitrijs2005/voicevault/internal/blobstore"
	"github.com/dmitrijs2005/voicevault/internal/common"
	"github.com/dmitrijs2005/voicevault/internal/cryptox"
	"github.com/dmitrijs2005/voicevault/internal/logging"
	"github.com/dmitrijs2005/voicevault/internal/models"
	"github.com/dmitrijs2005/voicevault/internal/repositories/repomanager"
	"github.com/google/uuid"
)

// Playback is the audio handed to a sink. Degraded is set when PCM is
// placeholder silence substituted for a missing or corrupt blob; Cause then
// holds the storage error.
type Playback struct {
	Recording *models.Recording
	PCM       []byte
	Degraded  bool
	Cause     error
}

// Lifecycle persists captured audio encrypted and turns stored ciphertext
// back into PCM for the owner or a share recipient.
type Lifecycle struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blobstore.Store
	cipher      cryptox.Cipher
	wrapper     *cryptox.KeyWrapper
	keys        *KeyStore
	log         logging.Logger
	now         func() time.Time
}

func NewLifecycle(db *sql.DB, m repomanager.RepositoryManager, blobs blobstore.Store, cipher cryptox.Cipher, keys *KeyStore, log logging.Logger) *Lifecycle {
	return &Lifecycle{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		cipher:      cipher,
		wrapper:     cryptox.NewKeyWrapper(),
		keys:        keys,
		log:         log,
		now:         time.Now,
	}
}

// StorageKey builds the blob key of a new recording.
func StorageKey(ownerID int64, at time.Time) string {
	at = at.UTC()
	return fmt.Sprintf("recordings/%d/%04d/%02d/%02d/%s.pcm", ownerID, at.Year(), at.Month(), at.Day(), uuid.New())
}

// Persist encrypts pcm under a fresh key, wraps the key for the owner and
// stores blob and metadata. Empty pcm is discarded: Persist returns nil, nil
// and writes nothing.
func (l *Lifecycle) Persist(ctx context.Context, ownerID int64, name string, pcm []byte) (*models.Recording, error) {
	const op = "persist recording"
	if len(pcm) == 0 {
		return nil, nil
	}

	key, err := l.cipher.GenerateKey()
	if err != nil {
		return nil, common.NewOpError(op, common.ErrOperationFailed, 0, ownerID, err)
	}
	ciphertext, err := l.cipher.Encrypt(pcm, key)
	if err != nil {
		return nil, common.NewOpError(op, common.ErrOperationFailed, 0, ownerID, err)
	}

	pair, err := l.keys.GetOrCreateKeyPair(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	wrapped, err := l.wrapper.Wrap(cryptox.EncodeKey(key), pair.PublicKey)
	if err != nil {
		return nil, common.NewOpError(op, common.ErrOperationFailed, 0, ownerID, err)
	}

	createdAt := l.now().UTC()
	rec := &models.Recording{
		Name:            name,
		OwnerUserID:     ownerID,
		CreatedAt:       createdAt,
		DurationSeconds: audio.DurationSeconds(len(pcm)),
		StorageLocation: StorageKey(ownerID, createdAt),
		WrappedKey:      wrapped,
		Checksum:        cryptox.Hash(ciphertext),
	}
	if rec.Name == "" {
		rec.Name = "Recording " + createdAt.Local().Format("2006-01-02 15:04:05")
	}

	if err := l.blobs.Put(ctx, rec.StorageLocation, ciphertext); err != nil {
		return nil, common.NewOpError(op, common.ErrStorageUnavailable, 0, ownerID, err)
	}

	id, err := l.repomanager.Recordings(l.db).Insert(ctx, rec)
	if err != nil {
		if derr := l.blobs.Delete(ctx, rec.StorageLocation); derr != nil {
			l.log.Warn(ctx, "failed to remove blob of unsaved recording", "location", rec.StorageLocation, "error", derr)
		}
		return nil, common.NewOpError(op, common.ErrStoreFailed, 0, ownerID, err)
	}
	rec.ID = id

	l.log.Info(ctx, "recording persisted", "recording_id", id, "owner", ownerID, "duration_seconds", rec.DurationSeconds)
	return rec, nil
}

// source is the ciphertext a requester may decrypt and the key to do it.
type source struct {
	recording  *models.Recording
	wrappedKey string
	location   string
	checksum   string
}

// resolve loads the recording and picks the owner's or the newest grant's
// key and blob. A recipient keeps access after the owner deletes the
// recording; the grant's snapshot then stands in for the missing row.
func (l *Lifecycle) resolve(ctx context.Context, op string, recordingID, requesterID int64) (*source, error) {
	rec, err := l.repomanager.Recordings(l.db).GetByID(ctx, recordingID)
	if errors.Is(err, common.ErrorNotFound) {
		rec = nil
	} else if err != nil {
		return nil, common.NewOpError(op, common.ErrStoreFailed, recordingID, requesterID, err)
	}

	if rec != nil && rec.IsOwnedBy(requesterID) {
		return &source{recording: rec, wrappedKey: rec.WrappedKey, location: rec.StorageLocation, checksum: rec.Checksum}, nil
	}

	grants, err := l.repomanager.ShareGrants(l.db).GetForRecordingAndTarget(ctx, recordingID, requesterID)
	if err != nil {
		return nil, common.NewOpError(op, common.ErrStoreFailed, recordingID, requesterID, err)
	}
	if len(grants) == 0 {
		if rec == nil {
			return nil, common.NewOpError(op, common.ErrRecordingNotFound, recordingID, requesterID, nil)
		}
		return nil, common.NewOpError(op, common.ErrAccessDenied, recordingID, requesterID, nil)
	}
	g := grants[0]
	if rec == nil {
		rec = detached(g)
	}
	return &source{recording: rec, wrappedKey: g.WrappedKeyForTarget, location: g.StorageLocation, checksum: g.Checksum}, nil
}

// detached rebuilds the recording a grant was made from after the original
// row has been deleted.
func detached(g *models.ShareGrant) *models.Recording {
	return &models.Recording{
		ID:              g.RecordingID,
		Name:            g.RecordingName,
		OwnerUserID:     g.SourceUserID,
		CreatedAt:       g.SharedAt,
		DurationSeconds: g.DurationSeconds,
		StorageLocation: g.StorageLocation,
		WrappedKey:      g.WrappedKeyForTarget,
		Checksum:        g.Checksum,
	}
}

// decode unwraps the key, reads the blob and decrypts it. Missing or corrupt
// blobs are reported as ErrStorageUnavailable.
func (l *Lifecycle) decode(ctx context.Context, op string, src *source, requesterID int64) ([]byte, error) {
	recID := src.recording.ID

	privateKey, ok, err := l.keys.privateKey(ctx, requesterID)
	if err != nil {
		return nil, common.NewOpError(op, common.ErrKeyUnavailable, recID, requesterID, err)
	}
	if !ok {
		return nil, common.NewOpError(op, common.ErrKeyUnavailable, recID, requesterID, errors.New("user has no key pair"))
	}
	if src.wrappedKey == "" {
		return nil, common.NewOpError(op, common.ErrUnwrapFailed, recID, requesterID, errors.New("recording has no wrapped key"))
	}
	keyText, err := l.wrapper.Unwrap(src.wrappedKey, privateKey)
	if err != nil {
		return nil, common.NewOpError(op, common.ErrUnwrapFailed, recID, requesterID, err)
	}
	key, err := cryptox.DecodeKey(keyText)
	if err != nil {
		return nil, common.NewOpError(op, common.ErrUnwrapFailed, recID, requesterID, err)
	}

	ciphertext, err := l.blobs.Get(ctx, src.location)
	if err != nil {
		return nil, common.NewOpError(op, common.ErrStorageUnavailable, recID, requesterID, err)
	}
	if src.checksum != "" && cryptox.Hash(ciphertext) != src.checksum {
		return nil, common.NewOpError(op, common.ErrStorageUnavailable, recID, requesterID, errors.New("ciphertext checksum mismatch"))
	}

	pcm, err := l.cipher.Decrypt(ciphertext, key)
	if err != nil {
		return nil, common.NewOpError(op, common.ErrDecryptFailed, recID, requesterID, err)
	}
	// grants written before the snapshot columns carry no duration
	if src.recording.DurationSeconds == 0 {
		src.recording.DurationSeconds = audio.DurationSeconds(len(pcm))
	}
	return pcm, nil
}

// Open returns the plaintext PCM of a recording. It never substitutes
// placeholder audio.
func (l *Lifecycle) Open(ctx context.Context, recordingID, requesterID int64) (*models.Recording, []byte, error) {
	const op = "open recording"
	src, err := l.resolve(ctx, op, recordingID, requesterID)
	if err != nil {
		return nil, nil, err
	}
	pcm, err := l.decode(ctx, op, src, requesterID)
	if err != nil {
		return nil, nil, err
	}
	return src.recording, pcm, nil
}

// Play is Open for playback: when the blob is missing or corrupt it returns
// silence of the recorded duration with Degraded set. Authorisation and key
// failures are returned as errors, and so is a read cut short by ctx.
func (l *Lifecycle) Play(ctx context.Context, recordingID, requesterID int64) (*Playback, error) {
	const op = "play recording"
	src, err := l.resolve(ctx, op, recordingID, requesterID)
	if err != nil {
		return nil, err
	}
	pcm, err := l.decode(ctx, op, src, requesterID)
	if errors.Is(err, common.ErrStorageUnavailable) && ctx.Err() == nil {
		l.log.Warn(ctx, "playing placeholder audio", "recording_id", recordingID, "user_id", requesterID, "error", err)
		return &Playback{
			Recording: src.recording,
			PCM:       audio.Silence(src.recording.DurationSeconds),
			Degraded:  true,
			Cause:     err,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &Playback{Recording: src.recording, PCM: pcm}, nil
}

// List returns the user's own recordings, newest first.
func (l *Lifecycle) List(ctx context.Context, userID int64) ([]*models.Recording, error) {
	recs, err := l.repomanager.Recordings(l.db).GetByOwner(ctx, userID)
	if err != nil {
		return nil, common.NewOpError("list recordings", common.ErrStoreFailed, 0, userID, err)
	}
	return recs, nil
}

// ListShared returns the grants naming the user as target, newest first.
func (l *Lifecycle) ListShared(ctx context.Context, userID int64) ([]*models.ShareGrant, error) {
	grants, err := l.repomanager.ShareGrants(l.db).GetForTarget(ctx, userID)
	if err != nil {
		return nil, common.NewOpError("list shared recordings", common.ErrStoreFailed, 0, userID, err)
	}
	return grants, nil
}

// Delete removes the recording row and then, best-effort, its blob. Only the
// owner may delete. Grants and their blobs are kept.
func (l *Lifecycle) Delete(ctx context.Context, recordingID, userID int64) error {
	const op = "delete recording"
	repo := l.repomanager.Recordings(l.db)

	rec, err := repo.GetByID(ctx, recordingID)
	if errors.Is(err, common.ErrorNotFound) {
		return common.NewOpError(op, common.ErrRecordingNotFound, recordingID, userID, nil)
	}
	if err != nil {
		return common.NewOpError(op, common.ErrStoreFailed, recordingID, userID, err)
	}
	if !rec.IsOwnedBy(userID) {
		return common.NewOpError(op, common.ErrNotOwner, recordingID, userID, nil)
	}

	if err := repo.DeleteByID(ctx, recordingID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewOpError(op, common.ErrRecordingNotFound, recordingID, userID, nil)
		}
		return common.NewOpError(op, common.ErrStoreFailed, recordingID, userID, err)
	}
	if err := l.blobs.Delete(ctx, rec.StorageLocation); err != nil {
		l.log.Warn(ctx, "failed to delete recording blob", "recording_id", recordingID, "location", rec.StorageLocation, "error", err)
	}

	l.log.Info(ctx, "recording deleted", "recording_id", recordingID, "owner", userID)
	return nil
}
