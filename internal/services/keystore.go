// Package services contains the voicevault orchestration: per-user key
// pairs, the encrypted recording lifecycle, the capture and playback
// session, sharing, and notifications.
package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/voicevault/internal/common"
	"github.com/dmitrijs2005/voicevault/internal/cryptox"
	"github.com/dmitrijs2005/voicevault/internal/logging"
	"github.com/dmitrijs2005/voicevault/internal/models"
	"github.com/dmitrijs2005/voicevault/internal/repositories/repomanager"
)

// KeyStore provisions and serves the single RSA key pair of each user.
// Pairs are created on first use and never rotated.
type KeyStore struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger

	generate func() (*cryptox.KeyPair, error)
	now      func() time.Time

	mu    sync.Mutex
	locks map[int64]*userLock
}

// userLock serialises key creation for one user. It is dropped from the map
// once nobody holds or waits for it.
type userLock struct {
	mu   sync.Mutex
	refs int
}

func NewKeyStore(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *KeyStore {
	return &KeyStore{
		db:          db,
		repomanager: m,
		log:         log,
		generate:    cryptox.GenerateRSAKeyPair,
		now:         time.Now,
		locks:       make(map[int64]*userLock),
	}
}

// lockUser takes the user's creation lock and returns its release.
func (s *KeyStore) lockUser(userID int64) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &userLock{}
		s.locks[userID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, userID)
		}
		s.mu.Unlock()
	}
}

// GetOrCreateKeyPair returns the user's pair, generating and persisting one
// on the first call. Concurrent callers, in this process or another sharing
// the database, all receive the same persisted pair.
func (s *KeyStore) GetOrCreateKeyPair(ctx context.Context, userID int64) (*models.UserKeyPair, error) {
	const op = "get or create key pair"
	repo := s.repomanager.UserKeys(s.db)

	k, err := repo.GetByUserID(ctx, userID)
	if err == nil {
		return k, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.NewOpError(op, common.ErrKeyUnavailable, 0, userID, err)
	}

	unlock := s.lockUser(userID)
	defer unlock()

	// another goroutine may have created it while we waited
	k, err = repo.GetByUserID(ctx, userID)
	if err == nil {
		return k, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.NewOpError(op, common.ErrKeyUnavailable, 0, userID, err)
	}

	pair, err := s.generate()
	if err != nil {
		return nil, common.NewOpError(op, common.ErrKeyUnavailable, 0, userID, err)
	}

	written, err := repo.InsertIfAbsent(ctx, &models.UserKeyPair{
		UserID:     userID,
		PublicKey:  pair.PublicKey,
		PrivateKey: pair.PrivateKey,
		CreatedAt:  s.now().UTC(),
	})
	if err != nil {
		return nil, common.NewOpError(op, common.ErrKeyUnavailable, 0, userID, err)
	}
	if written {
		s.log.Info(ctx, "key pair provisioned", "user_id", userID)
	} else {
		s.log.Debug(ctx, "key pair created concurrently elsewhere", "user_id", userID)
	}

	// the stored row wins over our candidate when another process inserted first
	k, err = repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, common.NewOpError(op, common.ErrKeyUnavailable, 0, userID, err)
	}
	return k, nil
}

// GetPublicKey returns ok=false, and no error, for a user without a pair.
func (s *KeyStore) GetPublicKey(ctx context.Context, userID int64) (string, bool, error) {
	k, err := s.repomanager.UserKeys(s.db).GetByUserID(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, common.NewOpError("get public key", common.ErrKeyUnavailable, 0, userID, err)
	}
	return k.PublicKey, true, nil
}

// privateKey returns ok=false for a user that was never provisioned.
func (s *KeyStore) privateKey(ctx context.Context, userID int64) (string, bool, error) {
	k, err := s.repomanager.UserKeys(s.db).GetByUserID(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return k.PrivateKey, true, nil
}
