package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/voicevault/internal/common"
	"github.com/dmitrijs2005/voicevault/internal/cryptox"
	"github.com/dmitrijs2005/voicevault/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateKeyPair_CreatesOnceAndReturnsStored(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.keys.GetOrCreateKeyPair(ctx, 1)
	require.NoError(t, err)
	second, err := env.keys.GetOrCreateKeyPair(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, first.PublicKey, second.PublicKey)
	assert.Equal(t, first.PrivateKey, second.PrivateKey)
	assert.EqualValues(t, 1, env.generated.Load())

	_, err = cryptox.ParsePublicKey(first.PublicKey)
	require.NoError(t, err)
	_, err = cryptox.ParsePrivateKey(first.PrivateKey)
	require.NoError(t, err)
}

func TestGetOrCreateKeyPair_ConcurrentCallersShareOnePair(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	got := make([]*models.UserKeyPair, n)
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], errs[i] = env.keys.GetOrCreateKeyPair(ctx, 9)
		}(i)
	}
	wg.Wait()

	for i := range n {
		require.NoError(t, errs[i])
		assert.Equal(t, got[0].PublicKey, got[i].PublicKey)
	}
	assert.EqualValues(t, 1, env.generated.Load())
	assert.Equal(t, 1, countRows(t, env.db, "user_keys"))
	assert.Equal(t, 0, env.keys.lockCount())
}

func TestGetOrCreateKeyPair_ReleasesUserLocks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for id := int64(1); id <= 3; id++ {
		_, err := env.keys.GetOrCreateKeyPair(ctx, id)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, env.keys.lockCount())

	env.keys.generate = func() (*cryptox.KeyPair, error) { return nil, errors.New("no entropy") }
	_, err := env.keys.GetOrCreateKeyPair(ctx, 4)
	require.Error(t, err)
	assert.Equal(t, 0, env.keys.lockCount())
}

func TestGetOrCreateKeyPair_OtherProcessWinsInsert(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pool := testPairs(t)

	// the other process commits its pair while we are generating ours
	env.keys.generate = func() (*cryptox.KeyPair, error) {
		_, err := env.rm.UserKeys(env.db).InsertIfAbsent(ctx, &models.UserKeyPair{
			UserID: 5, PublicKey: pool[0].PublicKey, PrivateKey: pool[0].PrivateKey, CreatedAt: time.Now(),
		})
		require.NoError(t, err)
		return pool[1], nil
	}

	k, err := env.keys.GetOrCreateKeyPair(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, pool[0].PublicKey, k.PublicKey, "the persisted pair must win")
}

func TestGetOrCreateKeyPair_GenerateFails(t *testing.T) {
	env := newTestEnv(t)
	env.keys.generate = func() (*cryptox.KeyPair, error) { return nil, errors.New("entropy exhausted") }

	_, err := env.keys.GetOrCreateKeyPair(context.Background(), 3)
	require.ErrorIs(t, err, common.ErrKeyUnavailable)
	assert.Equal(t, 0, countRows(t, env.db, "user_keys"))
}

func TestGetPublicKey(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pub, ok, err := env.keys.GetPublicKey(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, pub)

	k, err := env.keys.GetOrCreateKeyPair(ctx, 42)
	require.NoError(t, err)

	pub, ok, err = env.keys.GetPublicKey(ctx, 42)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, k.PublicKey, pub)
}

func TestGetPublicKey_StoreError(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.db.Exec(`DROP TABLE user_keys`)
	require.NoError(t, err)

	_, _, err = env.keys.GetPublicKey(context.Background(), 1)
	require.ErrorIs(t, err, common.ErrKeyUnavailable)
}
