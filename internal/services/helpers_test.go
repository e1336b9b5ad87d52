package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/voicevault/internal/blobstore"
	"github.com/dmitrijs2005/voicevault/internal/cryptox"
	"github.com/dmitrijs2005/voicevault/internal/dbx"
	"github.com/dmitrijs2005/voicevault/internal/logging"
	"github.com/dmitrijs2005/voicevault/internal/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

// RSA-2048 generation is slow, so tests draw from a shared pool.
var (
	pairsOnce sync.Once
	pairs     []*cryptox.KeyPair
	pairsErr  error
)

func testPairs(t *testing.T) []*cryptox.KeyPair {
	t.Helper()
	pairsOnce.Do(func() {
		for range 4 {
			p, err := cryptox.GenerateRSAKeyPair()
			if err != nil {
				pairsErr = err
				return
			}
			pairs = append(pairs, p)
		}
	})
	require.NoError(t, pairsErr)
	return pairs
}

type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	// getHook, when set, runs before every Get and replaces its result on error
	getHook func(ctx context.Context) error
}

func newMemBlobs() *memBlobs { return &memBlobs{objects: map[string][]byte{}} }

func (m *memBlobs) Put(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *memBlobs) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getHook != nil {
		if err := m.getHook(ctx); err != nil {
			return nil, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, blobstore.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *memBlobs) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memBlobs) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type sinkCall struct {
	userID      int64
	message     string
	recordingID int64
}

type recordingSink struct {
	mu    sync.Mutex
	calls []sinkCall
}

func (r *recordingSink) Notify(ctx context.Context, userID int64, message string, recordingID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, sinkCall{userID, message, recordingID})
}

type testEnv struct {
	db        *sql.DB
	rm        *repomanager.SQLRepositoryManager
	blobs     *memBlobs
	cipher    cryptox.Cipher
	keys      *KeyStore
	lifecycle *Lifecycle
	directory *SQLUserDirectory
	sink      *recordingSink
	sharing   *Sharing
	generated atomic.Int32
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, rm, err := repomanager.Open(ctx, dbx.SQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logging.Nop()
	env := &testEnv{db: db, rm: rm, blobs: newMemBlobs(), cipher: cryptox.ECBCipher{}, sink: &recordingSink{}}

	pool := testPairs(t)
	env.keys = NewKeyStore(db, rm, log)
	env.keys.generate = func() (*cryptox.KeyPair, error) {
		n := env.generated.Add(1)
		return pool[int(n-1)%len(pool)], nil
	}

	env.lifecycle = NewLifecycle(db, rm, env.blobs, env.cipher, env.keys, log)
	env.directory = NewSQLUserDirectory(db, rm)
	env.sharing = NewSharing(db, rm, env.blobs, env.cipher, env.keys, env.lifecycle, env.directory, env.sink, log)
	return env
}

// user registers email and provisions its key pair.
func (e *testEnv) user(t *testing.T, email string) int64 {
	t.Helper()
	ctx := context.Background()
	id, err := e.directory.Register(ctx, email)
	require.NoError(t, err)
	_, err = e.keys.GetOrCreateKeyPair(ctx, id)
	require.NoError(t, err)
	return id
}

func pcmOf(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i*7 + 3)
	}
	return b
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

func (s *KeyStore) lockCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}
