package cryptox

import (
	"encoding/base64"
	"sync"
	"testing"

	"github.com/dmitrijs2005/voicevault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pairsOnce sync.Once
	pairA     *KeyPair
	pairB     *KeyPair
)

// RSA generation is slow; tests share two pairs.
func testPairs(t *testing.T) (*KeyPair, *KeyPair) {
	t.Helper()
	pairsOnce.Do(func() {
		var err error
		pairA, err = GenerateRSAKeyPair()
		require.NoError(t, err)
		pairB, err = GenerateRSAKeyPair()
		require.NoError(t, err)
	})
	return pairA, pairB
}

func TestGenerateRSAKeyPair_Parses(t *testing.T) {
	a, _ := testPairs(t)

	pub, err := ParsePublicKey(a.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, RSAKeyBits, pub.N.BitLen())

	priv, err := ParsePrivateKey(a.PrivateKey)
	require.NoError(t, err)
	assert.True(t, priv.PublicKey.Equal(pub))
}

func TestWrapUnwrap_RoundTrip(t *testing.T) {
	a, _ := testPairs(t)
	w := NewKeyWrapper()

	for i := 0; i < 5; i++ {
		key, err := GenerateKey()
		require.NoError(t, err)
		encoded := EncodeKey(key)

		wrapped, err := w.Wrap(encoded, a.PublicKey)
		require.NoError(t, err)
		_, err = base64.StdEncoding.DecodeString(wrapped)
		require.NoError(t, err, "wrapped key must be Base64")

		got, err := w.Unwrap(wrapped, a.PrivateKey)
		require.NoError(t, err)
		require.Equal(t, encoded, got)
	}
}

func TestUnwrap_WrongPrivateKey(t *testing.T) {
	a, b := testPairs(t)
	w := NewKeyWrapper()

	key, _ := GenerateKey()
	wrapped, err := w.Wrap(EncodeKey(key), a.PublicKey)
	require.NoError(t, err)

	_, err = w.Unwrap(wrapped, b.PrivateKey)
	require.ErrorIs(t, err, common.ErrUnwrapFailed)
}

func TestUnwrap_Malformed(t *testing.T) {
	a, _ := testPairs(t)
	w := NewKeyWrapper()

	tests := []struct {
		name    string
		wrapped string
		priv    string
	}{
		{"not base64", "!!!", a.PrivateKey},
		{"empty", "", a.PrivateKey},
		{"truncated blob", base64.StdEncoding.EncodeToString([]byte("short")), a.PrivateKey},
		{"bad private key", base64.StdEncoding.EncodeToString(make([]byte, 256)), "bm90LWEta2V5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.Unwrap(tt.wrapped, tt.priv)
			require.ErrorIs(t, err, common.ErrUnwrapFailed)
		})
	}
}

func TestWrap_Errors(t *testing.T) {
	a, _ := testPairs(t)
	w := NewKeyWrapper()

	_, err := w.Wrap("", a.PublicKey)
	require.ErrorIs(t, err, common.ErrOperationFailed)

	_, err = w.Wrap("a2V5", "not-a-public-key")
	require.ErrorIs(t, err, common.ErrOperationFailed)

	// a private key is not accepted where a public key is expected
	_, err = w.Wrap("a2V5", a.PrivateKey)
	require.ErrorIs(t, err, common.ErrOperationFailed)
}
