package cryptox

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/voicevault/internal/common"
)

// KeyWrapper protects Base64 symmetric keys with RSA PKCS#1 v1.5.
type KeyWrapper struct{}

func NewKeyWrapper() *KeyWrapper {
	return &KeyWrapper{}
}

// Wrap encrypts the Base64 text of a symmetric key under recipientPublicKey
// and returns the ciphertext as Base64.
func (w *KeyWrapper) Wrap(symmetricKeyBase64, recipientPublicKey string) (string, error) {
	if symmetricKeyBase64 == "" {
		return "", fmt.Errorf("%w: empty key", common.ErrOperationFailed)
	}
	pub, err := ParsePublicKey(recipientPublicKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrOperationFailed, err)
	}

	wrapped, err := rsa.EncryptPKCS1v15(rand.Reader, pub, []byte(symmetricKeyBase64))
	if err != nil {
		return "", fmt.Errorf("%w: failed to wrap key: %v", common.ErrOperationFailed, err)
	}
	return base64.StdEncoding.EncodeToString(wrapped), nil
}

// Unwrap recovers the Base64 symmetric key text. Every failure, including a
// private key that does not match the wrapping public key, is reported as
// common.ErrUnwrapFailed.
func (w *KeyWrapper) Unwrap(wrappedKeyBase64, ownerPrivateKey string) (string, error) {
	wrapped, err := base64.StdEncoding.DecodeString(wrappedKeyBase64)
	if err != nil || len(wrapped) == 0 {
		return "", fmt.Errorf("%w: wrapped key is not valid Base64", common.ErrUnwrapFailed)
	}
	priv, err := ParsePrivateKey(ownerPrivateKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrUnwrapFailed, err)
	}

	plain, err := rsa.DecryptPKCS1v15(rand.Reader, priv, wrapped)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrUnwrapFailed, err)
	}
	// a stray valid padding under the wrong key yields non-Base64 bytes
	if _, err := base64.StdEncoding.DecodeString(string(plain)); err != nil {
		return "", fmt.Errorf("%w: unwrapped value is not a Base64 key", common.ErrUnwrapFailed)
	}
	return string(plain), nil
}
