package cryptox

import (
	"crypto/aes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/dmitrijs2005/voicevault/internal/common"
	"golang.org/x/crypto/nacl/secretbox"
)

// KeySize is the symmetric key length in bytes (AES-256).
const KeySize = 32

const (
	ModeAESECB    = "aes-ecb"
	ModeSecretBox = "secretbox"
)

// Key is a raw symmetric key.
type Key []byte

// Cipher encrypts one recording's audio under its symmetric key.
type Cipher interface {
	GenerateKey() (Key, error)
	Encrypt(plaintext []byte, key Key) ([]byte, error)
	Decrypt(ciphertext []byte, key Key) ([]byte, error)
}

// NewCipher returns the Cipher for the given mode name.
func NewCipher(mode string) (Cipher, error) {
	switch mode {
	case ModeAESECB, "":
		return ECBCipher{}, nil
	case ModeSecretBox:
		return SecretBoxCipher{}, nil
	default:
		return nil, fmt.Errorf("unknown cipher mode %q", mode)
	}
}

// GenerateKey returns KeySize bytes from crypto/rand.
func GenerateKey() (Key, error) {
	key := make(Key, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("%w: generate key: %v", common.ErrOperationFailed, err)
	}
	return key, nil
}

// EncodeKey returns the standard Base64 text of key.
func EncodeKey(key Key) string {
	return base64.StdEncoding.EncodeToString(key)
}

// DecodeKey parses Base64 text produced by EncodeKey.
func DecodeKey(s string) (Key, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: decode key: %v", common.ErrOperationFailed, err)
	}
	if len(b) != KeySize {
		return nil, fmt.Errorf("%w: decode key: invalid key length %d", common.ErrOperationFailed, len(b))
	}
	return Key(b), nil
}

// Hash returns the hex SHA-256 digest of b. It does not depend on any key.
func Hash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func checkKey(key Key) error {
	if len(key) != KeySize {
		return fmt.Errorf("%w: invalid key length %d", common.ErrOperationFailed, len(key))
	}
	return nil
}

// ECBCipher is AES-256 in electronic-codebook mode with PKCS#7 padding.
type ECBCipher struct{}

func (ECBCipher) GenerateKey() (Key, error) { return GenerateKey() }

func (ECBCipher) Encrypt(plaintext []byte, key Key) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrOperationFailed, err)
	}

	bs := block.BlockSize()
	padded := pkcs7Pad(plaintext, bs)
	out := make([]byte, len(padded))
	for i := 0; i < len(padded); i += bs {
		block.Encrypt(out[i:i+bs], padded[i:i+bs])
	}
	return out, nil
}

// Decrypt never reports a wrong key: when the trailing padding is malformed
// the raw block output is returned as is.
func (ECBCipher) Decrypt(ciphertext []byte, key Key) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrOperationFailed, err)
	}

	bs := block.BlockSize()
	if len(ciphertext) == 0 || len(ciphertext)%bs != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d is not a multiple of %d", common.ErrOperationFailed, len(ciphertext), bs)
	}
	out := make([]byte, len(ciphertext))
	for i := 0; i < len(ciphertext); i += bs {
		block.Decrypt(out[i:i+bs], ciphertext[i:i+bs])
	}
	return pkcs7Unpad(out, bs), nil
}

func pkcs7Pad(b []byte, bs int) []byte {
	n := bs - len(b)%bs
	out := make([]byte, len(b)+n)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func pkcs7Unpad(b []byte, bs int) []byte {
	n := int(b[len(b)-1])
	if n == 0 || n > bs || n > len(b) {
		return b
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return b
		}
	}
	return b[:len(b)-n]
}

const nonceSize = 24

// SecretBoxCipher is XSalsa20-Poly1305 with a random nonce prepended to the
// ciphertext.
type SecretBoxCipher struct{}

func (SecretBoxCipher) GenerateKey() (Key, error) { return GenerateKey() }

func (SecretBoxCipher) Encrypt(plaintext []byte, key Key) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	var k [KeySize]byte
	copy(k[:], key)

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("%w: nonce: %v", common.ErrOperationFailed, err)
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, &k), nil
}

func (SecretBoxCipher) Decrypt(ciphertext []byte, key Key) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if len(ciphertext) < nonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("%w: ciphertext too short", common.ErrOperationFailed)
	}
	var k [KeySize]byte
	copy(k[:], key)

	var nonce [nonceSize]byte
	copy(nonce[:], ciphertext[:nonceSize])

	plaintext, ok := secretbox.Open(nil, ciphertext[nonceSize:], &nonce, &k)
	if !ok {
		return nil, fmt.Errorf("%w: secretbox authentication failed", common.ErrOperationFailed)
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}
