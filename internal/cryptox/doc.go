// Package cryptox holds the cryptographic primitives behind the recording
// protocol: the per-recording symmetric cipher, the RSA key pair codec and
// the KeyWrapper that protects symmetric keys under a user's public key.
//
// Two cipher modes exist. ModeAESECB is the default and the on-disk format
// of existing vaults: AES-256 applied block by block with PKCS#7 padding and
// no IV or MAC. Identical plaintext blocks produce identical ciphertext
// blocks and a wrong key is not detected. ModeSecretBox (NaCl secretbox,
// random nonce prepended) is the authenticated alternative; vaults written
// in one mode cannot be read in the other.
//
// Keys cross package boundaries as Base64 text. The wrapper encrypts the
// Base64 text of a symmetric key, not its raw bytes, so callers EncodeKey
// before Wrap and DecodeKey after Unwrap.
package cryptox
