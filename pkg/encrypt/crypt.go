// Package encrypt seals small secrets, such as stored credentials,
// under a passphrase. Keys are derived with Argon2id and data is
// encrypted with AES-256-GCM.
package encrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Encrypt generates a fresh salt, derives a key from the passphrase,
// and seals the plaintext. The returned blob is:
//
//	salt (16 bytes) || nonce (12 bytes) || ciphertext + tag
func Encrypt[T interface{ []byte | string }](passphrase string, plaintext T) ([]byte, error) {
	salt, err := GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}
	sealed, err := DeriveKey(passphrase, salt).Encrypt([]byte(plaintext))
	if err != nil {
		return nil, err
	}
	return append(salt, sealed...), nil
}

// Decrypt splits the salt from the blob, re-derives the key, and opens
// ciphertext produced by Encrypt. The type parameter controls the
// return type.
func Decrypt[T interface{ []byte | string }](passphrase string, blob []byte) (T, error) {
	var zero T
	if len(blob) < SaltSize {
		return zero, fmt.Errorf("decrypt: data too short")
	}
	salt, sealed := blob[:SaltSize], blob[SaltSize:]
	plaintext, err := DeriveKey(passphrase, salt).Decrypt(sealed)
	if err != nil {
		return zero, err
	}
	return T(plaintext), nil
}

// EncryptJSON marshals a value and seals it under the passphrase.
func EncryptJSON(passphrase string, value any) ([]byte, error) {
	plaintext, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}
	return Encrypt(passphrase, plaintext)
}

// DecryptJSON opens a blob produced by EncryptJSON and unmarshals it
// into the value.
func DecryptJSON(passphrase string, blob []byte, value any) error {
	plaintext, err := Decrypt[[]byte](passphrase, blob)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(plaintext, value); err != nil {
		return fmt.Errorf("decrypt: %w", err)
	}
	return nil
}

// Encrypt seals plaintext with AES-256-GCM under a random nonce,
// returning nonce || ciphertext + tag.
func (k Key) Encrypt(plaintext []byte) ([]byte, error) {
	gcm, err := k.cipher()
	if err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens ciphertext (nonce || ciphertext + tag) sealed by
// Encrypt.
func (k Key) Decrypt(ciphertext []byte) ([]byte, error) {
	gcm, err := k.cipher()
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("decrypt: ciphertext too short")
	}
	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (k Key) cipher() (cipher.AEAD, error) {
	block, err := aes.NewCipher(k)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
