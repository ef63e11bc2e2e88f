// Package crypto derives the API-key cipher key from the deployment master
// secret and seals/opens per-user provider keys. Plaintext keys only ever
// exist in memory for the duration of an outbound request.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const (
	masterKeyLen = 64
	derivedLen   = 32
	nonceLen     = 12

	hkdfInfo = "hmac-sha-256 key"
)

// ParseMasterKey decodes the base64 master secret and derives the 32-byte
// AES-256 key via HKDF-SHA256. The decoded secret must be exactly 64 bytes;
// any other length is a startup-fatal configuration error.
func ParseMasterKey(b64 string) ([]byte, error) {
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(b64))
	if err != nil {
		return nil, fmt.Errorf("master key is not valid base64: %w", err)
	}
	if len(decoded) != masterKeyLen {
		return nil, fmt.Errorf("master key must decode to %d bytes, got %d", masterKeyLen, len(decoded))
	}

	hk := hkdf.New(sha256.New, decoded, nil, []byte(hkdfInfo))
	key := make([]byte, derivedLen)
	if _, err := io.ReadFull(hk, key); err != nil {
		return nil, fmt.Errorf("expand master key: %w", err)
	}
	return key, nil
}

// Encrypt seals plaintext with AES-256-GCM. The ciphertext layout is
// 12-byte nonce followed by the GCM output.
func Encrypt(key, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a nonce-prefixed AES-256-GCM blob produced by Encrypt.
func Decrypt(key, blob []byte) ([]byte, error) {
	if len(blob) <= nonceLen {
		return nil, fmt.Errorf("ciphertext too short")
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, blob[:nonceLen], blob[nonceLen:], nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt api key: %w", err)
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	return cipher.NewGCM(block)
}
