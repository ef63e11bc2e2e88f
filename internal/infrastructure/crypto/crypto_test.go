package crypto

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"testing"
)

func testMasterKey(t *testing.T) string {
	t.Helper()
	raw := make([]byte, 64)
	if _, err := rand.Read(raw); err != nil {
		t.Fatal(err)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func TestParseMasterKey_RejectsBadLength(t *testing.T) {
	short := base64.StdEncoding.EncodeToString(make([]byte, 32))
	if _, err := ParseMasterKey(short); err == nil {
		t.Fatal("expected error for 32-byte master key")
	}
}

func TestParseMasterKey_RejectsBadBase64(t *testing.T) {
	if _, err := ParseMasterKey("not-base-64!!!"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
}

func TestParseMasterKey_TrimsWhitespace(t *testing.T) {
	b64 := testMasterKey(t)
	key, err := ParseMasterKey("  " + b64 + "\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(key) != 32 {
		t.Fatalf("derived key length = %d, want 32", len(key))
	}
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key, err := ParseMasterKey(testMasterKey(t))
	if err != nil {
		t.Fatal(err)
	}

	plaintext := []byte("sk-live-abcdef0123456789")
	blob, err := Encrypt(key, plaintext)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(blob, plaintext) {
		t.Fatal("ciphertext contains plaintext")
	}

	got, err := Decrypt(key, blob)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("round trip mismatch: %q", got)
	}
}

func TestEncrypt_FreshNoncePerCall(t *testing.T) {
	key, err := ParseMasterKey(testMasterKey(t))
	if err != nil {
		t.Fatal(err)
	}

	a, _ := Encrypt(key, []byte("same"))
	b, _ := Encrypt(key, []byte("same"))
	if bytes.Equal(a, b) {
		t.Fatal("two encryptions of the same plaintext must differ")
	}
}

func TestDecrypt_RejectsTamperedCiphertext(t *testing.T) {
	key, err := ParseMasterKey(testMasterKey(t))
	if err != nil {
		t.Fatal(err)
	}

	blob, _ := Encrypt(key, []byte("secret"))
	blob[len(blob)-1] ^= 0xff
	if _, err := Decrypt(key, blob); err == nil {
		t.Fatal("expected auth failure on tampered ciphertext")
	}
}

func TestDecrypt_RejectsShortBlob(t *testing.T) {
	key, err := ParseMasterKey(testMasterKey(t))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decrypt(key, make([]byte, 8)); err == nil {
		t.Fatal("expected error for blob shorter than nonce")
	}
}
