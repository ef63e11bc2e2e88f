package service

import (
	"bytes"
	"testing"

	"go.uber.org/zap"

	apperrors "github.com/driftchat/driftchat/pkg/errors"
)

var testMasterKey = bytes.Repeat([]byte{0x24}, 32)

func TestApiKey_RoundTrip(t *testing.T) {
	db := testDB(t)
	seedUsers(t, db, "u1")
	svc := NewApiKeyService(testMasterKey, zap.NewNop())

	created, err := svc.Create(db, "u1", "openai", "sk-plaintext")
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(created.EncryptedKey, []byte("sk-plaintext")) {
		t.Error("stored blob contains plaintext")
	}

	plaintext, err := svc.GetAndDecrypt(db, "u1", "openai")
	if err != nil {
		t.Fatal(err)
	}
	if plaintext != "sk-plaintext" {
		t.Errorf("decrypted: got %q", plaintext)
	}
}

func TestApiKey_MissingBecomesMissingKeyError(t *testing.T) {
	db := testDB(t)
	seedUsers(t, db, "u1")
	svc := NewApiKeyService(testMasterKey, zap.NewNop())

	_, err := svc.GetAndDecrypt(db, "u1", "anthropic")
	if !apperrors.IsMissingKey(err) {
		t.Fatalf("expected missing-key error, got %v", err)
	}
	if provider := apperrors.MissingKeyProvider(err); provider != "anthropic" {
		t.Errorf("provider: got %q", provider)
	}
}

func TestApiKey_RejectsEmptyInput(t *testing.T) {
	db := testDB(t)
	svc := NewApiKeyService(testMasterKey, zap.NewNop())

	if _, err := svc.Create(db, "u1", "", "sk-x"); !apperrors.IsInvalidInput(err) {
		t.Errorf("empty provider: got %v", err)
	}
	if _, err := svc.Create(db, "u1", "openai", ""); !apperrors.IsInvalidInput(err) {
		t.Errorf("empty key: got %v", err)
	}
}

func TestApiKey_ScopedToUser(t *testing.T) {
	db := testDB(t)
	seedUsers(t, db, "u1", "u2")
	svc := NewApiKeyService(testMasterKey, zap.NewNop())

	if _, err := svc.Create(db, "u1", "openai", "sk-u1"); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.GetAndDecrypt(db, "u2", "openai"); !apperrors.IsMissingKey(err) {
		t.Fatalf("u2 must not see u1's key, got %v", err)
	}
}
