package utils

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("rand.Read error: %v", err)
	}
	return key
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	t.Parallel()

	key := testKey(t)
	plaintext := []byte("NL91ABNA0417164300")

	ciphertext, nonce, err := Encrypt(plaintext, key)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	if bytes.Equal(ciphertext, plaintext) {
		t.Fatalf("ciphertext equals plaintext")
	}

	got, err := Decrypt(ciphertext, nonce, key)
	if err != nil {
		t.Fatalf("Decrypt error: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("round trip mismatch: got %q want %q", got, plaintext)
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	t.Parallel()

	ciphertext, nonce, err := Encrypt([]byte("secret"), testKey(t))
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	if _, err := Decrypt(ciphertext, nonce, testKey(t)); err == nil {
		t.Fatalf("expected error decrypting with the wrong key")
	}
}

func TestEncrypt_FreshNoncePerCall(t *testing.T) {
	t.Parallel()

	key := testKey(t)
	_, nonce1, err := Encrypt([]byte("x"), key)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	_, nonce2, err := Encrypt([]byte("x"), key)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	if bytes.Equal(nonce1, nonce2) {
		t.Fatalf("nonce reused across calls")
	}
}

func TestEncrypt_BadKeyLength(t *testing.T) {
	t.Parallel()

	if _, _, err := Encrypt([]byte("x"), []byte("short")); err == nil {
		t.Fatalf("expected error for invalid key length")
	}
}
