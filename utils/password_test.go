package utils

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatalf("hash equals plaintext")
	}

	if !CheckPassword(hash, "correct horse battery staple") {
		t.Fatalf("CheckPassword rejected the right password")
	}
	if CheckPassword(hash, "wrong password") {
		t.Fatalf("CheckPassword accepted the wrong password")
	}
}
