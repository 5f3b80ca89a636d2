package crypto

import (
	"strings"
	"testing"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	hasher := NewBcryptHasher(4)

	hash, err := hasher.Hash("correct-horse")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "correct-horse" {
		t.Fatal("hash equals plaintext")
	}

	if err := hasher.Compare(hash, "correct-horse"); err != nil {
		t.Errorf("Compare with right password: %v", err)
	}
	if err := hasher.Compare(hash, "wrong-password"); err == nil {
		t.Error("Compare accepted a wrong password")
	}
}

func TestBcryptHasher_SaltedHashesDiffer(t *testing.T) {
	hasher := NewBcryptHasher(4)

	a, _ := hasher.Hash("same-password")
	b, _ := hasher.Hash("same-password")
	if a == b {
		t.Error("two hashes of the same password must differ")
	}
}

func TestBcryptHasher_CostClamping(t *testing.T) {
	for _, cost := range []int{-1, 0, 99} {
		hasher := NewBcryptHasher(cost)
		hash, err := hasher.Hash("password")
		if err != nil {
			t.Errorf("cost %d: %v", cost, err)
		}
		if !strings.HasPrefix(hash, "$2a$10$") {
			t.Errorf("cost %d: expected default cost 10 prefix, got %s", cost, hash[:7])
		}
	}
}
