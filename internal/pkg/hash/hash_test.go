package hash

import (
	"strings"
	"testing"
)

func TestHashers(t *testing.T) {
	hashers := map[string]Hash{
		"Argon2id":   NewArgon2id("pepper", WithArgon2idCost(64, 1, 1)),
		"Bcrypt":     NewBcrypt(4, "pepper"),
		"HMACSHA256": NewHMACSHA256("secret"),
	}

	for name, h := range hashers {
		t.Run(name, func(t *testing.T) {
			digest, err := h.Hash("AAAAAAAA")
			if err != nil {
				t.Fatalf("hash: %v", err)
			}

			if !h.Verify(string(digest), "AAAAAAAA") {
				t.Fatal("expected match")
			}
			if h.Verify(string(digest), "BBBBBBBB") {
				t.Fatal("expected mismatch")
			}
		})
	}
}

func TestArgon2id(t *testing.T) {
	a := NewArgon2id("pepper", WithArgon2idCost(64, 1, 1))

	t.Run("SaltedPerValue", func(t *testing.T) {
		d1, _ := a.Hash("AAAAAAAA")
		d2, _ := a.Hash("AAAAAAAA")
		if string(d1) == string(d2) {
			t.Fatal("expected distinct digests for the same input")
		}
		if !strings.HasPrefix(string(d1), "$argon2id$v=19$m=64,t=1,p=1$") {
			t.Fatalf("unexpected encoding %q", d1)
		}
	})

	t.Run("PepperMatters", func(t *testing.T) {
		d, _ := a.Hash("AAAAAAAA")
		other := NewArgon2id("other", WithArgon2idCost(64, 1, 1))
		if other.Verify(string(d), "AAAAAAAA") {
			t.Fatal("expected mismatch with a different pepper")
		}
	})

	t.Run("Malformed", func(t *testing.T) {
		for _, d := range []string{"", "plain", "$argon2i$v=19$m=64,t=1,p=1$c2FsdA$a2V5", "$argon2id$v=19$m=x$c2FsdA$a2V5"} {
			if a.Verify(d, "AAAAAAAA") {
				t.Fatalf("expected %q to be rejected", d)
			}
		}
	})
}

func TestHMACSHA256(t *testing.T) {
	h := NewHMACSHA256("secret")

	if h.Digest("token") != h.Digest("token") {
		t.Fatal("expected deterministic digest")
	}
	if len(h.Digest("token")) != 64 {
		t.Fatal("expected hex sha256 digest")
	}
	if NewHMACSHA256("other").Digest("token") == h.Digest("token") {
		t.Fatal("expected key to change the digest")
	}
}
