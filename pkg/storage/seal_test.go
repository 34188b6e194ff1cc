package storage

import (
	"bytes"
	"strings"
	"testing"
)

const testMasterKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestSealRoundTrip(t *testing.T) {
	sealer, err := NewSealer(testMasterKey)
	if err != nil {
		t.Fatalf("NewSealer failed: %v", err)
	}

	plaintext := []byte("paid post body")
	sealed, err := sealer.Seal("post-tag-1", plaintext)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if bytes.Contains(sealed, plaintext) {
		t.Error("sealed payload contains plaintext")
	}

	opened, err := sealer.Open("post-tag-1", sealed)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Errorf("round trip mismatch: %q", opened)
	}
}

func TestSealTagBindsPayload(t *testing.T) {
	sealer, _ := NewSealer(testMasterKey)
	sealed, err := sealer.Seal("post-tag-1", []byte("body"))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if _, err := sealer.Open("post-tag-2", sealed); err == nil {
		t.Error("payload opened under the wrong tag")
	}
}

func TestSealRejectsTampering(t *testing.T) {
	sealer, _ := NewSealer(testMasterKey)
	sealed, err := sealer.Seal("tag", []byte("body"))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	sealed[len(sealed)-1] ^= 0x01
	if _, err := sealer.Open("tag", sealed); err == nil {
		t.Error("tampered payload opened")
	}
}

func TestNewSealerRejectsBadKeys(t *testing.T) {
	for _, key := range []string{"", "abcd", "zz" + strings.Repeat("ab", 31)} {
		if _, err := NewSealer(key); err == nil {
			t.Errorf("key %q accepted", key)
		}
	}
}

func TestOpenRejectsTruncatedPayload(t *testing.T) {
	sealer, _ := NewSealer(testMasterKey)
	if _, err := sealer.Open("tag", []byte("short")); err == nil {
		t.Error("truncated payload opened")
	}
}
