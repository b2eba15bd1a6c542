package crypto

import (
	"errors"
	"strings"
	"testing"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c, err := NewCipher(testKeyHex)
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}

	for _, plaintext := range []string{"abc", "", "tiny-api-token-1234567890", "こんにちは"} {
		ciphertext, err := c.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt(%q): %v", plaintext, err)
		}
		if ciphertext == plaintext && plaintext != "" {
			t.Fatalf("ciphertext equals plaintext for %q", plaintext)
		}
		got, err := c.Decrypt(ciphertext)
		if err != nil {
			t.Fatalf("Decrypt: %v", err)
		}
		if got != plaintext {
			t.Fatalf("round trip: got %q, want %q", got, plaintext)
		}
	}
}

func TestEncryptProducesFreshNonce(t *testing.T) {
	c, err := NewCipher(testKeyHex)
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}
	a, _ := c.Encrypt("same")
	b, _ := c.Encrypt("same")
	if a == b {
		t.Fatal("two encryptions of the same plaintext must differ")
	}
}

func TestDecryptMalformed(t *testing.T) {
	c, err := NewCipher(testKeyHex)
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}

	cases := []string{
		"not-base64!!!",
		"aGVsbG8=", // valid base64, too short for a nonce
		strings.Repeat("QUFBQ", 20) + "g==",
	}
	for _, ciphertext := range cases {
		if _, err := c.Decrypt(ciphertext); !errors.Is(err, ErrDecryptionFailure) {
			t.Fatalf("Decrypt(%q): got %v, want ErrDecryptionFailure", ciphertext, err)
		}
	}
}

func TestNewCipherRejectsBadKeys(t *testing.T) {
	for _, keyHex := range []string{"", "zz", "abcd", testKeyHex + "00"} {
		if _, err := NewCipher(keyHex); err == nil {
			t.Fatalf("NewCipher(%q): expected error", keyHex)
		}
	}
}
