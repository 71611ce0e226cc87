package codec

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

const testKey = "your-secret-key"

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"abc.def.ghi",
		"eyJhbGciOiJIUzI1NiJ9.eyJ1c2VybmFtZSI6ImFsaWNlIn0.sig",
		strings.Repeat("x", 4096),
		"unicode: pinjam aset é中",
	}
	for _, in := range inputs {
		enc, err := Encode(in, testKey)
		if err != nil {
			t.Fatalf("encode %q: %v", in, err)
		}
		if enc == in && in != "" {
			t.Fatalf("expected encoded value to differ from plaintext")
		}
		dec, err := Decode(enc, testKey)
		if err != nil {
			t.Fatalf("decode %q: %v", in, err)
		}
		if dec != in {
			t.Fatalf("round trip mismatch: got %q want %q", dec, in)
		}
	}
}

func TestEncodeUsesFreshNonce(t *testing.T) {
	c, err := New(testKey)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	a, _ := c.Encode("same")
	b, _ := c.Encode("same")
	if a == b {
		t.Fatal("expected two encodings of the same plaintext to differ")
	}
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	c, err := New(testKey)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	valid, err := c.Encode("abc.def.ghi")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	raw, _ := base64.StdEncoding.DecodeString(valid)

	wrongMagic := append([]byte("XXXX"), raw[4:]...)
	flipped := append([]byte(nil), raw...)
	flipped[len(flipped)-1] ^= 0xFF

	cases := map[string]string{
		"empty":           "",
		"not base64":      "%%%not-base64%%%",
		"too short":       base64.StdEncoding.EncodeToString([]byte("gaC1short")),
		"wrong magic":     base64.StdEncoding.EncodeToString(wrongMagic),
		"truncated box":   base64.StdEncoding.EncodeToString(raw[:len(raw)-3]),
		"tampered box":    base64.StdEncoding.EncodeToString(flipped),
		"plaintext token": "abc.def.ghi",
	}
	for name, in := range cases {
		if _, err := c.Decode(in); !errors.Is(err, ErrDecode) {
			t.Fatalf("%s: expected ErrDecode, got %v", name, err)
		}
	}
}

func TestDecodeRejectsWrongKey(t *testing.T) {
	enc, err := Encode("abc.def.ghi", testKey)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := Decode(enc, "another-key"); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode for wrong key, got %v", err)
	}
}

func TestNewRejectsEmptyKey(t *testing.T) {
	if _, err := New(""); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}
