package codec

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

// ErrDecode is returned for every ciphertext that cannot be opened.
var ErrDecode = errors.New("credential decode failed")

// ErrEmptyKey is returned when a codec is used without a key.
var ErrEmptyKey = errors.New("codec key empty")

const (
	nonceSize = 24
	keySize   = 32
	hkdfInfo  = "goaset credential codec v1"
)

var magic = []byte("gaC1")

// Codec binds Encode and Decode to a fixed key.
type Codec struct {
	key [keySize]byte
}

// New derives the box key from key.
func New(key string) (*Codec, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	c := &Codec{}
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(key), magic, []byte(hkdfInfo)), c.key[:]); err != nil {
		return nil, fmt.Errorf("derive codec key: %w", err)
	}
	return c, nil
}

// Encode seals plaintext under a fresh nonce.
func (c *Codec) Encode(plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("codec nonce: %w", err)
	}

	out := make([]byte, 0, len(magic)+nonceSize+secretbox.Overhead+len(plaintext))
	out = append(out, magic...)
	out = append(out, nonce[:]...)
	out = secretbox.Seal(out, []byte(plaintext), &nonce, &c.key)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decode opens a value produced by Encode with the same key.
func (c *Codec) Decode(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(raw) < len(magic)+nonceSize+secretbox.Overhead {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecode)
	}
	if !bytes.Equal(raw[:len(magic)], magic) {
		return "", fmt.Errorf("%w: unknown format", ErrDecode)
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[len(magic):len(magic)+nonceSize])

	plain, ok := secretbox.Open(nil, raw[len(magic)+nonceSize:], &nonce, &c.key)
	if !ok {
		return "", fmt.Errorf("%w: authentication failed", ErrDecode)
	}
	return string(plain), nil
}

// Encode is a one-shot helper for New(key).Encode(plaintext).
func Encode(plaintext, key string) (string, error) {
	c, err := New(key)
	if err != nil {
		return "", err
	}
	return c.Encode(plaintext)
}

// Decode is a one-shot helper for New(key).Decode(ciphertext).
func Decode(ciphertext, key string) (string, error) {
	c, err := New(key)
	if err != nil {
		return "", err
	}
	return c.Decode(ciphertext)
}
