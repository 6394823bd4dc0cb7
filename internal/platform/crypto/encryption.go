// Package crypto seals sensitive columns (bank and tax numbers) with
// AES-256-GCM.
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// sealedPrefix marks values written with a key. Rows stored before a key was
// configured carry no prefix and are returned unchanged.
var sealedPrefix = []byte("wf1:")

var ErrCiphertext = errors.New("sealed value is corrupt or was written with another key")

type Service struct {
	aead cipher.AEAD
}

// New builds the sealer from a 32 byte key given as hex, base64 or raw text.
// An empty key yields a pass-through Service.
func New(key string) (*Service, error) {
	if key == "" {
		return &Service{}, nil
	}
	raw := decodeKey(key)
	if len(raw) != 32 {
		return nil, fmt.Errorf("DATA_ENCRYPTION_KEY must be 32 bytes after decoding, got %d", len(raw))
	}
	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Service{aead: aead}, nil
}

func (s *Service) Configured() bool {
	return s != nil && s.aead != nil
}

func (s *Service) EncryptString(value string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	if !s.Configured() {
		return []byte(value), nil
	}
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	out := append([]byte{}, sealedPrefix...)
	out = append(out, nonce...)
	return s.aead.Seal(out, nonce, []byte(value), sealedPrefix), nil
}

func (s *Service) DecryptString(value []byte) (string, error) {
	if len(value) == 0 {
		return "", nil
	}
	if !bytes.HasPrefix(value, sealedPrefix) {
		return string(value), nil
	}
	if !s.Configured() {
		return "", errors.New("value is encrypted but DATA_ENCRYPTION_KEY is not set")
	}
	body := value[len(sealedPrefix):]
	if len(body) < s.aead.NonceSize() {
		return "", ErrCiphertext
	}
	nonce, data := body[:s.aead.NonceSize()], body[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, data, sealedPrefix)
	if err != nil {
		return "", ErrCiphertext
	}
	return string(plain), nil
}

// MaskAccount keeps the last four characters of an account number.
func MaskAccount(number string) string {
	compact := strings.Join(strings.Fields(number), "")
	if compact == "" {
		return ""
	}
	if len(compact) <= 4 {
		return strings.Repeat("*", len(compact))
	}
	return strings.Repeat("*", len(compact)-4) + compact[len(compact)-4:]
}

func decodeKey(raw string) []byte {
	if len(raw) == 64 {
		if decoded, err := hex.DecodeString(raw); err == nil {
			return decoded
		}
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding} {
		if decoded, err := enc.DecodeString(raw); err == nil && len(decoded) == 32 {
			return decoded
		}
	}
	return []byte(raw)
}
