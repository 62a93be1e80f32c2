// Package cryptox implements the two cryptographic primitives of the
// service: Argon2id credential hashing and the hybrid encryption envelope
// used for session tokens.
//
// Tokens are encrypted, not signed: the claim set is sealed with a fresh
// AES-256-GCM key and the key is wrapped with RSA-OAEP under the service
// public key. Only the holder of the private key can read a token.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id cost parameters: 64 MiB memory, 3 passes, 4 lanes.
const (
	argonVersion = 19 // argon2.Version
	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonSaltLen = 16
	argonKeyLen  = 32
)

// ErrInvalidEnvelope is returned by Open for any token that cannot be
// decoded or decrypted.
var ErrInvalidEnvelope = errors.New("invalid token envelope")

// HashPassword hashes a plaintext password with Argon2id and returns the
// encoded form:
//
//	$argon2id$v=19$m=<mem>,t=<time>,p=<par>$<salt_b64>$<key_b64>
func HashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	b64 := base64.RawStdEncoding
	enc := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argonVersion, argonMemory, argonTime, argonThreads,
		b64.EncodeToString(salt), b64.EncodeToString(key))

	return enc, nil
}

// VerifyPassword checks candidate against the encoded hash. It returns
// false for a mismatch and for malformed or unsupported hashes; it never
// reports a mismatch as an error.
func VerifyPassword(encodedHash, candidate string) bool {
	var memory, time uint32
	var threads uint8

	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argonVersion {
		return false
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false
	}
	// Refuse attacker-supplied cost parameters far above ours.
	if memory > argonMemory*2 || time > argonTime*2 || threads > argonThreads*2 {
		return false
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil || len(salt) < 8 {
		return false
	}
	expected, err := b64.DecodeString(parts[5])
	if err != nil || len(expected) < 16 {
		return false
	}

	key := argon2.IDKey([]byte(candidate), salt, time, memory, threads, uint32(len(expected)))

	return subtle.ConstantTimeCompare(key, expected) == 1
}

// Seal serializes claims to JSON and encrypts them under pub. The output is
// three base64url segments: the RSA-OAEP-wrapped content key, the GCM
// nonce, and the ciphertext.
func Seal(pub *rsa.PublicKey, claims any) (string, error) {
	plaintext, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	contentKey := make([]byte, 32)
	if _, err := rand.Read(contentKey); err != nil {
		return "", err
	}

	block, err := aes.NewCipher(contentKey)
	if err != nil {
		return "", err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	ciphertext := aesgcm.Seal(nil, nonce, plaintext, nil)

	wrappedKey, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, contentKey, nil)
	if err != nil {
		return "", err
	}

	b64 := base64.RawURLEncoding
	return b64.EncodeToString(wrappedKey) + "." +
		b64.EncodeToString(nonce) + "." +
		b64.EncodeToString(ciphertext), nil
}

// Open decrypts a token produced by Seal and unmarshals the claim set into
// claims. Any structural or cryptographic failure yields ErrInvalidEnvelope.
func Open(priv *rsa.PrivateKey, token string, claims any) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ErrInvalidEnvelope
	}

	b64 := base64.RawURLEncoding
	wrappedKey, err := b64.DecodeString(parts[0])
	if err != nil {
		return ErrInvalidEnvelope
	}
	nonce, err := b64.DecodeString(parts[1])
	if err != nil {
		return ErrInvalidEnvelope
	}
	ciphertext, err := b64.DecodeString(parts[2])
	if err != nil {
		return ErrInvalidEnvelope
	}

	contentKey, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, wrappedKey, nil)
	if err != nil {
		return ErrInvalidEnvelope
	}

	block, err := aes.NewCipher(contentKey)
	if err != nil {
		return ErrInvalidEnvelope
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return ErrInvalidEnvelope
	}
	if len(nonce) != aesgcm.NonceSize() {
		return ErrInvalidEnvelope
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return ErrInvalidEnvelope
	}

	if err := json.Unmarshal(plaintext, claims); err != nil {
		return ErrInvalidEnvelope
	}

	return nil
}
