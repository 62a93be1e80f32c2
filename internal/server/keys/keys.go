// Package keys manages the per-host RSA keypair used to encrypt and
// decrypt session tokens.
//
// The pair is generated once into a directory; after that every
// cryptographic operation re-reads the PEM file it needs, so key rotation
// on disk takes effect without a restart.
package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	privateFileName = "token_rsa.pem"
	publicFileName  = "token_rsa.pub.pem"

	keyBits = 2048
)

// ErrKeyMissing is returned when a required key file is absent at call
// time. Callers treat it as a fatal, non-retryable condition.
var ErrKeyMissing = errors.New("key material missing")

// Provider loads key material from a fixed directory.
type Provider struct {
	dir string
}

func NewProvider(dir string) *Provider {
	return &Provider{dir: dir}
}

// Ensure generates the keypair if neither file exists yet. An existing pair
// is left untouched.
func (p *Provider) Ensure() error {
	if _, err := os.Stat(p.privatePath()); err == nil {
		return nil
	}

	if err := os.MkdirAll(p.dir, 0o700); err != nil {
		return fmt.Errorf("key dir: %w", err)
	}

	key, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	if err := os.WriteFile(p.privatePath(), privPEM, 0o600); err != nil {
		return fmt.Errorf("write private key: %w", err)
	}

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return fmt.Errorf("marshal public key: %w", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	if err := os.WriteFile(p.publicPath(), pubPEM, 0o644); err != nil {
		return fmt.Errorf("write public key: %w", err)
	}

	return nil
}

// Public reads the public key from disk.
func (p *Provider) Public() (*rsa.PublicKey, error) {
	block, err := p.readPEM(p.publicPath())
	if err != nil {
		return nil, err
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("unexpected public key type %T", pub)
	}
	return rsaPub, nil
}

// Private reads the private key from disk.
func (p *Provider) Private() (*rsa.PrivateKey, error) {
	block, err := p.readPEM(p.privatePath())
	if err != nil {
		return nil, err
	}

	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return key, nil
}

func (p *Provider) readPEM(path string) (*pem.Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrKeyMissing)
		}
		return nil, fmt.Errorf("read key: %w", err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%s: no PEM block", path)
	}
	return block, nil
}

func (p *Provider) privatePath() string { return filepath.Join(p.dir, privateFileName) }
func (p *Provider) publicPath() string  { return filepath.Join(p.dir, publicFileName) }
