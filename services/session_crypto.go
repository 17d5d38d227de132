package services

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"

	"subjectswap_server/models"
)

const serverKeyBits = 2048

// SealedContent is content prepared for one recipient. When Encrypted is
// false, Content is the plaintext and Fallback says why, if anything failed.
type SealedContent struct {
	Content   string
	Encrypted bool
	Fallback  error
}

// OpenedContent is inbound content after decryption was attempted.
type OpenedContent struct {
	Content   string
	Decrypted bool
	Fallback  error
}

// SessionCrypto holds the server key pair handed out to chat clients.
type SessionCrypto struct {
	private      *rsa.PrivateKey
	publicKeyPEM string
}

// NewSessionCrypto generates a fresh server key pair.
func NewSessionCrypto() (*SessionCrypto, error) {
	key, err := rsa.GenerateKey(rand.Reader, serverKeyBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate server key pair: %w", err)
	}
	return NewSessionCryptoFromKey(key)
}

// NewSessionCryptoFromKey wraps an existing private key.
func NewSessionCryptoFromKey(key *rsa.PrivateKey) (*SessionCrypto, error) {
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encode server public key: %w", err)
	}
	block := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return &SessionCrypto{private: key, publicKeyPEM: string(block)}, nil
}

// PublicKeyPEM is the SPKI PEM clients encrypt outbound content with.
func (c *SessionCrypto) PublicKeyPEM() string {
	return c.publicKeyPEM
}

// SealFor encrypts plaintext for the holder of publicKeyPEM. Failures fall
// back to plaintext with the reason attached.
func (c *SessionCrypto) SealFor(publicKeyPEM, plaintext string) SealedContent {
	if publicKeyPEM == "" {
		return SealedContent{Content: plaintext}
	}

	ciphertext, err := EncryptFor(publicKeyPEM, []byte(plaintext))
	if err != nil {
		return SealedContent{Content: plaintext, Fallback: err}
	}
	return SealedContent{Content: base64.StdEncoding.EncodeToString(ciphertext), Encrypted: true}
}

// Open decrypts base64 content sealed with the server public key. Content that
// does not decrypt is returned as-is, since some clients never encrypt.
func (c *SessionCrypto) Open(content string) OpenedContent {
	ciphertext, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return OpenedContent{Content: content, Fallback: fmt.Errorf("%w: %v", models.ErrEncryption, err)}
	}

	plaintext, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, c.private, ciphertext, nil)
	if err != nil {
		return OpenedContent{Content: content, Fallback: fmt.Errorf("%w: %v", models.ErrEncryption, err)}
	}
	return OpenedContent{Content: string(plaintext), Decrypted: true}
}

// EncryptFor encrypts data with RSA-OAEP SHA-256 for a PEM encoded public key.
func EncryptFor(publicKeyPEM string, data []byte) ([]byte, error) {
	pub, err := parsePublicKey(publicKeyPEM)
	if err != nil {
		return nil, err
	}
	ciphertext, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrEncryption, err)
	}
	return ciphertext, nil
}

func parsePublicKey(publicKeyPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, fmt.Errorf("%w: public key is not PEM encoded", models.ErrEncryption)
	}

	switch block.Type {
	case "RSA PUBLIC KEY":
		pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrEncryption, err)
		}
		return pub, nil
	case "PUBLIC KEY":
		parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrEncryption, err)
		}
		pub, ok := parsed.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: public key is not RSA", models.ErrEncryption)
		}
		return pub, nil
	}
	return nil, fmt.Errorf("%w: unsupported PEM block %q", models.ErrEncryption, block.Type)
}
