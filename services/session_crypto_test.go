package services

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"strings"
	"testing"

	"subjectswap_server/models"
)

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	return key
}

func TestSealForRoundTrip(t *testing.T) {
	server, err := NewSessionCryptoFromKey(testKey(t))
	if err != nil {
		t.Fatal(err)
	}
	client := testKey(t)
	clientPEM, err := NewSessionCryptoFromKey(client)
	if err != nil {
		t.Fatal(err)
	}

	sealed := server.SealFor(clientPEM.PublicKeyPEM(), "hello there")
	if !sealed.Encrypted || sealed.Fallback != nil {
		t.Fatalf("sealed = %+v, want encrypted", sealed)
	}

	raw, err := base64.StdEncoding.DecodeString(sealed.Content)
	if err != nil {
		t.Fatal(err)
	}
	plain, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, client, raw, nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(plain) != "hello there" {
		t.Errorf("decrypted %q", plain)
	}
}

func TestSealForAcceptsPKCS1Keys(t *testing.T) {
	server, _ := NewSessionCryptoFromKey(testKey(t))
	client := testKey(t)
	pkcs1 := pem.EncodeToMemory(&pem.Block{Type: "RSA PUBLIC KEY", Bytes: x509.MarshalPKCS1PublicKey(&client.PublicKey)})

	if sealed := server.SealFor(string(pkcs1), "hi"); !sealed.Encrypted {
		t.Errorf("PKCS1 key rejected: %v", sealed.Fallback)
	}
}

func TestSealForFallsBackToPlaintext(t *testing.T) {
	server, _ := NewSessionCryptoFromKey(testKey(t))

	sealed := server.SealFor("not a key", "hello")
	if sealed.Encrypted || sealed.Content != "hello" {
		t.Errorf("sealed = %+v, want plaintext", sealed)
	}
	if !errors.Is(sealed.Fallback, models.ErrEncryption) {
		t.Errorf("fallback = %v, want ErrEncryption", sealed.Fallback)
	}

	if sealed := server.SealFor("", "hello"); sealed.Encrypted || sealed.Fallback != nil || sealed.Content != "hello" {
		t.Errorf("no key: sealed = %+v", sealed)
	}
}

func TestSealForPayloadTooLarge(t *testing.T) {
	server, _ := NewSessionCryptoFromKey(testKey(t))
	client, _ := NewSessionCryptoFromKey(testKey(t))

	long := strings.Repeat("x", 1024)
	sealed := server.SealFor(client.PublicKeyPEM(), long)
	if sealed.Encrypted || sealed.Content != long || !errors.Is(sealed.Fallback, models.ErrEncryption) {
		t.Errorf("oversized payload should fall back, got encrypted=%v fallback=%v", sealed.Encrypted, sealed.Fallback)
	}
}

func TestOpen(t *testing.T) {
	server, _ := NewSessionCryptoFromKey(testKey(t))

	ciphertext, err := EncryptFor(server.PublicKeyPEM(), []byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	opened := server.Open(base64.StdEncoding.EncodeToString(ciphertext))
	if !opened.Decrypted || opened.Content != "secret" {
		t.Errorf("opened = %+v", opened)
	}

	plain := server.Open("just text")
	if plain.Decrypted || plain.Content != "just text" || !errors.Is(plain.Fallback, models.ErrEncryption) {
		t.Errorf("plain = %+v, want passthrough", plain)
	}
}

func TestPublicKeyPEMIsSPKI(t *testing.T) {
	server, _ := NewSessionCryptoFromKey(testKey(t))
	block, _ := pem.Decode([]byte(server.PublicKeyPEM()))
	if block == nil || block.Type != "PUBLIC KEY" {
		t.Fatalf("unexpected PEM block %+v", block)
	}
	if _, err := x509.ParsePKIXPublicKey(block.Bytes); err != nil {
		t.Error(err)
	}
}
