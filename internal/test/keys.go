package test

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/kashguard/go-payment-intents/internal/config"
	"github.com/stretchr/testify/require"
)

const (
	TestReceiverWalletAddress = "https://wallet.example.test/merchant"
	TestSenderWalletAddress   = "https://wallet.example.test/customer"
	TestReceiverKeyID         = "receiver-test-key"
	TestSenderKeyID           = "sender-test-key"
)

// WriteEd25519KeyPair writes a PKCS#8 private key and PKIX public key into dir.
func WriteEd25519KeyPair(t *testing.T, dir string, name string) (privPath string, pubPath string) {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	return writeKeyPair(t, dir, name, priv, pub)
}

// WriteECDSAKeyPair writes a P-256 key pair into dir.
func WriteECDSAKeyPair(t *testing.T, dir string, name string) (privPath string, pubPath string) {
	t.Helper()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	return writeKeyPair(t, dir, name, priv, &priv.PublicKey)
}

func writeKeyPair(t *testing.T, dir string, name string, priv any, pub any) (string, string) {
	t.Helper()

	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)
	pubDER, err := x509.MarshalPKIXPublicKey(pub)
	require.NoError(t, err)

	privPath := filepath.Join(dir, name+".key")
	pubPath := filepath.Join(dir, name+".pub")

	require.NoError(t, os.WriteFile(privPath, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER}), 0o600))
	require.NoError(t, os.WriteFile(pubPath, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}), 0o600))

	return privPath, pubPath
}

// NewTestCredentials generates an Ed25519 receiver and a P-256 sender
// identity in a temp dir.
func NewTestCredentials(t *testing.T) config.Credentials {
	t.Helper()

	dir := t.TempDir()
	receiverPriv, receiverPub := WriteEd25519KeyPair(t, dir, "receiver")
	senderPriv, senderPub := WriteECDSAKeyPair(t, dir, "sender")

	return config.Credentials{
		Receiver: config.Identity{
			WalletAddress:  TestReceiverWalletAddress,
			KeyID:          TestReceiverKeyID,
			PrivateKeyFile: receiverPriv,
			PublicKeyFile:  receiverPub,
		},
		Sender: config.Identity{
			WalletAddress:  TestSenderWalletAddress,
			KeyID:          TestSenderKeyID,
			PrivateKeyFile: senderPriv,
			PublicKeyFile:  senderPub,
		},
	}
}
