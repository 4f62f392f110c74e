package auth

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"strings"

	"github.com/kashguard/go-payment-intents/internal/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Role is the party a signing identity acts for.
type Role string

const (
	RoleReceiver Role = "receiver"
	RoleSender   Role = "sender"
)

var Roles = []Role{RoleReceiver, RoleSender}

var (
	// ErrMissingCredential is fatal at startup: nothing can run without both identities.
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrUnknownRole       = errors.New("unknown role")
)

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleReceiver:
		return RoleReceiver, nil
	case RoleSender:
		return RoleSender, nil
	default:
		return "", errors.Wrapf(ErrUnknownRole, "role %q", s)
	}
}

// SigningIdentity is immutable after loading.
type SigningIdentity struct {
	Role          Role
	PrivateKey    crypto.Signer
	PublicKey     crypto.PublicKey
	KeyID         string
	WalletAddress string
}

// Identities holds both signing identities for the lifetime of the process.
type Identities struct {
	byRole        map[Role]*SigningIdentity
	publicKeyFile map[Role]bool
}

// LoadIdentities reads the receiver and sender key material. Any missing or
// unreadable private key file fails with ErrMissingCredential.
func LoadIdentities(cfg config.Credentials) (*Identities, error) {
	ids := &Identities{
		byRole:        make(map[Role]*SigningIdentity, len(Roles)),
		publicKeyFile: make(map[Role]bool, len(Roles)),
	}

	for _, role := range Roles {
		icfg := identityConfig(cfg, role)

		identity, err := loadIdentity(role, icfg)
		if err != nil {
			return nil, err
		}

		ids.byRole[role] = identity
		ids.publicKeyFile[role] = icfg.PublicKeyFile != ""

		log.Info().
			Str("role", string(role)).
			Str("key_id", identity.KeyID).
			Str("wallet_address", identity.WalletAddress).
			Msg("Loaded signing identity")
	}

	return ids, nil
}

// Identity returns the identity loaded for role.
func (ids *Identities) Identity(role Role) (*SigningIdentity, error) {
	identity, ok := ids.byRole[role]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownRole, "role %q", role)
	}
	return identity, nil
}

// CredentialStatus reports what was loaded for one role.
type CredentialStatus struct {
	PrivateKey    bool `json:"privateKey"`
	PublicKeyFile bool `json:"publicKeyFile"`
	KeyID         bool `json:"keyId"`
	WalletAddress bool `json:"walletAddress"`
}

func (ids *Identities) Status() map[Role]CredentialStatus {
	res := make(map[Role]CredentialStatus, len(Roles))
	for _, role := range Roles {
		identity := ids.byRole[role]
		if identity == nil {
			res[role] = CredentialStatus{}
			continue
		}
		res[role] = CredentialStatus{
			PrivateKey:    identity.PrivateKey != nil,
			PublicKeyFile: ids.publicKeyFile[role],
			KeyID:         identity.KeyID != "",
			WalletAddress: identity.WalletAddress != "",
		}
	}
	return res
}

func identityConfig(cfg config.Credentials, role Role) config.Identity {
	if role == RoleSender {
		return cfg.Sender
	}
	return cfg.Receiver
}

func loadIdentity(role Role, cfg config.Identity) (*SigningIdentity, error) {
	if cfg.PrivateKeyFile == "" {
		return nil, errors.Wrapf(ErrMissingCredential, "no private key path configured for %s", role)
	}

	data, err := readCredentialFile(cfg.PrivateKeyFile)
	if err != nil {
		return nil, errors.Wrapf(ErrMissingCredential, "%s private key %s: %v", role, cfg.PrivateKeyFile, err)
	}

	signer, err := ParsePrivateKeyPEM(data)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidCredential, "%s private key %s: %v", role, cfg.PrivateKeyFile, err)
	}

	pub := signer.Public()
	if cfg.PublicKeyFile != "" {
		data, err := readCredentialFile(cfg.PublicKeyFile)
		if err != nil {
			return nil, errors.Wrapf(ErrMissingCredential, "%s public key %s: %v", role, cfg.PublicKeyFile, err)
		}

		filePub, err := ParsePublicKeyPEM(data)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidCredential, "%s public key %s: %v", role, cfg.PublicKeyFile, err)
		}

		if !publicKeysEqual(pub, filePub) {
			return nil, errors.Wrapf(ErrInvalidCredential, "%s public key does not match private key", role)
		}
	}

	keyID := cfg.KeyID
	if keyID == "" {
		keyID = string(role) + "-key"
	}

	return &SigningIdentity{
		Role:          role,
		PrivateKey:    signer,
		PublicKey:     pub,
		KeyID:         keyID,
		WalletAddress: cfg.WalletAddress,
	}, nil
}

func readCredentialFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return os.ReadFile(path)
}

// ParsePrivateKeyPEM accepts PKCS#8, SEC1 EC and PKCS#1 RSA blocks, or a raw
// base64 Ed25519 seed/key as used by some wallet tooling.
func ParsePrivateKeyPEM(data []byte) (crypto.Signer, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return parseRawEd25519(data)
	}

	switch block.Type {
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		signer, ok := key.(crypto.Signer)
		if !ok {
			return nil, fmt.Errorf("unsupported PKCS#8 key type %T", key)
		}
		return signer, nil
	case "EC PRIVATE KEY":
		return x509.ParseECPrivateKey(block.Bytes)
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	default:
		return nil, fmt.Errorf("unsupported PEM block %q", block.Type)
	}
}

func ParsePublicKeyPEM(data []byte) (crypto.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("no PEM block found")
	}

	switch block.Type {
	case "PUBLIC KEY":
		return x509.ParsePKIXPublicKey(block.Bytes)
	case "RSA PUBLIC KEY":
		return x509.ParsePKCS1PublicKey(block.Bytes)
	default:
		return nil, fmt.Errorf("unsupported PEM block %q", block.Type)
	}
}

func parseRawEd25519(data []byte) (crypto.Signer, error) {
	raw, err := decodeBase64(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, errors.New("no PEM block found")
	}

	switch len(raw) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(raw), nil
	default:
		return nil, fmt.Errorf("unexpected raw key length %d", len(raw))
	}
}

func publicKeysEqual(a, b crypto.PublicKey) bool {
	switch k := a.(type) {
	case ed25519.PublicKey:
		return k.Equal(b)
	case *ecdsa.PublicKey:
		return k.Equal(b)
	case *rsa.PublicKey:
		return k.Equal(b)
	default:
		return false
	}
}
