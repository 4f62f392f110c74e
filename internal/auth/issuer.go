package auth

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kashguard/go-payment-intents/internal/metrics"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const DefaultTokenTTL = time.Hour

var ErrTokenIssuanceFailed = errors.New("token issuance failed")

// AssertionClaims are the claims carried by a client assertion.
type AssertionClaims struct {
	jwt.RegisteredClaims
	Role Role `json:"role"`
}

// SignedAssertion is a compact JWS plus the values that went into it.
type SignedAssertion struct {
	Token     string
	Issuer    string
	Subject   string
	KeyID     string
	Role      Role
	Algorithm string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issuer mints short-lived client assertions signed by one of the loaded
// identities. It is safe for concurrent use.
type Issuer struct {
	identities *Identities
	clock      time2.Clock
	ttl        time.Duration
	metrics    *metrics.Metrics
}

func NewIssuer(identities *Identities, clock time2.Clock, ttl time.Duration, m *metrics.Metrics) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Issuer{
		identities: identities,
		clock:      clock,
		ttl:        ttl,
		metrics:    m,
	}
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs an assertion for role. An empty keyID uses the identity's
// configured key id.
func (i *Issuer) Issue(role Role, keyID string) (*SignedAssertion, error) {
	assertion, err := i.issue(role, keyID)
	if err != nil {
		i.metrics.TokenIssued(string(role), "error")
		return nil, err
	}

	i.metrics.TokenIssued(string(role), "ok")
	return assertion, nil
}

func (i *Issuer) issue(role Role, keyID string) (*SignedAssertion, error) {
	identity, err := i.identities.Identity(role)
	if err != nil {
		return nil, err
	}

	if keyID == "" {
		keyID = identity.KeyID
	}

	method, err := SigningMethodFor(identity.PrivateKey)
	if err != nil {
		return nil, errors.Wrapf(ErrTokenIssuanceFailed, "%s identity: %v", role, err)
	}

	now := i.clock.Now().UTC().Truncate(time.Second)
	expiresAt := now.Add(i.ttl)

	issuer := identity.WalletAddress
	if issuer == "" {
		issuer = string(role)
	}

	claims := AssertionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   keyID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
		Role: role,
	}

	token := jwt.NewWithClaims(method, claims)
	token.Header["kid"] = keyID

	signed, err := token.SignedString(identity.PrivateKey)
	if err != nil {
		log.Error().Err(err).Str("role", string(role)).Str("key_id", keyID).Msg("Failed to sign client assertion")
		return nil, errors.Wrapf(ErrTokenIssuanceFailed, "sign %s assertion: %v", role, err)
	}

	return &SignedAssertion{
		Token:     signed,
		Issuer:    issuer,
		Subject:   keyID,
		KeyID:     keyID,
		Role:      role,
		Algorithm: method.Alg(),
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify parses token against the public key of role. Used by tests and the
// CLI to check what was issued.
func (i *Issuer) Verify(role Role, token string) (*AssertionClaims, error) {
	identity, err := i.identities.Identity(role)
	if err != nil {
		return nil, err
	}

	method, err := SigningMethodFor(identity.PrivateKey)
	if err != nil {
		return nil, err
	}

	claims := &AssertionClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return identity.PublicKey, nil
	}, jwt.WithValidMethods([]string{method.Alg()}), jwt.WithTimeFunc(i.clock.Now))
	if err != nil {
		return nil, errors.Wrap(err, "failed to verify assertion")
	}

	return claims, nil
}

// SigningMethodFor picks the JWS algorithm matching the key type.
func SigningMethodFor(key crypto.Signer) (jwt.SigningMethod, error) {
	switch k := key.(type) {
	case ed25519.PrivateKey:
		return jwt.SigningMethodEdDSA, nil
	case *ecdsa.PrivateKey:
		switch k.Curve {
		case elliptic.P256():
			return jwt.SigningMethodES256, nil
		case elliptic.P384():
			return jwt.SigningMethodES384, nil
		case elliptic.P521():
			return jwt.SigningMethodES512, nil
		default:
			return nil, fmt.Errorf("unsupported curve %s", k.Curve.Params().Name)
		}
	case *rsa.PrivateKey:
		return jwt.SigningMethodRS256, nil
	default:
		return nil, fmt.Errorf("unsupported key type %T", key)
	}
}
