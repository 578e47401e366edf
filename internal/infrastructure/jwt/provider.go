package jwtinfra

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ainager-onboarding/internal/pkg/clock"
	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer  = "ainager-onboarding"
	purpose = "tenant_create"
)

// Claims is the onboarding ticket payload. Subject holds the verified email.
type Claims struct {
	Domain  string `json:"domain"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Provider signs and verifies RS256 onboarding tickets.
type Provider struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	expiry     time.Duration
	clock      clock.Clock
}

// LoadProvider reads PEM encoded RSA keys from disk.
func LoadProvider(privateKeyPath, publicKeyPath string, expiry time.Duration, c clock.Clock) (*Provider, error) {
	privBytes, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	pubBytes, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	return NewProvider(privKey, pubKey, expiry, c), nil
}

func NewProvider(priv *rsa.PrivateKey, pub *rsa.PublicKey, expiry time.Duration, c clock.Clock) *Provider {
	return &Provider{privateKey: priv, publicKey: pub, expiry: expiry, clock: c}
}

// Sign issues a ticket proving email passed verification for domain.
func (p *Provider) Sign(email, domain string) (string, error) {
	now := p.clock.Now()
	claims := Claims{
		Domain:  domain,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(p.privateKey)
}

// Verify parses tokenStr and returns the verified email.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.publicKey, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(p.clock.Now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Purpose != purpose || claims.Subject == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
