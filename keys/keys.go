// Package keys offers utility functions for working with crypto.Signers,
// JWS, JWKs and PEM serialization.
package keys

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"

	jose "github.com/go-jose/go-jose/v4"
)

// SignatureAlgorithm returns the JWS signature algorithm matching the
// signer's key type, or "unknown" for key types with no mapping.
func SignatureAlgorithm(signer crypto.Signer) jose.SignatureAlgorithm {
	switch signer.(type) {
	case *ecdsa.PrivateKey:
		return jose.ES256
	case *rsa.PrivateKey:
		return jose.RS256
	}
	return "unknown"
}

func algForKey(signer crypto.Signer) string {
	switch signer.(type) {
	case *ecdsa.PrivateKey:
		return "ECDSA"
	case *rsa.PrivateKey:
		return "RSA"
	}
	return "unknown"
}

// JWKForSigner wraps a signer's public key in a JWK.
func JWKForSigner(signer crypto.Signer) jose.JSONWebKey {
	return jose.JSONWebKey{
		Key:       signer.Public(),
		Algorithm: algForKey(signer),
	}
}

// SignTokenClaim produces a challenge proof: a JWS over the claim
// {"token": token} with the signer's public key embedded as a JWK so the
// server can verify the proof is bound to the account key. The returned bytes
// are the full JSON serialization of the JWS; all binary fields use the
// unpadded URL-safe base64 variant the protocol requires.
func SignTokenClaim(signer crypto.Signer, token string) ([]byte, error) {
	claim := struct {
		Token string `json:"token"`
	}{
		Token: token,
	}
	payload, err := json.Marshal(&claim)
	if err != nil {
		return nil, err
	}

	signingKey := jose.SigningKey{
		Key:       signer,
		Algorithm: SignatureAlgorithm(signer),
	}

	joseSigner, err := jose.NewSigner(signingKey, &jose.SignerOptions{
		EmbedJWK: true,
	})
	if err != nil {
		return nil, err
	}

	signed, err := joseSigner.Sign(payload)
	if err != nil {
		return nil, err
	}

	return []byte(signed.FullSerialize()), nil
}

// SignerToPEM serializes a private key in PEM form.
func SignerToPEM(signer crypto.Signer) (string, error) {
	var keyBytes []byte
	var keyHeader string
	var err error
	switch k := signer.(type) {
	case *ecdsa.PrivateKey:
		keyBytes, err = x509.MarshalECPrivateKey(k)
		keyHeader = "EC PRIVATE KEY"
	case *rsa.PrivateKey:
		keyBytes = x509.MarshalPKCS1PrivateKey(k)
		keyHeader = "RSA PRIVATE KEY"
	default:
		err = fmt.Errorf("unknown key type: %T", k)
	}
	if err != nil {
		return "", err
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type:  keyHeader,
		Bytes: keyBytes,
	})
	return string(pemBytes), nil
}

// SignerFromPEM parses a private key from its PEM serialization. The first
// EC or RSA private key block found is returned.
func SignerFromPEM(data []byte) (crypto.Signer, error) {
	for block, rest := pem.Decode(data); block != nil; block, rest = pem.Decode(rest) {
		switch block.Type {
		case "EC PRIVATE KEY":
			return x509.ParseECPrivateKey(block.Bytes)
		case "RSA PRIVATE KEY":
			return x509.ParsePKCS1PrivateKey(block.Bytes)
		}
	}
	return nil, fmt.Errorf("no private key block found in PEM input")
}

// NewSigner generates a fresh private key of the named type ("ecdsa" or
// "rsa").
func NewSigner(keyType string) (crypto.Signer, error) {
	var randKey crypto.Signer
	var err error
	switch keyType {
	case "ecdsa":
		randKey, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	case "rsa":
		randKey, err = rsa.GenerateKey(rand.Reader, 2048)
	default:
		err = fmt.Errorf("unknown key type: %q", keyType)
	}
	if err != nil {
		return nil, err
	}
	return randKey, nil
}
