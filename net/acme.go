// Package net provides the default signed transport for CA exchanges: it
// serializes payloads to JSON, wraps them in a JWS signed with the account
// key, manages the anti-replay nonce lifecycle, and performs the HTTP
// requests.
package net

import (
	"bytes"
	"context"
	"crypto"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"sync"

	jose "github.com/go-jose/go-jose/v4"

	"github.com/synsa/acme"
	"github.com/synsa/acme/keys"
)

const (
	version       = "0.0.1"
	userAgentBase = "synsa.acme"
	locale        = "en-us"
)

// Config contains the options provided to New when creating a SignedNet.
type Config struct {
	// The account key used to sign every POST body. Required.
	AccountKey crypto.Signer
	// The URL HEAD requests are sent to when a fresh nonce is needed and none
	// has been banked from a previous response. Required.
	NewNonceURL string
	// An optional file path to one or more PEM encoded CA certificates to use
	// as trust roots for HTTPS requests to the server.
	CABundlePath string
}

// SignedNet performs authenticated HTTP exchanges with the CA. Nonce state is
// guarded by a mutex so concurrent issuance flows can share one instance.
type SignedNet struct {
	httpClient  *http.Client
	key         crypto.Signer
	newNonceURL string

	mu    sync.Mutex
	nonce string
}

// New creates a SignedNet from the given Config.
func New(config Config) (*SignedNet, error) {
	if config.AccountKey == nil {
		return nil, fmt.Errorf("AccountKey must not be nil")
	}
	if config.NewNonceURL == "" {
		return nil, fmt.Errorf("NewNonceURL must not be empty")
	}

	var caBundle *x509.CertPool
	if config.CABundlePath != "" {
		pemBundle, err := os.ReadFile(config.CABundlePath)
		if err != nil {
			return nil, err
		}

		caBundle = x509.NewCertPool()
		caBundle.AppendCertsFromPEM(pemBundle)
	}

	return &SignedNet{
		httpClient: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					RootCAs: caBundle,
				},
			},
		},
		key:         config.AccountKey,
		newNonceURL: config.NewNonceURL,
	}, nil
}

// Post signs the JSON serialization of payload as a JWS with the account key
// and POSTs it to url. The response's status code, headers and body are
// returned; any Replay-Nonce the server includes is banked for the next
// signing operation.
func (n *SignedNet) Post(ctx context.Context, url string, payload interface{}) (*acme.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	signedBody, err := n.sign(url, body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(signedBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/jose+json")

	return n.do(req)
}

// Get fetches url without a request body.
func (n *SignedNet) Get(ctx context.Context, url string) (*acme.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	return n.do(req)
}

// sign wraps data in a JWS with the account's public key embedded as a JWK,
// a protected url header and a single-use nonce. The mutex is held for the
// whole operation so parallel flows never reuse a nonce.
func (n *SignedNet) sign(url string, data []byte) ([]byte, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	signingKey := jose.SigningKey{
		Key:       n.key,
		Algorithm: keys.SignatureAlgorithm(n.key),
	}

	signer, err := jose.NewSigner(signingKey, &jose.SignerOptions{
		NonceSource: nonceSource{n},
		EmbedJWK:    true,
		ExtraHeaders: map[jose.HeaderKey]interface{}{
			"url": url,
		},
	})
	if err != nil {
		return nil, err
	}

	signed, err := signer.Sign(data)
	if err != nil {
		return nil, err
	}

	return []byte(signed.FullSerialize()), nil
}

// nonceSource adapts SignedNet's banked nonce to the jose.NonceSource
// interface. It is only invoked while the SignedNet mutex is already held by
// sign, so it must not lock again.
type nonceSource struct {
	n *SignedNet
}

// Nonce returns the banked nonce, fetching a fresh one from the server's
// nonce endpoint when none is available. Each nonce is surrendered exactly
// once.
func (s nonceSource) Nonce() (string, error) {
	if s.n.nonce == "" {
		if err := s.n.refreshNonce(); err != nil {
			return "", err
		}
	}
	nonce := s.n.nonce
	s.n.nonce = ""
	return nonce, nil
}

// refreshNonce banks a new nonce from a HEAD request to the nonce endpoint.
func (n *SignedNet) refreshNonce() error {
	resp, err := n.httpClient.Head(n.newNonceURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	nonce := resp.Header.Get(acme.REPLAY_NONCE_HEADER)
	if nonce == "" {
		return fmt.Errorf("%q returned no %q header value",
			n.newNonceURL, acme.REPLAY_NONCE_HEADER)
	}

	n.nonce = nonce
	return nil
}

// do performs the request, reads the full body and banks any fresh nonce the
// response carries. User-Agent and Accept-Language headers are automatically
// added to the request.
func (n *SignedNet) do(req *http.Request) (*acme.Response, error) {
	ua := fmt.Sprintf("%s %s (%s; %s)",
		userAgentBase, version, runtime.GOOS, runtime.GOARCH)
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept-Language", locale)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if nonce := resp.Header.Get(acme.REPLAY_NONCE_HEADER); nonce != "" {
		n.mu.Lock()
		n.nonce = nonce
		n.mu.Unlock()
	}

	return &acme.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}
