// Package client implements the orchestration core of the issuance protocol:
// it registers the account, drives an authorization through the
// challenge/response exchange, polls until the CA decides, and inspects
// locally stored certificates for validity.
//
// The heavy lifting at the edges is delegated to collaborators: a Transport
// performs signed HTTP exchanges with the CA, a Publisher makes challenge
// responses retrievable at the protocol-mandated location, and
// a CertificateStore resolves domains to certificate files. The Client itself
// holds no mutable state between calls, so independent issuance flows for
// different domains may run concurrently over the same Client.
package client

import (
	"context"
	"crypto"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/synsa/acme"
)

// Transport performs authenticated exchanges with the CA. Post must sign the
// JSON serialization of payload with the account key before sending; Get
// fetches a resource without a body. Implementations must be safe for
// concurrent use, including serializing any anti-replay nonce handling.
// The net package provides the default implementation.
type Transport interface {
	Post(ctx context.Context, url string, payload interface{}) (*acme.Response, error)
	Get(ctx context.Context, url string) (*acme.Response, error)
}

// Publisher makes a signed challenge proof retrievable by the CA at the
// protocol-defined location for the domain before the challenge is answered.
// The challsrv package provides the default implementation.
type Publisher interface {
	Provide(domain string, token string, proof []byte) error
}

// CertificateStore resolves a domain to the file path its certificate
// material lives at and reads files from such paths. The store is only ever
// read by the client. The store package provides the default implementation.
type CertificateStore interface {
	PathFor(domain string) string
	ReadFile(path string) ([]byte, error)
}

// Client drives issuance flows against one CA on behalf of one account key.
type Client struct {
	newRegistrationURL  string
	newAuthorizationURL string
	transport           Transport
	publisher           Publisher
	store               CertificateStore
	key                 crypto.Signer

	// Overridable in tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Config contains the options provided to New when creating a Client.
type Config struct {
	// The URL of the CA's new-registration endpoint. Required.
	NewRegistrationURL string
	// The URL of the CA's new-authorization endpoint. Required.
	NewAuthorizationURL string
	// The Transport used for all CA exchanges. Required.
	Transport Transport
	// The Publisher used to expose challenge proofs. Required for Issue.
	Publisher Publisher
	// The CertificateStore consulted by HasValidCertificate and IssueMissing.
	Store CertificateStore
	// The account key. Borrowed, never mutated. Challenge proofs are bound to
	// it, so it must be the same key the Transport signs with. Required.
	AccountKey crypto.Signer
}

// normalize validates a Config.
func (conf *Config) normalize() error {
	// Clean up any junk whitespace that might have snuck in
	conf.NewRegistrationURL = strings.TrimSpace(conf.NewRegistrationURL)
	conf.NewAuthorizationURL = strings.TrimSpace(conf.NewAuthorizationURL)

	if conf.NewRegistrationURL == "" {
		return fmt.Errorf("NewRegistrationURL must not be empty")
	}
	if _, err := url.Parse(conf.NewRegistrationURL); err != nil {
		return fmt.Errorf("NewRegistrationURL invalid: %s", err.Error())
	}

	if conf.NewAuthorizationURL == "" {
		return fmt.Errorf("NewAuthorizationURL must not be empty")
	}
	if _, err := url.Parse(conf.NewAuthorizationURL); err != nil {
		return fmt.Errorf("NewAuthorizationURL invalid: %s", err.Error())
	}

	if conf.Transport == nil {
		return fmt.Errorf("Transport must not be nil")
	}
	if conf.AccountKey == nil {
		return fmt.Errorf("AccountKey must not be nil")
	}

	return nil
}

// New creates a Client from the given Config. If the config is not valid an
// error is returned along with a nil Client.
func New(config Config) (*Client, error) {
	if err := config.normalize(); err != nil {
		return nil, err
	}

	return &Client{
		newRegistrationURL:  config.NewRegistrationURL,
		newAuthorizationURL: config.NewAuthorizationURL,
		transport:           config.Transport,
		publisher:           config.Publisher,
		store:               config.Store,
		key:                 config.AccountKey,
		now:                 time.Now,
		sleep:               sleepContext,
	}, nil
}

// sleepContext suspends the calling goroutine for d without blocking
// unrelated work. It returns early with the context's error if the context is
// cancelled first.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
