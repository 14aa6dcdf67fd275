package net

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/stretchr/testify/require"

	"github.com/synsa/acme"
)

func testSigner(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func TestNewConfigValidation(t *testing.T) {
	key := testSigner(t)

	_, err := New(Config{NewNonceURL: "https://ca.example.com/nonce"})
	require.Error(t, err)

	_, err = New(Config{AccountKey: key})
	require.Error(t, err)

	n, err := New(Config{AccountKey: key, NewNonceURL: "https://ca.example.com/nonce"})
	require.NoError(t, err)
	require.NotNil(t, n)
}

func TestPostSignsPayload(t *testing.T) {
	key := testSigner(t)

	nonceCount := 0
	var received struct {
		body   []byte
		header http.Header
		nonce  string
		url    string
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/nonce", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodHead, r.Method)
		nonceCount++
		w.Header().Set(acme.REPLAY_NONCE_HEADER, fmt.Sprintf("head-nonce-%d", nonceCount))
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/resource", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/jose+json", r.Header.Get("Content-Type"))

		var raw json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))

		jws, err := jose.ParseSigned(string(raw), []jose.SignatureAlgorithm{jose.RS256})
		require.NoError(t, err)

		payload, err := jws.Verify(key.Public())
		require.NoError(t, err)
		received.body = payload
		received.header = r.Header.Clone()
		received.nonce = jws.Signatures[0].Header.Nonce
		if u, ok := jws.Signatures[0].Header.ExtraHeaders[jose.HeaderKey("url")]; ok {
			received.url = u.(string)
		}

		w.Header().Set(acme.REPLAY_NONCE_HEADER, "response-nonce-1")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"ok":true}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	n, err := New(Config{
		AccountKey:  key,
		NewNonceURL: server.URL + "/nonce",
	})
	require.NoError(t, err)

	payload := struct {
		Resource string `json:"resource"`
	}{
		Resource: acme.NEW_REGISTRATION_RESOURCE,
	}
	resp, err := n.Post(context.Background(), server.URL+"/resource", payload)
	require.NoError(t, err)

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.JSONEq(t, `{"ok":true}`, string(resp.Body))
	require.JSONEq(t, `{"resource":"new-registration"}`, string(received.body))
	require.Equal(t, "head-nonce-1", received.nonce)
	require.Equal(t, server.URL+"/resource", received.url)
	require.Contains(t, received.header.Get("User-Agent"), userAgentBase)

	// The nonce from the POST response was banked: the next signing operation
	// uses it instead of HEADing the nonce endpoint again.
	_, err = n.Post(context.Background(), server.URL+"/resource", payload)
	require.NoError(t, err)
	require.Equal(t, "response-nonce-1", received.nonce)
	require.Equal(t, 1, nonceCount)
}

func TestGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		w.Header().Set(acme.RETRY_AFTER_HEADER, "5")
		w.WriteHeader(http.StatusAccepted)
		fmt.Fprint(w, `{"status":"pending"}`)
	}))
	defer server.Close()

	n, err := New(Config{
		AccountKey:  testSigner(t),
		NewNonceURL: server.URL + "/nonce",
	})
	require.NoError(t, err)

	resp, err := n.Get(context.Background(), server.URL+"/authz/1")
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Equal(t, "5", resp.Header.Get(acme.RETRY_AFTER_HEADER))
	require.JSONEq(t, `{"status":"pending"}`, string(resp.Body))
}

func TestPostContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(acme.REPLAY_NONCE_HEADER, "nonce")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n, err := New(Config{
		AccountKey:  testSigner(t),
		NewNonceURL: server.URL + "/nonce",
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = n.Post(ctx, server.URL+"/resource", struct{}{})
	require.Error(t, err)
}

var _ interface {
	Post(ctx context.Context, url string, payload interface{}) (*acme.Response, error)
	Get(ctx context.Context, url string) (*acme.Response, error)
} = (*SignedNet)(nil)
