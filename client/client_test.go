package client

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/synsa/acme"
)

var (
	testKeyOnce sync.Once
	testKey     *rsa.PrivateKey
	testKeyErr  error
)

// accountKey returns a process-wide RSA key so tests don't pay for repeated
// key generation.
func accountKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	testKeyOnce.Do(func() {
		testKey, testKeyErr = rsa.GenerateKey(rand.Reader, 2048)
	})
	require.NoError(t, testKeyErr)
	return testKey
}

// recordedCall captures one transport exchange for later assertions.
type recordedCall struct {
	Method  string
	URL     string
	Payload interface{}
}

// fakeTransport replays a scripted list of responses and records every call.
type fakeTransport struct {
	t         *testing.T
	responses []*acme.Response
	calls     []recordedCall
}

func (f *fakeTransport) Post(_ context.Context, url string, payload interface{}) (*acme.Response, error) {
	return f.next("POST", url, payload)
}

func (f *fakeTransport) Get(_ context.Context, url string) (*acme.Response, error) {
	return f.next("GET", url, nil)
}

func (f *fakeTransport) next(method, url string, payload interface{}) (*acme.Response, error) {
	f.t.Helper()
	f.calls = append(f.calls, recordedCall{Method: method, URL: url, Payload: payload})
	require.NotEmpty(f.t, f.responses, "transport script exhausted by %s %s", method, url)
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

// respond builds a scripted response.
func respond(status int, body string, headers map[string]string) *acme.Response {
	h := http.Header{}
	for k, v := range headers {
		h.Set(k, v)
	}
	return &acme.Response{
		StatusCode: status,
		Header:     h,
		Body:       []byte(body),
	}
}

// newTestClient builds a Client over the given transport with a fixed clock
// and an instant, recording sleep. The recorded sleep durations are returned
// for assertion.
func newTestClient(t *testing.T, transport Transport) (*Client, *[]time.Duration) {
	t.Helper()
	c, err := New(Config{
		NewRegistrationURL:  "https://ca.example.com/new-registration",
		NewAuthorizationURL: "https://ca.example.com/new-authorization",
		Transport:           transport,
		AccountKey:          accountKey(t),
	})
	require.NoError(t, err)

	slept := &[]time.Duration{}
	c.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	c.sleep = func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
	return c, slept
}

func TestNewConfigValidation(t *testing.T) {
	transport := &fakeTransport{t: t}
	key := accountKey(t)

	testCases := []struct {
		Name   string
		Config Config
	}{
		{
			Name: "missing new-registration URL",
			Config: Config{
				NewAuthorizationURL: "https://ca.example.com/new-authorization",
				Transport:           transport,
				AccountKey:          key,
			},
		},
		{
			Name: "missing new-authorization URL",
			Config: Config{
				NewRegistrationURL: "https://ca.example.com/new-registration",
				Transport:          transport,
				AccountKey:         key,
			},
		},
		{
			Name: "missing transport",
			Config: Config{
				NewRegistrationURL:  "https://ca.example.com/new-registration",
				NewAuthorizationURL: "https://ca.example.com/new-authorization",
				AccountKey:          key,
			},
		},
		{
			Name: "missing account key",
			Config: Config{
				NewRegistrationURL:  "https://ca.example.com/new-registration",
				NewAuthorizationURL: "https://ca.example.com/new-authorization",
				Transport:           transport,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			_, err := New(tc.Config)
			require.Error(t, err)
		})
	}
}

func TestNewTrimsURLs(t *testing.T) {
	c, err := New(Config{
		NewRegistrationURL:  "  https://ca.example.com/new-registration\n",
		NewAuthorizationURL: "\thttps://ca.example.com/new-authorization ",
		Transport:           &fakeTransport{t: t},
		AccountKey:          accountKey(t),
	})
	require.NoError(t, err)
	require.Equal(t, "https://ca.example.com/new-registration", c.newRegistrationURL)
	require.Equal(t, "https://ca.example.com/new-authorization", c.newAuthorizationURL)
}
