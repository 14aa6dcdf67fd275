package client

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"

	"github.com/synsa/acme"
	"github.com/synsa/acme/keys"
	"github.com/synsa/acme/resources"
)

// Challenge tokens end up embedded in the published proof artifact, so only
// this safe alphabet is accepted.
var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// challengeAnswer is the signed payload answering a challenge at its URL. The
// Authorization field carries the serialized challenge proof.
type challengeAnswer struct {
	Resource      string          `json:"resource"`
	Type          string          `json:"type"`
	Token         string          `json:"token"`
	Authorization json.RawMessage `json:"authorization"`
}

// SelectChallenge picks the challenge this client will answer for the given
// authorization. Only http-01 challenges are supported, and a candidate is
// only usable when the authorization's combinations allow it to satisfy the
// authorization by itself. The first qualifying challenge in the
// authorization's original order wins; this is a deterministic tie-break, not
// a ranking. When nothing qualifies a NoSuitableChallengeError is returned.
func (c *Client) SelectChallenge(authz *resources.Authorization) (*resources.Challenge, error) {
	for i := range authz.Challenges {
		chall := &authz.Challenges[i]
		if chall.Type != acme.HTTP01_CHALLENGE_TYPE {
			continue
		}
		if !satisfiableAlone(authz.Combinations, i) {
			continue
		}
		return chall, nil
	}
	return nil, &acme.NoSuitableChallengeError{Domain: authz.Identifier.Value}
}

// satisfiableAlone reports whether the challenge at index idx satisfies the
// authorization on its own. An authorization without combinations accepts
// every challenge individually; otherwise some combination must consist of
// exactly that single index.
func satisfiableAlone(combinations [][]int, idx int) bool {
	if len(combinations) == 0 {
		return true
	}
	for _, combo := range combinations {
		if len(combo) == 1 && combo[0] == idx {
			return true
		}
	}
	return false
}

// SignChallenge produces the proof binding the challenge token to the account
// key: a JWS over the token claim with the RSA public key parameters
// embedded. The token must match the safe alphabet before any signing
// happens, and only RSA account keys are supported.
func (c *Client) SignChallenge(token string) ([]byte, error) {
	if !tokenPattern.MatchString(token) {
		return nil, &acme.ProtocolViolationError{
			Reason: fmt.Sprintf("challenge token %q is not of the form [A-Za-z0-9_-]+", token),
		}
	}

	if _, ok := c.key.(*rsa.PrivateKey); !ok {
		return nil, &acme.UnsupportedKeyTypeError{KeyType: fmt.Sprintf("%T", c.key)}
	}

	return keys.SignTokenClaim(c.key, token)
}

// SubmitChallenge answers the challenge at location by posting its type,
// token and the signed proof. On success the updated challenge resource from
// the CA's reply is returned, typically still pending while the CA validates
// it.
func (c *Client) SubmitChallenge(ctx context.Context, location string, chall *resources.Challenge, proof []byte) (*resources.Challenge, error) {
	req := challengeAnswer{
		Resource:      acme.AUTHORIZATION_RESOURCE,
		Type:          chall.Type,
		Token:         chall.Token,
		Authorization: json.RawMessage(proof),
	}

	resp, err := c.transport.Post(ctx, location, req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return nil, &acme.UnexpectedStatusError{Op: "submitChallenge", Status: resp.StatusCode}
	}

	updated := *chall
	if err := json.Unmarshal(resp.Body, &updated); err != nil {
		return nil, &acme.ProtocolViolationError{
			Reason: "challenge response body was not valid JSON: " + err.Error(),
		}
	}

	log.Printf("Answered %q challenge at %q", chall.Type, location)
	return &updated, nil
}
