package acme

import "fmt"

// ProtocolViolationError indicates the CA's response broke an expected
// protocol contract: a required header was missing, a status value was
// unrecognized, or a token had an unsafe shape. It is fatal to the current
// flow and never retried automatically.
type ProtocolViolationError struct {
	// A human readable description of the broken contract.
	Reason string
}

func (e *ProtocolViolationError) Error() string {
	return fmt.Sprintf("protocol violation: %s", e.Reason)
}

// UnexpectedStatusError indicates the CA answered with an HTTP status code
// outside the defined success set for the operation. It is fatal and carries
// the offending code for diagnostics.
type UnexpectedStatusError struct {
	// The operation that received the status code.
	Op string
	// The HTTP status code the CA returned.
	Status int
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("%s: server returned unexpected status code %d", e.Op, e.Status)
}

// NoSuitableChallengeError indicates none of an authorization's challenges
// can be satisfied by this client's policy (http-01 only, single-challenge
// combinations only). It is terminal for the current CA and account
// configuration.
type NoSuitableChallengeError struct {
	// The domain of the authorization that could not be satisfied.
	Domain string
}

func (e *NoSuitableChallengeError) Error() string {
	return fmt.Sprintf("authorization for %q offered no usable %s challenge",
		e.Domain, HTTP01_CHALLENGE_TYPE)
}

// UnsupportedKeyTypeError indicates the account key can not be used to sign
// challenge proofs. Only RSA account keys are supported. This is
// a configuration error, not a protocol failure.
type UnsupportedKeyTypeError struct {
	// The Go type of the rejected key, e.g. "*ecdsa.PrivateKey".
	KeyType string
}

func (e *UnsupportedKeyTypeError) Error() string {
	return fmt.Sprintf("account key type %s is not supported, only RSA keys can sign challenge proofs", e.KeyType)
}

// ChallengeInvalidatedError indicates the CA rejected the published challenge
// response and moved the resource to the invalid status. The attempt is over;
// a caller that wants to retry must start a fresh authorization flow.
type ChallengeInvalidatedError struct {
	// The URL of the resource that became invalid.
	Location string
	// Optional detail from the CA's problem document.
	Detail string
}

func (e *ChallengeInvalidatedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("challenge for %q was invalidated by the server: %s", e.Location, e.Detail)
	}
	return fmt.Sprintf("challenge for %q was invalidated by the server", e.Location)
}
