// Package acme provides protocol constants, resource error types and the
// transport response value shared by the issuance client packages.
package acme

const (
	// Resource tags included in signed request payloads. The CA dispatches on
	// these values so they must match the protocol version it speaks.

	// The resource tag for creating a registration.
	NEW_REGISTRATION_RESOURCE = "new-registration"
	// The resource tag for fetching or updating an existing registration.
	REGISTRATION_RESOURCE = "registration"
	// The resource tag for creating an authorization.
	NEW_AUTHORIZATION_RESOURCE = "new-authorization"
	// The resource tag for authorization updates, including challenge answers.
	AUTHORIZATION_RESOURCE = "authorization"

	// The identifier type for domain names. This client only authorizes DNS
	// identifiers.
	DNS_IDENTIFIER_TYPE = "dns"

	// The challenge type for HTTP based domain-control validation. This is the
	// only challenge type the client can solve.
	HTTP01_CHALLENGE_TYPE = "http-01"

	// Status values shared by authorizations and challenges. Pending resources
	// may transition to valid or invalid; both of those are terminal.
	STATUS_PENDING = "pending"
	STATUS_VALID   = "valid"
	STATUS_INVALID = "invalid"

	// The HTTP response header carrying the URL of a created or conflicting
	// resource.
	LOCATION_HEADER = "Location"
	// The HTTP response header hinting how long to wait before re-polling
	// a pending resource.
	RETRY_AFTER_HEADER = "Retry-After"
	// The HTTP response header used by the CA to communicate a fresh nonce.
	REPLAY_NONCE_HEADER = "Replay-Nonce"
)
