package resources

// The Identifier resource names the subject an authorization covers. This
// client only requests "dns" type identifiers holding a fully qualified
// domain name.
type Identifier struct {
	// The Type of the Identifier value.
	Type string `json:"type"`
	// The Identifier value.
	Value string `json:"value"`
}

// The Authorization resource represents the CA's proof-of-control record for
// one identifier. It carries the challenges the client may answer and,
// optionally, which subsets of them the CA will accept.
//
// Authorizations are ephemeral: the client fetches one, consumes it within
// a single issuance attempt, and never caches it across attempts.
type Authorization struct {
	// The server-assigned URL identifying the Authorization. Populated from the
	// Location header of the creating response.
	ID string `json:"-"`
	// The status of the authorization: "pending", "valid" or "invalid".
	Status string `json:"status"`
	// The identifier the account is being authorized for.
	Identifier Identifier `json:"identifier"`
	// The challenges the client can fulfill to prove control of the
	// identifier.
	Challenges []Challenge `json:"challenges"`
	// Optional sets of indices into Challenges. Each set names a subset of
	// challenges that together satisfy the authorization. When absent every
	// challenge is individually satisfiable.
	Combinations [][]int `json:"combinations,omitempty"`
	// A string representing an RFC 3339 date at which time the Authorization
	// is considered expired by the server.
	Expires string `json:"expires,omitempty"`
}

// String returns the Authorization's server-assigned ID.
func (a Authorization) String() string {
	return a.ID
}
