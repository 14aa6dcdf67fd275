// Package resources defines the CA resource types exchanged during an
// issuance flow.
package resources

// The Registration resource represents the account record the CA holds for
// one account key. It is created once per key; subsequent creation attempts
// conflict and resolve to the same logical record via the CA-provided
// location.
type Registration struct {
	// The server-assigned URL identifying the Registration. Populated from the
	// Location header of the creating (or conflicting) response.
	ID string `json:"-"`
	// Contact addresses for the account, e.g. "mailto:admin@example.com".
	Contact []string `json:"contact,omitempty"`
	// An optional URL of the subscriber agreement the account accepted.
	Agreement string `json:"agreement,omitempty"`
}

// String returns the Registration's server-assigned ID.
func (r Registration) String() string {
	return r.ID
}
