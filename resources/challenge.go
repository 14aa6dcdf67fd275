package resources

// The Challenge resource represents one method of proving control of an
// identifier. A challenge starts pending and transitions to valid or invalid,
// both terminal.
type Challenge struct {
	// The Type of the challenge. This client only answers "http-01".
	Type string `json:"type"`
	// The URL of the challenge, used to answer it and to poll its status.
	URI string `json:"uri"`
	// The Token used for constructing the challenge response. Tokens are
	// opaque but must match [A-Za-z0-9_-]+ to be usable.
	Token string `json:"token"`
	// The Status of the challenge.
	Status string `json:"status"`
	// The Error associated with an invalid challenge.
	Error *Problem `json:"error,omitempty"`
}

// String returns the URL of the Challenge.
func (c Challenge) String() string {
	return c.URI
}
