package acme

import "net/http"

// Response holds the parts of a CA HTTP response the client acts on. Headers
// are case-insensitive and multi-valued per net/http conventions. Body is the
// fully read UTF-8 JSON response body.
type Response struct {
	// The HTTP status code of the response.
	StatusCode int
	// The response headers.
	Header http.Header
	// The response body.
	Body []byte
}
