// Package challsrv publishes http-01 challenge responses so the CA can
// retrieve them at the protocol-mandated well-known path while validating
// a challenge.
package challsrv

import (
	"fmt"
	"log"

	"github.com/letsencrypt/challtestsrv"
)

// Config contains the options provided to New when creating a Server.
type Config struct {
	// Addresses the HTTP challenge response server listens on, e.g. ":5002".
	// At least one address is required.
	HTTPOneAddrs []string
	// An optional logger for the underlying challenge server.
	Log *log.Logger
}

// Server serves http-01 challenge response content over HTTP. It implements
// the client.Publisher interface.
type Server struct {
	srv *challtestsrv.ChallSrv
}

// New creates a Server from the given Config. The server does not listen
// until Run is called.
func New(config Config) (*Server, error) {
	if len(config.HTTPOneAddrs) == 0 {
		return nil, fmt.Errorf("HTTPOneAddrs must include at least one address")
	}

	srv, err := challtestsrv.New(challtestsrv.Config{
		HTTPOneAddrs: config.HTTPOneAddrs,
		Log:          config.Log,
	})
	if err != nil {
		return nil, err
	}

	return &Server{srv: srv}, nil
}

// Provide makes proof retrievable at the well-known challenge path for
// token. The http-01 path is keyed by token alone, so domain is not needed to
// register the response; it is part of the Publisher contract because other
// challenge mechanisms key on the domain.
func (s *Server) Provide(domain string, token string, proof []byte) error {
	s.srv.AddHTTPOneChallenge(token, string(proof))
	log.Printf("Challenge response for %q (token %q) ready", domain, token)
	return nil
}

// Remove withdraws a previously provided challenge response.
func (s *Server) Remove(domain string, token string) {
	s.srv.DeleteHTTPOneChallenge(token)
}

// Run starts the challenge response listeners. It returns immediately; the
// listeners run until Shutdown is called.
func (s *Server) Run() {
	s.srv.Run()
}

// Shutdown cleanly stops the challenge response listeners.
func (s *Server) Shutdown() {
	s.srv.Shutdown()
}
