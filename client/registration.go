package client

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/synsa/acme"
	"github.com/synsa/acme/resources"
)

// registrationRequest is the signed payload for creating or fetching the
// account's registration. The Resource tag distinguishes the two.
type registrationRequest struct {
	Resource  string   `json:"resource"`
	Contact   []string `json:"contact,omitempty"`
	Agreement string   `json:"agreement,omitempty"`
}

// The registration exchange is a small state machine: a Creating POST to the
// new-registration endpoint either succeeds outright or conflicts because the
// key is already registered, in which case a Fetching POST is re-issued to
// the location named by the conflict response and that reply is
// authoritative.
type registrationState int

const (
	regCreating registrationState = iota
	regFetching
)

// resource returns the resource tag for the state's request payload.
func (s registrationState) resource() string {
	if s == regFetching {
		return acme.REGISTRATION_RESOURCE
	}
	return acme.NEW_REGISTRATION_RESOURCE
}

// Register creates the account's Registration with the CA, or resolves the
// existing one when the key is already registered. Calling Register twice
// with the same key and contact is safe and yields the same logical account.
//
// The agreement argument optionally references a subscriber agreement to
// accept; pass an empty string to omit it.
func (c *Client) Register(ctx context.Context, contact []string, agreement string) (*resources.Registration, error) {
	url := c.newRegistrationURL
	state := regCreating

	for {
		req := registrationRequest{
			Resource:  state.resource(),
			Contact:   contact,
			Agreement: agreement,
		}

		resp, err := c.transport.Post(ctx, url, req)
		if err != nil {
			return nil, err
		}

		switch state {
		case regCreating:
			switch resp.StatusCode {
			case http.StatusCreated:
				log.Printf("Registered account at %q", url)
				return decodeRegistration(resp)
			case http.StatusConflict:
				loc := resp.Header.Get(acme.LOCATION_HEADER)
				if loc == "" {
					return nil, &acme.ProtocolViolationError{
						Reason: "registration conflict response had no Location header",
					}
				}
				log.Printf("Account already registered, fetching existing registration from %q", loc)
				url = loc
				state = regFetching
			default:
				return nil, &acme.UnexpectedStatusError{Op: "register", Status: resp.StatusCode}
			}
		case regFetching:
			if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
				return nil, &acme.UnexpectedStatusError{Op: "register", Status: resp.StatusCode}
			}
			reg, err := decodeRegistration(resp)
			if err != nil {
				return nil, err
			}
			if reg.ID == "" {
				// The fetch response needn't repeat the Location; the URL we
				// POSTed to is the registration's identity.
				reg.ID = url
			}
			return reg, nil
		}
	}
}

func decodeRegistration(resp *acme.Response) (*resources.Registration, error) {
	var reg resources.Registration
	if err := json.Unmarshal(resp.Body, &reg); err != nil {
		return nil, &acme.ProtocolViolationError{
			Reason: "registration response body was not valid JSON: " + err.Error(),
		}
	}
	reg.ID = resp.Header.Get(acme.LOCATION_HEADER)
	return &reg, nil
}
