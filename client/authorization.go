package client

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/synsa/acme"
	"github.com/synsa/acme/resources"
)

// authorizationRequest is the signed payload for creating an authorization
// for one identifier.
type authorizationRequest struct {
	Resource   string               `json:"resource"`
	Identifier resources.Identifier `json:"identifier"`
}

// RequestAuthorization asks the CA for a new authorization covering domain.
// On success the returned Authorization's ID field holds the location of the
// authorization resource, taken from the response's Location header. A
// creating response without that header is a protocol violation.
func (c *Client) RequestAuthorization(ctx context.Context, domain string) (*resources.Authorization, error) {
	req := authorizationRequest{
		Resource: acme.NEW_AUTHORIZATION_RESOURCE,
		Identifier: resources.Identifier{
			Type:  acme.DNS_IDENTIFIER_TYPE,
			Value: domain,
		},
	}

	resp, err := c.transport.Post(ctx, c.newAuthorizationURL, req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, &acme.UnexpectedStatusError{Op: "requestAuthorization", Status: resp.StatusCode}
	}

	loc := resp.Header.Get(acme.LOCATION_HEADER)
	if loc == "" {
		return nil, &acme.ProtocolViolationError{
			Reason: "new-authorization response had no Location header",
		}
	}

	var authz resources.Authorization
	if err := json.Unmarshal(resp.Body, &authz); err != nil {
		return nil, &acme.ProtocolViolationError{
			Reason: "authorization response body was not valid JSON: " + err.Error(),
		}
	}
	authz.ID = loc

	log.Printf("Created authorization for %q with ID %q", domain, authz.ID)
	return &authz, nil
}
