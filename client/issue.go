package client

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"
)

// Issue proves control of domain to the CA by driving one full authorization
// flow: request an authorization, pick a challenge, sign and publish the
// proof, answer the challenge, and poll until the CA decides. The steps are
// strictly sequential; each depends on the previous one's result. Cancelling
// ctx aborts the flow at the next suspension point with no CA-side cleanup
// required, since authorizations expire naturally on the server.
func (c *Client) Issue(ctx context.Context, domain string) error {
	if c.publisher == nil {
		return fmt.Errorf("issue: client has no Publisher configured")
	}

	authz, err := c.RequestAuthorization(ctx, domain)
	if err != nil {
		return err
	}

	chall, err := c.SelectChallenge(authz)
	if err != nil {
		return err
	}

	proof, err := c.SignChallenge(chall.Token)
	if err != nil {
		return err
	}

	// The proof must be retrievable by the CA before the challenge is
	// answered, or validation can race the publisher.
	if err := c.publisher.Provide(domain, chall.Token, proof); err != nil {
		return err
	}

	if _, err := c.SubmitChallenge(ctx, chall.URI, chall, proof); err != nil {
		return err
	}

	if err := c.PollUntilDecided(ctx, authz.ID); err != nil {
		return err
	}

	log.Printf("Authorization for %q is valid", domain)
	return nil
}

// IssueMissing runs Issue concurrently for every domain that does not already
// hold a valid certificate in the store. Each domain is an independent flow;
// they share only the read-only account key and the Transport. The first
// failure cancels the remaining flows and is returned.
func (c *Client) IssueMissing(ctx context.Context, domains []string) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, domain := range domains {
		if c.HasValidCertificate(domain) {
			log.Printf("Skipping %q, certificate on disk is still valid", domain)
			continue
		}
		domain := domain
		g.Go(func() error {
			return c.Issue(ctx, domain)
		})
	}

	return g.Wait()
}
