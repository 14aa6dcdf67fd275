package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/synsa/acme"
	"github.com/synsa/acme/resources"
)

// polledResource is the slice of a status-bearing resource the poll loop
// cares about.
type polledResource struct {
	Status string             `json:"status"`
	Error  *resources.Problem `json:"error,omitempty"`
}

// PollUntilDecided fetches the resource at location until it reaches
// a terminal state. A valid resource returns nil; an invalid one returns
// a ChallengeInvalidatedError. While the resource stays pending the CA must
// supply a Retry-After signal and the loop suspends for at least that long
// between polls, never issuing two polls for the same location concurrently.
//
// No retry limit is imposed here. Callers wanting an overall deadline should
// supply a context with one; cancellation aborts the poll and surfaces the
// context's error.
func (c *Client) PollUntilDecided(ctx context.Context, location string) error {
	for {
		resp, err := c.transport.Get(ctx, location)
		if err != nil {
			return err
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &acme.UnexpectedStatusError{Op: "poll", Status: resp.StatusCode}
		}

		var res polledResource
		if err := json.Unmarshal(resp.Body, &res); err != nil {
			return &acme.ProtocolViolationError{
				Reason: "polled resource body was not valid JSON: " + err.Error(),
			}
		}

		switch res.Status {
		case acme.STATUS_VALID:
			log.Printf("Resource %q is valid", location)
			return nil
		case acme.STATUS_INVALID:
			invalidErr := &acme.ChallengeInvalidatedError{Location: location}
			if res.Error != nil {
				invalidErr.Detail = res.Error.Detail
			}
			return invalidErr
		case acme.STATUS_PENDING:
			wait, err := retryAfter(resp.Header, c.now())
			if err != nil {
				return err
			}
			log.Printf("Resource %q is pending, polling again in %s", location, wait)
			if err := c.sleep(ctx, wait); err != nil {
				return err
			}
		default:
			return &acme.ProtocolViolationError{
				Reason: fmt.Sprintf("polled resource had unrecognized status %q", res.Status),
			}
		}
	}
}

// retryAfter computes how long to wait before the next poll from the
// response's Retry-After header. A pending response without the header is
// a protocol violation. A purely numeric value counts seconds; anything else
// must parse as an HTTP date, whose remaining delta is used, floored at zero.
// The effective wait is always at least one second to avoid busy-polling.
func retryAfter(header http.Header, now time.Time) (time.Duration, error) {
	raw := header.Get(acme.RETRY_AFTER_HEADER)
	if raw == "" {
		return 0, &acme.ProtocolViolationError{
			Reason: "pending response had no " + acme.RETRY_AFTER_HEADER + " header",
		}
	}

	var wait time.Duration
	if secs, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		wait = time.Duration(secs) * time.Second
	} else {
		at, err := http.ParseTime(raw)
		if err != nil {
			return 0, &acme.ProtocolViolationError{
				Reason: fmt.Sprintf("%s value %q is neither seconds nor an HTTP date",
					acme.RETRY_AFTER_HEADER, raw),
			}
		}
		wait = at.Sub(now)
		if wait < 0 {
			wait = 0
		}
	}

	if wait < time.Second {
		wait = time.Second
	}
	return wait, nil
}
