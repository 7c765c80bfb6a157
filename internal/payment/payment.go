// Package payment wraps the external card-payment processor behind a small
// intent-create/retrieve contract. Processor failures surface as typed error
// kinds so the checkout workflow can match on them instead of branching on
// exceptions.
package payment

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
)

// IntentStatus values the workflow cares about. Only StatusSucceeded counts
// as a confirmed payment.
const (
	StatusSucceeded = "succeeded"
)

// ErrGatewayUnavailable indicates the processor is unreachable, timed out,
// or the client is misconfigured. Callers present a generic "payment
// temporarily unavailable" message; the underlying detail goes to logs only.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// RejectedError indicates the processor actively rejected the request (for
// example an invalid amount). Message is the processor's own description and
// is safe to surface to the user.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("payment rejected: %s", e.Message)
}

// Intent is the processor-side payment intent as seen by the storefront.
type Intent struct {
	// Reference is the processor's server-side intent id.
	Reference string
	// ClientSecret is handed to the browser to complete the card flow.
	ClientSecret string
	// Status is the processor's current view of the intent.
	Status string
}

// Confirmed reports whether the intent has been captured successfully.
func (i *Intent) Confirmed() bool {
	return i.Status == StatusSucceeded
}

// Gateway is the calling contract against the external payment processor.
// Both operations block the current request until the processor responds or
// the context deadline fires.
type Gateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*Intent, error)
	RetrieveIntent(ctx context.Context, reference string) (*Intent, error)
}
