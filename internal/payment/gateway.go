// Package payment defines the charge capability the checkout depends on.
// The processor's internals are out of scope; only this call contract matters.
package payment

import (
	"context"

	"github.com/google/uuid"
)

// ChargeResult reports the gateway's decision for one charge attempt.
type ChargeResult struct {
	Approved  bool
	Reference string
}

// Gateway charges an amount on behalf of a shopper. Implementations must
// honor ctx cancellation; the caller enforces the timeout.
type Gateway interface {
	Charge(ctx context.Context, amountCents int64, metadata map[string]string) (ChargeResult, error)
}

// DummyGateway approves every charge. Default for local runs.
type DummyGateway struct{}

func NewDummyGateway() DummyGateway {
	return DummyGateway{}
}

func (DummyGateway) Charge(ctx context.Context, amountCents int64, metadata map[string]string) (ChargeResult, error) {
	select {
	case <-ctx.Done():
		return ChargeResult{}, ctx.Err()
	default:
	}
	return ChargeResult{Approved: true, Reference: "dummy-" + uuid.NewString()}, nil
}
