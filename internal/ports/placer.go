package ports

import (
	"context"

	"github.com/codeplaymaker/marketplaymaker-sub002/internal/domain"
)

// OrderPlacer submits real orders to a venue. Wallet, signing, and broker
// protocol live behind this interface; the execution core only records the
// resulting fill exactly as it records a simulated one.
type OrderPlacer interface {
	// PlaceOrder submits the order and blocks until it is filled or refused.
	PlaceOrder(ctx context.Context, order domain.Order) (domain.Fill, error)

	// CancelOrder cancels a resting order at the venue. Unknown IDs are a no-op.
	CancelOrder(ctx context.Context, id string) error
}
