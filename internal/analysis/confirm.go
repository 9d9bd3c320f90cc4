package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/wyli/fundwatch/internal/models"
)

// Confirmation error taxonomy. A failed confirmation never mutates the
// operation; callers may retry once the NAV publishes.
var (
	// ErrNotPending means the operation already has confirmed shares or is
	// not an entry operation.
	ErrNotPending = errors.New("operation is not pending confirmation")

	// ErrNotEligible means the operation's date has not passed yet; its NAV
	// cannot have been published.
	ErrNotEligible = errors.New("operation is not yet eligible for confirmation")

	// ErrPriceUnavailable means no usable published price was found for the
	// operation's date.
	ErrPriceUnavailable = errors.New("no published price available")
)

// PriceLookup resolves the published NAV for a fund on or before a date.
// Implementations return the nearest available point at or before the
// requested date, reporting which date was actually used.
type PriceLookup interface {
	LookupNAV(ctx context.Context, fundCode, date string) (models.PricePoint, error)
}

// PriceLookupFunc adapts a function to the PriceLookup interface.
type PriceLookupFunc func(ctx context.Context, fundCode, date string) (models.PricePoint, error)

// LookupNAV calls f.
func (f PriceLookupFunc) LookupNAV(ctx context.Context, fundCode, date string) (models.PricePoint, error) {
	return f(ctx, fundCode, date)
}

// Confirm resolves a pending operation's share count from its published NAV:
// shares = amount / price, rounded to 2 decimals. The returned operation
// carries the resolved shares, price, and the NAV date actually used; the
// input operation is never modified. Returns ErrNotPending, ErrNotEligible,
// or ErrPriceUnavailable on failure.
func Confirm(ctx context.Context, op models.Operation, lookup PriceLookup, now time.Time) (models.Operation, error) {
	if !op.Pending() {
		return op, ErrNotPending
	}
	if !op.ConfirmableAt(now) {
		return op, ErrNotEligible
	}

	point, err := lookup.LookupNAV(ctx, op.FundCode, op.Date)
	if err != nil {
		return op, fmt.Errorf("%w: %v", ErrPriceUnavailable, err)
	}
	if point.Price <= 0 {
		return op, ErrPriceUnavailable
	}

	confirmed := op
	confirmed.Shares = math.Round(op.Amount/point.Price*100) / 100
	confirmed.Price = point.Price
	confirmed.PriceDate = point.Date
	confirmed.UpdatedAt = now

	return confirmed, nil
}

// NearestBefore looks up the price point with the greatest date that is at or
// before the requested date within an ascending-sorted history. This is the
// lookup policy used for confirmation: a NAV published earlier than the
// operation date is valid for it, one published later never is.
func NearestBefore(history []models.PricePoint, date string) (models.PricePoint, bool) {
	var best models.PricePoint
	found := false
	for _, p := range history {
		if p.Date > date {
			break
		}
		best = p
		found = true
	}
	return best, found
}
