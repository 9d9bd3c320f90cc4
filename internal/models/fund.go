// Package models defines data structures for Fundwatch
package models

import (
	"time"
)

// DateLayout is the calendar-date format used for NAV and operation dates.
const DateLayout = "2006-01-02"

// Fund identifies a tracked mutual fund.
type Fund struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	AddedAt   time.Time `json:"added_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PricePoint is a single published NAV observation.
type PricePoint struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Price float64 `json:"price"`
}

// FundEstimate is the intraday live valuation of a fund, published between
// NAV releases. Estimate is the live per-unit value, NAV the last official one.
type FundEstimate struct {
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	NAV          float64   `json:"nav"`
	NAVDate      string    `json:"nav_date"`
	Estimate     float64   `json:"estimate"`
	EstimatePct  float64   `json:"estimate_pct"` // estimated day change %
	EstimateTime time.Time `json:"estimate_time"`
}

// CurrentPrice returns the live estimate when available, falling back to the
// last published NAV.
func (e *FundEstimate) CurrentPrice() float64 {
	if e.Estimate > 0 {
		return e.Estimate
	}
	return e.NAV
}

// OperationType categorizes ledger operations.
type OperationType string

const (
	OperationBuy        OperationType = "buy"
	OperationSell       OperationType = "sell"
	OperationConvertIn  OperationType = "convert_in"
	OperationConvertOut OperationType = "convert_out"
)

// IsEntry reports whether the operation adds to a position.
func (t OperationType) IsEntry() bool {
	return t == OperationBuy || t == OperationConvertIn
}

// IsExit reports whether the operation reduces a position.
func (t OperationType) IsExit() bool {
	return t == OperationSell || t == OperationConvertOut
}

// Valid reports whether the type is one of the four known operation types.
func (t OperationType) Valid() bool {
	return t.IsEntry() || t.IsExit()
}

// Operation is one entry in a fund's buy/sell/transfer ledger.
//
// A buy placed through a fund platform does not receive its unit count until
// the NAV for that date is published (typically the next business day). Until
// then the operation carries only an amount and is "pending"; confirmation
// fills in Shares and Price from the published NAV.
type Operation struct {
	ID       string        `json:"id"`
	FundCode string        `json:"fund_code"`
	FundName string        `json:"fund_name,omitempty"`
	Date     string        `json:"date"` // YYYY-MM-DD
	Type     OperationType `json:"type"`
	Amount   float64       `json:"amount,omitempty"` // money spent/received
	Shares   float64       `json:"shares,omitempty"` // units transacted
	Price    float64       `json:"price,omitempty"`  // unit price at transaction

	// PriceDate is the NAV date actually used at confirmation. It may differ
	// from Date when the operation date had no published value.
	PriceDate string `json:"price_date,omitempty"`

	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Pending reports whether the operation is still awaiting NAV confirmation:
// an entry with money committed but no unit count yet.
func (op *Operation) Pending() bool {
	return op.Type.IsEntry() && op.Amount > 0 && op.Shares <= 0
}

// ConfirmableAt reports whether a pending operation is eligible for
// confirmation at the given time. NAVs publish with a lag, so the operation
// date must be strictly before the current date.
func (op *Operation) ConfirmableAt(now time.Time) bool {
	if !op.Pending() {
		return false
	}
	d, err := time.Parse(DateLayout, op.Date)
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return d.Before(today)
}

// Holding is the authoritative current position in a fund: unit count and
// average cost per unit. Supplied directly (e.g. imported positions) it takes
// precedence over ledger replay, since the ledger may be incomplete.
type Holding struct {
	FundCode  string    `json:"fund_code"`
	Shares    float64   `json:"shares"`
	CostPrice float64   `json:"cost_price"` // average cost per unit
	UpdatedAt time.Time `json:"updated_at"`
}

// Valid reports whether the holding represents an actual position.
// Non-positive shares mean "no holding", not an error.
func (h *Holding) Valid() bool {
	return h != nil && h.Shares > 0
}
