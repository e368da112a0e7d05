// Package syncer joins the vendor feed against a marketplace catalog and
// drives batched stock/price submissions.
package syncer

import (
	"context"
	"time"
)

// StockRecord is one reconciled stock count for a marketplace offer.
// Marketplace clients map it onto their own wire shape at submission time.
type StockRecord struct {
	OfferID string
	Count   int
}

// PriceRecord is one reconciled integer price for a marketplace offer.
// Currency is a marketplace wire detail and is applied by the client.
type PriceRecord struct {
	OfferID string
	Value   int
}

// BatchLimits are the per-request record caps a marketplace imposes on its
// bulk-update endpoints.
type BatchLimits struct {
	Stocks int
	Prices int
}

// OfferPage is one page of catalog offer ids. Done is decided by the pager
// according to its marketplace's own termination convention, so the listing
// loop never has to know which convention is in play.
type OfferPage struct {
	IDs        []string
	NextCursor string
	Done       bool
}

// OfferPager is one listing session over a marketplace catalog. Sessions may
// carry cursor state, so a fresh pager is created per sync run.
type OfferPager interface {
	FetchPage(ctx context.Context, cursor string) (OfferPage, error)
}

// Marketplace is one sync target: a seller catalog or a fulfillment-program
// campaign with its own offer listing, submission endpoints and batch caps.
type Marketplace interface {
	Name() string
	NewOfferPager() OfferPager
	SubmitStocks(ctx context.Context, batch []StockRecord) error
	SubmitPrices(ctx context.Context, batch []PriceRecord) error
	Limits() BatchLimits
}

// Report summarizes one sync run against one marketplace.
type Report struct {
	RunID  string
	Target string
	Offers int

	All      []StockRecord
	NonEmpty []StockRecord
	Prices   []PriceRecord

	StockBatches int
	PriceBatches int

	Started  time.Time
	Finished time.Time
}
