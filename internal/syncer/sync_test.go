package syncer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/Dmitriyrevilov/seller-apis/internal/feed"
)

// stubMarketplace serves a fixed offer list and records every submission.
type stubMarketplace struct {
	offers []string
	limits BatchLimits

	stockCalls  [][]StockRecord
	priceCalls  [][]PriceRecord
	failStockAt int // 1-based stock submission that is rejected
}

func (m *stubMarketplace) Name() string        { return "stub" }
func (m *stubMarketplace) Limits() BatchLimits { return m.limits }

func (m *stubMarketplace) NewOfferPager() OfferPager {
	return &scriptedPager{pages: []OfferPage{{IDs: m.offers, Done: true}}}
}

func (m *stubMarketplace) SubmitStocks(_ context.Context, batch []StockRecord) error {
	m.stockCalls = append(m.stockCalls, batch)
	if m.failStockAt > 0 && len(m.stockCalls) == m.failStockAt {
		return &RejectedError{Marketplace: "stub", Kind: "stocks", Status: 400, Body: "bad batch", Size: len(batch)}
	}
	return nil
}

func (m *stubMarketplace) SubmitPrices(_ context.Context, batch []PriceRecord) error {
	m.priceCalls = append(m.priceCalls, batch)
	return nil
}

func feedOf(n int) ([]feed.Record, []string) {
	records := make([]feed.Record, n)
	offers := make([]string, n)
	for i := range records {
		code := fmt.Sprintf("SKU-%04d", i)
		records[i] = feed.Record{Code: code, Quantity: "5", Price: "100.00"}
		offers[i] = code
	}
	return records, offers
}

func TestSyncBatchSizesAndOrder(t *testing.T) {
	records, offers := feedOf(1200)
	m := &stubMarketplace{offers: offers, limits: BatchLimits{Stocks: 500, Prices: 500}}

	rep, err := New(zap.NewNop()).Sync(context.Background(), records, m)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(m.stockCalls) != 3 {
		t.Fatalf("expected 3 stock submissions, got %d", len(m.stockCalls))
	}
	for i, want := range []int{500, 500, 200} {
		if len(m.stockCalls[i]) != want {
			t.Fatalf("stock batch %d: got %d records, want %d", i, len(m.stockCalls[i]), want)
		}
	}
	if m.stockCalls[0][0].OfferID != "SKU-0000" || m.stockCalls[2][199].OfferID != "SKU-1199" {
		t.Fatal("batches out of order")
	}
	if rep.StockBatches != 3 || rep.PriceBatches != 3 {
		t.Fatalf("unexpected batch counters: %+v", rep)
	}
	if len(rep.All) != 1200 || len(rep.NonEmpty) != 1200 || len(rep.Prices) != 1200 {
		t.Fatalf("unexpected report sizes: %d/%d/%d", len(rep.All), len(rep.NonEmpty), len(rep.Prices))
	}
}

func TestSyncRejectionAbortsRemainingBatches(t *testing.T) {
	records, offers := feedOf(1200)
	m := &stubMarketplace{offers: offers, limits: BatchLimits{Stocks: 500, Prices: 500}, failStockAt: 2}

	rep, err := New(zap.NewNop()).Sync(context.Background(), records, m)
	var rejected *RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected RejectedError, got %v", err)
	}
	if rejected.Size != 500 || rejected.Kind != "stocks" {
		t.Fatalf("unexpected rejection: %+v", rejected)
	}
	if len(m.stockCalls) != 2 {
		t.Fatalf("3rd batch must not be attempted, got %d calls", len(m.stockCalls))
	}
	if len(m.priceCalls) != 0 {
		t.Fatal("prices must not be attempted after a stock rejection")
	}
	if rep.StockBatches != 1 {
		t.Fatalf("only the accepted batch counts, got %d", rep.StockBatches)
	}
}

func TestSyncNonEmptySubset(t *testing.T) {
	records := []feed.Record{
		{Code: "a", Quantity: "5", Price: "100.00"},
		{Code: "b", Quantity: "1", Price: "200.00"}, // reserved unit, counts as 0
	}
	m := &stubMarketplace{offers: []string{"a", "b", "c"}, limits: BatchLimits{Stocks: 10, Prices: 10}}

	rep, err := New(zap.NewNop()).Sync(context.Background(), records, m)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.All) != 3 {
		t.Fatalf("expected 3 stock records, got %+v", rep.All)
	}
	if len(rep.NonEmpty) != 1 || rep.NonEmpty[0].OfferID != "a" {
		t.Fatalf("unexpected non-empty subset: %+v", rep.NonEmpty)
	}
}

func TestSyncMalformedFeedSubmitsNothing(t *testing.T) {
	records := []feed.Record{{Code: "a", Quantity: "plenty", Price: "100.00"}}
	m := &stubMarketplace{offers: []string{"a"}, limits: BatchLimits{Stocks: 10, Prices: 10}}

	_, err := New(zap.NewNop()).Sync(context.Background(), records, m)
	var fe *feed.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}
	if len(m.stockCalls) != 0 || len(m.priceCalls) != 0 {
		t.Fatal("nothing may be submitted after a reconcile failure")
	}
}

func TestSyncListFailureAbortsRun(t *testing.T) {
	m := &failingListMarketplace{}
	_, err := New(zap.NewNop()).Sync(context.Background(), nil, m)
	if !errors.Is(err, errPageDown) {
		t.Fatalf("expected listing error to propagate, got %v", err)
	}
}

type failingListMarketplace struct{ stubMarketplace }

func (m *failingListMarketplace) NewOfferPager() OfferPager {
	return &scriptedPager{pages: []OfferPage{{}}, failAt: 1}
}
