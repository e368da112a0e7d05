package syncer

import (
	"strconv"

	"github.com/Dmitriyrevilov/seller-apis/internal/feed"
)

// Reconcile joins the feed against the catalog's known offer ids.
//
// Every known offer occurrence ends up in exactly one stock record: matched
// feed rows first in feed order, then a zero-fill record for each offer the
// feed never mentioned, in catalog discovery order. A duplicated offer id is
// consumed one occurrence per matching feed row. Price records are emitted
// for matches only, in feed order. Feed rows whose code is unknown to the
// catalog contribute nothing.
//
// A malformed quantity or price token aborts with *feed.FormatError so a
// half-wrong payload is never submitted.
func Reconcile(records []feed.Record, offers []string) ([]StockRecord, []PriceRecord, error) {
	remaining := make(map[string]int, len(offers))
	for _, id := range offers {
		remaining[id]++
	}

	stocks := make([]StockRecord, 0, len(offers))
	var prices []PriceRecord
	for _, r := range records {
		if remaining[r.Code] == 0 {
			continue
		}
		count, err := feed.NormalizeQuantity(r.Quantity)
		if err != nil {
			return nil, nil, err
		}
		digits, err := feed.NormalizePrice(r.Price)
		if err != nil {
			return nil, nil, err
		}
		value, err := strconv.Atoi(digits)
		if err != nil {
			return nil, nil, &feed.FormatError{Field: "price", Token: r.Price}
		}
		stocks = append(stocks, StockRecord{OfferID: r.Code, Count: count})
		prices = append(prices, PriceRecord{OfferID: r.Code, Value: value})
		remaining[r.Code]--
	}

	// Zero-fill whatever the feed left untouched.
	for _, id := range offers {
		if remaining[id] > 0 {
			stocks = append(stocks, StockRecord{OfferID: id})
			remaining[id]--
		}
	}
	return stocks, prices, nil
}
