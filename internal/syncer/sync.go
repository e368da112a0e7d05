package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Dmitriyrevilov/seller-apis/internal/feed"
)

// Syncer runs the list → reconcile → batch → submit pipeline for one
// marketplace target at a time.
type Syncer struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Syncer {
	return &Syncer{logger: logger}
}

// Sync pushes the feed onto one marketplace. Batches are submitted strictly
// in order, one at a time; the first failure aborts the remaining batches
// and surfaces to the caller. Batches already accepted are not rolled back,
// so after a failed run the catalog holds the union of submitted batches and
// its previous values.
func (s *Syncer) Sync(ctx context.Context, records []feed.Record, m Marketplace) (Report, error) {
	rep := Report{
		RunID:   uuid.NewString(),
		Target:  m.Name(),
		Started: time.Now().UTC(),
	}
	logger := s.logger.With(zap.String("target", rep.Target), zap.String("run_id", rep.RunID))

	offers, err := ListOfferIDs(ctx, m.NewOfferPager())
	if err != nil {
		return rep, fmt.Errorf("list offers: %w", err)
	}
	rep.Offers = len(offers)
	logger.Info("offers listed", zap.Int("offers", len(offers)))

	stocks, prices, err := Reconcile(records, offers)
	if err != nil {
		return rep, fmt.Errorf("reconcile: %w", err)
	}
	rep.All = stocks
	for _, st := range stocks {
		if st.Count != 0 {
			rep.NonEmpty = append(rep.NonEmpty, st)
		}
	}
	rep.Prices = prices

	limits := m.Limits()
	stockBatches, err := Batch(stocks, limits.Stocks)
	if err != nil {
		return rep, err
	}
	for batch := range stockBatches {
		if err := m.SubmitStocks(ctx, batch); err != nil {
			return rep, fmt.Errorf("submit stocks: %w", err)
		}
		rep.StockBatches++
	}

	priceBatches, err := Batch(prices, limits.Prices)
	if err != nil {
		return rep, err
	}
	for batch := range priceBatches {
		if err := m.SubmitPrices(ctx, batch); err != nil {
			return rep, fmt.Errorf("submit prices: %w", err)
		}
		rep.PriceBatches++
	}

	rep.Finished = time.Now().UTC()
	logger.Info("sync finished",
		zap.Int("stocks", len(rep.All)),
		zap.Int("non_empty", len(rep.NonEmpty)),
		zap.Int("prices", len(rep.Prices)),
		zap.Int("stock_batches", rep.StockBatches),
		zap.Int("price_batches", rep.PriceBatches))
	return rep, nil
}
