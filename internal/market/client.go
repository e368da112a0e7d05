// Package market implements the Yandex Market sync targets. One Client holds
// the partner token; each fulfillment-program campaign (FBS, DBS) is its own
// target with its own campaign and warehouse ids.
package market

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Dmitriyrevilov/seller-apis/internal/syncer"
)

const (
	DefaultBaseURL = "https://api.partner.market.yandex.ru"

	StockBatchLimit = 2000
	PriceBatchLimit = 500

	pageLimit = 200
)

type Client struct {
	token   string
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	now     func() time.Time
}

func New(token, baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
		now:     time.Now,
	}
}

// Campaign binds the client to one campaign/warehouse pair. name is the
// target label used in logs, reports and the journal ("market-fbs" etc).
func (c *Client) Campaign(name, campaignID string, warehouseID int64) *Campaign {
	return &Campaign{c: c, name: name, campaignID: campaignID, warehouseID: warehouseID}
}

type Campaign struct {
	c           *Client
	name        string
	campaignID  string
	warehouseID int64
}

func (t *Campaign) Name() string { return t.name }

func (t *Campaign) Limits() syncer.BatchLimits {
	return syncer.BatchLimits{Stocks: StockBatchLimit, Prices: PriceBatchLimit}
}

type offerMappingResponse struct {
	Result struct {
		OfferMappingEntries []struct {
			Offer struct {
				ShopSku string `json:"shopSku"`
			} `json:"offer"`
		} `json:"offerMappingEntries"`
		Paging struct {
			NextPageToken string `json:"nextPageToken"`
		} `json:"paging"`
	} `json:"result"`
}

// offerPager is one offer-mapping-entries session. The endpoint signals the
// end of the listing with an absent nextPageToken.
type offerPager struct {
	t *Campaign
}

func (t *Campaign) NewOfferPager() syncer.OfferPager { return &offerPager{t: t} }

func (p *offerPager) FetchPage(ctx context.Context, cursor string) (syncer.OfferPage, error) {
	q := url.Values{"limit": {strconv.Itoa(pageLimit)}}
	if cursor != "" {
		q.Set("page_token", cursor)
	}
	path := fmt.Sprintf("/campaigns/%s/offer-mapping-entries?%s", p.t.campaignID, q.Encode())

	var res offerMappingResponse
	if err := p.t.do(ctx, http.MethodGet, path, "list", 0, nil, &res); err != nil {
		return syncer.OfferPage{}, err
	}
	ids := make([]string, 0, len(res.Result.OfferMappingEntries))
	for _, entry := range res.Result.OfferMappingEntries {
		ids = append(ids, entry.Offer.ShopSku)
	}
	next := res.Result.Paging.NextPageToken
	return syncer.OfferPage{IDs: ids, NextCursor: next, Done: next == ""}, nil
}

type stockItem struct {
	Count     int    `json:"count"`
	Type      string `json:"type"`
	UpdatedAt string `json:"updatedAt"`
}

type skuStocks struct {
	Sku         string      `json:"sku"`
	WarehouseID int64       `json:"warehouseId"`
	Items       []stockItem `json:"items"`
}

type stocksRequest struct {
	Skus []skuStocks `json:"skus"`
}

func (t *Campaign) SubmitStocks(ctx context.Context, batch []syncer.StockRecord) error {
	updatedAt := t.c.now().UTC().Truncate(time.Second).Format(time.RFC3339)
	req := stocksRequest{Skus: make([]skuStocks, 0, len(batch))}
	for _, r := range batch {
		req.Skus = append(req.Skus, skuStocks{
			Sku:         r.OfferID,
			WarehouseID: t.warehouseID,
			Items:       []stockItem{{Count: r.Count, Type: "FIT", UpdatedAt: updatedAt}},
		})
	}
	path := fmt.Sprintf("/campaigns/%s/offers/stocks", t.campaignID)
	if err := t.do(ctx, http.MethodPut, path, "stocks", len(batch), req, nil); err != nil {
		return err
	}
	t.c.logger.Debug("market stocks submitted",
		zap.String("target", t.name), zap.Int("records", len(batch)))
	return nil
}

type priceUpdate struct {
	ID    string `json:"id"`
	Price struct {
		Value      int    `json:"value"`
		CurrencyID string `json:"currencyId"`
	} `json:"price"`
}

type pricesRequest struct {
	Offers []priceUpdate `json:"offers"`
}

func (t *Campaign) SubmitPrices(ctx context.Context, batch []syncer.PriceRecord) error {
	req := pricesRequest{Offers: make([]priceUpdate, 0, len(batch))}
	for _, r := range batch {
		upd := priceUpdate{ID: r.OfferID}
		upd.Price.Value = r.Value
		upd.Price.CurrencyID = "RUR"
		req.Offers = append(req.Offers, upd)
	}
	path := fmt.Sprintf("/campaigns/%s/offer-prices/updates", t.campaignID)
	if err := t.do(ctx, http.MethodPost, path, "prices", len(batch), req, nil); err != nil {
		return err
	}
	t.c.logger.Debug("market prices submitted",
		zap.String("target", t.name), zap.Int("records", len(batch)))
	return nil
}

func (t *Campaign) do(ctx context.Context, method, path, kind string, size int, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode %s: %w", t.name, path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, t.c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", t.name, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.c.token)

	resp, err := t.c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", t.name, path, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &syncer.RejectedError{
			Marketplace: t.name,
			Kind:        kind,
			Status:      resp.StatusCode,
			Body:        strings.TrimSpace(string(data)),
			Size:        size,
		}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%s: decode %s: %w", t.name, path, err)
		}
	}
	return nil
}
