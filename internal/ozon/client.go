// Package ozon implements the Ozon Seller sync target: paginated offer
// listing plus bulk stock and price imports.
package ozon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Dmitriyrevilov/seller-apis/internal/syncer"
)

const (
	DefaultBaseURL = "https://api-seller.ozon.ru"

	// Per-request caps on the import endpoints.
	StockBatchLimit = 100
	PriceBatchLimit = 900

	pageLimit = 1000
)

type Client struct {
	clientID string
	apiKey   string
	baseURL  string
	http     *http.Client
	logger   *zap.Logger
}

func New(clientID, apiKey, baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		clientID: clientID,
		apiKey:   apiKey,
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}
}

func (c *Client) Name() string { return "ozon" }

func (c *Client) Limits() syncer.BatchLimits {
	return syncer.BatchLimits{Stocks: StockBatchLimit, Prices: PriceBatchLimit}
}

type productListRequest struct {
	Filter struct {
		Visibility string `json:"visibility"`
	} `json:"filter"`
	LastID string `json:"last_id"`
	Limit  int    `json:"limit"`
}

type productListResponse struct {
	Result struct {
		Items []struct {
			OfferID string `json:"offer_id"`
		} `json:"items"`
		Total  int    `json:"total"`
		LastID string `json:"last_id"`
	} `json:"result"`
}

// offerPager is one /v2/product/list session. The endpoint reports a grand
// total instead of a has-more flag, so the session tracks how many items it
// accumulated and stops once the total is reached.
type offerPager struct {
	c       *Client
	fetched int
}

func (c *Client) NewOfferPager() syncer.OfferPager { return &offerPager{c: c} }

func (p *offerPager) FetchPage(ctx context.Context, cursor string) (syncer.OfferPage, error) {
	req := productListRequest{LastID: cursor, Limit: pageLimit}
	req.Filter.Visibility = "ALL"

	var res productListResponse
	if err := p.c.do(ctx, "/v2/product/list", "list", 0, req, &res); err != nil {
		return syncer.OfferPage{}, err
	}
	ids := make([]string, 0, len(res.Result.Items))
	for _, item := range res.Result.Items {
		ids = append(ids, item.OfferID)
	}
	p.fetched += len(ids)
	return syncer.OfferPage{
		IDs:        ids,
		NextCursor: res.Result.LastID,
		// An empty page before the reported total means the catalog shrank
		// mid-listing; stop instead of spinning on the same cursor.
		Done: p.fetched >= res.Result.Total || len(ids) == 0,
	}, nil
}

type stockItem struct {
	OfferID string `json:"offer_id"`
	Stock   int    `json:"stock"`
}

type stocksRequest struct {
	Stocks []stockItem `json:"stocks"`
}

func (c *Client) SubmitStocks(ctx context.Context, batch []syncer.StockRecord) error {
	req := stocksRequest{Stocks: make([]stockItem, 0, len(batch))}
	for _, r := range batch {
		req.Stocks = append(req.Stocks, stockItem{OfferID: r.OfferID, Stock: r.Count})
	}
	if err := c.do(ctx, "/v1/product/import/stocks", "stocks", len(batch), req, nil); err != nil {
		return err
	}
	c.logger.Debug("ozon stocks submitted", zap.Int("records", len(batch)))
	return nil
}

type priceItem struct {
	AutoActionEnabled string `json:"auto_action_enabled"`
	CurrencyCode      string `json:"currency_code"`
	OfferID           string `json:"offer_id"`
	OldPrice          string `json:"old_price"`
	Price             string `json:"price"`
}

type pricesRequest struct {
	Prices []priceItem `json:"prices"`
}

func (c *Client) SubmitPrices(ctx context.Context, batch []syncer.PriceRecord) error {
	req := pricesRequest{Prices: make([]priceItem, 0, len(batch))}
	for _, r := range batch {
		req.Prices = append(req.Prices, priceItem{
			AutoActionEnabled: "UNKNOWN",
			CurrencyCode:      "RUB",
			OfferID:           r.OfferID,
			OldPrice:          "0",
			Price:             strconv.Itoa(r.Value),
		})
	}
	if err := c.do(ctx, "/v1/product/import/prices", "prices", len(batch), req, nil); err != nil {
		return err
	}
	c.logger.Debug("ozon prices submitted", zap.Int("records", len(batch)))
	return nil
}

// do POSTs a JSON body and decodes the JSON response into out when non-nil.
// Non-2xx responses become *syncer.RejectedError with a body snippet.
func (c *Client) do(ctx context.Context, path, kind string, size int, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("ozon: encode %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ozon: %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Client-Id", c.clientID)
	req.Header.Set("Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ozon: %s: %w", path, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &syncer.RejectedError{
			Marketplace: "ozon",
			Kind:        kind,
			Status:      resp.StatusCode,
			Body:        strings.TrimSpace(string(data)),
			Size:        size,
		}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("ozon: decode %s: %w", path, err)
		}
	}
	return nil
}
