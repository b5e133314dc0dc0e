package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kjannette/pricetrack/internal/httputil"
)

const (
	DefaultBaseURL = "https://api.kucoin.com"

	// All lookups are quoted against USDT; KuCoin joins pairs with a dash.
	quoteCurrency = "USDT"
	pairSeparator = "-"

	level1Path = "/api/v1/market/orderbook/level1"

	kucoinCodeOK            = "200000"
	kucoinCodeUnknownSymbol = "400100"
)

var (
	// ErrSymbolNotFound means the exchange does not trade this pair. A
	// client fault, discovered only after the round trip.
	ErrSymbolNotFound = errors.New("symbol not found on exchange")

	// ErrBidUnavailable covers transport failures and responses that carry
	// no usable bid anywhere.
	ErrBidUnavailable = errors.New("bid price unavailable from exchange")
)

type KuCoinOptions struct {
	BaseURL string
	Timeout time.Duration
	Retry   httputil.RetryConfig
}

// KuCoinClient fetches level-1 order book snapshots. One instance is shared
// by all in-flight requests; the underlying http.Client is safe for
// concurrent use. Close releases pooled connections on shutdown.
type KuCoinClient struct {
	httpClient *http.Client
	baseURL    string
	retry      httputil.RetryConfig
}

func NewKuCoinClient(opts KuCoinOptions) *KuCoinClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = httputil.SingleAttempt
	}
	return &KuCoinClient{
		httpClient: &http.Client{Timeout: opts.Timeout},
		baseURL:    opts.BaseURL,
		retry:      opts.Retry,
	}
}

type level1Response struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data *struct {
		Price      string `json:"price"`
		BestBid    string `json:"bestBid"`
		BestBidSz  string `json:"bestBidSize"`
		BestAsk    string `json:"bestAsk"`
		Sequence   string `json:"sequence"`
		TimeMillis int64  `json:"time"`
	} `json:"data"`
}

// FetchBid returns the current best bid of SYMBOL-USDT as an exact decimal.
// The symbol must already be canonical (validated upper-case). When the
// bestBid field is missing the last traded price is used as a fallback
// before giving up.
func (c *KuCoinClient) FetchBid(ctx context.Context, symbol string) (decimal.Decimal, error) {
	pair := symbol + pairSeparator + quoteCurrency
	reqURL := c.baseURL + level1Path + "?symbol=" + url.QueryEscape(pair)

	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	})
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %v", ErrBidUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Decimal{}, fmt.Errorf("%w: kucoin returned status %d", ErrBidUnavailable, resp.StatusCode)
	}

	var body level1Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: decode: %v", ErrBidUnavailable, err)
	}

	switch {
	case body.Code == kucoinCodeUnknownSymbol:
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, pair)
	case body.Code != kucoinCodeOK:
		return decimal.Decimal{}, fmt.Errorf("%w: kucoin code %s: %s", ErrBidUnavailable, body.Code, body.Msg)
	case body.Data == nil:
		// KuCoin reports unknown pairs as a null data payload.
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, pair)
	}

	bid := body.Data.BestBid
	if bid == "" {
		bid = body.Data.Price
	}
	if bid == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: no bid in ticker for %s", ErrBidUnavailable, pair)
	}

	price, err := decimal.NewFromString(bid)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: malformed bid %q", ErrBidUnavailable, bid)
	}
	return price, nil
}

// Close releases idle connections. Safe to call once at shutdown regardless
// of how many fetches succeeded or failed before.
func (c *KuCoinClient) Close() {
	c.httpClient.CloseIdleConnections()
}
