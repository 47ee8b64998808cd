package platform

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/channelsync/backend/internal/domain/channel"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// NaverAdapter talks to the Naver Commerce API. It authenticates with an
// OAuth client-credentials token that is cached until shortly before expiry,
// and addresses inventory and price writes by channel-product number, which
// it resolves from the origin product reference and caches per ref.
type NaverAdapter struct {
	config     *NaverConfig
	httpClient *http.Client
	limiter    *Limiter
	logger     *zap.Logger

	tokenMu  sync.RWMutex
	token    string
	tokenExp time.Time
	refresh  singleflight.Group

	refMu sync.RWMutex
	refs  map[string]int64
}

var _ channel.CommercePlatform = (*NaverAdapter)(nil)

// NewNaverAdapter creates a new Naver adapter.
func NewNaverAdapter(config *NaverConfig, logger *zap.Logger) (*NaverAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &NaverAdapter{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    NewLimiter(config.RatePerSecond, config.RateBurst, config.RateMaxWait),
		logger:     logger,
		refs:       make(map[string]int64),
	}, nil
}

// PlatformCode returns the platform identifier.
func (a *NaverAdapter) PlatformCode() channel.PlatformCode {
	return channel.PlatformNaver
}

// ReadInventory fetches the current stock quantity for the referenced product.
func (a *NaverAdapter) ReadInventory(ctx context.Context, ref channel.ProductRef) (*channel.InventorySnapshot, error) {
	var snap *channel.InventorySnapshot
	err := withRetry(ctx, a.logger, "naver.read_inventory", a.forceTokenRefresh, func(ctx context.Context) error {
		detail, err := a.fetchDetail(ctx, ref)
		if err != nil {
			return err
		}
		snap = &channel.InventorySnapshot{
			Platform: channel.PlatformNaver,
			Quantity: detail.StockQuantity,
			AsOf:     time.Now(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// WriteInventory sets the stock quantity for the referenced product.
func (a *NaverAdapter) WriteInventory(ctx context.Context, ref channel.ProductRef, quantity int64) error {
	if quantity < 0 {
		return fmt.Errorf("%w: negative quantity %d", channel.ErrValidation, quantity)
	}
	return withRetry(ctx, a.logger, "naver.write_inventory", a.forceTokenRefresh, func(ctx context.Context) error {
		return a.withChannelNo(ctx, ref, func(ctx context.Context, channelNo int64) error {
			path := fmt.Sprintf("/external/v2/products/channel-products/%d/stock", channelNo)
			return a.doJSON(ctx, http.MethodPut, path, naverStockUpdateRequest{StockQuantity: quantity}, nil)
		})
	})
}

// ReadPrice fetches the current sale price for the referenced product.
func (a *NaverAdapter) ReadPrice(ctx context.Context, ref channel.ProductRef) (decimal.Decimal, error) {
	var price decimal.Decimal
	err := withRetry(ctx, a.logger, "naver.read_price", a.forceTokenRefresh, func(ctx context.Context) error {
		detail, err := a.fetchDetail(ctx, ref)
		if err != nil {
			return err
		}
		p, err := decimal.NewFromString(detail.SalePrice)
		if err != nil {
			return fmt.Errorf("%w: unparseable sale price %q", channel.ErrPlatformInvalidResponse, detail.SalePrice)
		}
		price = p
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return price, nil
}

// WritePrice sets the sale price for the referenced product.
func (a *NaverAdapter) WritePrice(ctx context.Context, ref channel.ProductRef, amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return fmt.Errorf("%w: non-positive price %s", channel.ErrValidation, amount)
	}
	return withRetry(ctx, a.logger, "naver.write_price", a.forceTokenRefresh, func(ctx context.Context) error {
		return a.withChannelNo(ctx, ref, func(ctx context.Context, channelNo int64) error {
			path := fmt.Sprintf("/external/v2/products/channel-products/%d/price", channelNo)
			return a.doJSON(ctx, http.MethodPut, path, naverPriceUpdateRequest{SalePrice: amount.String()}, nil)
		})
	})
}

// ---------------------------------------------------------------------------
// Channel product resolution
// ---------------------------------------------------------------------------

func (a *NaverAdapter) fetchDetail(ctx context.Context, ref channel.ProductRef) (*naverProductDetailResponse, error) {
	var detail *naverProductDetailResponse
	err := a.withChannelNo(ctx, ref, func(ctx context.Context, channelNo int64) error {
		var resp naverProductDetailResponse
		path := fmt.Sprintf("/external/v2/products/channel-products/%d", channelNo)
		if err := a.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
			return err
		}
		detail = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// withChannelNo resolves the channel-product number for ref and runs fn with
// it. A not-found against a cached number means the mapping went stale; the
// cache entry is dropped and resolution runs once more before giving up.
func (a *NaverAdapter) withChannelNo(ctx context.Context, ref channel.ProductRef, fn func(context.Context, int64) error) error {
	channelNo, cached, err := a.resolveChannelNo(ctx, ref)
	if err != nil {
		return err
	}

	err = fn(ctx, channelNo)
	if err == nil || !cached || !errors.Is(err, channel.ErrPlatformNotFound) {
		return err
	}

	a.logger.Info("cached channel product no is stale, re-resolving",
		zap.String("product_id", ref.ProductID),
		zap.Int64("channel_product_no", channelNo))
	a.invalidateRef(ref)

	channelNo, _, err = a.resolveChannelNo(ctx, ref)
	if err != nil {
		return fmt.Errorf("%w: %v", channel.ErrStaleReference, err)
	}
	return fn(ctx, channelNo)
}

func (a *NaverAdapter) resolveChannelNo(ctx context.Context, ref channel.ProductRef) (int64, bool, error) {
	if ref.ProductID == "" {
		return 0, false, fmt.Errorf("%w: empty product id", channel.ErrInvalidRef)
	}

	a.refMu.RLock()
	channelNo, ok := a.refs[a.refKey(ref)]
	a.refMu.RUnlock()
	if ok {
		return channelNo, true, nil
	}

	originNo, err := strconv.ParseInt(ref.ProductID, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: product id %q is not numeric", channel.ErrInvalidRef, ref.ProductID)
	}

	var resp naverChannelProductsResponse
	path := fmt.Sprintf("/external/v1/products/origin-products/%d/channel-products", originNo)
	if err := a.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return 0, false, err
	}
	if len(resp.Contents) == 0 {
		return 0, false, fmt.Errorf("%w: origin product %d has no channel products", channel.ErrPlatformNotFound, originNo)
	}

	channelNo = resp.Contents[0].ChannelProductNo
	if ref.VariantID != "" {
		found := false
		for _, cp := range resp.Contents {
			if cp.SellerManagementCode == ref.VariantID {
				channelNo = cp.ChannelProductNo
				found = true
				break
			}
		}
		if !found {
			return 0, false, fmt.Errorf("%w: no channel product with management code %q under origin product %d",
				channel.ErrPlatformNotFound, ref.VariantID, originNo)
		}
	}

	a.refMu.Lock()
	a.refs[a.refKey(ref)] = channelNo
	a.refMu.Unlock()
	return channelNo, false, nil
}

func (a *NaverAdapter) invalidateRef(ref channel.ProductRef) {
	a.refMu.Lock()
	delete(a.refs, a.refKey(ref))
	a.refMu.Unlock()
}

func (a *NaverAdapter) refKey(ref channel.ProductRef) string {
	return ref.ProductID + "/" + ref.VariantID
}

// ---------------------------------------------------------------------------
// Authentication
// ---------------------------------------------------------------------------

// signature computes the token-request signature: HMAC-SHA256 over
// "{clientID}_{timestamp}" keyed with the client secret, base64 encoded.
func signature(clientID, clientSecret string, timestamp int64) string {
	payload := fmt.Sprintf("%s_%d", clientID, timestamp)
	mac := hmac.New(sha256.New, []byte(clientSecret))
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (a *NaverAdapter) currentToken(ctx context.Context) (string, error) {
	a.tokenMu.RLock()
	token, exp := a.token, a.tokenExp
	a.tokenMu.RUnlock()
	if token != "" && time.Now().Before(exp.Add(-tokenRefreshMargin)) {
		return token, nil
	}
	return a.refreshToken(ctx)
}

// forceTokenRefresh discards the cached token and fetches a new one. Invoked
// by the retry policy when the platform rejects the current credentials.
func (a *NaverAdapter) forceTokenRefresh(ctx context.Context) error {
	a.tokenMu.Lock()
	a.token = ""
	a.tokenExp = time.Time{}
	a.tokenMu.Unlock()

	_, err := a.refreshToken(ctx)
	return err
}

// refreshToken fetches a token from the OAuth endpoint. Concurrent callers
// share a single in-flight request.
func (a *NaverAdapter) refreshToken(ctx context.Context) (string, error) {
	v, err, _ := a.refresh.Do("token", func() (interface{}, error) {
		if err := a.limiter.Acquire(ctx); err != nil {
			return nil, err
		}

		timestamp := time.Now().UnixMilli()
		form := url.Values{}
		form.Set("client_id", a.config.ClientID)
		form.Set("timestamp", strconv.FormatInt(timestamp, 10))
		form.Set("client_secret_sign", signature(a.config.ClientID, a.config.ClientSecret, timestamp))
		form.Set("grant_type", "client_credentials")
		form.Set("type", "SELF")

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			a.config.BaseURL+"/external/v1/oauth2/token", strings.NewReader(form.Encode()))
		if err != nil {
			return nil, fmt.Errorf("build token request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := a.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", channel.ErrPlatformUnavailable, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: read token response: %v", channel.ErrPlatformInvalidResponse, err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, a.classifyStatus(resp.StatusCode, body)
		}

		var tok naverTokenResponse
		if err := json.Unmarshal(body, &tok); err != nil {
			return nil, fmt.Errorf("%w: parse token response: %v", channel.ErrPlatformInvalidResponse, err)
		}
		if tok.AccessToken == "" || tok.ExpiresIn <= 0 {
			return nil, fmt.Errorf("%w: token response missing access_token or expiry", channel.ErrPlatformInvalidResponse)
		}

		a.tokenMu.Lock()
		a.token = tok.AccessToken
		a.tokenExp = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
		a.tokenMu.Unlock()

		a.logger.Debug("naver token refreshed", zap.Int64("expires_in", tok.ExpiresIn))
		return tok.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// ---------------------------------------------------------------------------
// HTTP plumbing
// ---------------------------------------------------------------------------

func (a *NaverAdapter) doJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	if err := a.limiter.Acquire(ctx); err != nil {
		return err
	}
	token, err := a.currentToken(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", channel.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", channel.ErrPlatformInvalidResponse, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return a.classifyStatus(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("%w: parse response: %v", channel.ErrPlatformInvalidResponse, err)
		}
	}
	return nil
}

func (a *NaverAdapter) classifyStatus(status int, body []byte) error {
	msg := ""
	var apiErr naverErrorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		msg = apiErr.Message
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: status %d: %s", channel.ErrPlatformAuth, status, msg)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d: %s", channel.ErrPlatformRateLimited, status, msg)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: status %d: %s", channel.ErrPlatformNotFound, status, msg)
	case status == http.StatusConflict || status == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: status %d: %s", channel.ErrPlatformConflict, status, msg)
	case status == http.StatusBadRequest:
		return fmt.Errorf("%w: status %d: %s", channel.ErrValidation, status, msg)
	case status >= 500:
		return fmt.Errorf("%w: status %d: %s", channel.ErrPlatformUnavailable, status, msg)
	default:
		return fmt.Errorf("%w: unexpected status %d: %s", channel.ErrPlatformInvalidResponse, status, msg)
	}
}
