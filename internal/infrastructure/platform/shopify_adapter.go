package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/channelsync/backend/internal/domain/channel"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ShopifyAdapter talks to the Shopify Admin REST API. Inventory goes through
// the inventory-levels endpoints at the configured location; price goes
// through the variant endpoint. The variant's inventory-item id is resolved
// once per ref and cached.
type ShopifyAdapter struct {
	config     *ShopifyConfig
	httpClient *http.Client
	limiter    *Limiter
	logger     *zap.Logger

	itemMu sync.RWMutex
	items  map[string]int64
}

var _ channel.CommercePlatform = (*ShopifyAdapter)(nil)

// NewShopifyAdapter creates a new Shopify adapter.
func NewShopifyAdapter(config *ShopifyConfig, logger *zap.Logger) (*ShopifyAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ShopifyAdapter{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    NewLimiter(config.RatePerSecond, config.RateBurst, config.RateMaxWait),
		logger:     logger,
		items:      make(map[string]int64),
	}, nil
}

// PlatformCode returns the platform identifier.
func (a *ShopifyAdapter) PlatformCode() channel.PlatformCode {
	return channel.PlatformShopify
}

// ReadInventory fetches the inventory level for the referenced variant at the
// configured location. Available and committed both come from the level.
func (a *ShopifyAdapter) ReadInventory(ctx context.Context, ref channel.ProductRef) (*channel.InventorySnapshot, error) {
	var snap *channel.InventorySnapshot
	err := withRetry(ctx, a.logger, "shopify.read_inventory", nil, func(ctx context.Context) error {
		itemID, err := a.resolveInventoryItem(ctx, ref)
		if err != nil {
			return err
		}

		var resp shopifyInventoryLevelsResponse
		path := fmt.Sprintf("/inventory_levels.json?inventory_item_ids=%d&location_ids=%d", itemID, a.config.LocationID)
		if err := a.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
			return err
		}
		if len(resp.InventoryLevels) == 0 {
			return fmt.Errorf("%w: no inventory level for item %d at location %d",
				channel.ErrPlatformNotFound, itemID, a.config.LocationID)
		}

		level := resp.InventoryLevels[0]
		snap = &channel.InventorySnapshot{
			Platform:  channel.PlatformShopify,
			Quantity:  level.Available,
			Committed: level.Committed,
			AsOf:      time.Now(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// WriteInventory sets the available quantity at the configured location.
func (a *ShopifyAdapter) WriteInventory(ctx context.Context, ref channel.ProductRef, quantity int64) error {
	if quantity < 0 {
		return fmt.Errorf("%w: negative quantity %d", channel.ErrValidation, quantity)
	}
	return withRetry(ctx, a.logger, "shopify.write_inventory", nil, func(ctx context.Context) error {
		itemID, err := a.resolveInventoryItem(ctx, ref)
		if err != nil {
			return err
		}
		payload := shopifyInventorySetRequest{
			LocationID:      a.config.LocationID,
			InventoryItemID: itemID,
			Available:       quantity,
		}
		return a.doJSON(ctx, http.MethodPost, "/inventory_levels/set.json", payload, nil)
	})
}

// ReadPrice fetches the variant price.
func (a *ShopifyAdapter) ReadPrice(ctx context.Context, ref channel.ProductRef) (decimal.Decimal, error) {
	var price decimal.Decimal
	err := withRetry(ctx, a.logger, "shopify.read_price", nil, func(ctx context.Context) error {
		variant, err := a.fetchVariant(ctx, ref)
		if err != nil {
			return err
		}
		p, err := decimal.NewFromString(variant.Price)
		if err != nil {
			return fmt.Errorf("%w: unparseable variant price %q", channel.ErrPlatformInvalidResponse, variant.Price)
		}
		price = p
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return price, nil
}

// WritePrice sets the variant price.
func (a *ShopifyAdapter) WritePrice(ctx context.Context, ref channel.ProductRef, amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return fmt.Errorf("%w: non-positive price %s", channel.ErrValidation, amount)
	}
	variantID, err := parseVariantID(ref)
	if err != nil {
		return err
	}
	return withRetry(ctx, a.logger, "shopify.write_price", nil, func(ctx context.Context) error {
		payload := shopifyVariantUpdateRequest{
			Variant: shopifyVariantUpdate{
				ID:    variantID,
				Price: amount.StringFixed(2),
			},
		}
		path := fmt.Sprintf("/variants/%d.json", variantID)
		return a.doJSON(ctx, http.MethodPut, path, payload, nil)
	})
}

// ---------------------------------------------------------------------------
// Variant resolution
// ---------------------------------------------------------------------------

func (a *ShopifyAdapter) fetchVariant(ctx context.Context, ref channel.ProductRef) (*shopifyVariant, error) {
	variantID, err := parseVariantID(ref)
	if err != nil {
		return nil, err
	}
	var resp shopifyVariantResponse
	path := fmt.Sprintf("/variants/%d.json", variantID)
	if err := a.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Variant, nil
}

// resolveInventoryItem maps the variant to its inventory-item id, cached
// after the first lookup.
func (a *ShopifyAdapter) resolveInventoryItem(ctx context.Context, ref channel.ProductRef) (int64, error) {
	a.itemMu.RLock()
	itemID, ok := a.items[ref.VariantID]
	a.itemMu.RUnlock()
	if ok {
		return itemID, nil
	}

	variant, err := a.fetchVariant(ctx, ref)
	if err != nil {
		return 0, err
	}
	if variant.InventoryItemID == 0 {
		return 0, fmt.Errorf("%w: variant %d has no inventory item", channel.ErrPlatformInvalidResponse, variant.ID)
	}

	a.itemMu.Lock()
	a.items[ref.VariantID] = variant.InventoryItemID
	a.itemMu.Unlock()
	return variant.InventoryItemID, nil
}

func parseVariantID(ref channel.ProductRef) (int64, error) {
	if ref.VariantID == "" {
		return 0, fmt.Errorf("%w: empty variant id", channel.ErrInvalidRef)
	}
	id, err := strconv.ParseInt(ref.VariantID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: variant id %q is not numeric", channel.ErrInvalidRef, ref.VariantID)
	}
	return id, nil
}

// ---------------------------------------------------------------------------
// HTTP plumbing
// ---------------------------------------------------------------------------

func (a *ShopifyAdapter) doJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	if err := a.limiter.Acquire(ctx); err != nil {
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

	req, err := http.NewRequestWithContext(ctx, method, a.config.baseURL()+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", a.config.AccessToken)
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

func (a *ShopifyAdapter) classifyStatus(status int, body []byte) error {
	msg := ""
	var apiErr shopifyErrorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Errors != nil {
		msg = fmt.Sprintf("%v", apiErr.Errors)
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
