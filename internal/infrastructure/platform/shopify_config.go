package platform

import (
	"errors"
	"fmt"
	"time"
)

// ShopifyConfig holds configuration for the Shopify Admin REST API client.
type ShopifyConfig struct {
	// ShopDomain is the *.myshopify.com shop hostname
	ShopDomain string
	// BaseURL overrides the shop-domain derived endpoint when set
	BaseURL string
	// AccessToken is the Admin API access token
	AccessToken string
	// APIVersion pins the Admin API version segment
	APIVersion string
	// LocationID is the inventory location all level reads and writes target
	LocationID int64
	// Timeout is the HTTP request timeout
	Timeout time.Duration
	// RatePerSecond refills the outbound request bucket
	RatePerSecond float64
	// RateBurst is the bucket capacity
	RateBurst int
	// RateMaxWait bounds how long a request waits for bucket capacity
	RateMaxWait time.Duration
}

// ShopifyDefaultAPIVersion is the Admin API version used when none is set
const ShopifyDefaultAPIVersion = "2024-10"

// Errors for Shopify configuration
var (
	ErrShopifyConfigMissingDomain     = errors.New("shopify: shop domain is required")
	ErrShopifyConfigMissingToken      = errors.New("shopify: access token is required")
	ErrShopifyConfigMissingLocationID = errors.New("shopify: location id is required")
)

// NewShopifyConfig creates a new Shopify configuration with defaults.
func NewShopifyConfig(shopDomain, accessToken string, locationID int64) *ShopifyConfig {
	return &ShopifyConfig{
		ShopDomain:    shopDomain,
		AccessToken:   accessToken,
		APIVersion:    ShopifyDefaultAPIVersion,
		LocationID:    locationID,
		Timeout:       10 * time.Second,
		RatePerSecond: 2,
		RateBurst:     4,
		RateMaxWait:   5 * time.Second,
	}
}

// Validate validates the Shopify configuration.
func (c *ShopifyConfig) Validate() error {
	if c.ShopDomain == "" {
		return ErrShopifyConfigMissingDomain
	}
	if c.AccessToken == "" {
		return ErrShopifyConfigMissingToken
	}
	if c.LocationID <= 0 {
		return ErrShopifyConfigMissingLocationID
	}
	if c.APIVersion == "" {
		c.APIVersion = ShopifyDefaultAPIVersion
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return nil
}

// baseURL returns the versioned Admin API base path.
func (c *ShopifyConfig) baseURL() string {
	if c.BaseURL != "" {
		return fmt.Sprintf("%s/admin/api/%s", c.BaseURL, c.APIVersion)
	}
	return fmt.Sprintf("https://%s/admin/api/%s", c.ShopDomain, c.APIVersion)
}
