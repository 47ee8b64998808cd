package platform

import (
	"errors"
	"time"
)

// NaverConfig holds configuration for the Naver Commerce API client.
type NaverConfig struct {
	// BaseURL is the API base URL
	BaseURL string
	// ClientID is the application client id
	ClientID string
	// ClientSecret signs token requests and is never sent in clear
	ClientSecret string
	// Timeout is the HTTP request timeout
	Timeout time.Duration
	// RatePerSecond refills the outbound request bucket
	RatePerSecond float64
	// RateBurst is the bucket capacity
	RateBurst int
	// RateMaxWait bounds how long a request waits for bucket capacity
	RateMaxWait time.Duration
}

// NaverDefaultBaseURL is the production API endpoint
const NaverDefaultBaseURL = "https://api.commerce.naver.com"

// tokenRefreshMargin refreshes the cached token this long before expiry
const tokenRefreshMargin = time.Minute

// Errors for Naver configuration
var (
	ErrNaverConfigMissingClientID     = errors.New("naver: client id is required")
	ErrNaverConfigMissingClientSecret = errors.New("naver: client secret is required")
)

// NewNaverConfig creates a new Naver configuration with defaults.
func NewNaverConfig(clientID, clientSecret string) *NaverConfig {
	return &NaverConfig{
		BaseURL:       NaverDefaultBaseURL,
		ClientID:      clientID,
		ClientSecret:  clientSecret,
		Timeout:       10 * time.Second,
		RatePerSecond: 2,
		RateBurst:     4,
		RateMaxWait:   5 * time.Second,
	}
}

// Validate validates the Naver configuration.
func (c *NaverConfig) Validate() error {
	if c.ClientID == "" {
		return ErrNaverConfigMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrNaverConfigMissingClientSecret
	}
	if c.BaseURL == "" {
		c.BaseURL = NaverDefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return nil
}
