package platform

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/channelsync/backend/internal/domain/channel"
)

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestNaverConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *NaverConfig
		wantErr error
	}{
		{
			name:    "valid config",
			config:  &NaverConfig{ClientID: "cid", ClientSecret: "secret"},
			wantErr: nil,
		},
		{
			name:    "missing client id",
			config:  &NaverConfig{ClientSecret: "secret"},
			wantErr: ErrNaverConfigMissingClientID,
		},
		{
			name:    "missing client secret",
			config:  &NaverConfig{ClientID: "cid"},
			wantErr: ErrNaverConfigMissingClientSecret,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, NaverDefaultBaseURL, tt.config.BaseURL)
				assert.True(t, tt.config.Timeout > 0)
			}
		})
	}
}

func TestSignature(t *testing.T) {
	sign1 := signature("cid", "secret", 1700000000000)
	sign2 := signature("cid", "secret", 1700000000000)
	assert.Equal(t, sign1, sign2)

	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte("cid_1700000000000"))
	assert.Equal(t, base64.StdEncoding.EncodeToString(mac.Sum(nil)), sign1)

	assert.NotEqual(t, sign1, signature("cid", "secret", 1700000000001))
	assert.NotEqual(t, sign1, signature("other", "secret", 1700000000000))
}

// ---------------------------------------------------------------------------
// Adapter Tests
// ---------------------------------------------------------------------------

type naverServerState struct {
	tokenCalls    atomic.Int64
	channelNo     atomic.Int64
	stockByNo     map[int64]int64
	priceByNo     map[int64]string
	failStatus    atomic.Int64
	failRemaining atomic.Int64
}

func newNaverTestServer(t *testing.T) (*httptest.Server, *naverServerState) {
	t.Helper()
	state := &naverServerState{
		stockByNo: map[int64]int64{100: 80},
		priceByNo: map[int64]string{100: "10000"},
	}
	state.channelNo.Store(100)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /external/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		state.tokenCalls.Add(1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.NotEmpty(t, r.PostForm.Get("client_secret_sign"))
		json.NewEncoder(w).Encode(naverTokenResponse{AccessToken: "tok", ExpiresIn: 3600, TokenType: "Bearer"})
	})
	mux.HandleFunc("GET /external/v1/products/origin-products/9001/channel-products", func(w http.ResponseWriter, r *http.Request) {
		if state.failRemaining.Load() > 0 {
			state.failRemaining.Add(-1)
			w.WriteHeader(int(state.failStatus.Load()))
			return
		}
		json.NewEncoder(w).Encode(naverChannelProductsResponse{
			Contents: []naverChannelProduct{{OriginProductNo: 9001, ChannelProductNo: state.channelNo.Load()}},
		})
	})
	mux.HandleFunc("/external/v2/products/channel-products/", func(w http.ResponseWriter, r *http.Request) {
		if state.failRemaining.Load() > 0 {
			state.failRemaining.Add(-1)
			w.WriteHeader(int(state.failStatus.Load()))
			return
		}

		var no int64
		var tail string
		fmt.Sscanf(r.URL.Path, "/external/v2/products/channel-products/%d/%s", &no, &tail)
		if _, ok := state.stockByNo[no]; !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(naverErrorResponse{Code: "NOT_FOUND", Message: "channel product gone"})
			return
		}

		switch {
		case r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(naverProductDetailResponse{
				ChannelProductNo: no,
				StatusType:       "SALE",
				StockQuantity:    state.stockByNo[no],
				SalePrice:        state.priceByNo[no],
			})
		case r.Method == http.MethodPut && tail == "stock":
			var req naverStockUpdateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			state.stockByNo[no] = req.StockQuantity
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPut && tail == "price":
			var req naverPriceUpdateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			state.priceByNo[no] = req.SalePrice
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, state
}

func newTestNaverAdapter(t *testing.T, baseURL string) *NaverAdapter {
	t.Helper()
	config := &NaverConfig{
		BaseURL:       baseURL,
		ClientID:      "cid",
		ClientSecret:  "secret",
		Timeout:       5 * time.Second,
		RatePerSecond: 1000,
		RateBurst:     1000,
		RateMaxWait:   time.Second,
	}
	adapter, err := NewNaverAdapter(config, zap.NewNop())
	require.NoError(t, err)
	return adapter
}

func TestNewNaverAdapter(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		adapter, err := NewNaverAdapter(NewNaverConfig("cid", "secret"), zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, channel.PlatformNaver, adapter.PlatformCode())
	})

	t.Run("invalid config", func(t *testing.T) {
		adapter, err := NewNaverAdapter(&NaverConfig{}, zap.NewNop())
		assert.Error(t, err)
		assert.Nil(t, adapter)
	})
}

func TestNaverAdapter_ReadInventory(t *testing.T) {
	server, _ := newNaverTestServer(t)
	adapter := newTestNaverAdapter(t, server.URL)
	ref := channel.ProductRef{ProductID: "9001"}

	snap, err := adapter.ReadInventory(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, channel.PlatformNaver, snap.Platform)
	assert.Equal(t, int64(80), snap.Quantity)
	assert.Equal(t, int64(0), snap.Committed)
	assert.WithinDuration(t, time.Now(), snap.AsOf, time.Minute)
}

func TestNaverAdapter_TokenCachedAcrossRequests(t *testing.T) {
	server, state := newNaverTestServer(t)
	adapter := newTestNaverAdapter(t, server.URL)
	ref := channel.ProductRef{ProductID: "9001"}

	_, err := adapter.ReadInventory(context.Background(), ref)
	require.NoError(t, err)
	_, err = adapter.ReadInventory(context.Background(), ref)
	require.NoError(t, err)

	assert.Equal(t, int64(1), state.tokenCalls.Load())
}

func TestNaverAdapter_WriteInventory(t *testing.T) {
	server, state := newNaverTestServer(t)
	adapter := newTestNaverAdapter(t, server.URL)
	ref := channel.ProductRef{ProductID: "9001"}

	t.Run("writes through the resolved channel product", func(t *testing.T) {
		err := adapter.WriteInventory(context.Background(), ref, 75)
		require.NoError(t, err)
		assert.Equal(t, int64(75), state.stockByNo[100])
	})

	t.Run("rejects negative quantity without a request", func(t *testing.T) {
		err := adapter.WriteInventory(context.Background(), ref, -1)
		assert.ErrorIs(t, err, channel.ErrValidation)
	})
}

func TestNaverAdapter_ReResolvesStaleChannelProduct(t *testing.T) {
	server, state := newNaverTestServer(t)
	adapter := newTestNaverAdapter(t, server.URL)
	ref := channel.ProductRef{ProductID: "9001"}

	// Populate the resolution cache
	require.NoError(t, adapter.WriteInventory(context.Background(), ref, 10))

	// The channel product is replaced; the cached number now 404s
	delete(state.stockByNo, 100)
	state.channelNo.Store(200)
	state.stockByNo[200] = 0
	state.priceByNo[200] = "10000"

	err := adapter.WriteInventory(context.Background(), ref, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(20), state.stockByNo[200])
}

func TestNaverAdapter_Prices(t *testing.T) {
	server, state := newNaverTestServer(t)
	adapter := newTestNaverAdapter(t, server.URL)
	ref := channel.ProductRef{ProductID: "9001"}

	t.Run("reads the sale price", func(t *testing.T) {
		price, err := adapter.ReadPrice(context.Background(), ref)
		require.NoError(t, err)
		assert.True(t, price.Equal(decimal.NewFromInt(10000)))
	})

	t.Run("writes the sale price", func(t *testing.T) {
		err := adapter.WritePrice(context.Background(), ref, decimal.NewFromInt(12000))
		require.NoError(t, err)
		assert.Equal(t, "12000", state.priceByNo[100])
	})

	t.Run("rejects non-positive price", func(t *testing.T) {
		err := adapter.WritePrice(context.Background(), ref, decimal.Zero)
		assert.ErrorIs(t, err, channel.ErrValidation)
	})
}

func TestNaverAdapter_AuthFailureRefreshesOnce(t *testing.T) {
	server, state := newNaverTestServer(t)
	adapter := newTestNaverAdapter(t, server.URL)
	ref := channel.ProductRef{ProductID: "9001"}

	state.failStatus.Store(http.StatusUnauthorized)
	state.failRemaining.Store(10)

	_, err := adapter.ReadInventory(context.Background(), ref)
	require.Error(t, err)
	assert.ErrorIs(t, err, channel.ErrPlatformAuth)
	// Initial fetch plus the single forced refresh
	assert.Equal(t, int64(2), state.tokenCalls.Load())
}

func TestNaverAdapter_RetriesTransientFailure(t *testing.T) {
	server, state := newNaverTestServer(t)
	adapter := newTestNaverAdapter(t, server.URL)
	ref := channel.ProductRef{ProductID: "9001"}

	state.failStatus.Store(http.StatusServiceUnavailable)
	state.failRemaining.Store(1)

	snap, err := adapter.ReadInventory(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, int64(80), snap.Quantity)
}

func TestNaverAdapter_InvalidRef(t *testing.T) {
	server, _ := newNaverTestServer(t)
	adapter := newTestNaverAdapter(t, server.URL)

	_, err := adapter.ReadInventory(context.Background(), channel.ProductRef{})
	assert.ErrorIs(t, err, channel.ErrInvalidRef)

	_, err = adapter.ReadInventory(context.Background(), channel.ProductRef{ProductID: "not-a-number"})
	assert.ErrorIs(t, err, channel.ErrInvalidRef)
}

func TestNaverAdapter_ClassifyStatus(t *testing.T) {
	adapter := newTestNaverAdapter(t, "http://unused.local")

	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, channel.ErrPlatformAuth},
		{http.StatusForbidden, channel.ErrPlatformAuth},
		{http.StatusTooManyRequests, channel.ErrPlatformRateLimited},
		{http.StatusNotFound, channel.ErrPlatformNotFound},
		{http.StatusConflict, channel.ErrPlatformConflict},
		{http.StatusUnprocessableEntity, channel.ErrPlatformConflict},
		{http.StatusBadRequest, channel.ErrValidation},
		{http.StatusInternalServerError, channel.ErrPlatformUnavailable},
		{http.StatusBadGateway, channel.ErrPlatformUnavailable},
		{http.StatusTeapot, channel.ErrPlatformInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := adapter.classifyStatus(tt.status, nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
