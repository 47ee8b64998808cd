package platform

// naverTokenResponse is the OAuth client-credentials token payload.
type naverTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// naverChannelProductsResponse lists the channel products behind an origin
// product. Writes address the channel product, not the origin product.
type naverChannelProductsResponse struct {
	Contents []naverChannelProduct `json:"contents"`
}

type naverChannelProduct struct {
	OriginProductNo      int64  `json:"originProductNo"`
	ChannelProductNo     int64  `json:"channelProductNo"`
	SellerManagementCode string `json:"sellerManagementCode"`
}

// naverProductDetailResponse is the channel product detail payload reduced to
// the fields the engine consumes.
type naverProductDetailResponse struct {
	ChannelProductNo int64  `json:"channelProductNo"`
	StatusType       string `json:"statusType"`
	StockQuantity    int64  `json:"stockQuantity"`
	SalePrice        string `json:"salePrice"`
}

// naverStockUpdateRequest sets the channel product stock.
type naverStockUpdateRequest struct {
	StockQuantity int64 `json:"stockQuantity"`
}

// naverPriceUpdateRequest sets the channel product sale price.
type naverPriceUpdateRequest struct {
	SalePrice string `json:"salePrice"`
}

// naverErrorResponse is the API error envelope.
type naverErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
