package platform

// shopifyVariantResponse wraps a single variant payload.
type shopifyVariantResponse struct {
	Variant shopifyVariant `json:"variant"`
}

type shopifyVariant struct {
	ID              int64  `json:"id"`
	ProductID       int64  `json:"product_id"`
	SKU             string `json:"sku"`
	Price           string `json:"price"`
	InventoryItemID int64  `json:"inventory_item_id"`
}

// shopifyVariantUpdateRequest sets variant fields, price only here.
type shopifyVariantUpdateRequest struct {
	Variant shopifyVariantUpdate `json:"variant"`
}

type shopifyVariantUpdate struct {
	ID    int64  `json:"id"`
	Price string `json:"price"`
}

// shopifyInventoryLevelsResponse lists inventory levels for an item.
type shopifyInventoryLevelsResponse struct {
	InventoryLevels []shopifyInventoryLevel `json:"inventory_levels"`
}

type shopifyInventoryLevel struct {
	InventoryItemID int64 `json:"inventory_item_id"`
	LocationID      int64 `json:"location_id"`
	Available       int64 `json:"available"`
	Committed       int64 `json:"committed"`
}

// shopifyInventorySetRequest sets the available quantity at a location.
type shopifyInventorySetRequest struct {
	LocationID      int64 `json:"location_id"`
	InventoryItemID int64 `json:"inventory_item_id"`
	Available       int64 `json:"available"`
}

// shopifyErrorResponse is the API error envelope. The errors field is a
// string on some endpoints and an object on others, so it stays raw.
type shopifyErrorResponse struct {
	Errors interface{} `json:"errors"`
}
