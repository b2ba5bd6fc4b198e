package storefront

// ShopifyOrder is the Shopify REST Admin API order shape
type ShopifyOrder struct {
	ID                int64              `json:"id"`
	Name              string             `json:"name"`
	OrderNumber       int64              `json:"order_number"`
	Email             string             `json:"email"`
	Phone             string             `json:"phone"`
	FinancialStatus   string             `json:"financial_status"`
	FulfillmentStatus string             `json:"fulfillment_status"`
	Currency          string             `json:"currency"`
	TotalPrice        string             `json:"total_price"`
	SubtotalPrice     string             `json:"subtotal_price"`
	TotalTax          string             `json:"total_tax"`
	TotalDiscounts    string             `json:"total_discounts"`
	Note              string             `json:"note"`
	CreatedAt         string             `json:"created_at"`
	UpdatedAt         string             `json:"updated_at"`
	CancelledAt       string             `json:"cancelled_at"`
	Customer          *ShopifyCustomer   `json:"customer"`
	ShippingAddress   *ShopifyAddress    `json:"shipping_address"`
	BillingAddress    *ShopifyAddress    `json:"billing_address"`
	LineItems         []ShopifyLineItem  `json:"line_items"`
	ShippingLines     []ShopifyShipLine  `json:"shipping_lines"`
}

// ShopifyCustomer is the customer block on a Shopify order
type ShopifyCustomer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// ShopifyAddress is a Shopify postal address
type ShopifyAddress struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	Province string `json:"province"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

// ShopifyLineItem is one order line
type ShopifyLineItem struct {
	ID            int64  `json:"id"`
	ProductID     int64  `json:"product_id"`
	VariantID     int64  `json:"variant_id"`
	SKU           string `json:"sku"`
	Title         string `json:"title"`
	Quantity      int    `json:"quantity"`
	Price         string `json:"price"`
	TotalDiscount string `json:"total_discount"`
}

// ShopifyShipLine is one shipping charge line
type ShopifyShipLine struct {
	Price string `json:"price"`
}

// ShopifyOrdersResponse wraps the orders list endpoint
type ShopifyOrdersResponse struct {
	Orders []ShopifyOrder `json:"orders"`
}

// ShopifyOrderEnvelope wraps a single order in requests and responses
type ShopifyOrderEnvelope struct {
	Order ShopifyOrder `json:"order"`
}

// ShopifyProduct is the Shopify REST Admin API product shape
type ShopifyProduct struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	BodyHTML    string           `json:"body_html"`
	Vendor      string           `json:"vendor"`
	ProductType string           `json:"product_type"`
	UpdatedAt   string           `json:"updated_at"`
	Options     []ShopifyOption  `json:"options"`
	Variants    []ShopifyVariant `json:"variants"`
}

// ShopifyOption is a product option axis (e.g. Size, Color)
type ShopifyOption struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// ShopifyVariant is one purchasable variant of a product
type ShopifyVariant struct {
	ID                int64  `json:"id"`
	ProductID         int64  `json:"product_id"`
	SKU               string `json:"sku"`
	Title             string `json:"title"`
	Price             string `json:"price"`
	Option1           string `json:"option1"`
	Option2           string `json:"option2"`
	InventoryItemID   int64  `json:"inventory_item_id"`
	InventoryQuantity int    `json:"inventory_quantity"`
}

// ShopifyProductsResponse wraps the products list endpoint
type ShopifyProductsResponse struct {
	Products []ShopifyProduct `json:"products"`
}

// ShopifyLocation is a Shopify fulfillment location
type ShopifyLocation struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// ShopifyLocationsResponse wraps the locations list endpoint
type ShopifyLocationsResponse struct {
	Locations []ShopifyLocation `json:"locations"`
}

// ShopifyInventoryLevel is the available quantity of one inventory item at
// one location
type ShopifyInventoryLevel struct {
	InventoryItemID int64 `json:"inventory_item_id"`
	LocationID      int64 `json:"location_id"`
	Available       int   `json:"available"`
}

// ShopifyInventoryLevelsResponse wraps the inventory levels list endpoint
type ShopifyInventoryLevelsResponse struct {
	InventoryLevels []ShopifyInventoryLevel `json:"inventory_levels"`
}

// ShopifyErrorResponse is the error body Shopify returns on 4xx
type ShopifyErrorResponse struct {
	Errors any `json:"errors"`
}
