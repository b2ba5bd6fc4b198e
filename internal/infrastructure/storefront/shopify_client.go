package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ecommanager/backend/internal/domain/channel"
)

// maxResponseSize is the maximum allowed provider response size (20MB)
const maxResponseSize = 20 * 1024 * 1024

// ShopifyConfig holds configuration for the Shopify Admin API client
type ShopifyConfig struct {
	// APIVersion is the Admin API version segment, e.g. "2024-01"
	APIVersion string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// Validate validates the Shopify configuration
func (c *ShopifyConfig) Validate() error {
	if c.APIVersion == "" {
		c.APIVersion = "2024-01"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// ShopifyClient implements the Storefront interface against the Shopify REST
// Admin API. One client serves every connected Shopify channel; the store URL
// and access token travel with each call.
type ShopifyClient struct {
	config     *ShopifyConfig
	httpClient *http.Client
}

// NewShopifyClient creates a new Shopify client with the given configuration
func NewShopifyClient(config *ShopifyConfig) (*ShopifyClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ShopifyClient{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// Provider returns the provider code this client handles
func (c *ShopifyClient) Provider() channel.ProviderCode {
	return channel.ProviderShopify
}

// ListOrders fetches one page of orders modified inside the window. Cursor
// pagination: once a page token is present the provider forbids repeating the
// filter parameters.
func (c *ShopifyClient) ListOrders(ctx context.Context, conn channel.Connection, req channel.PageRequest) ([]channel.ExternalOrder, channel.PageInfo, error) {
	query := url.Values{"limit": {strconv.Itoa(req.PageSize)}}
	if req.PageToken != "" {
		query.Set("page_info", req.PageToken)
	} else {
		query.Set("status", "any")
		if req.UpdatedAfter != nil {
			query.Set("updated_at_min", req.UpdatedAfter.UTC().Format(time.RFC3339))
		}
		if req.UpdatedBefore != nil {
			query.Set("updated_at_max", req.UpdatedBefore.UTC().Format(time.RFC3339))
		}
	}

	var resp ShopifyOrdersResponse
	page, err := c.doGet(ctx, conn, "orders.json?"+query.Encode(), &resp)
	if err != nil {
		return nil, channel.PageInfo{}, err
	}

	orders := make([]channel.ExternalOrder, 0, len(resp.Orders))
	for _, o := range resp.Orders {
		orders = append(orders, convertShopifyOrder(o))
	}
	return orders, page, nil
}

// ListProducts fetches one page of products
func (c *ShopifyClient) ListProducts(ctx context.Context, conn channel.Connection, req channel.PageRequest) ([]channel.ExternalProduct, channel.PageInfo, error) {
	query := url.Values{"limit": {strconv.Itoa(req.PageSize)}}
	if req.PageToken != "" {
		query.Set("page_info", req.PageToken)
	} else if req.UpdatedAfter != nil {
		query.Set("updated_at_min", req.UpdatedAfter.UTC().Format(time.RFC3339))
	}

	var resp ShopifyProductsResponse
	page, err := c.doGet(ctx, conn, "products.json?"+query.Encode(), &resp)
	if err != nil {
		return nil, channel.PageInfo{}, err
	}

	products := make([]channel.ExternalProduct, 0, len(resp.Products))
	for _, p := range resp.Products {
		products = append(products, convertShopifyProduct(p))
	}
	return products, page, nil
}

// ListLocations fetches the store's fulfillment locations
func (c *ShopifyClient) ListLocations(ctx context.Context, conn channel.Connection) ([]channel.ExternalLocation, error) {
	var resp ShopifyLocationsResponse
	if _, err := c.doGet(ctx, conn, "locations.json", &resp); err != nil {
		return nil, err
	}

	locations := make([]channel.ExternalLocation, 0, len(resp.Locations))
	for _, l := range resp.Locations {
		locations = append(locations, channel.ExternalLocation{
			ExternalID: strconv.FormatInt(l.ID, 10),
			Name:       l.Name,
			Active:     l.Active,
		})
	}
	return locations, nil
}

// ListInventoryLevels fetches levels for the given inventory item IDs at one
// location. The provider caps the ID list at 50 per request; callers batch.
func (c *ShopifyClient) ListInventoryLevels(ctx context.Context, conn channel.Connection, locationID string, inventoryItemIDs []string) ([]channel.ExternalInventoryLevel, error) {
	query := url.Values{
		"location_ids":       {locationID},
		"inventory_item_ids": {strings.Join(inventoryItemIDs, ",")},
	}

	var resp ShopifyInventoryLevelsResponse
	if _, err := c.doGet(ctx, conn, "inventory_levels.json?"+query.Encode(), &resp); err != nil {
		return nil, err
	}

	levels := make([]channel.ExternalInventoryLevel, 0, len(resp.InventoryLevels))
	for _, l := range resp.InventoryLevels {
		levels = append(levels, channel.ExternalInventoryLevel{
			ExternalInventoryID: strconv.FormatInt(l.InventoryItemID, 10),
			LocationID:          strconv.FormatInt(l.LocationID, 10),
			Available:           l.Available,
		})
	}
	return levels, nil
}

// CreateOrder pushes a local order to the store
func (c *ShopifyClient) CreateOrder(ctx context.Context, conn channel.Connection, draft channel.OrderDraft) (*channel.ExternalOrderRef, error) {
	lineItems := make([]map[string]any, 0, len(draft.Items))
	for _, item := range draft.Items {
		line := map[string]any{
			"title":    item.Title,
			"quantity": item.Quantity,
			"price":    item.UnitPrice.StringFixed(2),
		}
		if item.SKU != "" {
			line["sku"] = item.SKU
		}
		if item.ExternalVariantID != "" {
			if id, err := strconv.ParseInt(item.ExternalVariantID, 10, 64); err == nil {
				line["variant_id"] = id
			}
		}
		lineItems = append(lineItems, line)
	}

	payload := map[string]any{
		"order": map[string]any{
			"name":       draft.OrderNumber,
			"currency":   draft.Currency,
			"email":      draft.CustomerEmail,
			"phone":      draft.CustomerPhone,
			"note":       draft.Note,
			"line_items": lineItems,
			"shipping_address": convertToShopifyAddress(draft.ShippingAddress),
			"billing_address":  convertToShopifyAddress(draft.BillingAddress),
		},
	}

	body, status, err := c.doRequest(ctx, conn, http.MethodPost, "orders.json", payload)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, shopifyError("create order", status, body)
	}

	var resp ShopifyOrderEnvelope
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("shopify: unreadable create order response: %w", err)
	}
	return &channel.ExternalOrderRef{
		ExternalID:  strconv.FormatInt(resp.Order.ID, 10),
		OrderNumber: resp.Order.Name,
	}, nil
}

// UpdateOrder updates an existing store order with the fields the provider
// honors post-creation
func (c *ShopifyClient) UpdateOrder(ctx context.Context, conn channel.Connection, externalOrderID string, update channel.OrderUpdate) error {
	order := map[string]any{"id": externalOrderID}
	if update.CustomerEmail != nil {
		order["email"] = *update.CustomerEmail
	}
	if update.CustomerPhone != nil {
		order["phone"] = *update.CustomerPhone
	}
	if update.Note != nil {
		order["note"] = *update.Note
	}
	if update.ShippingAddress != nil {
		order["shipping_address"] = convertToShopifyAddress(*update.ShippingAddress)
	}
	if update.BillingAddress != nil {
		order["billing_address"] = convertToShopifyAddress(*update.BillingAddress)
	}

	body, status, err := c.doRequest(ctx, conn, http.MethodPut, "orders/"+externalOrderID+".json", map[string]any{"order": order})
	if err != nil {
		return err
	}
	if status >= 400 {
		return shopifyError("update order", status, body)
	}
	return nil
}

// DeleteWebhook removes a store-side webhook registration
func (c *ShopifyClient) DeleteWebhook(ctx context.Context, conn channel.Connection, webhookID string) error {
	body, status, err := c.doRequest(ctx, conn, http.MethodDelete, "webhooks/"+webhookID+".json", nil)
	if err != nil {
		return err
	}
	// A webhook that is already gone is not an error
	if status >= 400 && status != http.StatusNotFound {
		return shopifyError("delete webhook", status, body)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Internal Helpers
// ---------------------------------------------------------------------------

// doGet performs a GET request, decodes the JSON body into out and extracts
// cursor pagination from the Link header
func (c *ShopifyClient) doGet(ctx context.Context, conn channel.Connection, path string, out any) (channel.PageInfo, error) {
	baseURL, err := c.baseURL(conn)
	if err != nil {
		return channel.PageInfo{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+path, nil)
	if err != nil {
		return channel.PageInfo{}, fmt.Errorf("shopify: failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", conn.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return channel.PageInfo{}, fmt.Errorf("shopify: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return channel.PageInfo{}, fmt.Errorf("shopify: failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return channel.PageInfo{}, shopifyError("list", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return channel.PageInfo{}, fmt.Errorf("shopify: unreadable response: %w", err)
	}

	return parseLinkHeader(resp.Header.Get("Link")), nil
}

// doRequest performs a JSON request and returns the raw body and status
func (c *ShopifyClient) doRequest(ctx context.Context, conn channel.Connection, method, path string, payload any) ([]byte, int, error) {
	baseURL, err := c.baseURL(conn)
	if err != nil {
		return nil, 0, err
	}

	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("shopify: failed to encode request: %w", err)
		}
		reader = strings.NewReader(string(data))
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("shopify: failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", conn.AccessToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("shopify: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("shopify: failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// baseURL builds the versioned Admin API base for a connection
func (c *ShopifyClient) baseURL(conn channel.Connection) (string, error) {
	if conn.StoreURL == "" {
		return "", channel.ErrChannelNoStoreURL
	}
	if conn.AccessToken == "" {
		return "", channel.ErrChannelNoCredentials
	}
	store := conn.StoreURL
	if !strings.Contains(store, "://") {
		store = "https://" + store
	}
	return strings.TrimRight(store, "/") + "/admin/api/" + c.config.APIVersion + "/", nil
}

// linkNextRe extracts the page_info cursor from the rel="next" Link segment
var linkNextRe = regexp.MustCompile(`<[^>]*[?&]page_info=([^&>]+)[^>]*>;\s*rel="next"`)

// parseLinkHeader extracts cursor pagination from a Shopify Link header
func parseLinkHeader(header string) channel.PageInfo {
	if header == "" {
		return channel.PageInfo{}
	}
	for _, segment := range strings.Split(header, ",") {
		if m := linkNextRe.FindStringSubmatch(strings.TrimSpace(segment)); m != nil {
			return channel.PageInfo{NextPageToken: m[1], HasMore: true}
		}
	}
	return channel.PageInfo{}
}

// shopifyError builds an error from a provider error response
func shopifyError(op string, status int, body []byte) error {
	var errResp ShopifyErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Errors != nil {
		return fmt.Errorf("shopify: %s failed: HTTP %d: %v", op, status, errResp.Errors)
	}
	return fmt.Errorf("shopify: %s failed: HTTP %d", op, status)
}

// ---------------------------------------------------------------------------
// Shape Conversion
// ---------------------------------------------------------------------------

func convertShopifyOrder(o ShopifyOrder) channel.ExternalOrder {
	order := channel.ExternalOrder{
		ExternalID:        strconv.FormatInt(o.ID, 10),
		OrderNumber:       o.Name,
		FinancialStatus:   o.FinancialStatus,
		FulfillmentStatus: o.FulfillmentStatus,
		Currency:          o.Currency,
		TotalAmount:       parseAmount(o.TotalPrice),
		SubtotalAmount:    parseAmount(o.SubtotalPrice),
		TaxAmount:         parseAmount(o.TotalTax),
		DiscountAmount:    parseAmount(o.TotalDiscounts),
		CustomerEmail:     o.Email,
		CustomerPhone:     o.Phone,
		Note:              o.Note,
		Cancelled:         o.CancelledAt != "",
	}
	if o.Customer != nil {
		order.CustomerName = strings.TrimSpace(o.Customer.FirstName + " " + o.Customer.LastName)
		if order.CustomerEmail == "" {
			order.CustomerEmail = o.Customer.Email
		}
		if order.CustomerPhone == "" {
			order.CustomerPhone = o.Customer.Phone
		}
	}
	if o.ShippingAddress != nil {
		order.ShippingAddress = convertShopifyAddress(*o.ShippingAddress)
	}
	if o.BillingAddress != nil {
		order.BillingAddress = convertShopifyAddress(*o.BillingAddress)
	}
	for _, line := range o.ShippingLines {
		order.ShippingAmount = order.ShippingAmount.Add(parseAmount(line.Price))
	}
	if t, err := time.Parse(time.RFC3339, o.CreatedAt); err == nil {
		order.PlacedAt = t
	}
	if t, err := time.Parse(time.RFC3339, o.UpdatedAt); err == nil {
		order.UpdatedAt = t
	}

	for _, item := range o.LineItems {
		order.Items = append(order.Items, channel.ExternalOrderItem{
			ExternalID:        strconv.FormatInt(item.ID, 10),
			ExternalProductID: formatOptionalID(item.ProductID),
			ExternalVariantID: formatOptionalID(item.VariantID),
			SKU:               item.SKU,
			Title:             item.Title,
			Quantity:          item.Quantity,
			UnitPrice:         parseAmount(item.Price),
			TotalDiscount:     parseAmount(item.TotalDiscount),
		})
	}
	return order
}

func convertShopifyProduct(p ShopifyProduct) channel.ExternalProduct {
	product := channel.ExternalProduct{
		ExternalID:  strconv.FormatInt(p.ID, 10),
		Title:       p.Title,
		Description: p.BodyHTML,
		Vendor:      p.Vendor,
		ProductType: p.ProductType,
	}
	if t, err := time.Parse(time.RFC3339, p.UpdatedAt); err == nil {
		product.UpdatedAt = t
	}

	var option1Name, option2Name string
	for _, opt := range p.Options {
		switch opt.Position {
		case 1:
			option1Name = opt.Name
		case 2:
			option2Name = opt.Name
		}
	}

	for _, v := range p.Variants {
		product.Variants = append(product.Variants, channel.ExternalVariant{
			ExternalID:          strconv.FormatInt(v.ID, 10),
			ExternalInventoryID: formatOptionalID(v.InventoryItemID),
			SKU:                 v.SKU,
			Title:               v.Title,
			Option1Name:         option1Name,
			Option1Value:        v.Option1,
			Option2Name:         option2Name,
			Option2Value:        v.Option2,
			Price:               parseAmount(v.Price),
			InventoryQuantity:   v.InventoryQuantity,
		})
	}
	return product
}

func convertShopifyAddress(a ShopifyAddress) channel.ExternalAddress {
	return channel.ExternalAddress{
		Name:    a.Name,
		Phone:   a.Phone,
		Line1:   a.Address1,
		Line2:   a.Address2,
		City:    a.City,
		State:   a.Province,
		Zip:     a.Zip,
		Country: a.Country,
	}
}

func convertToShopifyAddress(a channel.ExternalAddress) ShopifyAddress {
	return ShopifyAddress{
		Name:     a.Name,
		Phone:    a.Phone,
		Address1: a.Line1,
		Address2: a.Line2,
		City:     a.City,
		Province: a.State,
		Zip:      a.Zip,
		Country:  a.Country,
	}
}

// parseAmount parses a provider money string, treating blanks and bad input
// as zero
func parseAmount(value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// formatOptionalID renders a numeric provider ID, empty for zero
func formatOptionalID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

// Ensure ShopifyClient implements the Storefront interface
var _ channel.Storefront = (*ShopifyClient)(nil)
