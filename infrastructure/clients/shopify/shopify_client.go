package shopify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"channelhub/domain/model"
	"channelhub/domain/repository"
	"channelhub/infrastructure/clients/httpclient"
	"channelhub/infrastructure/configuration"
)

const (
	apiVersion  = "2023-10"
	orderWindow = 30 * 24 * time.Hour
)

var scopes = strings.Join([]string{
	"read_orders",
	"read_products",
	"read_analytics",
	"read_customers",
	"read_inventory",
}, ",")

// Client is the Shopify Admin API adapter. Each merchant shop is one
// sub-account of kind shop.
type Client struct {
	oauth configuration.OAuthClient
	rest  *httpclient.Client
}

var (
	_ repository.IPlatformAdapter = (*Client)(nil)
	_ repository.IInsightsFetcher = (*Client)(nil)
)

func NewClient(oauth configuration.OAuthClient) *Client {
	return &Client{oauth: oauth, rest: httpclient.New(model.PlatformShopify)}
}

func (c *Client) Platform() string { return model.PlatformShopify }

// NormalizeShopDomain accepts "acme", "acme.myshopify.com" or a full URL and
// returns the bare myshopify host.
func NormalizeShopDomain(shop string) string {
	s := strings.ToLower(strings.TrimSpace(shop))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimSuffix(s, "/")
	if s == "" {
		return ""
	}
	if !strings.Contains(s, ".") {
		s += ".myshopify.com"
	}
	return s
}

func (c *Client) BuildAuthURL(state string, p model.AuthParams) (string, error) {
	shop := NormalizeShopDomain(p.ShopDomain)
	if shop == "" {
		return "", &model.ValidationError{Field: "shopDomain", Reason: "shop domain is required"}
	}

	q := url.Values{}
	q.Set("client_id", c.oauth.ClientID)
	q.Set("scope", scopes)
	q.Set("redirect_uri", c.oauth.RedirectURI)
	q.Set("state", state)
	return fmt.Sprintf("https://%s/admin/oauth/authorize?%s", shop, q.Encode()), nil
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
}

type shopEnvelope struct {
	Shop struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		Domain   string `json:"domain"`
		Email    string `json:"email"`
		Currency string `json:"currency"`
		PlanName string `json:"plan_name"`
	} `json:"shop"`
}

func (c *Client) ExchangeCode(ctx context.Context, p model.CallbackParams, sp model.StatePayload) (*model.CallbackResult, error) {
	shop := NormalizeShopDomain(p.Shop)
	if shop == "" {
		shop = NormalizeShopDomain(sp.ShopDomain)
	}
	if shop == "" {
		return nil, &model.ValidationError{Field: "shop", Reason: "shop domain missing from callback and state"}
	}

	var token accessTokenResponse
	err := c.rest.DoJSON(ctx, httpclient.Request{
		Method: "POST",
		URL:    fmt.Sprintf("https://%s/admin/oauth/access_token", shop),
		Body: map[string]string{
			"client_id":     c.oauth.ClientID,
			"client_secret": c.oauth.ClientSecret,
			"code":          p.Code,
		},
	}, &token)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	creds := model.Credentials{AccessToken: token.AccessToken, ShopDomain: shop}

	var env shopEnvelope
	err = c.rest.DoJSON(ctx, httpclient.Request{
		Method:  "GET",
		URL:     c.apiURL(shop, "shop.json"),
		Headers: c.authHeaders(token.AccessToken),
	}, &env)
	if err != nil {
		return nil, fmt.Errorf("fetch shop info: %w", err)
	}

	result := &model.CallbackResult{
		Credentials: creds,
		Metadata: map[string]string{
			"shopName": env.Shop.Name,
			"currency": env.Shop.Currency,
			"scope":    token.Scope,
		},
		SubAccounts: []model.SubAccount{{
			Platform:     model.PlatformShopify,
			SubAccountID: shop,
			Name:         env.Shop.Name,
			Kind:         model.SubAccountShop,
			Metadata: map[string]string{
				"domain":   env.Shop.Domain,
				"email":    env.Shop.Email,
				"currency": env.Shop.Currency,
				"planName": env.Shop.PlanName,
			},
		}},
	}
	return result, nil
}

type order struct {
	ID              int64  `json:"id"`
	OrderNumber     int64  `json:"order_number"`
	Email           string `json:"email"`
	TotalPrice      string `json:"total_price"`
	FinancialStatus string `json:"financial_status"`
	CreatedAt       string `json:"created_at"`
	Tags            string `json:"tags"`
	LineItems       []struct {
		Quantity float64 `json:"quantity"`
	} `json:"line_items"`
}

type product struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	Vendor      string `json:"vendor"`
	ProductType string `json:"product_type"`
	Tags        string `json:"tags"`
	Variants    []struct {
		InventoryQuantity float64 `json:"inventory_quantity"`
	} `json:"variants"`
}

type orderListParams struct {
	Status       string `url:"status"`
	Limit        int    `url:"limit"`
	CreatedAtMin string `url:"created_at_min,omitempty"`
}

type productListParams struct {
	Limit int `url:"limit"`
}

// FetchResources pulls the last 30 days of orders alongside the product
// catalog. The two collections are independent, so they fan out.
func (c *Client) FetchResources(ctx context.Context, creds model.Credentials) ([]model.UnifiedRecord, error) {
	var orders []order
	var products []product

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := httpclient.WithRetry(gctx, httpclient.DefaultRetryAttempts, httpclient.DefaultRetryDelay, func() ([]order, error) {
			return c.fetchOrders(gctx, creds)
		})
		if err != nil {
			return err
		}
		orders = res
		return nil
	})
	g.Go(func() error {
		res, err := httpclient.WithRetry(gctx, httpclient.DefaultRetryAttempts, httpclient.DefaultRetryDelay, func() ([]product, error) {
			return c.fetchProducts(gctx, creds)
		})
		if err != nil {
			return err
		}
		products = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]model.UnifiedRecord, 0, len(orders)+len(products))
	for _, o := range orders {
		records = append(records, model.UnifiedRecord{
			DataType:   model.DataTypeOrder,
			OriginalID: fmt.Sprintf("%d", o.ID),
			Payload: model.UnifiedPayload{
				Name:   fmt.Sprintf("Order #%d", o.OrderNumber),
				Status: o.FinancialStatus,
				Metrics: model.Metrics{
					Revenue: model.F(parsePrice(o.TotalPrice)),
					Orders:  model.F(1),
					Units:   model.F(sumLineItems(o)),
				},
				Attributes: map[string]any{
					"customerEmail": o.Email,
					"createdAt":     o.CreatedAt,
					"tags":          o.Tags,
				},
			},
		})
	}
	for _, pr := range products {
		records = append(records, model.UnifiedRecord{
			DataType:   model.DataTypeProduct,
			OriginalID: fmt.Sprintf("%d", pr.ID),
			Payload: model.UnifiedPayload{
				Name:   pr.Title,
				Status: pr.Status,
				Metrics: model.Metrics{
					Units: model.F(sumInventory(pr)),
				},
				Attributes: map[string]any{
					"vendor":      pr.Vendor,
					"productType": pr.ProductType,
					"tags":        pr.Tags,
					"variants":    len(pr.Variants),
				},
			},
		})
	}
	return records, nil
}

// FetchInsights refreshes the cached shop overview for the shop sub-account.
func (c *Client) FetchInsights(ctx context.Context, creds model.Credentials, sub model.SubAccount) (map[string]any, error) {
	orders, err := httpclient.WithRetry(ctx, httpclient.DefaultRetryAttempts, httpclient.DefaultRetryDelay, func() ([]order, error) {
		return c.fetchOrders(ctx, creds)
	})
	if err != nil {
		return nil, err
	}

	var revenue, units float64
	for _, o := range orders {
		revenue += parsePrice(o.TotalPrice)
		units += sumLineItems(o)
	}
	return map[string]any{
		"orders":  len(orders),
		"revenue": revenue,
		"units":   units,
		"period":  "last_30d",
	}, nil
}

func (c *Client) fetchOrders(ctx context.Context, creds model.Credentials) ([]order, error) {
	var env struct {
		Orders []order `json:"orders"`
	}
	err := c.rest.DoJSON(ctx, httpclient.Request{
		Method: "GET",
		URL:    c.apiURL(creds.ShopDomain, "orders.json"),
		Query: orderListParams{
			Status:       "any",
			Limit:        250,
			CreatedAtMin: time.Now().Add(-orderWindow).UTC().Format(time.RFC3339),
		},
		Headers: c.authHeaders(creds.AccessToken),
	}, &env)
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	return env.Orders, nil
}

func (c *Client) fetchProducts(ctx context.Context, creds model.Credentials) ([]product, error) {
	var env struct {
		Products []product `json:"products"`
	}
	err := c.rest.DoJSON(ctx, httpclient.Request{
		Method:  "GET",
		URL:     c.apiURL(creds.ShopDomain, "products.json"),
		Query:   productListParams{Limit: 250},
		Headers: c.authHeaders(creds.AccessToken),
	}, &env)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	return env.Products, nil
}

func (c *Client) apiURL(shop, resource string) string {
	return fmt.Sprintf("https://%s/admin/api/%s/%s", shop, apiVersion, resource)
}

func (c *Client) authHeaders(token string) map[string]string {
	return map[string]string{"X-Shopify-Access-Token": token}
}

func parsePrice(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func sumLineItems(o order) float64 {
	var total float64
	for _, item := range o.LineItems {
		total += item.Quantity
	}
	return total
}

func sumInventory(p product) float64 {
	var total float64
	for _, v := range p.Variants {
		total += v.InventoryQuantity
	}
	return total
}
