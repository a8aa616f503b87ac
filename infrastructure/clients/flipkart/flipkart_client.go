package flipkart

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"channelhub/domain/model"
	"channelhub/domain/repository"
	"channelhub/infrastructure/clients/httpclient"
	"channelhub/infrastructure/configuration"
)

const (
	apiBase     = "https://api.flipkart.net"
	orderWindow = 30 * 24 * time.Hour
)

// Client is the Flipkart Seller API adapter.
type Client struct {
	oauth configuration.OAuthClient
	rest  *httpclient.Client
}

var _ repository.IPlatformAdapter = (*Client)(nil)

func NewClient(oauth configuration.OAuthClient) *Client {
	return &Client{oauth: oauth, rest: httpclient.New(model.PlatformFlipkart)}
}

func (c *Client) Platform() string { return model.PlatformFlipkart }

func (c *Client) BuildAuthURL(state string, _ model.AuthParams) (string, error) {
	q := url.Values{}
	q.Set("client_id", c.oauth.ClientID)
	q.Set("redirect_uri", c.oauth.RedirectURI)
	q.Set("response_type", "code")
	q.Set("scope", "Seller_Api")
	q.Set("state", state)
	return apiBase + "/oauth-service/oauth/authorize?" + q.Encode(), nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (c *Client) ExchangeCode(ctx context.Context, p model.CallbackParams, _ model.StatePayload) (*model.CallbackResult, error) {
	var token tokenResponse
	err := c.rest.DoJSON(ctx, httpclient.Request{
		Method: "POST",
		URL:    apiBase + "/oauth-service/oauth/token",
		Form: url.Values{
			"grant_type":    {"authorization_code"},
			"code":          {p.Code},
			"redirect_uri":  {c.oauth.RedirectURI},
			"client_id":     {c.oauth.ClientID},
			"client_secret": {c.oauth.ClientSecret},
		},
	}, &token)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	creds := model.Credentials{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if token.ExpiresIn > 0 {
		exp := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
		creds.ExpiresAt = &exp
	}

	return &model.CallbackResult{Credentials: creds}, nil
}

type orderItem struct {
	OrderItemID     string  `json:"orderItemId"`
	OrderItemStatus string  `json:"orderItemStatus"`
	FSN             string  `json:"fsn"`
	SKU             string  `json:"sku"`
	Quantity        float64 `json:"quantity"`
	ShipmentDate    string  `json:"shipmentDate"`
	DeliveryDate    string  `json:"deliveryDate"`
	PriceComponents struct {
		SellingPrice float64 `json:"sellingPrice"`
	} `json:"priceComponents"`
}

type listing struct {
	FSN               string  `json:"fsn"`
	SKU               string  `json:"sku"`
	ProductTitle      string  `json:"productTitle"`
	Status            string  `json:"status"`
	AvailableQuantity float64 `json:"availableQuantity"`
	MRP               float64 `json:"mrp"`
	SellingPrice      float64 `json:"sellingPrice"`
	Category          string  `json:"category"`
}

func (c *Client) FetchResources(ctx context.Context, creds model.Credentials) ([]model.UnifiedRecord, error) {
	var orders []orderItem
	var listings []listing

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := httpclient.WithRetry(gctx, httpclient.DefaultRetryAttempts, httpclient.DefaultRetryDelay, func() ([]orderItem, error) {
			return c.fetchOrders(gctx, creds)
		})
		if err != nil {
			return err
		}
		orders = res
		return nil
	})
	g.Go(func() error {
		res, err := httpclient.WithRetry(gctx, httpclient.DefaultRetryAttempts, httpclient.DefaultRetryDelay, func() ([]listing, error) {
			return c.fetchListings(gctx, creds)
		})
		if err != nil {
			return err
		}
		listings = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]model.UnifiedRecord, 0, len(orders)+len(listings))
	for _, o := range orders {
		records = append(records, model.UnifiedRecord{
			DataType:   model.DataTypeOrder,
			OriginalID: o.OrderItemID,
			Payload: model.UnifiedPayload{
				Name:   "Flipkart Order " + o.OrderItemID,
				Status: o.OrderItemStatus,
				Metrics: model.Metrics{
					Revenue: model.F(o.PriceComponents.SellingPrice),
					Orders:  model.F(1),
					Units:   model.F(o.Quantity),
				},
				Attributes: map[string]any{
					"fsn":          o.FSN,
					"sku":          o.SKU,
					"shipmentDate": o.ShipmentDate,
					"deliveryDate": o.DeliveryDate,
				},
			},
		})
	}
	for _, l := range listings {
		records = append(records, model.UnifiedRecord{
			DataType:   model.DataTypeProduct,
			OriginalID: l.FSN,
			Payload: model.UnifiedPayload{
				Name:   l.ProductTitle,
				Status: l.Status,
				Metrics: model.Metrics{
					Units: model.F(l.AvailableQuantity),
				},
				Attributes: map[string]any{
					"sku":          l.SKU,
					"mrp":          l.MRP,
					"sellingPrice": l.SellingPrice,
					"category":     l.Category,
				},
			},
		})
	}
	return records, nil
}

func (c *Client) fetchOrders(ctx context.Context, creds model.Credentials) ([]orderItem, error) {
	now := time.Now().UTC()
	filter, err := json.Marshal(map[string]any{
		"orderDate": map[string]string{
			"fromDate": now.Add(-orderWindow).Format("2006-01-02"),
			"toDate":   now.Format("2006-01-02"),
		},
	})
	if err != nil {
		return nil, err
	}

	var env struct {
		OrderItems []orderItem `json:"orderItems"`
	}
	err = c.rest.DoJSON(ctx, httpclient.Request{
		Method:  "GET",
		URL:     apiBase + "/sellers/orders",
		Query:   url.Values{"filter": {string(filter)}},
		Headers: c.authHeaders(creds),
	}, &env)
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	return env.OrderItems, nil
}

func (c *Client) fetchListings(ctx context.Context, creds model.Credentials) ([]listing, error) {
	var env struct {
		Listings []listing `json:"listings"`
	}
	err := c.rest.DoJSON(ctx, httpclient.Request{
		Method:  "GET",
		URL:     apiBase + "/sellers/listings",
		Headers: c.authHeaders(creds),
	}, &env)
	if err != nil {
		return nil, fmt.Errorf("fetch listings: %w", err)
	}
	return env.Listings, nil
}

func (c *Client) authHeaders(creds model.Credentials) map[string]string {
	return map[string]string{"Authorization": "Bearer " + creds.AccessToken}
}
