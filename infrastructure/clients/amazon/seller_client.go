package amazon

import (
	"context"
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
	lwaTokenURL   = "https://api.amazon.com/auth/o2/token"
	sellerAuthURL = "https://sellercentral.amazon.com/apps/authorize/consent"
	vendorAuthURL = "https://vendorcentral.amazon.com/apps/authorize/consent"
	spAPIBase     = "https://sellingpartnerapi-na.amazon.com"
	usMarketplace = "ATVPDKIKX0DER"
	sellerWindow  = 30 * 24 * time.Hour
)

// SellerClient is the SP-API adapter for Seller Central and Vendor Central.
// The two variants share the API surface; only the platform key and the
// consent host differ. Tokens come from Login with Amazon and are refreshed
// per sync.
type SellerClient struct {
	oauth    configuration.OAuthClient
	platform string
	authURL  string
	rest     *httpclient.Client
}

var _ repository.IPlatformAdapter = (*SellerClient)(nil)

func NewSellerClient(oauth configuration.OAuthClient) *SellerClient {
	return &SellerClient{
		oauth:    oauth,
		platform: model.PlatformAmazonSeller,
		authURL:  sellerAuthURL,
		rest:     httpclient.New(model.PlatformAmazonSeller),
	}
}

func NewVendorClient(oauth configuration.OAuthClient) *SellerClient {
	return &SellerClient{
		oauth:    oauth,
		platform: model.PlatformAmazonVendor,
		authURL:  vendorAuthURL,
		rest:     httpclient.New(model.PlatformAmazonVendor),
	}
}

func (c *SellerClient) Platform() string { return c.platform }

func (c *SellerClient) BuildAuthURL(state string, _ model.AuthParams) (string, error) {
	q := url.Values{}
	q.Set("application_id", c.oauth.ClientID)
	q.Set("redirect_uri", c.oauth.RedirectURI)
	q.Set("state", state)
	q.Set("version", "beta")
	return c.authURL + "?" + q.Encode(), nil
}

type lwaTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (c *SellerClient) ExchangeCode(ctx context.Context, p model.CallbackParams, _ model.StatePayload) (*model.CallbackResult, error) {
	token, err := c.lwaToken(ctx, url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {p.Code},
		"redirect_uri": {c.oauth.RedirectURI},
	})
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	creds := model.Credentials{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ClientID:     c.oauth.ClientID,
		ClientSecret: c.oauth.ClientSecret,
	}
	if token.ExpiresIn > 0 {
		exp := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
		creds.ExpiresAt = &exp
	}

	return &model.CallbackResult{
		Credentials: creds,
		Metadata:    map[string]string{"marketplace": usMarketplace, "region": c.region()},
	}, nil
}

type spOrder struct {
	AmazonOrderID          string  `json:"AmazonOrderId"`
	OrderStatus            string  `json:"OrderStatus"`
	PurchaseDate           string  `json:"PurchaseDate"`
	MarketplaceID          string  `json:"MarketplaceId"`
	FulfillmentChannel     string  `json:"FulfillmentChannel"`
	NumberOfItemsShipped   float64 `json:"NumberOfItemsShipped"`
	NumberOfItemsUnshipped float64 `json:"NumberOfItemsUnshipped"`
	OrderTotal             struct {
		Amount       float64 `json:"Amount,string"`
		CurrencyCode string  `json:"CurrencyCode"`
	} `json:"OrderTotal"`
}

type inventorySummary struct {
	ASIN            string  `json:"asin"`
	FNSKU           string  `json:"fnSku"`
	SellerSKU       string  `json:"sellerSku"`
	Condition       string  `json:"condition"`
	TotalQuantity   float64 `json:"totalQuantity"`
	LastUpdatedTime string  `json:"lastUpdatedTime"`
}

// FetchResources pulls the last 30 days of orders and the FBA inventory
// summaries, fanned out since they are independent endpoints.
func (c *SellerClient) FetchResources(ctx context.Context, creds model.Credentials) ([]model.UnifiedRecord, error) {
	accessToken, err := c.refreshAccessToken(ctx, creds)
	if err != nil {
		return nil, err
	}

	var orders []spOrder
	var inventory []inventorySummary

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := httpclient.WithRetry(gctx, httpclient.DefaultRetryAttempts, httpclient.DefaultRetryDelay, func() ([]spOrder, error) {
			return c.fetchOrders(gctx, accessToken)
		})
		if err != nil {
			return err
		}
		orders = res
		return nil
	})
	g.Go(func() error {
		res, err := httpclient.WithRetry(gctx, httpclient.DefaultRetryAttempts, httpclient.DefaultRetryDelay, func() ([]inventorySummary, error) {
			return c.fetchInventory(gctx, accessToken)
		})
		if err != nil {
			return err
		}
		inventory = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]model.UnifiedRecord, 0, len(orders)+len(inventory))
	for _, o := range orders {
		records = append(records, model.UnifiedRecord{
			DataType:   model.DataTypeOrder,
			OriginalID: o.AmazonOrderID,
			Payload: model.UnifiedPayload{
				Name:   "Amazon Order " + o.AmazonOrderID,
				Status: o.OrderStatus,
				Metrics: model.Metrics{
					Revenue: model.F(o.OrderTotal.Amount),
					Orders:  model.F(1),
					Units:   model.F(o.NumberOfItemsShipped + o.NumberOfItemsUnshipped),
				},
				Attributes: map[string]any{
					"marketplace":        o.MarketplaceID,
					"fulfillmentChannel": o.FulfillmentChannel,
					"purchaseDate":       o.PurchaseDate,
					"currency":           o.OrderTotal.CurrencyCode,
				},
			},
		})
	}
	for _, item := range inventory {
		records = append(records, model.UnifiedRecord{
			DataType:   model.DataTypeInventory,
			OriginalID: item.ASIN,
			Payload: model.UnifiedPayload{
				Name:   item.FNSKU,
				Status: "active",
				Metrics: model.Metrics{
					Units: model.F(item.TotalQuantity),
				},
				Attributes: map[string]any{
					"asin":        item.ASIN,
					"sellerSku":   item.SellerSKU,
					"condition":   item.Condition,
					"lastUpdated": item.LastUpdatedTime,
				},
			},
		})
	}
	return records, nil
}

func (c *SellerClient) fetchOrders(ctx context.Context, accessToken string) ([]spOrder, error) {
	var env struct {
		Payload struct {
			Orders []spOrder `json:"Orders"`
		} `json:"payload"`
	}
	err := c.rest.DoJSON(ctx, httpclient.Request{
		Method: "GET",
		URL:    spAPIBase + "/orders/v0/orders",
		Query: url.Values{
			"MarketplaceIds": {usMarketplace},
			"CreatedAfter":   {time.Now().Add(-sellerWindow).UTC().Format(time.RFC3339)},
			"OrderStatuses":  {"Shipped,Unshipped"},
		},
		Headers: map[string]string{"x-amz-access-token": accessToken},
	}, &env)
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	return env.Payload.Orders, nil
}

func (c *SellerClient) fetchInventory(ctx context.Context, accessToken string) ([]inventorySummary, error) {
	var env struct {
		Payload struct {
			InventorySummaries []inventorySummary `json:"inventorySummaries"`
		} `json:"payload"`
	}
	err := c.rest.DoJSON(ctx, httpclient.Request{
		Method: "GET",
		URL:    spAPIBase + "/fba/inventory/v1/summaries",
		Query: url.Values{
			"granularityType": {"Marketplace"},
			"granularityId":   {usMarketplace},
			"marketplaceIds":  {usMarketplace},
		},
		Headers: map[string]string{"x-amz-access-token": accessToken},
	}, &env)
	if err != nil {
		return nil, fmt.Errorf("fetch inventory: %w", err)
	}
	return env.Payload.InventorySummaries, nil
}

func (c *SellerClient) refreshAccessToken(ctx context.Context, creds model.Credentials) (string, error) {
	if creds.RefreshToken == "" {
		return "", &model.ValidationError{Field: "refreshToken", Reason: "no LWA refresh token on the connection"}
	}
	token, err := c.lwaToken(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {creds.RefreshToken},
	})
	if err != nil {
		return "", fmt.Errorf("refresh access token: %w", err)
	}
	return token.AccessToken, nil
}

func (c *SellerClient) lwaToken(ctx context.Context, form url.Values) (*lwaTokenResponse, error) {
	form.Set("client_id", c.oauth.ClientID)
	form.Set("client_secret", c.oauth.ClientSecret)

	var token lwaTokenResponse
	err := c.rest.DoJSON(ctx, httpclient.Request{
		Method: "POST",
		URL:    lwaTokenURL,
		Form:   form,
	}, &token)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (c *SellerClient) region() string {
	if c.oauth.Region != "" {
		return c.oauth.Region
	}
	return "na"
}
