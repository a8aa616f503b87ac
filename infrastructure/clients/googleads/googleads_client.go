package googleads

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"channelhub/domain/model"
	"channelhub/domain/repository"
	"channelhub/infrastructure/clients/httpclient"
	"channelhub/infrastructure/configuration"
)

const (
	apiBase      = "https://googleads.googleapis.com/v16"
	adwordsScope = "https://www.googleapis.com/auth/adwords"
)

// Client is the Google Ads API adapter. It keeps only the refresh token;
// access tokens are minted per call through the oauth2 transport.
type Client struct {
	oauth          configuration.OAuthClient
	developerToken string
}

var _ repository.IPlatformAdapter = (*Client)(nil)

func NewClient(oauth configuration.OAuthClient) *Client {
	return &Client{oauth: oauth, developerToken: oauth.DeveloperToken}
}

func (c *Client) Platform() string { return model.PlatformGoogleAds }

func (c *Client) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.oauth.ClientID,
		ClientSecret: c.oauth.ClientSecret,
		RedirectURL:  c.oauth.RedirectURI,
		Scopes:       []string{adwordsScope},
		Endpoint:     google.Endpoint,
	}
}

func (c *Client) BuildAuthURL(state string, _ model.AuthParams) (string, error) {
	// Offline access with forced consent so a refresh token is always issued.
	return c.oauthConfig().AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}

func (c *Client) ExchangeCode(ctx context.Context, p model.CallbackParams, _ model.StatePayload) (*model.CallbackResult, error) {
	token, err := c.oauthConfig().Exchange(ctx, p.Code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	if token.RefreshToken == "" {
		return nil, &model.ValidationError{Field: "refreshToken", Reason: "Google did not return a refresh token"}
	}

	creds := model.Credentials{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if !token.Expiry.IsZero() {
		exp := token.Expiry
		creds.ExpiresAt = &exp
	}

	customerIDs, err := c.listAccessibleCustomers(ctx, creds)
	if err != nil {
		return nil, err
	}
	if len(customerIDs) == 0 {
		return nil, &model.ValidationError{Field: "customerId", Reason: "no accessible Google Ads customers"}
	}
	creds.CustomerID = customerIDs[0]

	result := &model.CallbackResult{
		Credentials: creds,
		Metadata:    map[string]string{"customerId": creds.CustomerID},
	}
	for _, id := range customerIDs {
		result.SubAccounts = append(result.SubAccounts, model.SubAccount{
			Platform:     model.PlatformGoogleAds,
			SubAccountID: id,
			Name:         "Customer " + id,
			Kind:         model.SubAccountAdAccount,
		})
	}
	return result, nil
}

const campaignQuery = `SELECT campaign.id, campaign.name, campaign.status, ` +
	`campaign.advertising_channel_type, campaign_budget.amount_micros, ` +
	`metrics.cost_micros, metrics.impressions, metrics.clicks, metrics.ctr, ` +
	`metrics.average_cpc, metrics.conversions ` +
	`FROM campaign WHERE segments.date DURING LAST_30_DAYS`

type searchResponse struct {
	Results []struct {
		Campaign struct {
			ID                     string `json:"id"`
			Name                   string `json:"name"`
			Status                 string `json:"status"`
			AdvertisingChannelType string `json:"advertisingChannelType"`
		} `json:"campaign"`
		CampaignBudget struct {
			AmountMicros string `json:"amountMicros"`
		} `json:"campaignBudget"`
		Metrics struct {
			CostMicros  float64 `json:"costMicros,string"`
			Impressions float64 `json:"impressions,string"`
			Clicks      float64 `json:"clicks,string"`
			CTR         float64 `json:"ctr"`
			AverageCPC  float64 `json:"averageCpc"`
			Conversions float64 `json:"conversions"`
		} `json:"metrics"`
	} `json:"results"`
}

// FetchResources runs the campaign report for the stored customer. Cost comes
// back in micros and is normalized to currency units.
func (c *Client) FetchResources(ctx context.Context, creds model.Credentials) ([]model.UnifiedRecord, error) {
	if creds.CustomerID == "" {
		return nil, &model.ValidationError{Field: "customerId", Reason: "no Google Ads customer on the connection"}
	}
	rest := c.restClient(ctx, creds)

	resp, err := httpclient.WithRetry(ctx, httpclient.DefaultRetryAttempts, httpclient.DefaultRetryDelay, func() (searchResponse, error) {
		var out searchResponse
		err := rest.DoJSON(ctx, httpclient.Request{
			Method:  "POST",
			URL:     fmt.Sprintf("%s/customers/%s/googleAds:search", apiBase, creds.CustomerID),
			Headers: c.apiHeaders(),
			Body:    map[string]string{"query": campaignQuery},
		}, &out)
		return out, err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch campaigns: %w", err)
	}

	records := make([]model.UnifiedRecord, 0, len(resp.Results))
	for _, row := range resp.Results {
		records = append(records, model.UnifiedRecord{
			DataType:   model.DataTypeCampaign,
			OriginalID: row.Campaign.ID,
			Payload: model.UnifiedPayload{
				Name:   row.Campaign.Name,
				Status: strings.ToLower(row.Campaign.Status),
				Metrics: model.Metrics{
					Spend:       model.F(row.Metrics.CostMicros / 1e6),
					Impressions: model.F(row.Metrics.Impressions),
					Clicks:      model.F(row.Metrics.Clicks),
					CTR:         model.F(row.Metrics.CTR),
					CPC:         model.F(row.Metrics.AverageCPC / 1e6),
					Conversions: model.F(row.Metrics.Conversions),
				},
				Attributes: map[string]any{
					"customerId":   creds.CustomerID,
					"channelType":  row.Campaign.AdvertisingChannelType,
					"budgetMicros": row.CampaignBudget.AmountMicros,
				},
			},
		})
	}
	return records, nil
}

func (c *Client) listAccessibleCustomers(ctx context.Context, creds model.Credentials) ([]string, error) {
	rest := c.restClient(ctx, creds)

	var out struct {
		ResourceNames []string `json:"resourceNames"`
	}
	err := rest.DoJSON(ctx, httpclient.Request{
		Method:  "GET",
		URL:     apiBase + "/customers:listAccessibleCustomers",
		Headers: c.apiHeaders(),
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("list accessible customers: %w", err)
	}

	ids := make([]string, 0, len(out.ResourceNames))
	for _, name := range out.ResourceNames {
		// resource names look like "customers/1234567890"
		if idx := strings.LastIndex(name, "/"); idx >= 0 {
			ids = append(ids, name[idx+1:])
		}
	}
	return ids, nil
}

func (c *Client) restClient(ctx context.Context, creds model.Credentials) *httpclient.Client {
	token := &oauth2.Token{RefreshToken: creds.RefreshToken}
	return httpclient.NewWithClient(model.PlatformGoogleAds, c.oauthConfig().Client(ctx, token))
}

func (c *Client) apiHeaders() map[string]string {
	return map[string]string{"developer-token": c.developerToken}
}
