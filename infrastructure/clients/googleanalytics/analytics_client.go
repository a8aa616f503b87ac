package googleanalytics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/option"

	"channelhub/domain/model"
	"channelhub/domain/repository"
	"channelhub/infrastructure/clients/httpclient"
	"channelhub/infrastructure/configuration"
)

var scopes = []string{
	"https://www.googleapis.com/auth/analytics.readonly",
}

// Client is the GA4 Data API adapter. A sync condenses the last 30 days of
// traffic into a single website_overview analytics record.
type Client struct {
	oauth configuration.OAuthClient
}

var _ repository.IPlatformAdapter = (*Client)(nil)

func NewClient(oauth configuration.OAuthClient) *Client {
	return &Client{oauth: oauth}
}

func (c *Client) Platform() string { return model.PlatformGoogleAnalytics }

func (c *Client) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.oauth.ClientID,
		ClientSecret: c.oauth.ClientSecret,
		RedirectURL:  c.oauth.RedirectURI,
		Scopes:       scopes,
		Endpoint:     google.Endpoint,
	}
}

func (c *Client) BuildAuthURL(state string, p model.AuthParams) (string, error) {
	if p.PropertyID == "" {
		return "", &model.ValidationError{Field: "propertyId", Reason: "GA4 property id is required"}
	}
	return c.oauthConfig().AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}

func (c *Client) ExchangeCode(ctx context.Context, p model.CallbackParams, sp model.StatePayload) (*model.CallbackResult, error) {
	if sp.PropertyID == "" {
		return nil, &model.ValidationError{Field: "propertyId", Reason: "property id missing from state"}
	}

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
		PropertyID:   sp.PropertyID,
	}
	if !token.Expiry.IsZero() {
		exp := token.Expiry
		creds.ExpiresAt = &exp
	}

	return &model.CallbackResult{
		Credentials: creds,
		Metadata:    map[string]string{"propertyId": sp.PropertyID},
	}, nil
}

// FetchResources runs a 30-day report and aggregates it into one overview
// record keyed website_overview so re-syncs overwrite in place.
func (c *Client) FetchResources(ctx context.Context, creds model.Credentials) ([]model.UnifiedRecord, error) {
	if creds.PropertyID == "" {
		return nil, &model.ValidationError{Field: "propertyId", Reason: "no GA4 property on the connection"}
	}

	token := &oauth2.Token{RefreshToken: creds.RefreshToken}
	httpClient := c.oauthConfig().Client(ctx, token)
	service, err := analyticsdata.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create analytics service: %w", err)
	}

	resp, err := httpclient.WithRetry(ctx, httpclient.DefaultRetryAttempts, httpclient.DefaultRetryDelay, func() (*analyticsdata.RunReportResponse, error) {
		return service.Properties.RunReport("properties/"+creds.PropertyID, &analyticsdata.RunReportRequest{
			DateRanges: []*analyticsdata.DateRange{{StartDate: "30daysAgo", EndDate: "today"}},
			Dimensions: []*analyticsdata.Dimension{{Name: "date"}},
			Metrics: []*analyticsdata.Metric{
				{Name: "sessions"},
				{Name: "totalUsers"},
				{Name: "conversions"},
				{Name: "totalRevenue"},
			},
		}).Context(ctx).Do()
	})
	if err != nil {
		return nil, fmt.Errorf("run report: %w", err)
	}

	var sessions, users, conversions, revenue float64
	for _, row := range resp.Rows {
		if len(row.MetricValues) < 4 {
			continue
		}
		sessions += parseMetric(row.MetricValues[0])
		users += parseMetric(row.MetricValues[1])
		conversions += parseMetric(row.MetricValues[2])
		revenue += parseMetric(row.MetricValues[3])
	}

	now := time.Now().UTC()
	return []model.UnifiedRecord{{
		DataType:   model.DataTypeAnalytics,
		OriginalID: "website_overview",
		Payload: model.UnifiedPayload{
			Name:   "Website Analytics",
			Status: "active",
			Metrics: model.Metrics{
				Sessions:    model.F(sessions),
				Conversions: model.F(conversions),
				Revenue:     model.F(revenue),
			},
			Attributes: map[string]any{
				"propertyId": creds.PropertyID,
				"totalUsers": users,
				"reportDate": now.Format(time.RFC3339),
			},
			DateRange: &model.DateRange{Start: now.AddDate(0, 0, -30), End: now},
		},
	}}, nil
}

func parseMetric(v *analyticsdata.MetricValue) float64 {
	if v == nil {
		return 0
	}
	f, err := strconv.ParseFloat(v.Value, 64)
	if err != nil {
		return 0
	}
	return f
}
