package facebook

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"channelhub/domain/model"
	"channelhub/domain/repository"
	"channelhub/infrastructure/clients/httpclient"
	"channelhub/infrastructure/configuration"
	"channelhub/infrastructure/logger"
)

const (
	authURL  = "https://www.facebook.com/v19.0/dialog/oauth"
	graphURL = "https://graph.facebook.com/v19.0"
)

var scopes = strings.Join([]string{
	"public_profile",
	"email",
	"ads_management",
	"ads_read",
	"business_management",
}, ",")

// Client is the Meta Marketing API adapter. Each ad account discovered under
// the user token becomes one toggleable sub-account.
type Client struct {
	oauth configuration.OAuthClient
	rest  *httpclient.Client
}

var (
	_ repository.IPlatformAdapter = (*Client)(nil)
	_ repository.IInsightsFetcher = (*Client)(nil)
)

func NewClient(oauth configuration.OAuthClient) *Client {
	return &Client{oauth: oauth, rest: httpclient.New(model.PlatformFacebookAds)}
}

func (c *Client) Platform() string { return model.PlatformFacebookAds }

func (c *Client) BuildAuthURL(state string, _ model.AuthParams) (string, error) {
	q := url.Values{}
	q.Set("client_id", c.oauth.ClientID)
	q.Set("redirect_uri", c.oauth.RedirectURI)
	q.Set("state", state)
	q.Set("scope", scopes)
	q.Set("response_type", "code")
	return authURL + "?" + q.Encode(), nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type adAccount struct {
	ID          string `json:"id"`
	AccountID   string `json:"account_id"`
	AccountName string `json:"account_name"`
	Name        string `json:"name"`
	Currency    string `json:"currency"`
}

// ExchangeCode trades the code for a short-lived token, upgrades it to a
// long-lived one, and discovers the user's ad accounts.
func (c *Client) ExchangeCode(ctx context.Context, p model.CallbackParams, _ model.StatePayload) (*model.CallbackResult, error) {
	var short tokenResponse
	err := c.rest.DoJSON(ctx, httpclient.Request{
		Method: "GET",
		URL:    graphURL + "/oauth/access_token",
		Query: url.Values{
			"client_id":     {c.oauth.ClientID},
			"client_secret": {c.oauth.ClientSecret},
			"redirect_uri":  {c.oauth.RedirectURI},
			"code":          {p.Code},
		},
	}, &short)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	var long tokenResponse
	err = c.rest.DoJSON(ctx, httpclient.Request{
		Method: "GET",
		URL:    graphURL + "/oauth/access_token",
		Query: url.Values{
			"grant_type":        {"fb_exchange_token"},
			"client_id":         {c.oauth.ClientID},
			"client_secret":     {c.oauth.ClientSecret},
			"fb_exchange_token": {short.AccessToken},
		},
	}, &long)
	if err != nil {
		return nil, fmt.Errorf("exchange long-lived token: %w", err)
	}

	creds := model.Credentials{AccessToken: long.AccessToken}
	if long.ExpiresIn > 0 {
		exp := time.Now().Add(time.Duration(long.ExpiresIn) * time.Second)
		creds.ExpiresAt = &exp
	}

	accounts, err := c.fetchAdAccounts(ctx, creds)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, &model.ValidationError{Field: "adAccounts", Reason: "no ad accounts found for this Facebook user"}
	}

	result := &model.CallbackResult{
		Credentials: creds,
		Metadata:    map[string]string{"adAccounts": strconv.Itoa(len(accounts))},
	}
	for _, acc := range accounts {
		result.SubAccounts = append(result.SubAccounts, model.SubAccount{
			Platform:     model.PlatformFacebookAds,
			SubAccountID: acc.ID,
			Name:         accountName(acc),
			Kind:         model.SubAccountAdAccount,
			Metadata: map[string]string{
				"accountId": acc.AccountID,
				"currency":  acc.Currency,
			},
		})
	}
	return result, nil
}

type campaign struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Objective   string `json:"objective"`
	DailyBudget string `json:"daily_budget"`
}

type insightRow struct {
	CampaignID   string `json:"campaign_id"`
	CampaignName string `json:"campaign_name"`
	Spend        string `json:"spend"`
	Impressions  string `json:"impressions"`
	Clicks       string `json:"clicks"`
	CTR          string `json:"ctr"`
	CPC          string `json:"cpc"`
	CPM          string `json:"cpm"`
	DateStart    string `json:"date_start"`
	DateStop     string `json:"date_stop"`
}

// FetchResources walks every ad account visible to the token and maps its
// campaigns. A failing account is logged and skipped so one broken account
// does not sink the whole sync.
func (c *Client) FetchResources(ctx context.Context, creds model.Credentials) ([]model.UnifiedRecord, error) {
	accounts, err := httpclient.WithRetry(ctx, httpclient.DefaultRetryAttempts, httpclient.DefaultRetryDelay, func() ([]adAccount, error) {
		return c.fetchAdAccounts(ctx, creds)
	})
	if err != nil {
		return nil, err
	}

	var records []model.UnifiedRecord
	for _, acc := range accounts {
		accRecords, err := c.fetchAccountCampaigns(ctx, creds, acc)
		if err != nil {
			logger.GetLogger().WithField("adAccount", acc.ID).WithField("error", err).Warn("Skipping ad account after fetch failure")
			continue
		}
		records = append(records, accRecords...)
	}
	return records, nil
}

func (c *Client) fetchAccountCampaigns(ctx context.Context, creds model.Credentials, acc adAccount) ([]model.UnifiedRecord, error) {
	campaigns, err := httpclient.WithRetry(ctx, httpclient.DefaultRetryAttempts, httpclient.DefaultRetryDelay, func() ([]campaign, error) {
		return c.fetchCampaigns(ctx, creds, acc.ID)
	})
	if err != nil {
		return nil, err
	}

	// Insights are optional detail; a campaign without metrics still syncs.
	insights, err := c.fetchInsights(ctx, creds, acc.ID)
	if err != nil {
		logger.GetLogger().WithField("adAccount", acc.ID).WithField("error", err).Warn("Insights unavailable, syncing campaigns without metrics")
		insights = nil
	}
	byCampaign := make(map[string]insightRow, len(insights))
	for _, row := range insights {
		byCampaign[row.CampaignID] = row
	}

	records := make([]model.UnifiedRecord, 0, len(campaigns))
	for _, cp := range campaigns {
		payload := model.UnifiedPayload{
			Name:   cp.Name,
			Status: cp.Status,
			Attributes: map[string]any{
				"adAccountId": acc.ID,
				"accountName": accountName(acc),
				"objective":   cp.Objective,
				"dailyBudget": cp.DailyBudget,
			},
		}
		if row, ok := byCampaign[cp.ID]; ok {
			payload.Metrics = model.Metrics{
				Spend:       model.F(parseNum(row.Spend)),
				Impressions: model.F(parseNum(row.Impressions)),
				Clicks:      model.F(parseNum(row.Clicks)),
				CTR:         model.F(parseNum(row.CTR)),
				CPC:         model.F(parseNum(row.CPC)),
				CPM:         model.F(parseNum(row.CPM)),
			}
			payload.DateRange = parseDateRange(row.DateStart, row.DateStop)
		}
		records = append(records, model.UnifiedRecord{
			DataType:   model.DataTypeCampaign,
			OriginalID: cp.ID,
			Payload:    payload,
		})
	}
	return records, nil
}

// FetchInsights refreshes the cached metrics for one ad account sub-account.
func (c *Client) FetchInsights(ctx context.Context, creds model.Credentials, sub model.SubAccount) (map[string]any, error) {
	campaigns, err := httpclient.WithRetry(ctx, httpclient.DefaultRetryAttempts, httpclient.DefaultRetryDelay, func() ([]campaign, error) {
		return c.fetchCampaigns(ctx, creds, sub.SubAccountID)
	})
	if err != nil {
		return nil, err
	}
	insights, err := httpclient.WithRetry(ctx, httpclient.DefaultRetryAttempts, httpclient.DefaultRetryDelay, func() ([]insightRow, error) {
		return c.fetchInsights(ctx, creds, sub.SubAccountID)
	})
	if err != nil {
		return nil, err
	}

	var spend, impressions, clicks float64
	for _, row := range insights {
		spend += parseNum(row.Spend)
		impressions += parseNum(row.Impressions)
		clicks += parseNum(row.Clicks)
	}
	return map[string]any{
		"campaigns":   len(campaigns),
		"spend":       spend,
		"impressions": impressions,
		"clicks":      clicks,
		"period":      "last_30d",
	}, nil
}

func (c *Client) fetchAdAccounts(ctx context.Context, creds model.Credentials) ([]adAccount, error) {
	var env struct {
		Data []adAccount `json:"data"`
	}
	err := c.rest.DoJSON(ctx, httpclient.Request{
		Method: "GET",
		URL:    graphURL + "/me/adaccounts",
		Query: url.Values{
			"access_token": {creds.AccessToken},
			"fields":       {"id,account_id,account_name,name,currency"},
		},
	}, &env)
	if err != nil {
		return nil, fmt.Errorf("fetch ad accounts: %w", err)
	}
	return env.Data, nil
}

func (c *Client) fetchCampaigns(ctx context.Context, creds model.Credentials, adAccountID string) ([]campaign, error) {
	var env struct {
		Data []campaign `json:"data"`
	}
	err := c.rest.DoJSON(ctx, httpclient.Request{
		Method: "GET",
		URL:    fmt.Sprintf("%s/%s/campaigns", graphURL, adAccountID),
		Query: url.Values{
			"access_token": {creds.AccessToken},
			"fields":       {"id,name,status,objective,daily_budget"},
		},
	}, &env)
	if err != nil {
		return nil, fmt.Errorf("fetch campaigns: %w", err)
	}
	return env.Data, nil
}

func (c *Client) fetchInsights(ctx context.Context, creds model.Credentials, adAccountID string) ([]insightRow, error) {
	var env struct {
		Data []insightRow `json:"data"`
	}
	err := c.rest.DoJSON(ctx, httpclient.Request{
		Method: "GET",
		URL:    fmt.Sprintf("%s/%s/insights", graphURL, adAccountID),
		Query: url.Values{
			"access_token": {creds.AccessToken},
			"level":        {"campaign"},
			"fields":       {"campaign_id,campaign_name,impressions,clicks,spend,ctr,cpc,cpm"},
			"date_preset":  {"last_30d"},
		},
	}, &env)
	if err != nil {
		return nil, fmt.Errorf("fetch insights: %w", err)
	}
	return env.Data, nil
}

func accountName(acc adAccount) string {
	if acc.AccountName != "" {
		return acc.AccountName
	}
	return acc.Name
}

func parseNum(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseDateRange(start, stop string) *model.DateRange {
	s, err := time.Parse("2006-01-02", start)
	if err != nil {
		return nil
	}
	e, err := time.Parse("2006-01-02", stop)
	if err != nil {
		return nil
	}
	return &model.DateRange{Start: s, End: e}
}
