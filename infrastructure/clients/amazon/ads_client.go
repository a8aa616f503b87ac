package amazon

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"channelhub/domain/model"
	"channelhub/domain/repository"
	"channelhub/infrastructure/clients/httpclient"
	"channelhub/infrastructure/configuration"
)

const (
	adsAuthURL = "https://www.amazon.com/ap/oa"
	adsAPIBase = "https://advertising-api.amazon.com"
	adsScope   = "advertising::campaign_management"
)

// AdsClient is the Amazon Advertising API adapter. It shares the LWA token
// flow with the seller client but talks to the advertising endpoint under an
// advertising profile scope.
type AdsClient struct {
	oauth configuration.OAuthClient
	rest  *httpclient.Client
}

var _ repository.IPlatformAdapter = (*AdsClient)(nil)

func NewAdsClient(oauth configuration.OAuthClient) *AdsClient {
	return &AdsClient{oauth: oauth, rest: httpclient.New(model.PlatformAmazonAds)}
}

func (c *AdsClient) Platform() string { return model.PlatformAmazonAds }

func (c *AdsClient) BuildAuthURL(state string, _ model.AuthParams) (string, error) {
	q := url.Values{}
	q.Set("client_id", c.oauth.ClientID)
	q.Set("scope", adsScope)
	q.Set("response_type", "code")
	q.Set("redirect_uri", c.oauth.RedirectURI)
	q.Set("state", state)
	return adsAuthURL + "?" + q.Encode(), nil
}

type adsProfile struct {
	ProfileID   int64  `json:"profileId"`
	CountryCode string `json:"countryCode"`
	AccountInfo struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"accountInfo"`
}

func (c *AdsClient) ExchangeCode(ctx context.Context, p model.CallbackParams, _ model.StatePayload) (*model.CallbackResult, error) {
	var token lwaTokenResponse
	err := c.rest.DoJSON(ctx, httpclient.Request{
		Method: "POST",
		URL:    lwaTokenURL,
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
		ClientID:     c.oauth.ClientID,
		ClientSecret: c.oauth.ClientSecret,
	}
	if token.ExpiresIn > 0 {
		exp := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
		creds.ExpiresAt = &exp
	}

	profiles, err := c.fetchProfiles(ctx, creds.AccessToken)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, &model.ValidationError{Field: "profileId", Reason: "no advertising profiles for this Amazon account"}
	}
	creds.ProfileID = strconv.FormatInt(profiles[0].ProfileID, 10)

	result := &model.CallbackResult{
		Credentials: creds,
		Metadata:    map[string]string{"profileId": creds.ProfileID},
	}
	for _, prof := range profiles {
		result.SubAccounts = append(result.SubAccounts, model.SubAccount{
			Platform:     model.PlatformAmazonAds,
			SubAccountID: strconv.FormatInt(prof.ProfileID, 10),
			Name:         prof.AccountInfo.Name,
			Kind:         model.SubAccountAdAccount,
			Metadata: map[string]string{
				"countryCode": prof.CountryCode,
				"accountType": prof.AccountInfo.Type,
			},
		})
	}
	return result, nil
}

type adsCampaign struct {
	CampaignID    int64  `json:"campaignId"`
	Name          string `json:"name"`
	State         string `json:"state"`
	TargetingType string `json:"targetingType"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	Budget        struct {
		Amount float64 `json:"amount"`
	} `json:"budget"`
}

func (c *AdsClient) FetchResources(ctx context.Context, creds model.Credentials) ([]model.UnifiedRecord, error) {
	campaigns, err := httpclient.WithRetry(ctx, httpclient.DefaultRetryAttempts, httpclient.DefaultRetryDelay, func() ([]adsCampaign, error) {
		return c.fetchCampaigns(ctx, creds)
	})
	if err != nil {
		return nil, err
	}

	records := make([]model.UnifiedRecord, 0, len(campaigns))
	for _, cp := range campaigns {
		records = append(records, model.UnifiedRecord{
			DataType:   model.DataTypeCampaign,
			OriginalID: strconv.FormatInt(cp.CampaignID, 10),
			Payload: model.UnifiedPayload{
				Name:   cp.Name,
				Status: cp.State,
				Metrics: model.Metrics{
					Spend: model.F(cp.Budget.Amount),
				},
				Attributes: map[string]any{
					"targetingType": cp.TargetingType,
					"startDate":     cp.StartDate,
					"endDate":       cp.EndDate,
				},
			},
		})
	}
	return records, nil
}

func (c *AdsClient) fetchProfiles(ctx context.Context, accessToken string) ([]adsProfile, error) {
	var profiles []adsProfile
	err := c.rest.DoJSON(ctx, httpclient.Request{
		Method: "GET",
		URL:    adsAPIBase + "/v2/profiles",
		Headers: map[string]string{
			"Authorization":                   "Bearer " + accessToken,
			"Amazon-Advertising-API-ClientId": c.oauth.ClientID,
		},
	}, &profiles)
	if err != nil {
		return nil, fmt.Errorf("fetch profiles: %w", err)
	}
	return profiles, nil
}

func (c *AdsClient) fetchCampaigns(ctx context.Context, creds model.Credentials) ([]adsCampaign, error) {
	var campaigns []adsCampaign
	err := c.rest.DoJSON(ctx, httpclient.Request{
		Method: "GET",
		URL:    adsAPIBase + "/v2/campaigns",
		Headers: map[string]string{
			"Authorization":                   "Bearer " + creds.AccessToken,
			"Amazon-Advertising-API-ClientId": creds.ClientID,
			"Amazon-Advertising-API-Scope":    creds.ProfileID,
		},
	}, &campaigns)
	if err != nil {
		return nil, fmt.Errorf("fetch campaigns: %w", err)
	}
	return campaigns, nil
}
