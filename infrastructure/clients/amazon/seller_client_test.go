package amazon

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channelhub/domain/model"
	"channelhub/infrastructure/configuration"
)

func testOAuth() configuration.OAuthClient {
	return configuration.OAuthClient{
		ClientID:    "amzn1.application-oa2-client.abc",
		RedirectURI: "https://api.example.com/auth/amazon/callback",
	}
}

func TestSellerAndVendorVariants(t *testing.T) {
	seller := NewSellerClient(testOAuth())
	vendor := NewVendorClient(testOAuth())

	assert.Equal(t, model.PlatformAmazonSeller, seller.Platform())
	assert.Equal(t, model.PlatformAmazonVendor, vendor.Platform())
}

func TestBuildAuthURL_ConsentHostPerVariant(t *testing.T) {
	sellerURL, err := NewSellerClient(testOAuth()).BuildAuthURL("nonce", model.AuthParams{})
	require.NoError(t, err)
	vendorURL, err := NewVendorClient(testOAuth()).BuildAuthURL("nonce", model.AuthParams{})
	require.NoError(t, err)

	assert.Contains(t, sellerURL, "sellercentral.amazon.com")
	assert.Contains(t, vendorURL, "vendorcentral.amazon.com")
	for _, u := range []string{sellerURL, vendorURL} {
		assert.Contains(t, u, "state=nonce")
		assert.Contains(t, u, "version=beta")
	}
}

func TestFetchResources_RequiresRefreshToken(t *testing.T) {
	client := NewVendorClient(testOAuth())

	_, err := client.FetchResources(context.Background(), model.Credentials{})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "refreshToken", verr.Field)
}
