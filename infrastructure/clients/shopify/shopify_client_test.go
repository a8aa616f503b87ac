package shopify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channelhub/domain/model"
	"channelhub/infrastructure/configuration"
)

func TestNormalizeShopDomain(t *testing.T) {
	assert.Equal(t, "acme.myshopify.com", NormalizeShopDomain("acme"))
	assert.Equal(t, "acme.myshopify.com", NormalizeShopDomain("ACME"))
	assert.Equal(t, "acme.myshopify.com", NormalizeShopDomain("https://acme.myshopify.com/"))
	assert.Equal(t, "acme.myshopify.com", NormalizeShopDomain("  acme.myshopify.com "))
	assert.Equal(t, "", NormalizeShopDomain("   "))
}

func TestBuildAuthURL(t *testing.T) {
	client := NewClient(configuration.OAuthClient{
		ClientID:    "key",
		RedirectURI: "https://app.example.com/auth/shopify/callback",
	})

	authURL, err := client.BuildAuthURL("nonce123", model.AuthParams{ShopDomain: "acme"})
	require.NoError(t, err)
	assert.Contains(t, authURL, "https://acme.myshopify.com/admin/oauth/authorize?")
	assert.Contains(t, authURL, "client_id=key")
	assert.Contains(t, authURL, "state=nonce123")
	assert.Contains(t, authURL, "read_orders")
}

func TestBuildAuthURL_MissingShopDomain(t *testing.T) {
	client := NewClient(configuration.OAuthClient{ClientID: "key"})

	_, err := client.BuildAuthURL("nonce123", model.AuthParams{})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "shopDomain", verr.Field)
}
