package security

import (
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(key)
}

func TestCipher_RoundTrip(t *testing.T) {
	c, err := NewCipher(testKey(t))
	require.NoError(t, err)

	plaintext := []byte(`{"access_token":"shpat_abc123","shop_domain":"mystore.myshopify.com"}`)
	blob, err := c.Encrypt(plaintext)
	require.NoError(t, err)
	require.NotContains(t, blob, "shpat_abc123")

	got, err := c.Decrypt(blob)
	require.NoError(t, err)
	require.Equal(t, plaintext, got)
}

func TestCipher_JSONRoundTrip(t *testing.T) {
	c, err := NewCipher(testKey(t))
	require.NoError(t, err)

	in := map[string]string{"access_token": "tok", "refresh_token": "ref"}
	blob, err := c.EncryptJSON(in)
	require.NoError(t, err)

	var out map[string]string
	require.NoError(t, c.DecryptJSON(blob, &out))
	require.Equal(t, in, out)
}

func TestCipher_RejectsBadKey(t *testing.T) {
	_, err := NewCipher("not-base64!!")
	require.Error(t, err)

	short := base64.StdEncoding.EncodeToString([]byte("too-short"))
	_, err = NewCipher(short)
	require.Error(t, err)
}

func TestCipher_RejectsTamperedCiphertext(t *testing.T) {
	c, err := NewCipher(testKey(t))
	require.NoError(t, err)

	blob, err := c.Encrypt([]byte("secret"))
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(blob)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	_, err = c.Decrypt(base64.RawURLEncoding.EncodeToString(raw))
	require.Error(t, err)
}
