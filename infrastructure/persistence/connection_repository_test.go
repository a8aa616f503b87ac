package persistence

import (
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	"channelhub/domain/model"
	"channelhub/infrastructure/security"
)

func testCipher(t *testing.T) *security.Cipher {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	cipher, err := security.NewCipher(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	return cipher
}

func TestDecodeCredentials_RoundTrip(t *testing.T) {
	repo := &ConnectionRepository{cipher: testCipher(t)}

	creds := model.Credentials{
		AccessToken: "shpat_abc123",
		ShopDomain:  "acme.myshopify.com",
	}
	blob, err := repo.cipher.EncryptJSON(creds)
	require.NoError(t, err)

	got, err := repo.decodeCredentials(model.PlatformConnection{
		Status:      model.StatusConnected,
		Credentials: blob,
	})
	require.NoError(t, err)
	require.Equal(t, creds, got)
}

func TestDecodeCredentials_DisconnectedIsNotConnected(t *testing.T) {
	repo := &ConnectionRepository{cipher: testCipher(t)}

	blob, err := repo.cipher.EncryptJSON(model.Credentials{AccessToken: "tok"})
	require.NoError(t, err)

	_, err = repo.decodeCredentials(model.PlatformConnection{
		Status:      model.StatusDisconnected,
		Credentials: blob,
	})
	require.ErrorIs(t, err, model.ErrNotConnected)
}

func TestDecodeCredentials_DestroyedBlobIsNotConnected(t *testing.T) {
	repo := &ConnectionRepository{cipher: testCipher(t)}

	_, err := repo.decodeCredentials(model.PlatformConnection{
		Status: model.StatusConnected,
	})
	require.ErrorIs(t, err, model.ErrNotConnected)
}
