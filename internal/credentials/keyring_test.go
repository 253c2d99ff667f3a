package credentials

import (
	"testing"

	"github.com/99designs/keyring"
	"gotest.tools/assert"
)

func TestTokenLifecycle(t *testing.T) {
	store := NewStore(keyring.NewArrayKeyring(nil))

	token, err := store.GetToken("http://127.0.0.1:8080")
	assert.NilError(t, err)
	assert.Equal(t, token, "")

	assert.NilError(t, store.SetToken("http://127.0.0.1:8080/", "s3cret"))

	token, err = store.GetToken("http://127.0.0.1:8080")
	assert.NilError(t, err)
	assert.Equal(t, token, "s3cret")

	assert.NilError(t, store.DeleteToken("http://127.0.0.1:8080"))
	token, err = store.GetToken("http://127.0.0.1:8080")
	assert.NilError(t, err)
	assert.Equal(t, token, "")
}

func TestDeleteMissingToken(t *testing.T) {
	store := NewStore(keyring.NewArrayKeyring(nil))
	err := store.DeleteToken("http://miner:8080")
	assert.ErrorContains(t, err, "no token stored for 'http://miner:8080'")
}

func TestSetEmptyToken(t *testing.T) {
	store := NewStore(keyring.NewArrayKeyring(nil))
	assert.ErrorContains(t, store.SetToken("http://miner:8080", ""), "cannot be empty")
}
