package secret_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/secret"
	"storefront/internal/storage"
)

func TestKVStore(t *testing.T) {
	kv := storage.NewMemory()
	s := secret.NewKVStore(kv)

	got, err := s.Get("session")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Set("session", []byte(`{"access_token":"t"}`)))
	got, err = s.Get("session")
	require.NoError(t, err)
	assert.Equal(t, `{"access_token":"t"}`, string(got))

	_, found, err := kv.Get(t.Context(), "secret:session")
	require.NoError(t, err)
	assert.True(t, found, "secrets live under their own prefix")

	require.NoError(t, s.Delete("session"))
	got, err = s.Get("session")
	require.NoError(t, err)
	assert.Nil(t, got)
}
