package session_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/session"
)

func TestFileStore_Token(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr error
	}{
		{name: "restaurant key first", content: `{"restaurantToken":"r-tok","token":"g-tok"}`, want: "r-tok"},
		{name: "generic fallback", content: `{"token":"g-tok"}`, want: "g-tok"},
		{name: "blank restaurant key", content: `{"restaurantToken":"  ","token":"g-tok"}`, want: "g-tok"},
		{name: "neither", content: `{}`, wantErr: session.ErrNoToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "session.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			store, err := session.NewFileStore(path)
			require.NoError(t, err)

			got, err := store.Token()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileStore_MissingFile(t *testing.T) {
	store, err := session.NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	_, err = store.Token()
	assert.ErrorIs(t, err, session.ErrNoToken)
}

func TestFileStore_Set(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store, err := session.NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Set(session.KeyToken, "g-tok"))
	require.NoError(t, store.Set(session.KeyRestaurantToken, "r-tok"))

	reopened, err := session.NewFileStore(path)
	require.NoError(t, err)
	got, err := reopened.Token()
	require.NoError(t, err)
	assert.Equal(t, "r-tok", got)

	require.NoError(t, reopened.Set(session.KeyRestaurantToken, ""))
	got, err = reopened.Token()
	require.NoError(t, err)
	assert.Equal(t, "g-tok", got)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), session.KeyRestaurantToken)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	_, err := session.NewFileStore(path)
	assert.Error(t, err)
}
