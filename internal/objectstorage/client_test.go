package objectstorage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/pharmacy-management/internal/config"
	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c := NewClient(config.ObjectStorage{
		StorageURL:   srv.URL + "/",
		StorageKey:   "service-key",
		AvatarBucket: "avatars",
	})
	c.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return c
}

func TestClient_UploadAvatar(t *testing.T) {
	var gotPath, gotAuth, gotType string
	var gotBody []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"Key":"avatars/users/x"}`))
	})

	url, err := c.UploadAvatar(context.Background(), "user-1", &models.Avatar{
		Filename:    "Me.PNG",
		ContentType: "image/png",
		Data:        []byte("png-bytes"),
	})
	require.NoError(t, err)

	assert.Equal(t, "/storage/v1/object/avatars/users/user-1-1700000000123.png", gotPath)
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, []byte("png-bytes"), gotBody)
	assert.Equal(t, c.baseURL+"/storage/v1/object/public/avatars/users/user-1-1700000000123.png", url)
}

func TestClient_UploadAvatar_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"Duplicate"}`, http.StatusConflict)
	})

	_, err := c.UploadAvatar(context.Background(), "user-1", &models.Avatar{Filename: "a.jpg", ContentType: "image/jpeg"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")
}

func TestClient_DeleteAvatar(t *testing.T) {
	var gotPrefixes map[string][]string
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		gotPath = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotPrefixes))
		w.WriteHeader(http.StatusOK)
	})

	err := c.DeleteAvatar(context.Background(), c.PublicURL("users/user-1-1700000000123.png"))
	require.NoError(t, err)

	assert.Equal(t, "/storage/v1/object/avatars", gotPath)
	assert.Equal(t, []string{"users/user-1-1700000000123.png"}, gotPrefixes["prefixes"])
}

func TestClient_DeleteAvatar_EmptyURL(t *testing.T) {
	called := false
	c := newTestClient(t, func(_ http.ResponseWriter, _ *http.Request) { called = true })

	require.NoError(t, c.DeleteAvatar(context.Background(), ""))
	assert.False(t, called)
}

func TestClient_NotConfigured(t *testing.T) {
	c := NewClient(config.ObjectStorage{AvatarBucket: "avatars"})

	_, err := c.UploadAvatar(context.Background(), "user-1", &models.Avatar{Filename: "a.png"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	err = c.DeleteAvatar(context.Background(), "https://storage/x/users/a.png")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
