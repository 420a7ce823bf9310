package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUploader(t *testing.T) {
	ctx := context.Background()
	u := NewMemoryUploader()

	res, err := u.Upload(ctx, "tournaments/a/1.json", "application/json", strings.NewReader(`{"ok":true}`))
	require.NoError(t, err)
	assert.Equal(t, "tournaments/a/1.json", res.Key)
	assert.Empty(t, res.Location)
	assert.Len(t, res.ETag, 32)

	body, contentType, ok := u.Object(res.Key)
	require.True(t, ok)
	assert.Equal(t, `{"ok":true}`, string(body))
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, []string{res.Key}, u.Keys())

	require.NoError(t, u.Delete(ctx, res.Key))
	_, _, ok = u.Object(res.Key)
	assert.False(t, ok)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = u.Upload(cancelled, "k", "text/plain", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCloudflareR2UploaderConfig(t *testing.T) {
	assert.False(t, CloudflareR2UploaderConfig{}.Enabled())
	assert.True(t, CloudflareR2UploaderConfig{BucketName: "archive"}.Enabled())

	_, err := NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{BucketName: "archive"})
	assert.Error(t, err, "keys and account are required")

	_, err = NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{
		AccountID: "acc", AccessKeyID: "id", SecretAccessKey: "key", BucketName: "archive",
		PublicBaseURL: "://bad",
	})
	assert.Error(t, err)
}

func TestPublicURL(t *testing.T) {
	base, err := url.Parse("https://cdn.example.com/archive/")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/archive/tournaments/x/1.json", publicURL(base, "tournaments/x/1.json"))
	assert.Equal(t, "https://cdn.example.com/archive/a.json", publicURL(base, "/a.json"))
	assert.Empty(t, publicURL(nil, "a.json"))
	assert.Empty(t, publicURL(base, ""))
}
