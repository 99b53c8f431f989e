package oss

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContentType(t *testing.T) {
	tests := map[string]string{
		".jpg":  "image/jpeg",
		".JPEG": "image/jpeg",
		".png":  "image/png",
		".gif":  "image/gif",
		".webp": "image/webp",
		".exe":  "application/octet-stream",
		"":      "application/octet-stream",
	}
	for ext, want := range tests {
		assert.Equal(t, want, ContentType(ext), "ext %q", ext)
	}
}

func TestAvatarKey(t *testing.T) {
	now := time.Unix(1700000000, 0)
	assert.Equal(t, "avatars/42/1700000000.png", AvatarKey(42, ".png", now))
}

func TestClient_GetURL(t *testing.T) {
	t.Run("cdn domain", func(t *testing.T) {
		c := &Client{cdnDomain: "cdn.example.com"}
		assert.Equal(t, "https://cdn.example.com/avatars/1/1.png", c.GetURL("avatars/1/1.png"))
	})

	t.Run("bucket endpoint", func(t *testing.T) {
		c := &Client{bucketName: "rewards", endpoint: "oss-cn-hangzhou.aliyuncs.com"}
		assert.Equal(t, "https://rewards.oss-cn-hangzhou.aliyuncs.com/a.png", c.GetURL("a.png"))
	})
}

func TestClient_ExtractObjectKey(t *testing.T) {
	c := &Client{cdnDomain: "cdn.example.com"}

	assert.Equal(t, "avatars/1/1.png", c.ExtractObjectKey("https://cdn.example.com/avatars/1/1.png"))
	assert.Equal(t, "avatars/2/3.jpg", c.ExtractObjectKey("https://rewards.oss-cn-hangzhou.aliyuncs.com/avatars/2/3.jpg"))
	assert.Equal(t, "file.png", c.ExtractObjectKey("file.png"))
}
