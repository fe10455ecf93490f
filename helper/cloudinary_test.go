package helper

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourism_marketplace/config"
)

func TestLocalImageStoreWhenCloudinaryIsOff(t *testing.T) {
	dir := t.TempDir()
	store, err := NewImageStore(config.Config{UploadDir: dir, UploadURLPrefix: "/uploads"})
	require.NoError(t, err)
	require.IsType(t, &LocalImageStore{}, store)

	url, err := store.Save(context.Background(), "../../falls.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, "_falls.png"))

	written, err := os.ReadFile(filepath.Join(dir, filepath.Base(url)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(written))
}

func TestLocalImageStoreDelete(t *testing.T) {
	dir := t.TempDir()
	store := &LocalImageStore{Dir: dir, URLPrefix: "/uploads"}

	url, err := store.Save(context.Background(), "lake.jpg", strings.NewReader("jpg"))
	require.NoError(t, err)
	require.NoError(t, store.Delete(context.Background(), url))
	_, err = os.Stat(filepath.Join(dir, filepath.Base(url)))
	assert.True(t, os.IsNotExist(err))

	// foreign and already removed URLs are not errors
	assert.NoError(t, store.Delete(context.Background(), "https://cdn.example.com/other.jpg"))
	assert.NoError(t, store.Delete(context.Background(), url))
}

func TestExtractPublicID(t *testing.T) {
	url := "https://res.cloudinary.com/demo/image/upload/v1712345678/attractions/falls_1712345.png"
	assert.Equal(t, "attractions/falls_1712345", ExtractPublicID(url))

	nested := "https://res.cloudinary.com/demo/image/upload/tourism/attractions/falls.jpg"
	assert.Equal(t, "tourism/attractions/falls", ExtractPublicID(nested))

	assert.Equal(t, "", ExtractPublicID("falls.png"))
	assert.Equal(t, "", ExtractPublicID("https://cdn.example.com/image/upload/v1/falls.png"))
	assert.Equal(t, "", ExtractPublicID("/uploads/falls.png"))
}
