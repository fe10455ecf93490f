package helper

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"tourism_marketplace/config"
)

// ImageStore saves an uploaded image and returns its public URL.
type ImageStore interface {
	Save(ctx context.Context, name string, file io.Reader) (string, error)
	// Delete removes an image previously returned by Save. URLs the store
	// does not own are ignored.
	Delete(ctx context.Context, url string) error
}

// NewImageStore uses Cloudinary when it is configured, the local upload
// directory otherwise.
func NewImageStore(cfg config.Config) (ImageStore, error) {
	if !cfg.CloudinaryEnabled() {
		return &LocalImageStore{Dir: cfg.UploadDir, URLPrefix: cfg.UploadURLPrefix}, nil
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &CloudinaryImageStore{cld: cld, Folder: "attractions"}, nil
}

type CloudinaryImageStore struct {
	cld    *cloudinary.Cloudinary
	Folder string
}

func (s *CloudinaryImageStore) Save(ctx context.Context, name string, file io.Reader) (string, error) {
	publicID := fmt.Sprintf("%s_%d", strings.TrimSuffix(name, filepath.Ext(name)), time.Now().UnixNano())
	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       s.Folder,
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", result.Error.Message)
	}
	return result.SecureURL, nil
}

func (s *CloudinaryImageStore) Delete(ctx context.Context, url string) error {
	publicID := ExtractPublicID(url)
	if publicID == "" {
		return nil
	}
	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID, ResourceType: "image"})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", result.Error.Message)
	}
	return nil
}

// LocalImageStore writes into Dir, which the router serves at URLPrefix.
type LocalImageStore struct {
	Dir       string
	URLPrefix string
}

func (s *LocalImageStore) Save(_ context.Context, name string, file io.Reader) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	fileName := fmt.Sprintf("%d_%s", time.Now().UnixNano(), filepath.Base(name))
	out, err := os.Create(filepath.Join(s.Dir, fileName))
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		return "", err
	}
	return path.Join(s.URLPrefix, fileName), nil
}

func (s *LocalImageStore) Delete(_ context.Context, url string) error {
	prefix := strings.TrimRight(s.URLPrefix, "/") + "/"
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, filepath.Base(url)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
