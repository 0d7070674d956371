package utils

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ImageStore abstracts hosted image storage so controllers stay
// independent of the provider and tests can substitute a double.
type ImageStore interface {
	Upload(ctx context.Context, file multipart.File, folder string) (string, error)
	Delete(ctx context.Context, imageURL string) error
}

type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config error: %v", err)
	}
	return &CloudinaryStore{cld: cld}, nil
}

// Upload stores a multipart file in the given folder ("events" or
// "stories") and returns the hosted URL.
func (s *CloudinaryStore) Upload(ctx context.Context, file multipart.File, folder string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	uploadResp, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder: folder,
	})
	if err != nil {
		return "", fmt.Errorf("upload error: %v", err)
	}

	return uploadResp.SecureURL, nil
}

// Delete removes a previously uploaded image given its full URL.
func (s *CloudinaryStore) Delete(ctx context.Context, imageURL string) error {
	publicID, err := extractPublicID(imageURL)
	if err != nil {
		return fmt.Errorf("could not extract public ID: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err = s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		return fmt.Errorf("delete error: %v", err)
	}

	return nil
}

// DisabledImages is used when Cloudinary is not configured; uploads are
// rejected and deletes are dropped so the rest of the app keeps working.
type DisabledImages struct{}

func (DisabledImages) Upload(context.Context, multipart.File, string) (string, error) {
	return "", errors.New("image storage not configured")
}

func (DisabledImages) Delete(context.Context, string) error {
	return nil
}

// extractPublicID recovers the Cloudinary public ID (folder + filename
// without extension) from a hosted URL like
// https://res.cloudinary.com/demo/image/upload/v1234567890/events/abc123.jpg
func extractPublicID(imageURL string) (string, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return "", err
	}

	parts := strings.Split(parsedURL.Path, "/")
	if len(parts) < 3 {
		return "", fmt.Errorf("invalid cloudinary URL format")
	}

	cleanPath := parts[len(parts)-2:]
	if strings.HasPrefix(cleanPath[0], "v") {
		parts = append(parts[:len(parts)-2], parts[len(parts)-1])
	}

	publicID := strings.TrimSuffix(path.Join(parts[3:]...), path.Ext(parts[len(parts)-1]))
	return publicID, nil
}
