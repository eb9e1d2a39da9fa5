package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/AnshRaj112/videotube-backend/internal/config"
)

// assetHost is the part of the Cloudinary upload API the resolver needs.
type assetHost interface {
	Upload(ctx context.Context, file interface{}, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
}

// MediaResolver uploads locally staged files to Cloudinary and returns their URL.
// Failures are not propagated: the staged file is removed and no reference is returned.
type MediaResolver struct {
	host   assetHost
	folder string
}

// NewMediaResolver builds a resolver from cfg. Without Cloudinary credentials every
// upload yields no reference.
func NewMediaResolver(cfg *config.Config) (*MediaResolver, error) {
	if !cfg.HasCloudinary() {
		return &MediaResolver{folder: cfg.CloudinaryFolder}, nil
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &MediaResolver{host: &cld.Upload, folder: cfg.CloudinaryFolder}, nil
}

// Available reports whether uploads can reach the media host.
func (m *MediaResolver) Available() bool {
	return m.host != nil
}

// Upload sends the file at localPath to the media host. ok is false when localPath is
// empty or the upload failed for any reason.
func (m *MediaResolver) Upload(ctx context.Context, localPath string) (string, bool) {
	if localPath == "" {
		return "", false
	}

	url, err := m.upload(ctx, localPath)
	if err != nil {
		log.Printf("ERROR: media upload failed for %s: %v", localPath, err)
		if rmErr := os.Remove(localPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			log.Printf("WARNING: failed to remove staged file %s: %v", localPath, rmErr)
		}
		return "", false
	}

	log.Printf("File is uploaded on Cloudinary: %s", url)
	return url, true
}

func (m *MediaResolver) upload(ctx context.Context, localPath string) (string, error) {
	if m.host == nil {
		return "", errors.New("media host not configured")
	}

	result, err := m.host.Upload(ctx, localPath, uploader.UploadParams{
		Folder:       m.folder,
		ResourceType: "auto", // Automatically detect image, video, or raw
	})
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", errors.New("empty upload result")
	}
	if result.Error.Message != "" {
		return "", errors.New(result.Error.Message)
	}
	if result.SecureURL != "" {
		return result.SecureURL, nil
	}
	if result.URL != "" {
		return result.URL, nil
	}
	return "", errors.New("upload result has no URL")
}
