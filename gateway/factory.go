package gateway

import (
	"context"
	"fmt"
)

const (
	DriverCloudinary = "cloudinary"
	DriverS3         = "s3"
	DriverLocal      = "local"
)

// ImageStoreConfig memilih dan mengatur driver penyimpanan gambar.
type ImageStoreConfig struct {
	Driver string

	CloudinaryURL string

	S3 S3Config

	LocalDir       string
	LocalURLPrefix string
}

func NewImageStore(ctx context.Context, cfg ImageStoreConfig) (ImageStore, error) {
	switch cfg.Driver {
	case DriverCloudinary:
		if cfg.CloudinaryURL == "" {
			return nil, fmt.Errorf("CLOUDINARY_URL is required for the cloudinary storage driver")
		}
		return NewCloudinaryImages(cfg.CloudinaryURL)

	case DriverS3:
		if cfg.S3.Region == "" || cfg.S3.Bucket == "" || cfg.S3.PublicBaseURL == "" {
			return nil, fmt.Errorf("S3 config missing: S3_REGION, S3_BUCKET, S3_PUBLIC_BASE_URL required")
		}
		return NewS3Images(ctx, cfg.S3)

	case DriverLocal, "":
		return NewLocalImages(cfg.LocalDir, cfg.LocalURLPrefix), nil

	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER: %s", cfg.Driver)
	}
}
