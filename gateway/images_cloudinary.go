package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryImages menyimpan gambar produk di Cloudinary. Public ID adalah
// storage key tanpa ekstensi, sehingga URL publiknya berakhir dengan
// "uploads/<id>.<ext>".
type CloudinaryImages struct {
	Cld *cloudinary.Cloudinary
}

func NewCloudinaryImages(cloudinaryURL string) (*CloudinaryImages, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("error initialising Cloudinary: %w", err)
	}
	return &CloudinaryImages{Cld: cld}, nil
}

func (c *CloudinaryImages) Upload(ctx context.Context, key string, r io.Reader, _ string) (string, error) {
	uploadResult, err := c.Cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID:     publicID(key),
		Overwrite:    api.Bool(true),
		ResourceType: "image",
	})
	if err != nil {
		return "", err
	}
	if uploadResult.Error.Message != "" {
		return "", errors.New(uploadResult.Error.Message)
	}
	return uploadResult.SecureURL, nil
}

func (c *CloudinaryImages) Delete(ctx context.Context, key string) error {
	result, err := c.Cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID(key)})
	if err != nil {
		return err
	}
	if result.Error.Message != "" {
		return errors.New(result.Error.Message)
	}
	if result.Result == "not found" {
		return ErrNotFound
	}
	return nil
}

func (c *CloudinaryImages) String() string { return "cloudinary(" + c.Cld.Config.Cloud.CloudName + ")" }

func publicID(key string) string {
	return strings.TrimSuffix(key, path.Ext(key))
}
