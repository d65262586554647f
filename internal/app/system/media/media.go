// Package media uploads files (thumbnails, profile photos, lecture
// videos) to Cloudinary. Handlers spool the multipart part to a local
// temp file first; Upload always removes that temp file, on success
// and on failure.
package media

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Uploader is what handlers depend on. Tests substitute a fake.
type Uploader interface {
	// Upload sends the file at path to the media host and returns its
	// public URL. The local file is deleted regardless of outcome.
	Upload(ctx context.Context, path string) (string, error)
}

// Cloudinary is the production Uploader. Credentials are configured
// once at startup, not per call.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
	log *zap.Logger
}

// NewCloudinary validates the credentials and builds the client.
func NewCloudinary(cloudName, apiKey, apiSecret string, logger *zap.Logger) (*Cloudinary, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary configuration is incomplete: cloud name, API key, and API secret are all required")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	cld.Config.URL.Secure = true
	return &Cloudinary{cld: cld, log: logger}, nil
}

// Upload pushes a local file to Cloudinary and returns the secure URL.
// The resource type is auto-detected so the same path serves images
// and videos. The temp file is removed on every path out.
func (c *Cloudinary) Upload(ctx context.Context, path string) (string, error) {
	defer Remove(path, c.log)

	if path == "" {
		return "", fmt.Errorf("upload: empty file path")
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("upload: file does not exist at %s", path)
	}

	res, err := c.cld.Upload.Upload(ctx, path, uploader.UploadParams{
		ResourceType:   "auto",
		UseFilename:    api.Bool(false),
		UniqueFilename: api.Bool(true),
		Overwrite:      api.Bool(false),
	})
	if err != nil {
		// Cloudinary rejects requests whose signature timestamp is too
		// far from its clock; surface that case distinctly.
		if strings.Contains(err.Error(), "Stale request") {
			return "", fmt.Errorf("upload failed due to time synchronization issue; check the system clock")
		}
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	return res.SecureURL, nil
}

// Disabled is the Uploader used when Cloudinary credentials are not
// configured. Every upload fails with a clear error instead of a nil
// pointer deep in a handler.
type Disabled struct{}

func (Disabled) Upload(_ context.Context, path string) (string, error) {
	Remove(path, nil)
	return "", fmt.Errorf("media uploads are disabled: cloudinary is not configured")
}

// SaveTemp spools one multipart part into dir under a unique name and
// returns the temp path. The caller owns the file from here; Upload
// (or Remove on early error paths) cleans it up.
func SaveTemp(file multipart.File, header *multipart.FileHeader, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.NewString() + filepath.Ext(header.Filename)
	path := filepath.Join(dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	return path, nil
}

// Remove deletes a temp file, logging (not failing) when it cannot.
func Remove(path string, log *zap.Logger) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) && log != nil {
		log.Warn("temp file cleanup failed", zap.String("path", path), zap.Error(err))
	}
}
