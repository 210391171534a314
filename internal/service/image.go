package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/andcook/andcook/backend/config"
	"github.com/andcook/andcook/backend/internal/apperror"
	"github.com/andcook/andcook/backend/internal/logging"
	"github.com/andcook/andcook/backend/internal/metrics"
	"github.com/andcook/andcook/backend/internal/storage"
	"github.com/andcook/andcook/backend/internal/types"
)

// allowedImageTypes maps accepted content types to the stored extension.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImageService validates uploaded images and writes them to object storage.
type ImageService struct {
	store    storage.ObjectStore
	cfg      config.StorageConfig
	identity *IdentityService
}

// NewImageService creates a new ImageService instance
func NewImageService(store storage.ObjectStore, cfg config.StorageConfig, identity *IdentityService) *ImageService {
	return &ImageService{store: store, cfg: cfg, identity: identity}
}

// Upload stores one image for the caller and returns its public URL. Both the
// declared content type and the type sniffed from the bytes must be allowed.
func (s *ImageService) Upload(ctx context.Context, p *types.Principal, declaredType string, r io.Reader) (string, error) {
	user, err := s.identity.Resolve(ctx, p)
	if err != nil {
		return "", err
	}

	if !AllowedImageType(declaredType) {
		metrics.Uploads.WithLabelValues("rejected").Inc()
		return "", apperror.New(apperror.ErrUnsupportedMedia, "Only JPEG, PNG, WebP and GIF images are allowed")
	}

	data, err := io.ReadAll(io.LimitReader(r, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		metrics.Uploads.WithLabelValues("rejected").Inc()
		return "", apperror.Newf(apperror.ErrTooLarge, "File exceeds the %d MB limit", s.cfg.MaxUploadBytes>>20)
	}
	if len(data) == 0 {
		metrics.Uploads.WithLabelValues("rejected").Inc()
		return "", apperror.New(apperror.ErrValidation, "File is empty")
	}

	sniffed := http.DetectContentType(data)
	ext := allowedImageTypes[sniffed]
	if ext == "" {
		metrics.Uploads.WithLabelValues("rejected").Inc()
		return "", apperror.New(apperror.ErrUnsupportedMedia, "File content is not a supported image")
	}

	key := "recipes/" + uuid.NewString() + ext
	if err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), sniffed); err != nil {
		metrics.Uploads.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("store image: %w", err)
	}

	metrics.Uploads.WithLabelValues("stored").Inc()
	logging.Ctx(ctx).Info().
		Str("user_id", user.ID.String()).
		Str("key", key).
		Str("content_type", sniffed).
		Int("bytes", len(data)).
		Msg("image uploaded")
	return s.cfg.PublicURL(key), nil
}

// AllowedImageType reports whether contentType is accepted for upload.
func AllowedImageType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(contentType))
	return err == nil && allowedImageTypes[mediaType] != ""
}
