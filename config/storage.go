package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	StorageS3    = "s3"
	StorageMinio = "minio"
)

// StorageConfig selects the object store that receives uploaded images.
type StorageConfig struct {
	Backend   string `koanf:"backend" validate:"oneof=s3 minio"`
	Bucket    string `koanf:"bucket" validate:"required"`
	Region    string `koanf:"region"`
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	UseSSL    bool   `koanf:"use_ssl"`
	// PublicBaseURL prefixes object keys in returned URLs. Empty means the
	// backend's default public URL.
	PublicBaseURL  string `koanf:"public_base_url"`
	MaxUploadBytes int64  `koanf:"max_upload_bytes" validate:"min=1"`
}

// Validate checks backend specific requirements.
func (s StorageConfig) Validate() error {
	if s.Backend == StorageMinio && s.Endpoint == "" {
		return errors.New("minio backend requires an endpoint")
	}
	return nil
}

// PublicURL returns the URL an uploaded object is served from.
func (s StorageConfig) PublicURL(key string) string {
	if s.PublicBaseURL != "" {
		return strings.TrimRight(s.PublicBaseURL, "/") + "/" + key
	}
	if s.Backend == StorageMinio {
		scheme := "http"
		if s.UseSSL {
			scheme = "https"
		}
		return fmt.Sprintf("%s://%s/%s/%s", scheme, s.Endpoint, s.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.Bucket, key)
}
