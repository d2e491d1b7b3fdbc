// Package storage keeps uploaded images on local disk or in an S3 compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/jaevor/go-nanoid"

	"passvault/internal/config"
)

// ObjectStore stores objects under keys and exposes them at public URLs.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	// KeyFromURL reverses Upload's URL. ok is false for URLs this store did not produce.
	KeyFromURL(url string) (key string, ok bool)
}

const (
	PrefixAccounts        = "accounts"
	PrefixProfilePictures = "profile-pictures"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

var generateID = func() func() string {
	gen, err := nanoid.Standard(21)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize nanoid generator: %v", err))
	}
	return gen
}()

// SanitizeFilename reduces name to its base with only letters, digits, dot, dash and
// underscore.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "file"
	}
	if len(name) > 100 {
		name = name[len(name)-100:]
	}
	return name
}

// ObjectKey builds prefix/<userID>/<random>-<filename>.
func ObjectKey(prefix string, userID int64, filename string) string {
	return fmt.Sprintf("%s/%d/%s-%s", prefix, userID, generateID(), SanitizeFilename(filename))
}

// publicBase resolves public URLs for keys under a fixed prefix.
type publicBase string

func (b publicBase) url(key string) string {
	return strings.TrimRight(string(b), "/") + "/" + key
}

func (b publicBase) key(url string) (string, bool) {
	prefix := strings.TrimRight(string(b), "/") + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if key == "" {
		return "", false
	}
	return key, true
}

// New builds the ObjectStore selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (ObjectStore, error) {
	switch cfg.Driver {
	case "local", "":
		return NewLocalStorage(cfg.Path, cfg.PublicURL)
	case "s3":
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
