package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const MaxUploadSize = 5 << 20

const (
	BucketMenuImages   = "menu-images"
	BucketReviewPhotos = "review-photos"
	BucketSiteAssets   = "site-assets"
)

var (
	ErrFileTooLarge  = errors.New("file must be 5MB or smaller")
	ErrNotImage      = errors.New("file must be an image")
	ErrUnknownBucket = errors.New("unknown storage bucket")
)

var buckets = map[string]bool{
	BucketMenuImages:   true,
	BucketReviewPhotos: true,
	BucketSiteAssets:   true,
}

// ObjectStorage stores uploads in bucket directories under root and serves
// them from baseURL.
type ObjectStorage struct {
	root    string
	baseURL string
}

func NewObjectStorage(root, baseURL string) *ObjectStorage {
	return &ObjectStorage{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *ObjectStorage) Root() string {
	return s.root
}

// ValidateImage applies the upload rules using the declared header only.
func ValidateImage(fh *multipart.FileHeader) error {
	if fh.Size > MaxUploadSize {
		return ErrFileTooLarge
	}
	if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
		return ErrNotImage
	}
	return nil
}

// GenerateObjectName builds a collision-resistant key: <prefix>/<unix-ms>-<uuid><ext>.
func GenerateObjectName(prefix, originalName, contentType string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = exts[0]
		}
	}
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// Upload validates and writes the file, returning the stored object key.
func (s *ObjectStorage) Upload(ctx context.Context, bucket, prefix string, fh *multipart.FileHeader) (string, error) {
	if !buckets[bucket] {
		return "", ErrUnknownBucket
	}
	if err := ValidateImage(fh); err != nil {
		return "", err
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	sniffed := http.DetectContentType(head[:n])
	if !strings.HasPrefix(sniffed, "image/") {
		return "", ErrNotImage
	}

	key := GenerateObjectName(prefix, fh.Filename, sniffed)
	dst := filepath.Join(s.root, bucket, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create bucket dir: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create object: %w", err)
	}
	defer out.Close()

	if _, err := out.Write(head[:n]); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	if _, err := io.Copy(out, io.LimitReader(src, MaxUploadSize)); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := ctx.Err(); err != nil {
		os.Remove(dst)
		return "", err
	}
	return key, nil
}

// PublicURL resolves an object key to its public address.
func (s *ObjectStorage) PublicURL(bucket, key string) string {
	return fmt.Sprintf("%s/storage/%s/%s", s.baseURL, bucket, key)
}

// UploadPublic uploads and resolves the public URL in one step.
func (s *ObjectStorage) UploadPublic(ctx context.Context, bucket, prefix string, fh *multipart.FileHeader) (string, error) {
	key, err := s.Upload(ctx, bucket, prefix, fh)
	if err != nil {
		return "", err
	}
	return s.PublicURL(bucket, key), nil
}

// Remove deletes the object behind a public URL produced by this storage.
func (s *ObjectStorage) Remove(publicURL string) {
	prefix := s.baseURL + "/storage/"
	if !strings.HasPrefix(publicURL, prefix) {
		return
	}
	rel := strings.TrimPrefix(publicURL, prefix)
	if strings.Contains(rel, "..") {
		return
	}
	os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
}
