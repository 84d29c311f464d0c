// Package upload validates listing media and hands it to the storage
// bucket API.
package upload

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxFileSize limits images and documents.
	MaxFileSize = 10 << 20
	// MaxVideoSize limits videos.
	MaxVideoSize = 100 << 20

	// DefaultFolder is used when the caller names none.
	DefaultFolder = "uploads"
)

var (
	ErrTooLarge        = errors.New("file too large")
	ErrUnsupportedType = errors.New("invalid file type; allowed types: JPEG, PNG, WebP, PDF, MP4, WebM, MOV, AVI")
	ErrBadFolder       = errors.New("invalid folder")
)

var allowedTypes = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
	"video/mp4":       true,
	"video/webm":      true,
	"video/quicktime": true,
	"video/x-msvideo": true,
}

// MaxSize returns the size limit for a content type.
func MaxSize(contentType string) int64 {
	if strings.HasPrefix(contentType, "video/") {
		return MaxVideoSize
	}
	return MaxFileSize
}

// Validate checks a file's content type and size.
func Validate(contentType string, size int64) error {
	if !allowedTypes[contentType] {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	if limit := MaxSize(contentType); size > limit {
		return fmt.Errorf("%w (max %dMB)", ErrTooLarge, limit>>20)
	}
	return nil
}

// ObjectPath returns the bucket path for a new file:
// folder[/listingID]/<unix millis>-<random>.<ext>. The extension is taken
// from the original file name.
func ObjectPath(folder, listingID, originalName string, now time.Time) (string, error) {
	if folder == "" {
		folder = DefaultFolder
	}
	for _, part := range []string{folder, listingID} {
		if strings.Contains(part, "..") || strings.HasPrefix(part, "/") || strings.ContainsAny(part, "\\?#") {
			return "", fmt.Errorf("%w: %q", ErrBadFolder, part)
		}
	}

	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	name := fmt.Sprintf("%d-%s", now.UnixMilli(), random)
	if ext := strings.TrimPrefix(path.Ext(originalName), "."); ext != "" {
		name += "." + strings.ToLower(ext)
	}

	if listingID != "" {
		return path.Join(folder, listingID, name), nil
	}
	return path.Join(folder, name), nil
}
