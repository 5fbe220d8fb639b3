package media

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// Allowed upload extensions, lowercase with the leading dot.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var (
	// ErrUnsupportedType is returned for extensions outside the image whitelist.
	ErrUnsupportedType = errors.New("unsupported image type")
	// ErrFileTooLarge is returned when the upload exceeds the configured cap.
	ErrFileTooLarge = errors.New("file exceeds upload size limit")
)

// Store writes product images to the configured directory under random
// names so uploads never collide or traverse paths.
type Store struct {
	dir      string
	maxBytes int64
	logg     *logger.Logger
}

// NewStore validates the upload directory and returns a disk-backed store.
func NewStore(cfg config.MediaConfig, logg *logger.Logger) (*Store, error) {
	if cfg.UploadDir == "" {
		return nil, errors.New("upload directory is required")
	}
	if cfg.MaxUploadMB <= 0 {
		return nil, errors.New("max upload size must be positive")
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &Store{
		dir:      cfg.UploadDir,
		maxBytes: int64(cfg.MaxUploadMB) << 20,
		logg:     logg,
	}, nil
}

// MaxBytes reports the configured upload cap.
func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// Save streams the upload to disk and returns the stored relative path.
// The original filename only contributes its extension.
func (s *Store) Save(ctx context.Context, originalName string, body io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, ErrUnsupportedType, fmt.Sprintf("image type %q not allowed", ext))
	}

	name, err := randomName(ext)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate file name")
	}
	dest := filepath.Join(s.dir, name)

	file, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create image file")
	}

	// One extra byte past the cap distinguishes "at the limit" from "over".
	written, copyErr := io.Copy(file, io.LimitReader(body, s.maxBytes+1))
	closeErr := file.Close()

	switch {
	case copyErr != nil:
		_ = os.Remove(dest)
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, copyErr, "write image file")
	case written > s.maxBytes:
		_ = os.Remove(dest)
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, ErrFileTooLarge, fmt.Sprintf("image larger than %d bytes", s.maxBytes))
	case closeErr != nil:
		_ = os.Remove(dest)
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, closeErr, "flush image file")
	}

	if s.logg != nil {
		s.logg.Info(ctx, "image stored")
	}
	return name, nil
}

// Remove deletes a previously stored image. A missing file is not an error.
func (s *Store) Remove(ctx context.Context, name string) error {
	// Stored names are flat; reject anything that resolves elsewhere.
	if name == "" || name != filepath.Base(name) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid image name")
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove image file")
	}
	return nil
}

// Path resolves a stored name to its on-disk location for serving.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid image name")
	}
	return filepath.Join(s.dir, name), nil
}

// Dir reports the upload directory for static file serving.
func (s *Store) Dir() string {
	return s.dir
}

func randomName(ext string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf) + ext, nil
}
