// Package avatar stores profile pictures on the local filesystem.
package avatar

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"myblog/internal/feature/profile/usecase"
)

// Size is the bounding box, in pixels, that stored pictures are shrunk to fit.
const Size = 125

var formats = map[string]imaging.Format{
	".jpg": imaging.JPEG,
	".png": imaging.PNG,
}

// LocalStore writes processed pictures into one directory.
type LocalStore struct {
	dir      string
	randName func() (string, error)
}

var _ usecase.AvatarStore = (*LocalStore)(nil)

// NewLocalStore creates dir if needed and returns a store writing into it.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create picture dir: %w", err)
	}
	return &LocalStore{dir: dir, randName: randomName}, nil
}

// Save decodes the upload, flattens it onto white, shrinks it to fit Size x Size and writes it
// under a random name that keeps the lower-cased original extension.
func (s *LocalStore) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	format, ok := formats[ext]
	if !ok {
		return "", fmt.Errorf("%w: extension %q", usecase.ErrUnsupportedImage, ext)
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: %v", usecase.ErrUnsupportedImage, err)
	}

	b := img.Bounds()
	flat := imaging.Overlay(imaging.New(b.Dx(), b.Dy(), color.White), img, image.Pt(0, 0), 1.0)
	thumb := imaging.Fit(flat, Size, Size, imaging.Lanczos)

	if err := ctx.Err(); err != nil {
		return "", err
	}

	base, err := s.randName()
	if err != nil {
		return "", err
	}
	name := base + ext

	if err := s.write(name, thumb, format); err != nil {
		return "", err
	}
	return name, nil
}

// Remove deletes a stored picture. Missing files are not an error.
func (s *LocalStore) Remove(name string) error {
	if name == "" || filepath.Base(name) != name {
		return fmt.Errorf("invalid picture name %q", name)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Path returns where name is stored.
func (s *LocalStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// write encodes into a temp file in the same directory and renames it into place, so readers
// never see a partial file.
func (s *LocalStore) write(name string, img image.Image, format imaging.Format) (err error) {
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp picture: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = imaging.Encode(tmp, img, format); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode picture: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp picture: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod picture: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.Path(name)); err != nil {
		return fmt.Errorf("store picture: %w", err)
	}
	return nil
}

// randomName returns 8 random bytes as 16 hex characters.
func randomName() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate picture name: %w", err)
	}
	return hex.EncodeToString(b), nil
}
