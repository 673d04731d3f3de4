// Package storage writes uploaded files to the local upload directory and
// hands URLs back to the handlers. Database writes happen after the file
// write; callers must Remove the stored file when the following row write
// fails so storage cannot accumulate orphans.
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/radiodent/radiodiagnostic-api/internal/utils"
)

// ErrUnsupportedPicture is returned for uploads that are not PNG or JPEG.
var ErrUnsupportedPicture = errors.New("unsupported picture type")

// MaxPictureBytes caps uploaded image size (5 MB, matching the API route
// body limit).
const MaxPictureBytes = 5 << 20

var allowedPictureTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
}

var allowedPictureExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// PictureStore saves pictures under <root>/pictures and recap exports under
// <root>/recaps. URLs returned to clients always use the /upload prefix.
type PictureStore struct {
	root string
}

// NewPictureStore creates the upload directories if needed.
func NewPictureStore(root string) (*PictureStore, error) {
	for _, sub := range []string{"pictures", "recaps"} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir: %w", err)
		}
	}
	return &PictureStore{root: root}, nil
}

// SavePicture validates and stores one multipart image upload. The stored
// name is "<random>-<original name>" so repeat uploads never collide. It
// returns the public URL of the stored file.
func (s *PictureStore) SavePicture(fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxPictureBytes {
		return "", fmt.Errorf("%w: file too large", ErrUnsupportedPicture)
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	ctype := fh.Header.Get("Content-Type")
	if !allowedPictureExts[ext] || (ctype != "" && !allowedPictureTypes[ctype]) {
		return "", ErrUnsupportedPicture
	}

	id, err := utils.NewID("pic")
	if err != nil {
		return "", err
	}
	name := id + "-" + filepath.Base(fh.Filename)

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.root, "pictures", name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return "/upload/pictures/" + name, nil
}

// Remove deletes a previously stored file by its public URL. Used as
// compensation when the database write that should own the file fails.
func (s *PictureStore) Remove(url string) error {
	rel, ok := strings.CutPrefix(url, "/upload/")
	if !ok {
		return fmt.Errorf("not an upload url: %s", url)
	}
	return os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
}

// RecapPath returns the filesystem path and public URL for a recap export
// file name.
func (s *PictureStore) RecapPath(filename string) (path, url string) {
	return filepath.Join(s.root, "recaps", filename), "/upload/recaps/" + filename
}

// Root returns the base upload directory, used to serve /upload statically.
func (s *PictureStore) Root() string { return s.root }
