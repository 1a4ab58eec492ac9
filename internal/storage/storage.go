// Package storage keeps uploaded images (thumbnails, avatars, blog covers).
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// Asset is a stored upload.
type Asset struct {
	URL      string
	PublicID string
}

// Store saves uploads and deletes them again by the URL Save returned. URLs the
// store did not issue (seeded images, external links) are left alone.
type Store interface {
	Save(ctx context.Context, folder, filename string, r io.Reader) (Asset, error)
	Delete(ctx context.Context, url string) error
}

var ErrUnsupportedType = errors.New("unsupported file type")

// SVG is excluded: it is served from our own origin and can carry script.
var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true}

// CheckImage rejects anything that is not a raster image by extension.
func CheckImage(filename string) error {
	if !imageExts[strings.ToLower(filepath.Ext(filename))] {
		return ErrUnsupportedType
	}
	return nil
}

// Cloudinary stores uploads in a Cloudinary account.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinary(url string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &Cloudinary{cld: cld}, nil
}

func (s *Cloudinary) Save(ctx context.Context, folder, filename string, r io.Reader) (Asset, error) {
	if err := CheckImage(filename); err != nil {
		return Asset{}, err
	}
	res, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{Folder: "creativehub/" + folder})
	if err != nil {
		return Asset{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return Asset{}, fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	return Asset{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

func (s *Cloudinary) Delete(ctx context.Context, url string) error {
	id := cloudinaryID(url)
	if id == "" {
		return nil
	}
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: id}); err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	return nil
}

// cloudinaryID recovers the public id from a delivery URL such as
// https://res.cloudinary.com/<cloud>/image/upload/v123/creativehub/blog/abc.png.
func cloudinaryID(url string) string {
	if !strings.HasPrefix(url, "https://res.cloudinary.com/") {
		return ""
	}
	_, rest, ok := strings.Cut(url, "/upload/")
	if !ok {
		return ""
	}
	if v, after, ok := strings.Cut(rest, "/"); ok && isVersion(v) {
		rest = after
	}
	rest = strings.TrimSuffix(rest, path.Ext(rest))
	if !strings.HasPrefix(rest, "creativehub/") {
		return ""
	}
	return rest
}

func isVersion(seg string) bool {
	if len(seg) < 2 || seg[0] != 'v' {
		return false
	}
	for _, r := range seg[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Local writes uploads under a directory served at /media.
type Local struct {
	Dir     string
	BaseURL string
}

func NewLocal(dir string) *Local { return &Local{Dir: dir, BaseURL: "/media"} }

func (s *Local) Save(ctx context.Context, folder, filename string, r io.Reader) (Asset, error) {
	if err := CheckImage(filename); err != nil {
		return Asset{}, err
	}
	if err := ctx.Err(); err != nil {
		return Asset{}, err
	}
	folder = filepath.Base(filepath.Clean("/" + folder))
	name := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	dir := filepath.Join(s.Dir, "uploads", folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Asset{}, err
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return Asset{}, err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return Asset{}, err
	}
	if err := f.Close(); err != nil {
		return Asset{}, err
	}
	id := "uploads/" + folder + "/" + name
	return Asset{URL: s.BaseURL + "/" + id, PublicID: id}, nil
}

func (s *Local) Delete(_ context.Context, url string) error {
	id, ok := strings.CutPrefix(url, s.BaseURL+"/")
	if !ok || !strings.HasPrefix(id, "uploads/") {
		return nil
	}
	clean := filepath.Clean(id)
	if strings.Contains(clean, "..") || filepath.IsAbs(clean) {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, clean))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// New returns the Cloudinary store when a URL is configured, else a local store.
func New(cloudinaryURL, mediaDir string) (Store, error) {
	if cloudinaryURL == "" {
		return NewLocal(mediaDir), nil
	}
	return NewCloudinary(cloudinaryURL)
}
