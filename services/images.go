package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/filesystem"
)

// MaxImageSize caps uploaded product and swatch images.
const MaxImageSize = 20 << 20

// ErrUnsupportedImage is returned for uploads that are not png, jpeg, webp or gif.
var ErrUnsupportedImage = errors.New("unsupported image type")

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImageStore keeps uploaded images in the "images" collection and hands out
// public URLs for them.
type ImageStore struct {
	app     core.App
	baseURL string
}

func NewImageStore(app core.App, publicBaseURL string) *ImageStore {
	return &ImageStore{app: app, baseURL: strings.TrimRight(publicBaseURL, "/")}
}

// Upload stores data under a random name and returns its public URL.
func (s *ImageStore) Upload(ctx context.Context, name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("upload %q: empty file", name)
	}
	if len(data) > MaxImageSize {
		return "", fmt.Errorf("upload %q: file exceeds %d bytes", name, MaxImageSize)
	}
	ext, ok := imageExtensions[http.DetectContentType(data)]
	if !ok {
		return "", fmt.Errorf("upload %q: %w", name, ErrUnsupportedImage)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	col, err := s.app.FindCollectionByNameOrId("images")
	if err != nil {
		return "", fmt.Errorf("images collection: %w", err)
	}
	f, err := filesystem.NewFileFromBytes(data, uuid.NewString()+ext)
	if err != nil {
		return "", fmt.Errorf("prepare upload %q: %w", name, err)
	}

	r := core.NewRecord(col)
	r.Set("file", f)
	r.Set("original_name", path.Base(name))
	if err := s.app.Save(r); err != nil {
		return "", fmt.Errorf("save upload %q: %w", name, err)
	}
	return s.URL(r), nil
}

// URL returns the public address of an image record's file.
func (s *ImageStore) URL(r *core.Record) string {
	return s.baseURL + "/api/files/" + r.BaseFilesPath() + "/" + r.GetString("file")
}

// recordIDFromURL extracts the record id from a /api/files/<col>/<id>/<file> URL.
func recordIDFromURL(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	rest, ok := strings.CutPrefix(u.Path, "/api/files/")
	if !ok {
		return "", false
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Delete removes the image behind url. Failures are logged, not returned:
// a stale file never blocks the caller.
func (s *ImageStore) Delete(ctx context.Context, rawURL string) {
	id, ok := recordIDFromURL(rawURL)
	if !ok {
		log.Printf("images: not a stored image url: %q", rawURL)
		return
	}
	if ctx.Err() != nil {
		return
	}
	r, err := s.app.FindRecordById("images", id)
	if err != nil {
		log.Printf("images: delete %s: %v", id, err)
		return
	}
	if err := s.app.Delete(r); err != nil {
		log.Printf("images: delete %s: %v", id, err)
	}
}
