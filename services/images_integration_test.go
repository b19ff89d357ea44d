package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"furniquote/testhelpers"
)

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestImageStore_UploadAndDelete(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	s := NewImageStore(app, "http://localhost:8090/")
	ctx := context.Background()

	url, err := s.Upload(ctx, "photos/sofa.png", tinyPNG(t))
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}
	if !strings.HasPrefix(url, "http://localhost:8090/api/files/") || !strings.HasSuffix(url, ".png") {
		t.Errorf("unexpected url %q", url)
	}

	records, _ := app.FindAllRecords("images")
	if len(records) != 1 || records[0].GetString("original_name") != "sofa.png" {
		t.Fatalf("expected one image record named sofa.png")
	}
	id, ok := recordIDFromURL(url)
	if !ok || id != records[0].Id {
		t.Errorf("recordIDFromURL(%q) = %q, %v", url, id, ok)
	}

	s.Delete(ctx, url)
	if records, _ := app.FindAllRecords("images"); len(records) != 0 {
		t.Errorf("expected image deleted, %d left", len(records))
	}

	// unknown urls are ignored
	s.Delete(ctx, "https://cdn.example.com/elsewhere.png")
	s.Delete(ctx, url)
}

func TestImageStore_RejectsNonImages(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	s := NewImageStore(app, "http://localhost:8090")

	_, err := s.Upload(context.Background(), "notes.txt", []byte("plain text"))
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("expected ErrUnsupportedImage, got %v", err)
	}
	if _, err := s.Upload(context.Background(), "empty.png", nil); err == nil {
		t.Error("expected error for empty upload")
	}
}

func TestRecordIDFromURL(t *testing.T) {
	tests := []struct {
		url string
		id  string
		ok  bool
	}{
		{"http://x/api/files/images/abc123/file.png", "abc123", true},
		{"/api/files/pbc_1/rec/f.jpg", "rec", true},
		{"http://x/static/file.png", "", false},
		{"http://x/api/files/images//f.png", "", false},
		{"::not a url", "", false},
	}
	for _, tt := range tests {
		id, ok := recordIDFromURL(tt.url)
		if id != tt.id || ok != tt.ok {
			t.Errorf("recordIDFromURL(%q) = %q, %v; want %q, %v", tt.url, id, ok, tt.id, tt.ok)
		}
	}
}
