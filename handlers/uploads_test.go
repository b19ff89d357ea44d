package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
)

func doUpload(t *testing.T, app *pocketbase.PocketBase, d *Deps, field, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		if err != nil {
			t.Fatal(err)
		}
		part.Write(data)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	if err := HandleUpload(d)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestHandleUpload_PNG(t *testing.T) {
	app, d := newTestDeps(t)

	rec := doUpload(t, app, d, "file", "swatch.png", smallPNG(t))
	assertStatus(t, rec, http.StatusCreated)

	var body struct {
		URL string `json:"url"`
	}
	decodeBody(t, rec, &body)
	if !strings.HasPrefix(body.URL, "http://127.0.0.1:8090/api/files/") || !strings.HasSuffix(body.URL, ".png") {
		t.Errorf("unexpected url %q", body.URL)
	}

	records, _ := app.FindAllRecords("images")
	if len(records) != 1 || records[0].GetString("original_name") != "swatch.png" {
		t.Errorf("expected one stored image named swatch.png, got %d records", len(records))
	}
}

func TestHandleUpload_Rejects(t *testing.T) {
	app, d := newTestDeps(t)

	rec := doUpload(t, app, d, "file", "notes.txt", []byte("just some text, not an image"))
	assertStatus(t, rec, http.StatusUnsupportedMediaType)

	rec = doUpload(t, app, d, "", "", nil)
	assertStatus(t, rec, http.StatusBadRequest)

	records, _ := app.FindAllRecords("images")
	if len(records) != 0 {
		t.Errorf("expected nothing stored, found %d", len(records))
	}
}
