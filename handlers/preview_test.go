package handlers

import (
	"errors"
	"net/http"
	"testing"

	"furniquote/services"
)

func validPreviewBody() map[string]any {
	return map[string]any{
		"productImageUrl": "http://127.0.0.1:8090/img/sofa.png",
		"productName":     "Oslo Sofa",
		"annotations": []map[string]any{
			{"partName": "Seat", "materialName": "Velvet Rose", "materialType": "fabric", "materialCode": "FAB-001"},
		},
	}
}

func TestHandleGeneratePreview_Disabled(t *testing.T) {
	app, d := newTestDeps(t)

	rec := doJSON(t, app, HandleGeneratePreview(d), http.MethodPost, "/api/generate-preview", validPreviewBody())
	assertStatus(t, rec, http.StatusServiceUnavailable)

	var body struct {
		Error    string `json:"error"`
		Disabled bool   `json:"disabled"`
	}
	decodeBody(t, rec, &body)
	if !body.Disabled || body.Error == "" {
		t.Errorf("expected disabled error, got %+v", body)
	}
}

func TestHandleGeneratePreview_MissingFields(t *testing.T) {
	app, d := newTestDeps(t)
	d.Preview = &stubPreview{enabled: true}

	rec := doJSON(t, app, HandleGeneratePreview(d), http.MethodPost, "/api/generate-preview",
		map[string]any{"productName": "Oslo Sofa"})
	assertStatus(t, rec, http.StatusBadRequest)
}

func TestHandleGeneratePreview_Results(t *testing.T) {
	tests := []struct {
		name     string
		preview  *stubPreview
		want     int
		disabled bool
	}{
		{
			name:    "success",
			preview: &stubPreview{enabled: true, result: services.PreviewResult{Success: true, ImageBase64: "data:image/png;base64,AAAA"}},
			want:    http.StatusOK,
		},
		{
			name:    "model refused",
			preview: &stubPreview{enabled: true, result: services.PreviewResult{Error: "no image returned"}},
			want:    http.StatusInternalServerError,
		},
		{
			name:    "unexpected error",
			preview: &stubPreview{enabled: true, err: errors.New("boom")},
			want:    http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, d := newTestDeps(t)
			d.Preview = tt.preview

			rec := doJSON(t, app, HandleGeneratePreview(d), http.MethodPost, "/api/generate-preview", validPreviewBody())
			assertStatus(t, rec, tt.want)

			var body struct {
				Success     bool   `json:"success"`
				ImageBase64 string `json:"imageBase64"`
				Disabled    bool   `json:"disabled"`
			}
			decodeBody(t, rec, &body)
			if body.Disabled {
				t.Error("runtime failures must not report disabled")
			}
			if tt.want == http.StatusOK && body.ImageBase64 == "" {
				t.Error("expected image in response")
			}
			if tt.preview.got.ProductName != "Oslo Sofa" || len(tt.preview.got.Annotations) != 1 {
				t.Errorf("expected request passed through, got %+v", tt.preview.got)
			}
		})
	}
}
