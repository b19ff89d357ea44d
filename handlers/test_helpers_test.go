package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"furniquote/config"
	"furniquote/quote"
	"furniquote/services"
	"furniquote/testhelpers"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// stubRenderer returns a fixed PNG, or err when set.
type stubRenderer struct {
	png   []byte
	err   error
	calls int
}

func (r *stubRenderer) Render(ctx context.Context, productURL string, annotations []quote.Annotation) ([]byte, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.png, nil
}

type stubPreview struct {
	enabled bool
	result  services.PreviewResult
	err     error
	got     services.PreviewRequest
}

func (p *stubPreview) Enabled() bool { return p.enabled }

func (p *stubPreview) Generate(ctx context.Context, req services.PreviewRequest) (services.PreviewResult, error) {
	p.got = req
	return p.result, p.err
}

var errRenderFailed = errors.New("render exploded")

func smallPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.NRGBA{G: 180, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// newTestDeps returns a temporary app with handler dependencies. The
// renderer returns a small PNG and the preview service is disabled.
func newTestDeps(t *testing.T) (*pocketbase.PocketBase, *Deps) {
	t.Helper()
	app := testhelpers.NewTestApp(t)
	d := NewDeps(app, config.Config{
		BrandName:     "Nammos",
		PublicBaseURL: "http://127.0.0.1:8090",
	})
	d.Renderer = &stubRenderer{png: smallPNG(t)}
	d.Preview = &stubPreview{}
	return app, d
}

// doJSON runs handler with body encoded as JSON. pathValues alternate
// name, value.
func doJSON(t *testing.T, app *pocketbase.PocketBase, handler func(*core.RequestEvent) error, method, target string, body any, pathValues ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("response is not valid JSON: %v\nbody: %s", err, rec.Body.String())
	}
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d (body: %s)", want, rec.Code, rec.Body.String())
	}
}

// savedQuotation creates a quotation with one item carrying two annotations.
func savedQuotation(t *testing.T, app *pocketbase.PocketBase, d *Deps, customer string) quote.Quotation {
	t.Helper()
	product := testhelpers.CreateTestProduct(t, app, "Oslo Sofa", 1000)
	velvet := testhelpers.CreateTestMaterial(t, app, "Velvet Rose", quote.Fabric, 150)
	oak := testhelpers.CreateTestMaterial(t, app, "Natural Oak", quote.Wood, 50)

	p, err := d.Store.GetProduct(product.Id)
	if err != nil {
		t.Fatal(err)
	}
	mv, _ := d.Store.GetMaterial(velvet.Id)
	mo, _ := d.Store.GetMaterial(oak.Id)

	item := quote.Item{
		Product:  p.Snapshot(),
		Quantity: 2,
		Annotations: []quote.Annotation{
			{PartName: "Seat", MaterialID: mv.ID, Material: mv.Snapshot(), X: 40, Y: 55},
			{PartName: "Legs", MaterialID: mo.ID, Material: mo.Snapshot(), X: 20, Y: 90},
		},
	}
	q, err := d.Store.CreateQuotation(quote.Quotation{
		Customer: quote.CustomerSnapshot{Name: customer},
		Items:    []quote.Item{item},
	})
	if err != nil {
		t.Fatalf("create quotation: %v", err)
	}
	return q
}

var _ services.ItemRenderer = (*stubRenderer)(nil)
