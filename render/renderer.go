package render

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"furniquote/quote"
)

// maxImageBytes caps a single fetched image.
const maxImageBytes = 20 << 20

// Fetcher loads image bytes by URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// HTTPFetcher fetches images over HTTP. Relative URLs, such as PocketBase
// file paths, are resolved against BaseURL.
type HTTPFetcher struct {
	Client  *http.Client
	BaseURL string
}

// NewHTTPFetcher returns a fetcher with a per-request timeout.
func NewHTTPFetcher(baseURL string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		Client:  &http.Client{Timeout: timeout},
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (f *HTTPFetcher) resolve(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if u.IsAbs() {
		return u.String(), nil
	}
	if f.BaseURL == "" {
		return "", fmt.Errorf("relative url %q without base", rawURL)
	}
	base, err := url.Parse(f.BaseURL + "/")
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	return base.ResolveReference(u).String(), nil
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, fmt.Errorf("empty image url")
	}
	target, err := f.resolve(rawURL)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: status %d", target, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", target, err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("fetch %s: image larger than %d bytes", target, maxImageBytes)
	}
	return data, nil
}

// Renderer fetches the images an item needs and composes it.
type Renderer struct {
	Fetcher Fetcher
}

func NewRenderer(f Fetcher) *Renderer {
	return &Renderer{Fetcher: f}
}

// Render produces the composite PNG for one item. A product image that cannot
// be fetched or decoded yields ErrProductImage. A swatch that cannot be
// fetched only affects its own row.
func (r *Renderer) Render(ctx context.Context, productURL string, annotations []quote.Annotation) ([]byte, error) {
	product, err := r.Fetcher.Fetch(ctx, productURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProductImage, err)
	}
	if len(annotations) == 0 {
		return Composite(product, nil, nil)
	}

	swatches := make(map[string][]byte, len(annotations))
	byURL := make(map[string][]byte)
	for _, a := range annotations {
		src := a.Material.SwatchImageURL
		if src == "" {
			continue
		}
		if data, ok := byURL[src]; ok {
			swatches[a.ID] = data
			continue
		}
		data, err := r.Fetcher.Fetch(ctx, src)
		if err != nil {
			log.Printf("render: swatch for %q unavailable, using type colour: %v", a.Material.Name, err)
			byURL[src] = nil
			continue
		}
		byURL[src] = data
		swatches[a.ID] = data
	}
	return Composite(product, annotations, swatches)
}
