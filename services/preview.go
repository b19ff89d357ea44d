package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"furniquote/render"
)

// ErrPreviewDisabled is returned when no AI credential is configured.
var ErrPreviewDisabled = errors.New("AI preview is not configured: set GOOGLE_GENAI_API_KEY")

// PreviewAnnotation is one part/material pairing sent to the image model.
type PreviewAnnotation struct {
	PartName       string `json:"partName"`
	MaterialName   string `json:"materialName"`
	MaterialType   string `json:"materialType"`
	MaterialCode   string `json:"materialCode"`
	SwatchImageURL string `json:"swatchImageUrl,omitempty"`
}

type PreviewRequest struct {
	ProductImageURL string              `json:"productImageUrl"`
	ProductName     string              `json:"productName"`
	Annotations     []PreviewAnnotation `json:"annotations"`
}

func (r PreviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductImageURL, validation.Required),
		validation.Field(&r.ProductName, validation.Required),
		validation.Field(&r.Annotations, validation.Required),
	)
}

type PreviewResult struct {
	Success     bool   `json:"success"`
	ImageBase64 string `json:"imageBase64,omitempty"`
	Error       string `json:"error,omitempty"`
}

// PreviewService produces an AI-edited product image showing the chosen
// materials.
type PreviewService interface {
	Enabled() bool
	Generate(ctx context.Context, req PreviewRequest) (PreviewResult, error)
}

// generateFunc sends parts to a model and returns the first candidate's parts.
type generateFunc func(ctx context.Context, model string, parts ...genai.Part) ([]genai.Part, error)

// GeminiPreview implements PreviewService with the Gemini API. The zero
// value and a nil pointer are both disabled.
type GeminiPreview struct {
	client      *genai.Client
	fetcher     render.Fetcher
	imageModel  string
	visionModel string
	generate    generateFunc
}

// NewGeminiPreview connects to Gemini. An empty apiKey yields a disabled
// service rather than an error.
func NewGeminiPreview(ctx context.Context, apiKey, imageModel, visionModel string, fetcher render.Fetcher) (*GeminiPreview, error) {
	if strings.TrimSpace(apiKey) == "" {
		log.Printf("preview: GOOGLE_GENAI_API_KEY is not set, AI preview disabled")
		return &GeminiPreview{}, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	p := &GeminiPreview{
		client:      client,
		fetcher:     fetcher,
		imageModel:  imageModel,
		visionModel: visionModel,
	}
	p.generate = p.callModel
	return p, nil
}

func (p *GeminiPreview) Enabled() bool {
	return p != nil && p.generate != nil
}

// Close releases the underlying client.
func (p *GeminiPreview) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}

func (p *GeminiPreview) callModel(ctx context.Context, model string, parts ...genai.Part) ([]genai.Part, error) {
	resp, err := p.client.GenerativeModel(model).GenerateContent(ctx, parts...)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, nil
	}
	return resp.Candidates[0].Content.Parts, nil
}

// imageFormat maps sniffed content to the short format genai.ImageData
// expects. Anything that is not jpeg is sent as png.
func imageFormat(data []byte) string {
	if http.DetectContentType(data) == "image/jpeg" {
		return "jpeg"
	}
	return "png"
}

const swatchColorPrompt = `Look at this material swatch image. What is the EXACT color?
Respond with ONLY the color name and hex code in this format: "COLOR_NAME (#HEXCODE)"
Examples: "White (#FFFFFF)", "Cream (#FFFDD0)", "Dark Brown (#3E2723)", "Navy Blue (#000080)"
Be precise: if it's off-white, say "Off-White" or "Cream", not just "White".`

// swatchColor asks the vision model for the swatch's colour, falling back to
// the material name on any failure.
func (p *GeminiPreview) swatchColor(ctx context.Context, a PreviewAnnotation) string {
	if a.SwatchImageURL == "" || p.fetcher == nil {
		return a.MaterialName
	}
	data, err := p.fetcher.Fetch(ctx, a.SwatchImageURL)
	if err != nil {
		log.Printf("preview: swatch for %s: %v", a.PartName, err)
		return a.MaterialName
	}
	parts, err := p.generate(ctx, p.visionModel, genai.Text(swatchColorPrompt), genai.ImageData(imageFormat(data), data))
	if err != nil {
		log.Printf("preview: colour extraction for %s: %v", a.PartName, err)
		return a.MaterialName
	}
	for _, part := range parts {
		if t, ok := part.(genai.Text); ok {
			if s := strings.TrimSpace(string(t)); s != "" {
				return s
			}
		}
	}
	return a.MaterialName
}

type partColor struct {
	PartName     string
	MaterialType string
	Color        string
}

func buildEditPrompt(productName string, parts []partColor) string {
	names := make([]string, len(parts))
	var changes, colors strings.Builder
	for i, p := range parts {
		names[i] = strings.ToLower(p.PartName)
		fmt.Fprintf(&changes, "- %s: Change to %s %s\n", strings.ToUpper(p.PartName), p.Color, p.MaterialType)
		fmt.Fprintf(&colors, "  * %s: %s\n", p.PartName, p.Color)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Edit this furniture image (%q). Change ONLY the specified parts to the EXACT colors listed.\n\n", productName)
	b.WriteString("MATERIAL CHANGES:\n")
	b.WriteString(changes.String())
	b.WriteString("\nEXACT COLORS TO USE:\n")
	b.WriteString(colors.String())
	b.WriteString("\nRULES:\n")
	fmt.Fprintf(&b, "1. Change ONLY the %s - leave everything else UNCHANGED\n", strings.Join(names, ", "))
	b.WriteString("2. Use the EXACT colors specified above (including the hex codes if provided)\n")
	b.WriteString("3. Keep the furniture shape, angle, lighting, and background identical\n")
	b.WriteString("4. Make the material look realistic with proper texture and reflections\n\n")
	b.WriteString("Generate the edited image.")
	return b.String()
}

func failed(msg string) PreviewResult {
	return PreviewResult{Success: false, Error: msg}
}

// Generate returns a data URL of the edited product image. Model and fetch
// failures come back as an unsuccessful result; the error is reserved for a
// disabled service or an incomplete request.
func (p *GeminiPreview) Generate(ctx context.Context, req PreviewRequest) (PreviewResult, error) {
	if !p.Enabled() {
		return PreviewResult{}, ErrPreviewDisabled
	}
	if err := req.Validate(); err != nil {
		return PreviewResult{}, err
	}
	if p.fetcher == nil {
		return failed("no image fetcher configured"), nil
	}

	product, err := p.fetcher.Fetch(ctx, req.ProductImageURL)
	if err != nil {
		log.Printf("preview: product image: %v", err)
		return failed("Failed to fetch product image"), nil
	}

	colors := make([]partColor, 0, len(req.Annotations))
	for _, a := range req.Annotations {
		colors = append(colors, partColor{
			PartName:     a.PartName,
			MaterialType: a.MaterialType,
			Color:        p.swatchColor(ctx, a),
		})
	}

	parts, err := p.generate(ctx, p.imageModel,
		genai.Text(buildEditPrompt(req.ProductName, colors)),
		genai.ImageData(imageFormat(product), product),
	)
	if err != nil {
		log.Printf("preview: generate: %v", err)
		return failed(err.Error()), nil
	}
	if len(parts) == 0 {
		return failed("No response from AI model"), nil
	}

	text := ""
	for _, part := range parts {
		switch v := part.(type) {
		case genai.Blob:
			if len(v.Data) == 0 {
				continue
			}
			mime := v.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			return PreviewResult{
				Success:     true,
				ImageBase64: "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(v.Data),
			}, nil
		case genai.Text:
			if text == "" {
				text = string(v)
			}
		}
	}
	if text == "" {
		text = "No image generated"
	}
	return failed(text), nil
}
