package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cobra"

	"furniquote/collections"
	"furniquote/config"
	"furniquote/handlers"
	"furniquote/render"
	"furniquote/services"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()

	app := pocketbase.New()
	app.RootCmd.AddCommand(newExportCommand(app, cfg))

	// Create collections, seed data and run migrations on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		if err := collections.MigrateReferenceCounters(app); err != nil {
			log.Printf("Warning: reference counter migration failed: %v", err)
		}
		if err := collections.MigrateQuotationTotals(app); err != nil {
			log.Printf("Warning: quotation totals migration failed: %v", err)
		}
		return se.Next()
	})

	fetcher := render.NewHTTPFetcher(cfg.PublicBaseURL, cfg.ImageFetchTimeout)
	preview, err := services.NewGeminiPreview(context.Background(), cfg.GenAIAPIKey, cfg.GenAIImageModel, cfg.GenAIVisionModel, fetcher)
	if err != nil {
		log.Printf("Warning: AI preview disabled: %v", err)
		preview = &services.GeminiPreview{}
	}
	app.OnTerminate().BindFunc(func(e *core.TerminateEvent) error {
		if err := preview.Close(); err != nil {
			log.Printf("Warning: closing preview client: %v", err)
		}
		return e.Next()
	})

	d := handlers.NewDeps(app, cfg)
	d.Renderer = render.NewRenderer(fetcher)
	d.Preview = preview

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// Serve static files (product photos, swatches) from ./static
		se.Router.GET("/static/{path...}", apis.Static(os.DirFS("./static"), false))

		// ── Catalog ──────────────────────────────────────────────
		se.Router.GET("/api/products", handlers.HandleProductList(d))
		se.Router.POST("/api/products", handlers.HandleProductSave(d))
		se.Router.GET("/api/products/{id}", handlers.HandleProductGet(d))
		se.Router.POST("/api/products/{id}", handlers.HandleProductSave(d))
		se.Router.DELETE("/api/products/{id}", handlers.HandleProductDelete(d))

		se.Router.GET("/api/materials", handlers.HandleMaterialList(d))
		se.Router.GET("/api/materials/tags", handlers.HandleMaterialTags(d))
		se.Router.POST("/api/materials", handlers.HandleMaterialSave(d))
		se.Router.GET("/api/materials/{id}", handlers.HandleMaterialGet(d))
		se.Router.POST("/api/materials/{id}", handlers.HandleMaterialSave(d))
		se.Router.DELETE("/api/materials/{id}", handlers.HandleMaterialDelete(d))
		se.Router.GET("/api/materials/import/template", handlers.HandleMaterialTemplate(d))
		se.Router.POST("/api/materials/import", handlers.HandleMaterialImport(d))
		se.Router.POST("/api/materials/import/errors", handlers.HandleMaterialImportErrors(d))

		se.Router.GET("/api/clients", handlers.HandleClientList(d))
		se.Router.POST("/api/clients", handlers.HandleClientSave(d))
		se.Router.GET("/api/clients/{id}", handlers.HandleClientGet(d))
		se.Router.POST("/api/clients/{id}", handlers.HandleClientSave(d))
		se.Router.DELETE("/api/clients/{id}", handlers.HandleClientDelete(d))

		se.Router.POST("/api/uploads", handlers.HandleUpload(d))

		// ── Item builder ─────────────────────────────────────────
		se.Router.POST("/api/workbench", handlers.HandleWorkbench(d))
		se.Router.POST("/api/workbench/canvas", handlers.HandleWorkbenchCanvas(d))

		// ── Quotations (saves pass through the save guard) ───────
		se.Router.GET("/api/quotations", handlers.HandleQuotationList(d))
		se.Router.POST("/api/quotations", handlers.HandleQuotationSave(d)).
			BindFunc(d.Guard.Middleware())
		se.Router.GET("/api/quotations/{id}", handlers.HandleQuotationGet(d))
		se.Router.POST("/api/quotations/{id}", handlers.HandleQuotationSave(d)).
			BindFunc(d.Guard.Middleware())
		se.Router.POST("/api/quotations/{id}/status", handlers.HandleQuotationStatus(d))
		se.Router.DELETE("/api/quotations/{id}", handlers.HandleQuotationDelete(d))
		se.Router.GET("/api/quotations/{id}/summary", handlers.HandleQuotationSummary(d))

		// ── Exports and item images ──────────────────────────────
		se.Router.GET("/api/quotations/{id}/export/excel", handlers.HandleQuotationExportExcel(d))
		se.Router.GET("/api/quotations/{id}/export/pdf", handlers.HandleQuotationExportPDF(d))
		se.Router.GET("/api/quotations/{id}/items/{itemId}/image", handlers.HandleItemImage(d))
		se.Router.GET("/api/quotations/{id}/items/{itemId}/canvas", handlers.HandleItemCanvas(d))

		se.Router.POST("/api/generate-preview", handlers.HandleGeneratePreview(d))
		se.Router.GET("/api/analytics", handlers.HandleAnalytics(d))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

// newExportCommand writes a quotation export to disk without starting the
// server.
func newExportCommand(app *pocketbase.PocketBase, cfg config.Config) *cobra.Command {
	var (
		outDir string
		asPDF  bool
	)
	cmd := &cobra.Command{
		Use:   "export <quotation-id>",
		Short: "Export a quotation as a spreadsheet or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collections.Setup(app)

			q, err := services.NewStore(app).GetQuotation(args[0])
			if err != nil {
				return err
			}
			renderer := render.NewRenderer(render.NewHTTPFetcher(cfg.PublicBaseURL, cfg.ImageFetchTimeout))
			data := services.BuildQuotationExportData(cmd.Context(), q, cfg.BrandName, renderer)

			ext := "xlsx"
			var body []byte
			if asPDF {
				ext = "pdf"
				body, err = services.GenerateQuotationPDF(data)
			} else {
				body, err = services.GenerateQuotationExcel(data, cfg.ExportTemplatePath)
			}
			if err != nil {
				return fmt.Errorf("export %s: %w", q.ReferenceNumber, err)
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			path := filepath.Join(outDir, services.ExportFilename(data, ext))
			if err := os.WriteFile(path, body, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", ".", "directory to write the export into")
	cmd.Flags().BoolVar(&asPDF, "pdf", false, "write a PDF instead of a spreadsheet")
	return cmd
}
