package handlers

import (
	"github.com/pocketbase/pocketbase/core"

	"furniquote/config"
	"furniquote/services"
)

// Deps is what the route handlers share. Handlers take it instead of the
// bare app so tests can swap the renderer and the preview service.
type Deps struct {
	App      core.App
	Store    *services.Store
	Images   *services.ImageStore
	Preview  services.PreviewService
	Renderer services.ItemRenderer
	Config   config.Config
	Guard    *SaveGuard
}

// NewDeps wires the store, image store and save guard over app. Preview and
// Renderer are left for the caller.
func NewDeps(app core.App, cfg config.Config) *Deps {
	return &Deps{
		App:    app,
		Store:  services.NewStore(app),
		Images: services.NewImageStore(app, cfg.PublicBaseURL),
		Config: cfg,
		Guard:  NewSaveGuard(),
	}
}
