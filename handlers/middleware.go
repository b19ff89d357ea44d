package handlers

import (
	"log"
	"net/http"
	"sync"

	"github.com/pocketbase/pocketbase/core"
)

// SaveGuard rejects a second save of the same quotation while the first one
// is still being written. In-flight saves are never cancelled.
type SaveGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewSaveGuard() *SaveGuard {
	return &SaveGuard{inFlight: make(map[string]struct{})}
}

// Acquire marks key as saving. It reports false when a save for key is
// already in progress.
func (g *SaveGuard) Acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inFlight[key]; busy {
		return false
	}
	g.inFlight[key] = struct{}{}
	return true
}

func (g *SaveGuard) Release(key string) {
	g.mu.Lock()
	delete(g.inFlight, key)
	g.mu.Unlock()
}

// saveKey identifies the quotation a request writes. Creates have no id yet
// and are keyed by the caller's address.
func saveKey(e *core.RequestEvent) string {
	if id := e.Request.PathValue("id"); id != "" {
		return "quotation:" + id
	}
	return "new:" + e.RealIP()
}

// Middleware wraps quotation save routes with the guard.
func (g *SaveGuard) Middleware() func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		key := saveKey(e)
		if !g.Acquire(key) {
			log.Printf("save_guard: rejected concurrent save for %s", key)
			return writeError(e, http.StatusConflict, "This quotation is already being saved. Please wait.")
		}
		defer g.Release(key)
		return e.Next()
	}
}
