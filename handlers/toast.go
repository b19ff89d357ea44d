package handlers

import (
	"encoding/json"
	"log"

	"github.com/pocketbase/pocketbase/core"
)

// toastEvent is the HX-Trigger event the workbench layout listens for.
const toastEvent = "showToast"

type toast struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// SetToast adds a toast event to the HX-Trigger header. Events already set
// on the response are kept; a non-JSON header is replaced.
func SetToast(e *core.RequestEvent, kind, message string) {
	events := map[string]any{}
	if existing := e.Response.Header().Get("HX-Trigger"); existing != "" {
		if err := json.Unmarshal([]byte(existing), &events); err != nil {
			log.Printf("toast: replacing non-JSON HX-Trigger %q", existing)
			events = map[string]any{}
		}
	}
	events[toastEvent] = toast{Message: message, Type: kind}

	data, err := json.Marshal(events)
	if err != nil {
		log.Printf("toast: failed to marshal HX-Trigger: %v", err)
		return
	}
	e.Response.Header().Set("HX-Trigger", string(data))
}

// suppressSwap keeps HTMX from swapping an error body into the page while
// the toast still fires.
func suppressSwap(e *core.RequestEvent) {
	e.Response.Header().Set("HX-Reswap", "none")
}
