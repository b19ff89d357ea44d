package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"
)

func HandleAnalytics(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		a, err := d.Store.Analytics()
		if err != nil {
			return storeError(e, "analytics", err)
		}
		return e.JSON(http.StatusOK, a)
	}
}
