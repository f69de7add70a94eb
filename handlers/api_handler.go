package handlers

import (
	"net/http"

	"github.com/cloudgrid/api-gateway/app"
)

// APIHandler exposes the gateway dispatcher as an http.HandlerFunc. All
// command classification, authentication and response writing happens
// inside the dispatcher.
func APIHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deps.Dispatcher.Process(w, r)
	}
}
