// Copyright 2025 Arion Yau
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"ecpctl/internal/device"
	"ecpctl/internal/ecp"
	"ecpctl/internal/logger"
	"ecpctl/internal/registry"
)

// DiscoveredLister lists registry records
type DiscoveredLister interface {
	List() ([]registry.Record, error)
}

// APIServer exposes configured devices over REST
type APIServer struct {
	devices  *DeviceManager
	icons    *IconCache
	registry DiscoveredLister
	logger   zerolog.Logger
	server   *http.Server
	started  time.Time
}

// NewAPIServer creates a new API server. registry may be nil.
func NewAPIServer(devices *DeviceManager, icons *IconCache, registry DiscoveredLister) *APIServer {
	if icons == nil {
		icons = NewIconCache(0, 0)
	}
	return &APIServer{
		devices:  devices,
		icons:    icons,
		registry: registry,
		logger:   logger.WithComponent("bridge"),
		started:  time.Now(),
	}
}

// Router builds the HTTP routes
func (api *APIServer) Router() *mux.Router {
	router := mux.NewRouter()

	router.Use(api.loggingMiddleware)
	router.Use(api.corsMiddleware)

	apiRouter := router.PathPrefix("/api/v1").Subrouter()

	apiRouter.HandleFunc("/health", api.handleHealth).Methods("GET")
	apiRouter.HandleFunc("/devices", api.handleListDevices).Methods("GET")
	apiRouter.HandleFunc("/devices/{id}/action", api.handleDeviceAction).Methods("POST")
	apiRouter.HandleFunc("/devices/{id}/info", api.handleDeviceInfo).Methods("GET")
	apiRouter.HandleFunc("/devices/{id}/player", api.handlePlayer).Methods("GET")
	apiRouter.HandleFunc("/devices/{id}/apps", api.handleApps).Methods("GET")
	apiRouter.HandleFunc("/devices/{id}/apps/{app}/icon", api.handleIcon).Methods("GET")
	apiRouter.HandleFunc("/discovered", api.handleDiscovered).Methods("GET")

	return router
}

// Start starts the HTTP API server and blocks until it stops
func (api *APIServer) Start(address string) error {
	api.server = &http.Server{
		Addr:         address,
		Handler:      api.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	api.logger.Info().
		Str("address", address).
		Msg("Starting API server")

	if err := api.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully stops the API server
func (api *APIServer) Stop(ctx context.Context) error {
	if api.server != nil {
		return api.server.Shutdown(ctx)
	}
	return nil
}

// Middleware
func (api *APIServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		api.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("API request")
	})
}

func (api *APIServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Response helpers
func (api *APIServer) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (api *APIServer) sendError(w http.ResponseWriter, status int, message string) {
	api.sendJSON(w, status, map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// statusForError maps client and lookup errors to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrDeviceNotFound):
		return http.StatusNotFound
	case errors.Is(err, ecp.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ecp.ErrUnsupportedOperation):
		return http.StatusNotImplemented
	case ecp.IsProtocolError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (api *APIServer) sendFailure(w http.ResponseWriter, err error) {
	api.sendError(w, statusForError(err), err.Error())
}

func (api *APIServer) remoteFor(w http.ResponseWriter, r *http.Request) (*ecp.Remote, bool) {
	remote, err := api.devices.GetDevice(mux.Vars(r)["id"])
	if err != nil {
		api.sendFailure(w, err)
		return nil, false
	}
	return remote, true
}

func (api *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	api.sendJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "healthy",
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"uptime":       time.Since(api.started).Round(time.Second).String(),
		"device_count": api.devices.GetDeviceCount(),
		"icon_cache":   api.icons.GetStats(),
	})
}

func (api *APIServer) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices := api.devices.ListDevices()
	api.sendJSON(w, http.StatusOK, map[string]interface{}{
		"devices": devices,
		"count":   len(devices),
	})
}

func (api *APIServer) handleDeviceAction(w http.ResponseWriter, r *http.Request) {
	deviceID := mux.Vars(r)["id"]

	var request device.ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		api.sendError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if request.Type == "" || request.Action == "" {
		api.sendError(w, http.StatusBadRequest, "type and action are required")
		return
	}

	response, err := api.devices.ProcessDeviceAction(r.Context(), deviceID, &request)
	if err != nil {
		api.sendFailure(w, err)
		return
	}

	api.sendJSON(w, http.StatusOK, response)
}

func (api *APIServer) handleDeviceInfo(w http.ResponseWriter, r *http.Request) {
	remote, ok := api.remoteFor(w, r)
	if !ok {
		return
	}

	info, err := remote.Client().DeviceInfo(r.Context())
	if err != nil {
		api.sendFailure(w, err)
		return
	}
	api.sendJSON(w, http.StatusOK, info)
}

func (api *APIServer) handlePlayer(w http.ResponseWriter, r *http.Request) {
	remote, ok := api.remoteFor(w, r)
	if !ok {
		return
	}

	player, err := remote.Client().PlayerState(r.Context())
	if err != nil {
		api.sendFailure(w, err)
		return
	}
	api.sendJSON(w, http.StatusOK, player)
}

func (api *APIServer) handleApps(w http.ResponseWriter, r *http.Request) {
	remote, ok := api.remoteFor(w, r)
	if !ok {
		return
	}

	apps, err := remote.Client().Apps(r.Context())
	if err != nil {
		api.sendFailure(w, err)
		return
	}
	api.sendJSON(w, http.StatusOK, apps)
}

func (api *APIServer) handleIcon(w http.ResponseWriter, r *http.Request) {
	remote, ok := api.remoteFor(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	appID := vars["app"]
	icon, err := api.icons.Fetch(r.Context(), vars["id"], appID, func(ctx context.Context) ([]byte, error) {
		return remote.Client().Icon(ctx, appID)
	})
	if err != nil {
		api.sendFailure(w, err)
		return
	}

	w.Header().Set("Content-Type", icon.ContentType)
	w.Header().Set("Last-Modified", icon.FetchedAt.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	w.Write(icon.Data)
}

func (api *APIServer) handleDiscovered(w http.ResponseWriter, r *http.Request) {
	if api.registry == nil {
		api.sendError(w, http.StatusNotFound, "Registry not configured")
		return
	}

	records, err := api.registry.List()
	if err != nil {
		api.sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []registry.Record{}
	}

	api.sendJSON(w, http.StatusOK, map[string]interface{}{
		"devices": records,
		"count":   len(records),
	})
}
