// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"errors"
	"net/http"

	"github.com/diffeo/go-openeo/endpoint"
	"github.com/diffeo/go-openeo/openeo"
	"github.com/diffeo/go-openeo/processes"
	"github.com/diffeo/go-openeo/restdata"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Config adjusts the published API.  The zero value is usable and
// serves the builtin process table under the default version catalog.
type Config struct {
	// Title is the human-readable name of this service instance.
	Title string

	// Description describes this service instance.
	Description string

	// ID identifies this service instance.  When empty, an
	// identifier is derived from the title and version.
	ID string

	// BackendVersion identifies the back-end software release.
	BackendVersion string

	// BaseURL, if set, is used verbatim as the absolute URL prefix
	// of generated links, overriding whatever the request says.
	BaseURL string

	// OpenIDConnectURL is where /credentials/oidc redirects to.
	// When empty that route reports 501.
	OpenIDConnectURL string

	// Versions is the catalog of supported protocol versions.
	Versions *openeo.VersionCatalog

	// Processes holds the per-generation process registries.
	Processes processes.Registries

	// Billing is the billing block of capability documents.
	Billing *restdata.Billing

	// UDFRuntimes is the table reported by /udf_runtimes.
	UDFRuntimes map[string]interface{}

	// Log receives warnings about unrenderable records, and panic
	// reports.
	Log *logrus.Logger
}

// withDefaults fills the blank parts of a configuration.
func (c Config) withDefaults() Config {
	if c.Title == "" {
		c.Title = "OpenEO API"
	}
	if c.Description == "" {
		c.Description = "OpenEO API"
	}
	if c.BackendVersion == "" {
		c.BackendVersion = "0.0.1"
	}
	if c.Versions == nil {
		c.Versions = openeo.DefaultVersionCatalog()
	}
	if c.Log == nil {
		c.Log = logrus.StandardLogger()
	}
	if c.Processes.PreV1 == nil && c.Processes.V1 == nil {
		c.Processes = processes.Builtin(c.Log)
	}
	if c.Billing == nil {
		c.Billing = restdata.DefaultBilling()
	}
	if c.UDFRuntimes == nil {
		c.UDFRuntimes = restdata.DefaultUDFRuntimes()
	}
	return c
}

// NewRouter creates a new HTTP handler that serves the openEO API for
// a back-end.  The API trees are under /openeo and /openeo/{version},
// and the discovery document is at /.well-known/openeo.  For more
// control over this setup, create a mux.Router and call
// PopulateRouter instead.
func NewRouter(backend openeo.Backend, config Config) (http.Handler, error) {
	r := mux.NewRouter()
	r.NotFoundHandler = NotFound
	if err := PopulateRouter(r, backend, config); err != nil {
		return nil, err
	}
	return r, nil
}

// PopulateRouter adds openEO routes to an existing
// github.com/gorilla/mux router object.  The error reports a path
// registered twice, which is always a mistake in route setup.
func PopulateRouter(r *mux.Router, backend openeo.Backend, config Config) error {
	api := &restAPI{
		Backend:   backend,
		Config:    config.withDefaults(),
		Router:    r,
		Endpoints: endpoint.NewRegistry(),
	}
	api.Normalizer = &restdata.Normalizer{Log: api.Config.Log}
	return api.PopulateRouter(r)
}

// restAPI holds the persistent state for the openEO REST API.
type restAPI struct {
	Backend    openeo.Backend
	Config     Config
	Router     *mux.Router
	Endpoints  *endpoint.Registry
	Normalizer *restdata.Normalizer

	// err collects the first route-setup failure; see api.route().
	err error
}

// PopulateRouter adds all openEO URL paths to a router.  The
// version-less tree binds first so that its literal path components,
// /openeo/collections say, are never taken for version tokens.
func (api *restAPI) PopulateRouter(r *mux.Router) error {
	api.populateAPI(r.PathPrefix("/openeo").Subrouter(), false)
	api.populateAPI(r.PathPrefix("/openeo/{version}").Subrouter(), true)
	api.populateWellKnown(r)
	return api.err
}

// populateAPI adds one complete API tree to a router.  Endpoint
// recording and route naming happen only on the versioned pass, so
// that each endpoint is counted once and every named route generates
// URLs carrying a version component.
func (api *restAPI) populateAPI(r *mux.Router, named bool) {
	api.populateCapabilities(r, named)
	api.populateAuth(r, named)
	api.populateCollections(r, named)
	api.populateProcesses(r, named)
	api.populateResult(r, named)
	api.populateJobs(r, named)
	api.populateServices(r, named)
}

// route registers one resource route at e.Path relative to the tree
// root.  Failures stick to api.err so route setup reads as a simple
// sequence.
func (api *restAPI) route(r *mux.Router, named bool, e endpoint.Endpoint, name string, h *resourceHandler) {
	if h.Context == nil {
		h.Context = api.Context
	}
	if h.Log == nil {
		h.Log = api.Config.Log
	}
	route := r.Path(e.Path).Handler(h)
	if !named {
		return
	}
	route.Name(name)
	if err := api.Endpoints.Add(e); err != nil && api.err == nil {
		api.err = err
	}
}

// bind registers a handler at a path with no endpoint recording and
// no route name.  It exists for the slash-less spellings of the tree
// roots and for the well-known document.
func (api *restAPI) bind(r *mux.Router, path string, h *resourceHandler) {
	if h.Context == nil {
		h.Context = api.Context
	}
	if h.Log == nil {
		h.Log = api.Config.Log
	}
	r.Path(path).Handler(h)
}

// NotFound answers requests matching no route with the JSON error
// envelope instead of the stock HTML page.  NewRouter installs it on
// the routers it builds; callers populating their own router can set
// it as the mux NotFoundHandler.
var NotFound http.Handler = notFoundHandler{}

type notFoundHandler struct{}

func (notFoundHandler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	response := restdata.ErrorResponse{}
	response.FromError(restdata.ErrNotFound{
		Err: errors.New("The requested URL was not found on the server."),
	})
	resp.Header().Set("Content-Type", restdata.JSONMediaType)
	resp.WriteHeader(http.StatusNotFound)
	_ = restdata.Encode(resp, response)
}
