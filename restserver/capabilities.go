// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"github.com/diffeo/go-openeo/endpoint"
	"github.com/diffeo/go-openeo/openeo"
	"github.com/diffeo/go-openeo/restdata"
	"github.com/gorilla/mux"
)

// WellKnownDocument returns the version discovery document.  Each
// advertised alias gets the absolute root URL of the tree serving it.
func (api *restAPI) WellKnownDocument(ctx *context) (interface{}, error) {
	discovery := restdata.BuildDiscovery(api.Config.Versions.Advertised(), func(alias string) string {
		var path string
		err := buildURLs(api.Router, "version", alias).
			URL(&path, "index").
			Error
		if err != nil {
			path = "/openeo/" + alias + "/"
		}
		return api.externalURL(ctx.Request, path)
	})
	return discovery, nil
}

// CapabilitiesDocument describes the API tree the request arrived on:
// the canonical version spoken there, this instance's identity, and
// the endpoint listing for that version.
func (api *restAPI) CapabilitiesDocument(ctx *context) (interface{}, error) {
	id := api.Config.ID
	if id == "" {
		id = restdata.ServiceID(api.Config.Title, ctx.Version)
	}
	return restdata.Capabilities{
		APIVersion:     ctx.Version.String(),
		BackendVersion: api.Config.BackendVersion,
		StacVersion:    "0.9.0",
		ID:             id,
		Title:          api.Config.Title,
		Description:    api.Config.Description,
		Production:     api.Config.Versions.Production(ctx.Version),
		Endpoints:      api.Endpoints.Capabilities(ctx.Version),
		Billing:        api.Config.Billing,
	}, nil
}

// HealthGet reports the back-end's liveness message.
func (api *restAPI) HealthGet(ctx *context) (interface{}, error) {
	return restdata.Health{Health: api.Backend.HealthCheck()}, nil
}

// LegacyCapabilitiesGet serves the 0.3-era capability listing, a bare
// array of paths.
func (api *restAPI) LegacyCapabilitiesGet(ctx *context) (interface{}, error) {
	return []string{"/data", "/execute", "/processes"}, nil
}

// OutputFormatsGet serves the pre-1.0 spelling of the format listing,
// which only covered output.
func (api *restAPI) OutputFormatsGet(ctx *context) (interface{}, error) {
	return api.Backend.FileFormats().Output, nil
}

// FileFormatsGet serves the 1.0 format listing, input and output.
func (api *restAPI) FileFormatsGet(ctx *context) (interface{}, error) {
	return api.Backend.FileFormats(), nil
}

// UDFRuntimesGet serves the UDF runtime table.
func (api *restAPI) UDFRuntimesGet(ctx *context) (interface{}, error) {
	return api.Config.UDFRuntimes, nil
}

// populateCapabilities adds the discovery-flavored routes to an API
// tree: the capabilities root, health, the format listings, and the
// 0.3-era capability listing.
func (api *restAPI) populateCapabilities(r *mux.Router, named bool) {
	index := &resourceHandler{
		Representation: restdata.Document{},
		Get:            api.CapabilitiesDocument,
	}
	api.route(r, named, endpoint.Endpoint{
		Path:    "/",
		Methods: []string{"GET"},
		Hidden:  true,
	}, "index", index)
	// The tree root also answers without its trailing slash.
	api.bind(r, "", index)

	api.route(r, named, endpoint.Endpoint{
		Path:    "/health",
		Methods: []string{"GET"},
		Hidden:  true,
	}, "health", &resourceHandler{
		Representation: restdata.Health{},
		Get:            api.HealthGet,
	})
	api.route(r, named, endpoint.Endpoint{
		Path:    "/capabilities",
		Methods: []string{"GET"},
		If:      openeo.AtMost(openeo.V031),
	}, "legacyCapabilities", &resourceHandler{
		Representation: restdata.Document{},
		Get:            api.LegacyCapabilitiesGet,
	})
	api.route(r, named, endpoint.Endpoint{
		Path:    "/output_formats",
		Methods: []string{"GET"},
		If:      openeo.Below(openeo.V100),
	}, "outputFormats", &resourceHandler{
		Representation: restdata.Document{},
		Get:            api.OutputFormatsGet,
	})
	api.route(r, named, endpoint.Endpoint{
		Path:    "/file_formats",
		Methods: []string{"GET"},
		If:      openeo.AtLeast(openeo.V100),
	}, "fileFormats", &resourceHandler{
		Representation: restdata.Document{},
		Get:            api.FileFormatsGet,
	})
	api.route(r, named, endpoint.Endpoint{
		Path:    "/udf_runtimes",
		Methods: []string{"GET"},
	}, "udfRuntimes", &resourceHandler{
		Representation: restdata.Document{},
		Get:            api.UDFRuntimesGet,
	})
}

// populateWellKnown adds the discovery document at the server root,
// outside the version trees.
func (api *restAPI) populateWellKnown(r *mux.Router) {
	api.bind(r, "/.well-known/openeo", &resourceHandler{
		Representation: restdata.Document{},
		Get:            api.WellKnownDocument,
	})
}
