// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"github.com/diffeo/go-openeo/endpoint"
	"github.com/diffeo/go-openeo/openeo"
	"github.com/diffeo/go-openeo/restdata"
	"github.com/gorilla/mux"
)

// SynchronousResult evaluates a posted process graph immediately and
// returns the single result artifact with its own media type.
func (api *restAPI) SynchronousResult(ctx *context, in interface{}) (interface{}, error) {
	user, err := ctx.Identity()
	if err != nil {
		return nil, err
	}
	graph, err := restdata.ExtractProcessGraph(asDocument(in), ctx.Version)
	if err != nil {
		return nil, err
	}
	result, err := api.Backend.Evaluate(user, map[string]interface{}{"process_graph": graph})
	if err != nil {
		return nil, err
	}
	return responseRaw{MediaType: result.MediaType, Content: result.Content}, nil
}

// PreviewGet rejects a GET to the 0.3-era preview route.  There is
// never a process graph in a GET.
func (api *restAPI) PreviewGet(ctx *context) (interface{}, error) {
	return nil, openeo.ErrProcessGraphMissing
}

// populateResult adds the synchronous processing routes to an API
// tree.  Only /result is current; /preview is the 0.3-era spelling
// and /execute is not an official route at all, but old clients know
// both.
func (api *restAPI) populateResult(r *mux.Router, named bool) {
	api.route(r, named, endpoint.Endpoint{
		Path:    "/result",
		Methods: []string{"POST"},
	}, "result", &resourceHandler{
		Representation: restdata.Document{},
		Raw:            true,
		Post:           api.SynchronousResult,
	})
	api.route(r, named, endpoint.Endpoint{
		Path:    "/preview",
		Methods: []string{"GET", "POST"},
		If:      openeo.AtMost(openeo.V031),
	}, "preview", &resourceHandler{
		Representation: restdata.Document{},
		Raw:            true,
		Get:            api.PreviewGet,
		Post:           api.SynchronousResult,
	})
	api.route(r, named, endpoint.Endpoint{
		Path:    "/execute",
		Methods: []string{"POST"},
		Hidden:  true,
	}, "execute", &resourceHandler{
		Representation: restdata.Document{},
		Raw:            true,
		Post:           api.SynchronousResult,
	})
}
