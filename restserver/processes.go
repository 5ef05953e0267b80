// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"github.com/diffeo/go-openeo/endpoint"
	"github.com/diffeo/go-openeo/openeo"
	"github.com/diffeo/go-openeo/restdata"
	"github.com/gorilla/mux"
)

// ProcessesGet lists the predefined processes of the request's
// protocol generation.  The qname query parameter filters by
// substring of the process id.
func (api *restAPI) ProcessesGet(ctx *context) (interface{}, error) {
	registry := api.Config.Processes.ForVersion(ctx.Version)
	specs, err := registry.Search(ctx.QueryParams.Get("qname"), ctx.Version)
	if err != nil {
		return nil, err
	}
	return restdata.ProcessList{
		Processes: specs,
		Links:     []openeo.Link{},
	}, nil
}

// ProcessGet returns the spec of one predefined process.
func (api *restAPI) ProcessGet(ctx *context) (interface{}, error) {
	return ctx.Process, nil
}

// populateProcesses adds the process discovery routes to an API tree.
func (api *restAPI) populateProcesses(r *mux.Router, named bool) {
	api.route(r, named, endpoint.Endpoint{
		Path:    "/processes",
		Methods: []string{"GET"},
	}, "processes", &resourceHandler{
		Representation: restdata.Document{},
		Get:            api.ProcessesGet,
	})
	api.route(r, named, endpoint.Endpoint{
		Path:    "/processes/{process_id}",
		Methods: []string{"GET"},
	}, "process", &resourceHandler{
		Representation: restdata.Document{},
		Get:            api.ProcessGet,
	})
}
