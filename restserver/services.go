// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"github.com/diffeo/go-openeo/endpoint"
	"github.com/diffeo/go-openeo/openeo"
	"github.com/diffeo/go-openeo/restdata"
	"github.com/gorilla/mux"
)

// serviceURL builds the absolute URL of a secondary service, for
// Location headers.
func (api *restAPI) serviceURL(ctx *context, id string) (string, error) {
	var path string
	err := buildURLs(api.Router, "version", ctx.versionToken(), "service_id", id).
		URL(&path, "service").
		Error
	if err != nil {
		return "", err
	}
	return api.externalURL(ctx.Request, path), nil
}

// ServiceTypesGet lists the service types this back-end can
// instantiate, reshaped for the request's protocol generation.
func (api *restAPI) ServiceTypesGet(ctx *context) (interface{}, error) {
	types := api.Backend.Services().ServiceTypes()
	return api.Normalizer.NormalizeServiceTypes(types, ctx.Version), nil
}

// ServicesGet lists all secondary services as summary documents.  The
// service routes predate authentication in this protocol and remain
// public.
func (api *restAPI) ServicesGet(ctx *context) (interface{}, error) {
	services, err := api.Backend.Services().ListServices()
	if err != nil {
		return nil, err
	}
	result := restdata.ServiceList{
		Services: make([]restdata.Document, 0, len(services)),
		Links:    []openeo.Link{},
	}
	for _, service := range services {
		doc, err := api.Normalizer.NormalizeService(service, ctx.Version, false)
		if err != nil {
			return nil, err
		}
		result.Services = append(result.Services, doc)
	}
	return result, nil
}

// ServicesPost instantiates a new secondary service.  Like job
// creation, the response body is empty and the identity travels in
// headers.
func (api *restAPI) ServicesPost(ctx *context, in interface{}) (interface{}, error) {
	req, err := restdata.ParseServiceRequest(asDocument(in), ctx.Version)
	if err != nil {
		return nil, err
	}
	service, err := api.Backend.Services().CreateService(req)
	if err != nil {
		return nil, err
	}
	location, err := api.serviceURL(ctx, service.ID)
	if err != nil {
		return nil, err
	}
	return responseCreated{Location: location, Identifier: service.ID}, nil
}

// ServiceGet returns the full metadata of one secondary service.
func (api *restAPI) ServiceGet(ctx *context) (interface{}, error) {
	return api.Normalizer.NormalizeService(ctx.Service, ctx.Version, true)
}

// ServicePatch applies a partial update.  Absent fields are left
// alone.
func (api *restAPI) ServicePatch(ctx *context, in interface{}) (interface{}, error) {
	req := restdata.ParseServiceUpdate(asDocument(in), ctx.Version)
	return nil, api.Backend.Services().UpdateService(ctx.Service.ID, req)
}

// ServiceDelete stops and removes a secondary service.
func (api *restAPI) ServiceDelete(ctx *context) (interface{}, error) {
	return nil, api.Backend.Services().RemoveService(ctx.Service.ID)
}

// populateServices adds the secondary service routes to an API tree.
func (api *restAPI) populateServices(r *mux.Router, named bool) {
	api.route(r, named, endpoint.Endpoint{
		Path:    "/service_types",
		Methods: []string{"GET"},
	}, "serviceTypes", &resourceHandler{
		Representation: restdata.Document{},
		Get:            api.ServiceTypesGet,
	})
	api.route(r, named, endpoint.Endpoint{
		Path:    "/services",
		Methods: []string{"GET", "POST"},
	}, "services", &resourceHandler{
		Representation: restdata.Document{},
		Get:            api.ServicesGet,
		Post:           api.ServicesPost,
	})
	api.route(r, named, endpoint.Endpoint{
		Path:    "/services/{service_id}",
		Methods: []string{"GET", "PATCH", "DELETE"},
	}, "service", &resourceHandler{
		Representation: restdata.Document{},
		Get:            api.ServiceGet,
		Patch:          api.ServicePatch,
		Delete:         api.ServiceDelete,
	})
}
