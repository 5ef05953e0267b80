// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"github.com/diffeo/go-openeo/endpoint"
	"github.com/diffeo/go-openeo/openeo"
	"github.com/diffeo/go-openeo/restdata"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// CollectionsGet lists the catalog as summary documents.  A record
// that cannot be rendered is skipped with a warning rather than
// failing the whole listing.
func (api *restAPI) CollectionsGet(ctx *context) (interface{}, error) {
	collections, err := api.Backend.Collections().ListCollections()
	if err != nil {
		return nil, err
	}
	result := restdata.CollectionList{
		Collections: make([]restdata.Document, 0, len(collections)),
		Links:       []openeo.Link{},
	}
	for _, c := range collections {
		doc, err := api.Normalizer.NormalizeCollection(c, ctx.Version, false)
		if err != nil {
			api.Config.Log.WithFields(logrus.Fields{
				"collection": c.ID,
				"error":      err,
			}).Warning("Skipping unrenderable collection")
			continue
		}
		result.Collections = append(result.Collections, doc)
	}
	return result, nil
}

// CollectionGet returns the full metadata of one collection.
func (api *restAPI) CollectionGet(ctx *context) (interface{}, error) {
	return api.Normalizer.NormalizeCollection(ctx.Collection, ctx.Version, true)
}

// populateCollections adds the collection catalog routes to an API
// tree.
func (api *restAPI) populateCollections(r *mux.Router, named bool) {
	api.route(r, named, endpoint.Endpoint{
		Path:    "/collections",
		Methods: []string{"GET"},
	}, "collections", &resourceHandler{
		Representation: restdata.Document{},
		Get:            api.CollectionsGet,
	})
	api.route(r, named, endpoint.Endpoint{
		Path:    "/collections/{collection_id}",
		Methods: []string{"GET"},
	}, "collection", &resourceHandler{
		Representation: restdata.Document{},
		Get:            api.CollectionGet,
	})
}
