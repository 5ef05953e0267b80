// Copyright 2015-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"net/url"
	"path"

	"github.com/diffeo/go-openeo/openeo"
	"github.com/diffeo/go-openeo/restdata"
)

// Service is a handle on one secondary web service.
type Service struct {
	resource
	client *Client

	// ID is the service's identity as the service assigned it.
	ID string
}

// serviceRequestDocument renders a canonical service request in the
// connected version's wire shape.  Only set fields go on the wire, so
// the same rendering serves both creation and partial update.
func (c *Client) serviceRequestDocument(req openeo.ServiceRequest) restdata.Document {
	doc := restdata.Document{}
	if req.Process != nil {
		if c.Version.AtLeast(openeo.V100) {
			doc["process"] = req.Process
		} else if pg, ok := req.Process["process_graph"]; ok {
			doc["process_graph"] = pg
		}
	}
	if req.Type != "" {
		doc["type"] = req.Type
	}
	if req.Configuration != nil {
		if c.Version.AtLeast(openeo.V100) {
			doc["configuration"] = req.Configuration
		} else {
			doc["parameters"] = req.Configuration
		}
	}
	if req.Title != "" {
		doc["title"] = req.Title
	}
	if req.Description != "" {
		doc["description"] = req.Description
	}
	if req.Enabled != nil {
		doc["enabled"] = *req.Enabled
	}
	if req.Plan != "" {
		doc["plan"] = req.Plan
	}
	if req.Budget != nil {
		doc["budget"] = *req.Budget
	}
	return doc
}

// ServiceTypes lists the kinds of secondary service the back-end can
// instantiate, keyed by type name.
func (c *Client) ServiceTypes() (map[string]interface{}, error) {
	types := map[string]interface{}{}
	err := c.GetFrom("service_types", map[string]interface{}{}, &types)
	return types, err
}

// Services lists all secondary services as summary documents.
func (c *Client) Services() ([]restdata.Document, error) {
	list := restdata.ServiceList{}
	err := c.GetFrom("services", map[string]interface{}{}, &list)
	return list.Services, err
}

// CreateService instantiates a new secondary service and returns a
// handle on it.  The request's Type and Process fields are required.
func (c *Client) CreateService(req openeo.ServiceRequest) (*Service, error) {
	u, err := c.Template("services", map[string]interface{}{})
	if err != nil {
		return nil, err
	}
	id, location, err := c.Create(u, c.serviceRequestDocument(req))
	if err != nil {
		return nil, err
	}
	if id == "" && location != nil {
		id = path.Base(location.Path)
	}
	service := &Service{client: c, ID: id}
	service.session = c.session
	service.URL = location
	if service.URL == nil {
		service.URL, err = c.serviceResource(id)
	}
	return service, err
}

// ServiceFromID returns a handle on an existing secondary service
// without checking that it exists.
func (c *Client) ServiceFromID(id string) (*Service, error) {
	u, err := c.serviceResource(id)
	if err != nil {
		return nil, err
	}
	service := &Service{client: c, ID: id}
	service.session = c.session
	service.URL = u
	return service, nil
}

func (c *Client) serviceResource(id string) (*url.URL, error) {
	return c.Template("services/{service_id}",
		map[string]interface{}{"service_id": id})
}

// Describe returns the service's full metadata document.
func (service *Service) Describe() (restdata.Document, error) {
	doc := restdata.Document{}
	err := service.Get(&doc)
	return doc, err
}

// Update applies a partial update.  Zero-valued fields of the request
// are left alone on the server.
func (service *Service) Update(req openeo.ServiceRequest) error {
	return service.client.PatchTo("services/{service_id}",
		map[string]interface{}{"service_id": service.ID},
		service.client.serviceRequestDocument(req), nil)
}

// Delete stops and removes the service.
func (service *Service) Delete() error {
	return service.resource.Delete()
}
