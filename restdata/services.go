// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"github.com/diffeo/go-openeo/openeo"
)

// NormalizeService renders a secondary service record in the shape of
// the given protocol version.  The full rendering adds the process
// document and the attributes bag.  Pre-1.0 shapes unwrap the process
// document to a bare process graph, rename "configuration" to
// "parameters" (defaulting it to an empty object in the full
// rendering), and rename "created" to "submitted".
func (n *Normalizer) NormalizeService(s openeo.Service, v openeo.Version, full bool) (Document, error) {
	if s.ID == "" {
		return nil, openeo.ErrMissingIdentity{Kind: "service"}
	}
	doc := Document{
		"id":      s.ID,
		"enabled": s.Enabled,
	}
	if s.Type != "" {
		doc["type"] = s.Type
	}
	if s.URL != "" {
		doc["url"] = s.URL
	}
	if s.Title != "" {
		doc["title"] = s.Title
	}
	if s.Description != "" {
		doc["description"] = s.Description
	}
	if !s.Created.IsZero() {
		doc["created"] = formatTime(s.Created)
	}
	if s.Plan != "" {
		doc["plan"] = s.Plan
	}
	if s.Costs != nil {
		doc["costs"] = *s.Costs
	}
	if s.Budget != nil {
		doc["budget"] = *s.Budget
	}
	if s.Configuration != nil {
		doc["configuration"] = s.Configuration
	}
	if full {
		if s.Process != nil {
			doc["process"] = s.Process
		}
		if s.Attributes != nil {
			doc["attributes"] = s.Attributes
		}
	}

	if v.Below(openeo.V100) {
		if process, ok := doc["process"].(map[string]interface{}); ok {
			delete(doc, "process")
			if pg, ok := process["process_graph"]; ok {
				doc["process_graph"] = pg
			}
		}
		config, _ := doc["configuration"].(map[string]interface{})
		delete(doc, "configuration")
		if len(config) > 0 {
			doc["parameters"] = config
		} else if full {
			doc["parameters"] = map[string]interface{}{}
		}
		if created, ok := doc["created"]; ok {
			delete(doc, "created")
			doc["submitted"] = created
		}
	}

	return doc, nil
}

// NormalizeServiceTypes renders the service type table.  The 1.0
// shape is the canonical one; earlier generations rename
// "configuration" to "parameters" and "process_parameters" to
// "variables", and report an empty "attributes" list.
func (n *Normalizer) NormalizeServiceTypes(types map[string]openeo.ServiceType, v openeo.Version) interface{} {
	if v.AtLeast(openeo.V100) {
		return types
	}
	reshaped := make(map[string]interface{}, len(types))
	for name, st := range types {
		reshaped[name] = map[string]interface{}{
			"parameters": st.Configuration,
			"attributes": []interface{}{},
			"variables":  st.ProcessParameters,
			"links":      st.Links,
		}
	}
	return reshaped
}
