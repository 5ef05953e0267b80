// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"errors"

	"github.com/diffeo/go-openeo/openeo"
)

// NormalizeJob renders a batch job record in the shape of the given
// protocol version.  The full rendering adds the process document and
// progress; everything else is shared with the summary rendering.
// Pre-1.0 shapes unwrap the process document to a bare process graph,
// rename "created" to "submitted", and report created jobs with the
// status string "submitted".
func (n *Normalizer) NormalizeJob(job openeo.BatchJob, v openeo.Version, full bool) (Document, error) {
	if job.ID == "" {
		return nil, openeo.ErrMissingIdentity{Kind: "job"}
	}
	doc := Document{
		"id":     job.ID,
		"status": job.Status.String(),
	}
	if job.Title != "" {
		doc["title"] = job.Title
	}
	if job.Description != "" {
		doc["description"] = job.Description
	}
	if !job.Created.IsZero() {
		doc["created"] = formatTime(job.Created)
	}
	if !job.Updated.IsZero() {
		doc["updated"] = formatTime(job.Updated)
	}
	if job.Plan != "" {
		doc["plan"] = job.Plan
	}
	if job.Costs != nil {
		doc["costs"] = *job.Costs
	}
	if job.Budget != nil {
		doc["budget"] = *job.Budget
	}
	if full {
		if job.Process != nil {
			doc["process"] = job.Process
		}
		if job.Progress != nil {
			doc["progress"] = *job.Progress
		}
	}

	if v.Below(openeo.V100) {
		if process, ok := doc["process"].(map[string]interface{}); ok {
			delete(doc, "process")
			if pg, ok := process["process_graph"]; ok {
				doc["process_graph"] = pg
			}
		}
		if created, ok := doc["created"]; ok {
			delete(doc, "created")
			doc["submitted"] = created
		}
		if doc["status"] == "created" {
			doc["status"] = "submitted"
		}
	}

	return doc, nil
}

// ExtractProcessGraph pulls the process graph out of a posted
// document, from wherever the given protocol version keeps it: nested
// under "process" from 1.0.0 on, top-level "process_graph" before
// that.  A missing or non-object graph is
// openeo.ErrProcessGraphMissing.
func ExtractProcessGraph(doc Document, v openeo.Version) (map[string]interface{}, error) {
	container := map[string]interface{}(doc)
	if v.AtLeast(openeo.V100) {
		process, ok := doc["process"].(map[string]interface{})
		if !ok {
			return nil, openeo.ErrProcessGraphMissing
		}
		container = process
	}
	pg, ok := container["process_graph"].(map[string]interface{})
	if !ok {
		return nil, openeo.ErrProcessGraphMissing
	}
	return pg, nil
}

// ParseJobRequest builds a canonical job request from a posted
// document.  Whatever shape the process graph arrived in, the
// canonical request carries it as a process document with a
// "process_graph" key; everything else the poster sent besides the
// recognized optional fields is ignored.
func ParseJobRequest(doc Document, v openeo.Version) (openeo.JobRequest, error) {
	pg, err := ExtractProcessGraph(doc, v)
	if err != nil {
		return openeo.JobRequest{}, err
	}
	req := openeo.JobRequest{
		Process: map[string]interface{}{"process_graph": pg},
	}
	if title, ok := doc["title"].(string); ok {
		req.Title = title
	}
	if description, ok := doc["description"].(string); ok {
		req.Description = description
	}
	if plan, ok := doc["plan"].(string); ok {
		req.Plan = plan
	}
	if budget, ok := asFloat(doc["budget"]); ok {
		req.Budget = &budget
	}
	if options, ok := doc["job_options"].(map[string]interface{}); ok {
		req.Options = options
	}
	return req, nil
}

// ParseServiceRequest builds a canonical service request from a
// posted document, for service creation.  The process graph and the
// service type are required; a missing type is a plain error, not a
// protocol one.
func ParseServiceRequest(doc Document, v openeo.Version) (openeo.ServiceRequest, error) {
	if _, err := ExtractProcessGraph(doc, v); err != nil {
		return openeo.ServiceRequest{}, err
	}
	req := ParseServiceUpdate(doc, v)
	if req.Type == "" {
		return openeo.ServiceRequest{}, errors.New(`Service request has no "type" field`)
	}
	return req, nil
}

// ParseServiceUpdate builds a canonical service request from a
// partial-update document.  Everything is optional, the process graph
// included; absent fields stay zero, which backends treat as "leave
// alone".  The configuration object lives under "configuration" from
// 1.0.0 on and under "parameters" before that.
func ParseServiceUpdate(doc Document, v openeo.Version) openeo.ServiceRequest {
	req := openeo.ServiceRequest{}
	if pg, err := ExtractProcessGraph(doc, v); err == nil {
		req.Process = map[string]interface{}{"process_graph": pg}
	}
	if typeName, ok := doc["type"].(string); ok {
		req.Type = typeName
	}
	configKey := "configuration"
	if v.Below(openeo.V100) {
		configKey = "parameters"
	}
	if config, ok := doc[configKey].(map[string]interface{}); ok {
		req.Configuration = config
	}
	if title, ok := doc["title"].(string); ok {
		req.Title = title
	}
	if description, ok := doc["description"].(string); ok {
		req.Description = description
	}
	if enabled, ok := doc["enabled"].(bool); ok {
		req.Enabled = &enabled
	}
	if plan, ok := doc["plan"].(string); ok {
		req.Plan = plan
	}
	if budget, ok := asFloat(doc["budget"]); ok {
		req.Budget = &budget
	}
	return req
}

// asFloat widens any of the numeric types the JSON decoder may
// produce.
func asFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	}
	return 0, false
}
