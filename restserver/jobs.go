// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"github.com/diffeo/go-openeo/endpoint"
	"github.com/diffeo/go-openeo/openeo"
	"github.com/diffeo/go-openeo/restdata"
	"github.com/gorilla/mux"
)

// jobURL builds the absolute URL of a batch job, for Location
// headers.  The URL carries the version token the request came in
// with.
func (api *restAPI) jobURL(ctx *context, id string) (string, error) {
	var path string
	err := buildURLs(api.Router, "version", ctx.versionToken(), "job_id", id).
		URL(&path, "job").
		Error
	if err != nil {
		return "", err
	}
	return api.externalURL(ctx.Request, path), nil
}

// resultFileURL builds the absolute download URL of one result
// artifact of a batch job.
func (api *restAPI) resultFileURL(ctx *context, id, filename string) (string, error) {
	var path string
	err := buildURLs(api.Router, "version", ctx.versionToken(), "job_id", id, "filename", filename).
		URL(&path, "jobResultFile").
		Error
	if err != nil {
		return "", err
	}
	return api.externalURL(ctx.Request, path), nil
}

// JobsGet lists the authenticated user's batch jobs as summary
// documents.
func (api *restAPI) JobsGet(ctx *context) (interface{}, error) {
	user, err := ctx.Identity()
	if err != nil {
		return nil, err
	}
	jobs, err := api.Backend.Jobs().ListJobs(user)
	if err != nil {
		return nil, err
	}
	result := restdata.JobList{
		Jobs:  make([]restdata.Document, 0, len(jobs)),
		Links: []openeo.Link{},
	}
	for _, job := range jobs {
		doc, err := api.Normalizer.NormalizeJob(job, ctx.Version, false)
		if err != nil {
			return nil, err
		}
		result.Jobs = append(result.Jobs, doc)
	}
	return result, nil
}

// JobsPost stores a new batch job.  The response body is empty; the
// job's identity travels in the Location and OpenEO-Identifier
// headers.
func (api *restAPI) JobsPost(ctx *context, in interface{}) (interface{}, error) {
	user, err := ctx.Identity()
	if err != nil {
		return nil, err
	}
	req, err := restdata.ParseJobRequest(asDocument(in), ctx.Version)
	if err != nil {
		return nil, err
	}
	job, err := api.Backend.Jobs().CreateJob(user, req)
	if err != nil {
		return nil, err
	}
	location, err := api.jobURL(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	return responseCreated{Location: location, Identifier: job.ID}, nil
}

// JobGet returns the full metadata of one batch job.
func (api *restAPI) JobGet(ctx *context) (interface{}, error) {
	return api.Normalizer.NormalizeJob(ctx.Job, ctx.Version, true)
}

// JobPatch rejects metadata updates, which no back-end supports yet.
func (api *restAPI) JobPatch(ctx *context, in interface{}) (interface{}, error) {
	return nil, errNotImplemented{Text: "Updating batch jobs is not supported"}
}

// JobDelete removes a batch job and any results it produced.
func (api *restAPI) JobDelete(ctx *context) (interface{}, error) {
	return nil, api.Backend.Jobs().DeleteJob(ctx.user, ctx.Job.ID)
}

// JobResultsPost queues the job for processing.
func (api *restAPI) JobResultsPost(ctx *context, in interface{}) (interface{}, error) {
	err := api.Backend.Jobs().StartJob(ctx.user, ctx.Job.ID)
	if err != nil {
		return nil, err
	}
	return responseAccepted{}, nil
}

// JobResultsGet lists the result artifacts of a finished job as
// download links, in the generation-appropriate shape.
func (api *restAPI) JobResultsGet(ctx *context) (interface{}, error) {
	results, err := api.Backend.Jobs().Results(ctx.user, ctx.Job.ID)
	if err != nil {
		return nil, err
	}
	if ctx.Version.AtLeast(openeo.V100) {
		assets := make(map[string]restdata.Asset, len(results))
		for _, result := range results {
			href, err := api.resultFileURL(ctx, ctx.Job.ID, result.Name)
			if err != nil {
				return nil, err
			}
			assets[result.Name] = restdata.Asset{Href: href, Type: result.MediaType}
		}
		return restdata.Results{Assets: assets}, nil
	}
	links := make([]openeo.Link, 0, len(results))
	for _, result := range results {
		href, err := api.resultFileURL(ctx, ctx.Job.ID, result.Name)
		if err != nil {
			return nil, err
		}
		links = append(links, openeo.Link{Href: href})
	}
	return restdata.ResultsPre1{Links: links}, nil
}

// JobResultsDelete cancels processing.
func (api *restAPI) JobResultsDelete(ctx *context) (interface{}, error) {
	return nil, api.Backend.Jobs().CancelJob(ctx.user, ctx.Job.ID)
}

// JobResultFileGet serves one result artifact with its stored media
// type.
func (api *restAPI) JobResultFileGet(ctx *context) (interface{}, error) {
	return responseRaw{MediaType: ctx.Result.MediaType, Content: ctx.Result.Content}, nil
}

// JobLogsGet returns the job's log entries at or after the offset
// query parameter.
func (api *restAPI) JobLogsGet(ctx *context) (interface{}, error) {
	entries, err := api.Backend.Jobs().Logs(ctx.user, ctx.Job.ID, ctx.QueryParams.Get("offset"))
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []openeo.LogEntry{}
	}
	return restdata.Logs{Logs: entries, Links: []openeo.Link{}}, nil
}

// JobSubscriptionGet rejects the websocket subscription handshake,
// which no back-end supports yet.
func (api *restAPI) JobSubscriptionGet(ctx *context) (interface{}, error) {
	return nil, errNotImplemented{Text: "Job subscriptions are not supported"}
}

// populateJobs adds the batch job routes to an API tree.  All of them
// require bearer authentication.
func (api *restAPI) populateJobs(r *mux.Router, named bool) {
	api.route(r, named, endpoint.Endpoint{
		Path:    "/jobs",
		Methods: []string{"GET", "POST"},
	}, "jobs", &resourceHandler{
		Representation: restdata.Document{},
		Get:            api.JobsGet,
		Post:           api.JobsPost,
	})
	api.route(r, named, endpoint.Endpoint{
		Path:    "/jobs/{job_id}",
		Methods: []string{"GET", "PATCH", "DELETE"},
	}, "job", &resourceHandler{
		Representation: restdata.Document{},
		Get:            api.JobGet,
		Patch:          api.JobPatch,
		Delete:         api.JobDelete,
	})
	api.route(r, named, endpoint.Endpoint{
		Path:    "/jobs/{job_id}/results",
		Methods: []string{"GET", "POST", "DELETE"},
	}, "jobResults", &resourceHandler{
		Representation: restdata.Document{},
		Get:            api.JobResultsGet,
		Post:           api.JobResultsPost,
		Delete:         api.JobResultsDelete,
	})
	api.route(r, named, endpoint.Endpoint{
		Path:    "/jobs/{job_id}/results/{filename}",
		Methods: []string{"GET"},
		Hidden:  true,
	}, "jobResultFile", &resourceHandler{
		Representation: restdata.Document{},
		Raw:            true,
		Get:            api.JobResultFileGet,
	})
	api.route(r, named, endpoint.Endpoint{
		Path:    "/jobs/{job_id}/logs",
		Methods: []string{"GET"},
	}, "jobLogs", &resourceHandler{
		Representation: restdata.Document{},
		Get:            api.JobLogsGet,
	})
	api.route(r, named, endpoint.Endpoint{
		Path:    "/jobs/{job_id}/subscription",
		Methods: []string{"GET"},
		Hidden:  true,
	}, "jobSubscription", &resourceHandler{
		Representation: restdata.Document{},
		Get:            api.JobSubscriptionGet,
	})
}
