// Copyright 2015-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"net/url"
	"path"
	"sort"

	"github.com/diffeo/go-openeo/openeo"
	"github.com/diffeo/go-openeo/restdata"
)

// Job is a handle on one batch job.  Its operations need the login
// that created the handle's Client to still be valid.
type Job struct {
	resource
	client *Client

	// ID is the job's identity as the service assigned it.
	ID string
}

// ResultFile names one downloadable result artifact of a finished
// job.
type ResultFile struct {
	// Name is the artifact's file name.
	Name string

	// Href is the absolute download URL.
	Href string

	// Type is the artifact's media type, when the service reports
	// one; protocol versions before 1.0.0 do not.
	Type string
}

// jobRequestDocument renders a canonical job request in the connected
// version's wire shape, the inverse of what the server parses.
func (c *Client) jobRequestDocument(req openeo.JobRequest) restdata.Document {
	doc := restdata.Document{}
	if c.Version.AtLeast(openeo.V100) {
		doc["process"] = req.Process
	} else if pg, ok := req.Process["process_graph"]; ok {
		doc["process_graph"] = pg
	}
	if req.Title != "" {
		doc["title"] = req.Title
	}
	if req.Description != "" {
		doc["description"] = req.Description
	}
	if req.Plan != "" {
		doc["plan"] = req.Plan
	}
	if req.Budget != nil {
		doc["budget"] = *req.Budget
	}
	if req.Options != nil {
		doc["job_options"] = req.Options
	}
	return doc
}

// Jobs lists the authenticated user's batch jobs as summary
// documents.
func (c *Client) Jobs() ([]restdata.Document, error) {
	list := restdata.JobList{}
	err := c.GetFrom("jobs", map[string]interface{}{}, &list)
	return list.Jobs, err
}

// CreateJob stores a new batch job and returns a handle on it.  The
// job does not run until its Start() is called.
func (c *Client) CreateJob(req openeo.JobRequest) (*Job, error) {
	u, err := c.Template("jobs", map[string]interface{}{})
	if err != nil {
		return nil, err
	}
	id, location, err := c.Create(u, c.jobRequestDocument(req))
	if err != nil {
		return nil, err
	}
	if id == "" && location != nil {
		// Fall back on the tail of the Location header for
		// servers that do not send the identifier header
		id = path.Base(location.Path)
	}
	job := &Job{client: c, ID: id}
	job.session = c.session
	job.URL = location
	if job.URL == nil {
		job.URL, err = c.jobResource(id)
	}
	return job, err
}

// JobFromID returns a handle on an existing batch job.  It does not
// check that the job exists; the first operation on the handle will
// report openeo.ErrNoSuchJob if it does not.
func (c *Client) JobFromID(id string) (*Job, error) {
	u, err := c.jobResource(id)
	if err != nil {
		return nil, err
	}
	job := &Job{client: c, ID: id}
	job.session = c.session
	job.URL = u
	return job, nil
}

func (c *Client) jobResource(id string) (*url.URL, error) {
	return c.Template("jobs/{job_id}", map[string]interface{}{"job_id": id})
}

func (job *Job) vars() map[string]interface{} {
	return map[string]interface{}{"job_id": job.ID}
}

// Describe returns the job's full metadata document, including its
// current status.
func (job *Job) Describe() (restdata.Document, error) {
	doc := restdata.Document{}
	err := job.Get(&doc)
	return doc, err
}

// Status returns just the job's current status.
func (job *Job) Status() (openeo.JobStatus, error) {
	doc, err := job.Describe()
	if err != nil {
		return openeo.JobCreated, err
	}
	name, _ := doc["status"].(string)
	// Generations before 1.0.0 call a stored-but-unstarted job
	// "submitted" on the wire
	if name == "submitted" && job.client.Version.Below(openeo.V100) {
		return openeo.JobCreated, nil
	}
	var status openeo.JobStatus
	err = status.UnmarshalText([]byte(name))
	return status, err
}

// Start queues the job for processing.
func (job *Job) Start() error {
	return job.client.PostTo("jobs/{job_id}/results", job.vars(), nil, nil)
}

// Cancel stops processing, discarding any results, but keeps the job.
func (job *Job) Cancel() error {
	return job.client.DeleteAt("jobs/{job_id}/results", job.vars())
}

// Delete removes the job and any results it produced.
func (job *Job) Delete() error {
	return job.resource.Delete()
}

// Logs returns the job's processing log at or after an offset, which
// is an entry ID from an earlier call, or empty for the whole log.
func (job *Job) Logs(offset string) ([]openeo.LogEntry, error) {
	vars := job.vars()
	if offset != "" {
		vars["offset"] = offset
	}
	logs := restdata.Logs{}
	err := job.client.GetFrom("jobs/{job_id}/logs{?offset}", vars, &logs)
	return logs.Logs, err
}

// Results lists the result artifacts of a finished job, sorted by
// name.  An unfinished job reports openeo.ErrJobNotFinished.
func (job *Job) Results() ([]ResultFile, error) {
	var files []ResultFile
	if job.client.Version.AtLeast(openeo.V100) {
		results := restdata.Results{}
		err := job.client.GetFrom("jobs/{job_id}/results", job.vars(), &results)
		if err != nil {
			return nil, err
		}
		files = make([]ResultFile, 0, len(results.Assets))
		for name, asset := range results.Assets {
			files = append(files, ResultFile{
				Name: name,
				Href: asset.Href,
				Type: asset.Type,
			})
		}
	} else {
		results := restdata.ResultsPre1{}
		err := job.client.GetFrom("jobs/{job_id}/results", job.vars(), &results)
		if err != nil {
			return nil, err
		}
		files = make([]ResultFile, 0, len(results.Links))
		for _, link := range results.Links {
			files = append(files, ResultFile{
				Name: nameFromHref(link.Href),
				Href: link.Href,
			})
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Download retrieves one result artifact's content and media type.
func (job *Job) Download(file ResultFile) ([]byte, string, error) {
	u, err := url.Parse(file.Href)
	if err != nil {
		return nil, "", err
	}
	return job.raw("GET", u, nil)
}

// nameFromHref recovers an artifact's file name from its download
// URL, for protocol generations whose result listing carries bare
// links.
func nameFromHref(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	return path.Base(u.Path)
}
