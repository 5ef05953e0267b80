// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/diffeo/go-openeo/openeo"
)

var testProcessGraph = map[string]interface{}{
	"foo": map[string]interface{}{
		"process_id": "foo",
		"arguments":  map[string]interface{}{},
	},
}

func testJob() openeo.BatchJob {
	return openeo.BatchJob{
		ID:      "07024ee9-7847-4b8a-b260-6c879a2b3cdc",
		Status:  openeo.JobRunning,
		Process: map[string]interface{}{"process_graph": testProcessGraph},
		Created: time.Date(2017, 1, 1, 9, 32, 12, 0, time.UTC),
	}
}

func TestNormalizeJobFull040(t *testing.T) {
	n, _ := testNormalizer()
	doc, err := n.NormalizeJob(testJob(), openeo.V040, true)
	assert.NoError(t, err)
	assert.Equal(t, Document{
		"id":            "07024ee9-7847-4b8a-b260-6c879a2b3cdc",
		"status":        "running",
		"submitted":     "2017-01-01T09:32:12Z",
		"process_graph": testProcessGraph,
	}, doc)
}

func TestNormalizeJobFull100(t *testing.T) {
	n, _ := testNormalizer()
	doc, err := n.NormalizeJob(testJob(), openeo.V100, true)
	assert.NoError(t, err)
	assert.Equal(t, Document{
		"id":      "07024ee9-7847-4b8a-b260-6c879a2b3cdc",
		"status":  "running",
		"created": "2017-01-01T09:32:12Z",
		"process": map[string]interface{}{"process_graph": testProcessGraph},
	}, doc)
}

func TestNormalizeJobSummary040(t *testing.T) {
	n, _ := testNormalizer()
	doc, err := n.NormalizeJob(testJob(), openeo.V040, false)
	assert.NoError(t, err)
	assert.Equal(t, Document{
		"id":        "07024ee9-7847-4b8a-b260-6c879a2b3cdc",
		"status":    "running",
		"submitted": "2017-01-01T09:32:12Z",
	}, doc)
}

func TestNormalizeJobSummary100(t *testing.T) {
	n, _ := testNormalizer()
	doc, err := n.NormalizeJob(testJob(), openeo.V100, false)
	assert.NoError(t, err)
	assert.Equal(t, Document{
		"id":      "07024ee9-7847-4b8a-b260-6c879a2b3cdc",
		"status":  "running",
		"created": "2017-01-01T09:32:12Z",
	}, doc)
}

// A job that has not been started reports status "created", except
// that the pre-1.0 protocol called that state "submitted".
func TestNormalizeJobCreatedStatus(t *testing.T) {
	n, _ := testNormalizer()
	job := testJob()
	job.Status = openeo.JobCreated

	doc, err := n.NormalizeJob(job, openeo.V040, false)
	assert.NoError(t, err)
	assert.Equal(t, "submitted", doc["status"])

	doc, err = n.NormalizeJob(job, openeo.V100, false)
	assert.NoError(t, err)
	assert.Equal(t, "created", doc["status"])
}

func TestNormalizeJobOptionalFields(t *testing.T) {
	n, _ := testNormalizer()
	progress := 42.5
	costs := 1.23
	budget := 100.0
	job := testJob()
	job.Title = "foo job"
	job.Description = "run the foos"
	job.Plan = "free"
	job.Progress = &progress
	job.Costs = &costs
	job.Budget = &budget
	job.Updated = time.Date(2017, 1, 1, 12, 0, 0, 0, time.UTC)

	doc, err := n.NormalizeJob(job, openeo.V100, true)
	assert.NoError(t, err)
	assert.Equal(t, "foo job", doc["title"])
	assert.Equal(t, "run the foos", doc["description"])
	assert.Equal(t, "free", doc["plan"])
	assert.Equal(t, 42.5, doc["progress"])
	assert.Equal(t, 1.23, doc["costs"])
	assert.Equal(t, 100.0, doc["budget"])
	assert.Equal(t, "2017-01-01T12:00:00Z", doc["updated"])

	// The summary rendering never carries process or progress.
	doc, err = n.NormalizeJob(job, openeo.V100, false)
	assert.NoError(t, err)
	assert.NotContains(t, doc, "process")
	assert.NotContains(t, doc, "progress")
	assert.Equal(t, "foo job", doc["title"])
}

func TestNormalizeJobNoID(t *testing.T) {
	n, _ := testNormalizer()
	_, err := n.NormalizeJob(openeo.BatchJob{Status: openeo.JobCreated}, openeo.V100, false)
	assert.Equal(t, openeo.ErrMissingIdentity{Kind: "job"}, err)
}

// The job_options field is stored with the job but is not part of any
// wire rendering.
func TestNormalizeJobHidesOptions(t *testing.T) {
	n, _ := testNormalizer()
	job := testJob()
	job.Options = map[string]interface{}{"driver-memory": "3g"}
	doc, err := n.NormalizeJob(job, openeo.V100, true)
	assert.NoError(t, err)
	assert.NotContains(t, doc, "job_options")
	assert.NotContains(t, doc, "options")
}

func TestExtractProcessGraph(t *testing.T) {
	tests := []struct {
		Name    string
		Doc     Document
		Version openeo.Version
		OK      bool
	}{
		{
			Name:    "040 top level",
			Doc:     Document{"process_graph": testProcessGraph},
			Version: openeo.V040,
			OK:      true,
		},
		{
			Name: "100 nested",
			Doc: Document{"process": map[string]interface{}{
				"process_graph": testProcessGraph,
				"summary":       "my foo job",
			}},
			Version: openeo.V100,
			OK:      true,
		},
		{
			Name:    "040 missing",
			Doc:     Document{},
			Version: openeo.V040,
		},
		{
			Name:    "100 missing",
			Doc:     Document{},
			Version: openeo.V100,
		},
		{
			// The 1.0 protocol does not accept the old location
			Name:    "100 with top level graph",
			Doc:     Document{"process_graph": testProcessGraph},
			Version: openeo.V100,
		},
		{
			Name:    "040 wrong type",
			Doc:     Document{"process_graph": "not a graph"},
			Version: openeo.V040,
		},
	}
	for _, test := range tests {
		pg, err := ExtractProcessGraph(test.Doc, test.Version)
		if test.OK {
			assert.NoError(t, err, test.Name)
			assert.Equal(t, testProcessGraph, pg, test.Name)
		} else {
			assert.Equal(t, openeo.ErrProcessGraphMissing, err, test.Name)
		}
	}
}

func TestParseJobRequest040(t *testing.T) {
	doc := Document{
		"title":         "foo job",
		"process_graph": testProcessGraph,
		"job_options": map[string]interface{}{
			"driver-memory":   "3g",
			"executor-memory": "5g",
		},
	}
	req, err := ParseJobRequest(doc, openeo.V040)
	assert.NoError(t, err)
	assert.Equal(t, openeo.JobRequest{
		Process: map[string]interface{}{"process_graph": testProcessGraph},
		Title:   "foo job",
		Options: map[string]interface{}{
			"driver-memory":   "3g",
			"executor-memory": "5g",
		},
	}, req)
}

func TestParseJobRequest100(t *testing.T) {
	doc := Document{
		"process": map[string]interface{}{
			"process_graph": testProcessGraph,
			"summary":       "my foo job",
		},
	}
	req, err := ParseJobRequest(doc, openeo.V100)
	assert.NoError(t, err)
	assert.Equal(t, openeo.JobRequest{
		Process: map[string]interface{}{"process_graph": testProcessGraph},
	}, req)
}

func TestParseJobRequestBudget(t *testing.T) {
	doc := Document{
		"process_graph": testProcessGraph,
		"plan":          "premium",
		"budget":        float64(123),
	}
	req, err := ParseJobRequest(doc, openeo.V040)
	assert.NoError(t, err)
	assert.Equal(t, "premium", req.Plan)
	if assert.NotNil(t, req.Budget) {
		assert.Equal(t, 123.0, *req.Budget)
	}

	// The JSON decoder may hand integers over as int64
	doc["budget"] = int64(99)
	req, err = ParseJobRequest(doc, openeo.V040)
	assert.NoError(t, err)
	if assert.NotNil(t, req.Budget) {
		assert.Equal(t, 99.0, *req.Budget)
	}
}

func TestParseJobRequestNoGraph(t *testing.T) {
	_, err := ParseJobRequest(Document{"title": "foo job"}, openeo.V040)
	assert.Equal(t, openeo.ErrProcessGraphMissing, err)
}

func TestParseServiceRequest040(t *testing.T) {
	doc := Document{
		"type":          "WMTS",
		"process_graph": testProcessGraph,
		"parameters":    map[string]interface{}{"version": "1.0.0"},
		"title":         "wmts service",
		"enabled":       true,
	}
	req, err := ParseServiceRequest(doc, openeo.V040)
	assert.NoError(t, err)
	assert.Equal(t, "WMTS", req.Type)
	assert.Equal(t, map[string]interface{}{"process_graph": testProcessGraph}, req.Process)
	assert.Equal(t, map[string]interface{}{"version": "1.0.0"}, req.Configuration)
	assert.Equal(t, "wmts service", req.Title)
	if assert.NotNil(t, req.Enabled) {
		assert.True(t, *req.Enabled)
	}
}

func TestParseServiceRequest100(t *testing.T) {
	doc := Document{
		"type": "WMTS",
		"process": map[string]interface{}{
			"process_graph": testProcessGraph,
		},
		"configuration": map[string]interface{}{"version": "1.0.0"},
	}
	req, err := ParseServiceRequest(doc, openeo.V100)
	assert.NoError(t, err)
	assert.Equal(t, "WMTS", req.Type)
	assert.Equal(t, map[string]interface{}{"version": "1.0.0"}, req.Configuration)

	// The pre-1.0 configuration key is not recognized in 1.0
	doc = Document{
		"type": "WMTS",
		"process": map[string]interface{}{
			"process_graph": testProcessGraph,
		},
		"parameters": map[string]interface{}{"version": "1.0.0"},
	}
	req, err = ParseServiceRequest(doc, openeo.V100)
	assert.NoError(t, err)
	assert.Nil(t, req.Configuration)
}

func TestParseServiceRequestNoType(t *testing.T) {
	doc := Document{"process_graph": testProcessGraph}
	_, err := ParseServiceRequest(doc, openeo.V040)
	if assert.Error(t, err) {
		// Not a protocol error: the REST layer reports it as a
		// plain internal error.
		assert.Equal(t, 500, HTTPStatus(err))
	}
}
