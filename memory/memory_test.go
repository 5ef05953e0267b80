// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory_test

import (
	"testing"
	"time"

	"github.com/diffeo/go-openeo/memory"
	"github.com/diffeo/go-openeo/openeo"
	"github.com/diffeo/go-openeo/openeo/backendtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// Suite is the per-backend generic test suite.
type Suite struct {
	backendtest.Suite
}

// SetupSuite does global setup for the test suite.
func (s *Suite) SetupSuite() {
	s.Suite.SetupSuite()
	s.Backend = memory.NewWithClock(s.Clock)
	s.User = memory.TestUser
	s.Password = memory.TestUser + "123"
}

// TestBackend runs the Backend generic tests.
func TestBackend(t *testing.T) {
	suite.Run(t, &Suite{})
}

// The remaining tests pin down the fixture data this backend starts
// with, which the generic suite deliberately does not assume.

func testProcess() map[string]interface{} {
	return map[string]interface{}{
		"process_graph": map[string]interface{}{
			"foo": map[string]interface{}{
				"process_id": "foo",
				"arguments":  map[string]interface{}{},
			},
		},
	}
}

func TestFixtureCollections(t *testing.T) {
	backend := memory.New()

	colls, err := backend.Collections().ListCollections()
	if assert.NoError(t, err) {
		var ids []string
		for _, coll := range colls {
			ids = append(ids, coll.ID)
		}
		assert.Equal(t, []string{
			"S2_FAPAR_CLOUDCOVER",
			"S2_FOOBAR",
			"PROBAV_L3_S10_TOC_NDVI_333M_V2",
		}, ids)
	}

	coll, err := backend.Collections().GetCollection("S2_FOOBAR")
	if assert.NoError(t, err) {
		assert.Equal(t, "free", coll.License)
		if assert.Contains(t, coll.CubeDimensions, "bands") {
			assert.Equal(t, map[string]interface{}{
				"type":   "bands",
				"values": []interface{}{"B02", "B03", "B04", "B08"},
			}, coll.CubeDimensions["bands"])
		}
		assert.Len(t, coll.Summaries["eo:bands"], 4)
		// The private field is part of the canonical record; only
		// the wire layer strips it
		assert.Contains(t, coll.Extra, "_private")
	}

	coll, err = backend.Collections().GetCollection("PROBAV_L3_S10_TOC_NDVI_333M_V2")
	if assert.NoError(t, err) {
		// The bare-bones record has no extent or description at all
		assert.Nil(t, coll.Extent)
		assert.Empty(t, coll.Description)
	}
}

func TestFixtureJob(t *testing.T) {
	backend := memory.New()
	id := "07024ee9-7847-4b8a-b260-6c879a2b3cdc"

	job, err := backend.Jobs().GetJob(memory.TestUser, id)
	if assert.NoError(t, err) {
		assert.Equal(t, openeo.JobRunning, job.Status)
		assert.Equal(t, time.Date(2017, 1, 1, 9, 32, 12, 0, time.UTC), job.Created)
		assert.Equal(t, testProcess(), job.Process)
	}

	// The fixture job belongs to the test user alone
	_, err = backend.Jobs().GetJob("somebody.else", id)
	assert.Equal(t, openeo.ErrNoSuchJob{ID: id}, err)

	entries, err := backend.Jobs().Logs(memory.TestUser, id, "")
	if assert.NoError(t, err) {
		assert.Equal(t, []openeo.LogEntry{
			{ID: "1", Level: "info", Message: "hello world", Path: []interface{}{}},
		}, entries)
	}
}

func TestFixtureService(t *testing.T) {
	backend := memory.New()

	service, err := backend.Services().GetService("wmts-foo")
	if assert.NoError(t, err) {
		assert.Equal(t, "WMTS", service.Type)
		assert.Equal(t, "https://oeo.net/wmts/foo", service.URL)
		assert.True(t, service.Enabled)
		assert.Equal(t, "Test service", service.Title)
		assert.Equal(t, testProcess(), service.Process)
		assert.Equal(t, time.Date(2020, 4, 9, 15, 5, 8, 0, time.UTC), service.Created)
	}
}

func TestNewJobLog(t *testing.T) {
	backend := memory.New()

	job, err := backend.Jobs().CreateJob("alice", openeo.JobRequest{Process: testProcess()})
	if !assert.NoError(t, err) {
		return
	}

	// Every new job starts with the same greeting in its log
	entries, err := backend.Jobs().Logs("alice", job.ID, "")
	if assert.NoError(t, err) {
		assert.Equal(t, []openeo.LogEntry{
			{ID: "1", Level: "info", Message: "hello world", Path: []interface{}{}},
		}, entries)
	}
}

func TestEvaluateArtifact(t *testing.T) {
	backend := memory.New()

	result, err := backend.Evaluate(memory.TestUser, testProcess())
	if assert.NoError(t, err) {
		assert.Equal(t, "output.tiff", result.Name)
		assert.Equal(t, openeo.GTiffMediaType, result.MediaType)
		// The payload opens with the little-endian TIFF magic
		assert.Equal(t, []byte("II*\x00"), result.Content[:4])
	}
}

func TestHealthCheckMessage(t *testing.T) {
	assert.Equal(t, "OK", memory.New().HealthCheck())
}
