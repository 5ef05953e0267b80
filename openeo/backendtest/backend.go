// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package backendtest

import (
	"github.com/diffeo/go-openeo/openeo"
)

// TestEvaluate runs a trivial synchronous evaluation.
func (s *Suite) TestEvaluate() {
	result, err := s.Backend.Evaluate(s.User, testProcess())
	if s.NoError(err) {
		s.NotEmpty(result.Name)
		s.NotEmpty(result.MediaType)
		s.NotEmpty(result.Content)
	}

	// A document without a process graph is rejected
	_, err = s.Backend.Evaluate(s.User, map[string]interface{}{})
	s.Equal(openeo.ErrProcessGraphMissing, err)

	_, err = s.Backend.Evaluate(s.User, map[string]interface{}{
		"process_graph": "scalar",
	})
	s.Equal(openeo.ErrProcessGraphMissing, err)
}

// TestFileFormats checks the file format tables.
func (s *Suite) TestFileFormats() {
	formats := s.Backend.FileFormats()

	s.NotNil(formats.Input)
	if s.Contains(formats.Output, "GTiff") {
		s.Contains(formats.Output["GTiff"].GISDataTypes, "raster")
	}
	for name, format := range formats.Output {
		s.NotEmpty(format.GISDataTypes, "output format %q", name)
	}
}

// TestSummarize checks the job status summary counts.
func (s *Suite) TestSummarize() {
	user := "TestSummarize"
	jobs := s.Backend.Jobs()

	before := s.summaryCounts()

	job1, err := jobs.CreateJob(user, openeo.JobRequest{Process: testProcess()})
	if !s.NoError(err) {
		return
	}
	job2, err := jobs.CreateJob(user, openeo.JobRequest{Process: testProcess()})
	if !s.NoError(err) {
		return
	}

	after := s.summaryCounts()
	s.Equal(before[openeo.JobCreated]+2, after[openeo.JobCreated])

	s.NoError(jobs.DeleteJob(user, job1.ID))
	s.NoError(jobs.DeleteJob(user, job2.ID))
}

// summaryCounts runs Summarize and flattens it, checking its shape on
// the way: one row per status, in status order, zero counts included.
func (s *Suite) summaryCounts() map[openeo.JobStatus]int {
	counts := make(map[openeo.JobStatus]int)
	summary, err := s.Backend.Summarize()
	if !s.NoError(err) {
		return counts
	}
	if s.Len(summary, 6) {
		for i, row := range summary {
			s.Equal(openeo.JobStatus(i), row.Status)
			s.True(row.Count >= 0)
			counts[row.Status] = row.Count
		}
	}
	return counts
}

// TestHealthCheck checks the liveness message.
func (s *Suite) TestHealthCheck() {
	s.NotEmpty(s.Backend.HealthCheck())
}
