// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package backendtest

import (
	"time"

	"github.com/diffeo/go-openeo/openeo"
)

// TestJobLifecycle walks one job through every status transition the
// BatchJobs interface can drive on its own.
func (s *Suite) TestJobLifecycle() {
	user := "TestJobLifecycle"
	jobs := s.Backend.Jobs()

	// A user who has never connected has no jobs
	list, err := jobs.ListJobs(user)
	if s.NoError(err) {
		s.Empty(list)
	}

	// Create a job from the minimal valid request
	job, err := jobs.CreateJob(user, openeo.JobRequest{Process: testProcess()})
	if !s.NoError(err) {
		return
	}
	s.NotEmpty(job.ID)
	s.Equal(openeo.JobCreated, job.Status)
	s.Equal(testProcess(), job.Process)
	s.WithinDuration(s.Clock.Now(), job.Created, 1*time.Millisecond)

	// Get returns the same job
	job2, err := jobs.GetJob(user, job.ID)
	if s.NoError(err) {
		s.Equal(job.ID, job2.ID)
		s.Equal(openeo.JobCreated, job2.Status)
		s.Equal(testProcess(), job2.Process)
	}

	// List returns exactly this job
	list, err = jobs.ListJobs(user)
	if s.NoError(err) {
		if s.Len(list, 1) {
			s.Equal(job.ID, list[0].ID)
		}
	}

	// Start queues the job
	err = jobs.StartJob(user, job.ID)
	s.NoError(err)
	s.JobStatus(openeo.JobQueued, user, job.ID)

	// Starting again is a no-op
	err = jobs.StartJob(user, job.ID)
	s.NoError(err)
	s.JobStatus(openeo.JobQueued, user, job.ID)

	// Cancel stops it
	err = jobs.CancelJob(user, job.ID)
	s.NoError(err)
	s.JobStatus(openeo.JobCanceled, user, job.ID)

	// Canceling a job that is not queued or running fails
	err = jobs.CancelJob(user, job.ID)
	s.Equal(openeo.ErrJobNotStarted, err)

	// A canceled job can be started over
	err = jobs.StartJob(user, job.ID)
	s.NoError(err)
	s.JobStatus(openeo.JobQueued, user, job.ID)

	// Results are not available before the job finishes
	_, err = jobs.Results(user, job.ID)
	s.Equal(openeo.ErrJobNotFinished, err)

	// Delete removes it entirely
	err = jobs.DeleteJob(user, job.ID)
	s.NoError(err)

	_, err = jobs.GetJob(user, job.ID)
	s.Equal(openeo.ErrNoSuchJob{ID: job.ID}, err)

	list, err = jobs.ListJobs(user)
	if s.NoError(err) {
		s.Empty(list)
	}
}

// TestJobMetadata checks that the optional request fields survive a
// round trip through the backend.
func (s *Suite) TestJobMetadata() {
	user := "TestJobMetadata"
	jobs := s.Backend.Jobs()

	budget := 100.0
	req := openeo.JobRequest{
		Process:     testProcess(),
		Title:       "Load and export",
		Description: "Loads FAPAR and writes a GeoTIFF.",
		Plan:        "free",
		Budget:      &budget,
		Options:     map[string]interface{}{"driver-memory": "2G"},
	}
	job, err := jobs.CreateJob(user, req)
	if !s.NoError(err) {
		return
	}

	job, err = jobs.GetJob(user, job.ID)
	if s.NoError(err) {
		s.Equal("Load and export", job.Title)
		s.Equal("Loads FAPAR and writes a GeoTIFF.", job.Description)
		s.Equal("free", job.Plan)
		if s.NotNil(job.Budget) {
			s.Equal(100.0, *job.Budget)
		}
		s.Equal(req.Options, job.Options)
		s.Nil(job.Progress)
		s.Nil(job.Costs)
	}

	s.NoError(jobs.DeleteJob(user, job.ID))
}

// TestJobMissingProcess checks that a job cannot be created without a
// process document.
func (s *Suite) TestJobMissingProcess() {
	user := "TestJobMissingProcess"
	jobs := s.Backend.Jobs()

	_, err := jobs.CreateJob(user, openeo.JobRequest{Title: "no graph"})
	s.Equal(openeo.ErrProcessGraphMissing, err)

	// The failed create must not leave a job behind
	list, err := jobs.ListJobs(user)
	if s.NoError(err) {
		s.Empty(list)
	}
}

// TestJobCreationTime checks that jobs record their creation time
// from the backend's clock.
func (s *Suite) TestJobCreationTime() {
	user := "TestJobCreationTime"
	jobs := s.Backend.Jobs()

	first, err := jobs.CreateJob(user, openeo.JobRequest{Process: testProcess()})
	if !s.NoError(err) {
		return
	}
	s.WithinDuration(s.Clock.Now(), first.Created, 1*time.Millisecond)

	// A job created later records the later time
	s.Clock.Add(5 * time.Minute)
	second, err := jobs.CreateJob(user, openeo.JobRequest{Process: testProcess()})
	if s.NoError(err) {
		s.WithinDuration(s.Clock.Now(), second.Created, 1*time.Millisecond)
		s.Equal(5*time.Minute, second.Created.Sub(first.Created))
	}

	s.NoError(jobs.DeleteJob(user, first.ID))
	s.NoError(jobs.DeleteJob(user, second.ID))
}

// TestJobListOrder checks that ListJobs returns jobs oldest first.
func (s *Suite) TestJobListOrder() {
	user := "TestJobListOrder"
	jobs := s.Backend.Jobs()

	var ids []string
	for i := 0; i < 3; i++ {
		job, err := jobs.CreateJob(user, openeo.JobRequest{Process: testProcess()})
		if !s.NoError(err) {
			return
		}
		ids = append(ids, job.ID)
		s.Clock.Add(1 * time.Minute)
	}

	list, err := jobs.ListJobs(user)
	if s.NoError(err) && s.Len(list, 3) {
		for i, job := range list {
			s.Equal(ids[i], job.ID)
		}
	}

	for _, id := range ids {
		s.NoError(jobs.DeleteJob(user, id))
	}
}

// TestJobsArePerUser checks that one user's jobs are invisible to
// another user.
func (s *Suite) TestJobsArePerUser() {
	owner := "TestJobsArePerUserA"
	other := "TestJobsArePerUserB"
	jobs := s.Backend.Jobs()

	job, err := jobs.CreateJob(owner, openeo.JobRequest{Process: testProcess()})
	if !s.NoError(err) {
		return
	}

	// The other user cannot see or affect the job
	_, err = jobs.GetJob(other, job.ID)
	s.Equal(openeo.ErrNoSuchJob{ID: job.ID}, err)
	err = jobs.StartJob(other, job.ID)
	s.Equal(openeo.ErrNoSuchJob{ID: job.ID}, err)
	err = jobs.DeleteJob(other, job.ID)
	s.Equal(openeo.ErrNoSuchJob{ID: job.ID}, err)

	list, err := jobs.ListJobs(other)
	if s.NoError(err) {
		s.Empty(list)
	}

	// The owner still can
	err = jobs.DeleteJob(owner, job.ID)
	s.NoError(err)
}

// TestNoSuchJob checks every operation's missing-job error.
func (s *Suite) TestNoSuchJob() {
	user := "TestNoSuchJob"
	jobs := s.Backend.Jobs()
	expected := openeo.ErrNoSuchJob{ID: "fe353b83-f2b8-4517-b155-bbd8bd9ff08b"}

	_, err := jobs.GetJob(user, expected.ID)
	s.Equal(expected, err)

	err = jobs.DeleteJob(user, expected.ID)
	s.Equal(expected, err)

	err = jobs.StartJob(user, expected.ID)
	s.Equal(expected, err)

	err = jobs.CancelJob(user, expected.ID)
	s.Equal(expected, err)

	_, err = jobs.Results(user, expected.ID)
	s.Equal(expected, err)

	_, err = jobs.Logs(user, expected.ID, "")
	s.Equal(expected, err)
}

// TestJobLogs checks the log listing and its offset semantics.
func (s *Suite) TestJobLogs() {
	user := "TestJobLogs"
	jobs := s.Backend.Jobs()

	job, err := jobs.CreateJob(user, openeo.JobRequest{Process: testProcess()})
	if !s.NoError(err) {
		return
	}

	all, err := jobs.Logs(user, job.ID, "")
	if !s.NoError(err) {
		return
	}
	for _, entry := range all {
		s.NotEmpty(entry.ID)
		s.NotEmpty(entry.Level)
		s.NotNil(entry.Path)
	}

	// An offset resumes after the entry with that id
	if len(all) > 0 {
		rest, err := jobs.Logs(user, job.ID, all[0].ID)
		if s.NoError(err) {
			s.Equal(all[1:], rest)
		}

		rest, err = jobs.Logs(user, job.ID, all[len(all)-1].ID)
		if s.NoError(err) {
			s.Empty(rest)
		}
	}

	// An offset that matches no entry restarts from the beginning
	rest, err := jobs.Logs(user, job.ID, "no-such-entry")
	if s.NoError(err) {
		s.Equal(all, rest)
	}

	s.NoError(jobs.DeleteJob(user, job.ID))
}

// TestJobQueue drives a job through the executor-facing queue
// interface, on backends that implement it.
func (s *Suite) TestJobQueue() {
	queue, implemented := s.Backend.(openeo.JobQueue)
	if !implemented {
		s.T().Skip("back-end does not implement openeo.JobQueue")
	}
	user := "TestJobQueue"
	jobs := s.Backend.Jobs()

	job, err := jobs.CreateJob(user, openeo.JobRequest{Process: testProcess()})
	if !s.NoError(err) {
		return
	}
	s.NoError(jobs.StartJob(user, job.ID))

	// Claiming moves the queued job to running
	ref, ok, err := queue.ClaimQueuedJob()
	if s.NoError(err) && s.True(ok) {
		s.Equal(openeo.JobRef{User: user, ID: job.ID}, ref)
	}
	s.JobStatus(openeo.JobRunning, user, job.ID)

	// Nothing else is queued now
	_, ok, err = queue.ClaimQueuedJob()
	if s.NoError(err) {
		s.False(ok)
	}

	// Finishing stores the results
	results := []openeo.JobResult{{
		Name:      "output.tiff",
		MediaType: openeo.GTiffMediaType,
		Content:   []byte("II*\x00"),
	}}
	err = queue.FinishJob(ref, results)
	s.NoError(err)
	s.JobStatus(openeo.JobFinished, user, job.ID)

	got, err := jobs.Results(user, job.ID)
	if s.NoError(err) {
		s.Equal(results, got)
	}

	// Restarting the finished job discards the results and requeues it
	s.NoError(jobs.StartJob(user, job.ID))
	s.JobStatus(openeo.JobQueued, user, job.ID)

	ref, ok, err = queue.ClaimQueuedJob()
	if s.NoError(err) && s.True(ok) {
		s.Equal(openeo.JobRef{User: user, ID: job.ID}, ref)
	}

	// Failing records the message in the job's log
	err = queue.FailJob(ref, "evaluation failed")
	s.NoError(err)
	s.JobStatus(openeo.JobError, user, job.ID)

	_, err = jobs.Results(user, job.ID)
	s.Equal(openeo.ErrJobNotFinished, err)

	entries, err := jobs.Logs(user, job.ID, "")
	if s.NoError(err) && s.NotEmpty(entries) {
		last := entries[len(entries)-1]
		s.Equal("error", last.Level)
		s.Equal("evaluation failed", last.Message)
	}

	s.NoError(jobs.DeleteJob(user, job.ID))

	// The queue no longer knows the deleted job
	err = queue.FinishJob(ref, nil)
	s.Equal(openeo.ErrNoSuchJob{ID: ref.ID}, err)
	err = queue.FailJob(ref, "gone")
	s.Equal(openeo.ErrNoSuchJob{ID: ref.ID}, err)
}
