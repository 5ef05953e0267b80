// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package runner_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffeo/go-openeo/memory"
	"github.com/diffeo/go-openeo/openeo"
	"github.com/diffeo/go-openeo/runner"
)

// testProcess returns a minimal process document.
func testProcess() map[string]interface{} {
	return map[string]interface{}{
		"process_graph": map[string]interface{}{
			"collect": map[string]interface{}{
				"process_id": "load_collection",
				"arguments": map[string]interface{}{
					"id": "S2020",
				},
				"result": true,
			},
		},
	}
}

// queuedJob creates a job for the stock test user and moves it to a
// queued status, returning its ID.
func queuedJob(t *testing.T, backend openeo.Backend) string {
	job, err := backend.Jobs().CreateJob(memory.TestUser, openeo.JobRequest{
		Process: testProcess(),
	})
	require.NoError(t, err)
	err = backend.Jobs().StartJob(memory.TestUser, job.ID)
	require.NoError(t, err)
	return job.ID
}

// noQueue wraps a back-end, hiding its queue interface.
type noQueue struct {
	openeo.Backend
}

func TestRunOnceEmptyQueue(t *testing.T) {
	backend := memory.New()
	r := &runner.Runner{Backend: backend}
	ran, err := r.RunOnce(context.Background())
	assert.NoError(t, err)
	assert.False(t, ran)

	// The stock job is running, not queued, and RunOnce must not
	// have touched it
	jobs, err := backend.Jobs().ListJobs(memory.TestUser)
	if assert.NoError(t, err) && assert.Len(t, jobs, 1) {
		assert.Equal(t, openeo.JobRunning, jobs[0].Status)
	}
}

func TestRunOnceDefaultExecute(t *testing.T) {
	backend := memory.New()
	id := queuedJob(t, backend)

	r := &runner.Runner{Backend: backend}
	ran, err := r.RunOnce(context.Background())
	assert.NoError(t, err)
	assert.True(t, ran)

	job, err := backend.Jobs().GetJob(memory.TestUser, id)
	if assert.NoError(t, err) {
		assert.Equal(t, openeo.JobFinished, job.Status)
	}
	results, err := backend.Jobs().Results(memory.TestUser, id)
	if assert.NoError(t, err) && assert.Len(t, results, 1) {
		assert.Equal(t, "output.tiff", results[0].Name)
		assert.Equal(t, openeo.GTiffMediaType, results[0].MediaType)
		assert.NotEmpty(t, results[0].Content)
	}
}

func TestRunOnceCustomExecute(t *testing.T) {
	backend := memory.New()
	id := queuedJob(t, backend)

	r := &runner.Runner{
		Backend: backend,
		Execute: func(ctx context.Context, ref openeo.JobRef, job openeo.BatchJob) ([]openeo.JobResult, error) {
			assert.Equal(t, memory.TestUser, ref.User)
			assert.Equal(t, id, ref.ID)
			assert.Equal(t, testProcess(), job.Process)
			return []openeo.JobResult{{
				Name:      "stats.json",
				MediaType: "application/json",
				Content:   []byte(`{"count":0}`),
			}}, nil
		},
	}
	ran, err := r.RunOnce(context.Background())
	assert.NoError(t, err)
	assert.True(t, ran)

	results, err := backend.Jobs().Results(memory.TestUser, id)
	if assert.NoError(t, err) && assert.Len(t, results, 1) {
		assert.Equal(t, "stats.json", results[0].Name)
	}
}

func TestRunOnceFailure(t *testing.T) {
	backend := memory.New()
	id := queuedJob(t, backend)

	r := &runner.Runner{
		Backend: backend,
		Execute: func(ctx context.Context, ref openeo.JobRef, job openeo.BatchJob) ([]openeo.JobResult, error) {
			return nil, errors.New("no such collection")
		},
	}
	ran, err := r.RunOnce(context.Background())
	assert.NoError(t, err)
	assert.True(t, ran)

	job, err := backend.Jobs().GetJob(memory.TestUser, id)
	if assert.NoError(t, err) {
		assert.Equal(t, openeo.JobError, job.Status)
	}

	// The error lands in the job's log, after the stock first entry
	entries, err := backend.Jobs().Logs(memory.TestUser, id, "")
	if assert.NoError(t, err) && assert.Len(t, entries, 2) {
		assert.Equal(t, "error", entries[1].Level)
		assert.Equal(t, "no such collection", entries[1].Message)
	}
}

func TestRunOnceJobDeleted(t *testing.T) {
	backend := memory.New()
	id := queuedJob(t, backend)

	r := &runner.Runner{
		Backend: backend,
		Execute: func(ctx context.Context, ref openeo.JobRef, job openeo.BatchJob) ([]openeo.JobResult, error) {
			// The owner deletes the job mid-run
			return nil, backend.Jobs().DeleteJob(memory.TestUser, id)
		},
	}
	ran, err := r.RunOnce(context.Background())
	assert.True(t, ran)
	assert.Equal(t, openeo.ErrNoSuchJob{ID: id}, err)
}

func TestNoJobQueue(t *testing.T) {
	backend := noQueue{memory.New()}
	r := &runner.Runner{Backend: backend}

	err := r.Run(context.Background())
	assert.Equal(t, runner.ErrNoJobQueue, err)

	_, err = r.RunOnce(context.Background())
	assert.Equal(t, runner.ErrNoJobQueue, err)
}

func TestRunDrainsQueue(t *testing.T) {
	backend := memory.New()
	first := queuedJob(t, backend)
	second := queuedJob(t, backend)

	r := &runner.Runner{Backend: backend, Concurrency: 1}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() {
		errc <- r.Run(ctx)
	}()

	finished := func(id string) bool {
		job, err := backend.Jobs().GetJob(memory.TestUser, id)
		return err == nil && job.Status == openeo.JobFinished
	}
	require.Eventually(t, func() bool {
		return finished(first) && finished(second)
	}, time.Second, time.Millisecond)

	cancel()
	assert.NoError(t, <-errc)
}

func TestRunPollsWhenIdle(t *testing.T) {
	clk := clock.NewMock()
	backend := memory.NewWithClock(clk)

	r := &runner.Runner{
		Backend:      backend,
		Concurrency:  1,
		PollInterval: time.Duration(5) * time.Second,
		Clock:        clk,
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() {
		errc <- r.Run(ctx)
	}()

	// Give the first claim a chance to come back empty, then queue
	// a job; only clock ticks can pick it up now
	time.Sleep(time.Duration(10) * time.Millisecond)
	id := queuedJob(t, backend)

	require.Eventually(t, func() bool {
		clk.Add(time.Duration(5) * time.Second)
		job, err := backend.Jobs().GetJob(memory.TestUser, id)
		return err == nil && job.Status == openeo.JobFinished
	}, time.Second, time.Millisecond)

	cancel()
	assert.NoError(t, <-errc)
}

func TestRunErrorHandler(t *testing.T) {
	backend := memory.New()
	id := queuedJob(t, backend)

	errs := make(chan error, 1)
	r := &runner.Runner{
		Backend:     backend,
		Concurrency: 1,
		ErrorHandler: func(err error) {
			select {
			case errs <- err:
			default:
			}
		},
		Execute: func(ctx context.Context, ref openeo.JobRef, job openeo.BatchJob) ([]openeo.JobResult, error) {
			return nil, backend.Jobs().DeleteJob(memory.TestUser, id)
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() {
		errc <- r.Run(ctx)
	}()

	select {
	case err := <-errs:
		assert.Equal(t, openeo.ErrNoSuchJob{ID: id}, err)
	case <-time.After(time.Second):
		assert.Fail(t, "timed out waiting for the error handler")
	}

	cancel()
	assert.NoError(t, <-errc)
}
