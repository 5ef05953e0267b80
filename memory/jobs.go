// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"strconv"
	"time"

	"github.com/satori/go.uuid"

	"github.com/diffeo/go-openeo/openeo"
)

// memJobs is a container type for an openeo.BatchJobs.
type memJobs struct {
	backend *memBackend
	jobs    map[openeo.JobRef]*memJob
	order   []openeo.JobRef
}

// memJob holds one job record together with its results and log.
type memJob struct {
	job     openeo.BatchJob
	results []openeo.JobResult
	log     []openeo.LogEntry
}

func newJobs(backend *memBackend) *memJobs {
	j := &memJobs{
		backend: backend,
		jobs:    make(map[openeo.JobRef]*memJob),
	}
	// One job is prepopulated, running since a known instant, so
	// that a fresh backend has something to list.
	ref := openeo.JobRef{
		User: TestUser,
		ID:   "07024ee9-7847-4b8a-b260-6c879a2b3cdc",
	}
	j.jobs[ref] = &memJob{
		job: openeo.BatchJob{
			ID:      ref.ID,
			Status:  openeo.JobRunning,
			Process: fixtureProcess(),
			Created: time.Date(2017, 1, 1, 9, 32, 12, 0, time.UTC),
		},
		log: newJobLog(),
	}
	j.order = append(j.order, ref)
	return j
}

// newJobLog returns the log every job starts with.
func newJobLog() []openeo.LogEntry {
	return []openeo.LogEntry{
		{ID: "1", Level: "info", Message: "hello world", Path: []interface{}{}},
	}
}

// openeo.BatchJobs interface:

func (j *memJobs) CreateJob(user string, req openeo.JobRequest) (job openeo.BatchJob, err error) {
	globalLock(j)
	defer globalUnlock(j)

	if req.Process == nil {
		return openeo.BatchJob{}, openeo.ErrProcessGraphMissing
	}
	job = openeo.BatchJob{
		ID:          uuid.NewV4().String(),
		Process:     req.Process,
		Status:      openeo.JobCreated,
		Created:     j.backend.clock.Now().UTC(),
		Title:       req.Title,
		Description: req.Description,
		Plan:        req.Plan,
		Budget:      req.Budget,
		Options:     req.Options,
	}
	ref := openeo.JobRef{User: user, ID: job.ID}
	j.jobs[ref] = &memJob{job: job, log: newJobLog()}
	j.order = append(j.order, ref)
	return job, nil
}

func (j *memJobs) GetJob(user, id string) (job openeo.BatchJob, err error) {
	globalLock(j)
	defer globalUnlock(j)

	mj, present := j.jobs[openeo.JobRef{User: user, ID: id}]
	if !present {
		return openeo.BatchJob{}, openeo.ErrNoSuchJob{ID: id}
	}
	return mj.job, nil
}

func (j *memJobs) ListJobs(user string) (jobs []openeo.BatchJob, err error) {
	globalLock(j)
	defer globalUnlock(j)

	for _, ref := range j.order {
		if ref.User == user {
			jobs = append(jobs, j.jobs[ref].job)
		}
	}
	return jobs, nil
}

func (j *memJobs) DeleteJob(user, id string) error {
	globalLock(j)
	defer globalUnlock(j)

	ref := openeo.JobRef{User: user, ID: id}
	if _, present := j.jobs[ref]; !present {
		return openeo.ErrNoSuchJob{ID: id}
	}
	delete(j.jobs, ref)
	for i, r := range j.order {
		if r == ref {
			j.order = append(j.order[:i], j.order[i+1:]...)
			break
		}
	}
	return nil
}

func (j *memJobs) StartJob(user, id string) error {
	globalLock(j)
	defer globalUnlock(j)

	mj, present := j.jobs[openeo.JobRef{User: user, ID: id}]
	if !present {
		return openeo.ErrNoSuchJob{ID: id}
	}
	switch mj.job.Status {
	case openeo.JobQueued, openeo.JobRunning:
		return nil
	}
	// Restarting a finished or failed job discards its results
	mj.job.Status = openeo.JobQueued
	mj.results = nil
	return nil
}

func (j *memJobs) CancelJob(user, id string) error {
	globalLock(j)
	defer globalUnlock(j)

	mj, present := j.jobs[openeo.JobRef{User: user, ID: id}]
	if !present {
		return openeo.ErrNoSuchJob{ID: id}
	}
	switch mj.job.Status {
	case openeo.JobQueued, openeo.JobRunning:
		mj.job.Status = openeo.JobCanceled
		mj.results = nil
		return nil
	}
	return openeo.ErrJobNotStarted
}

func (j *memJobs) Results(user, id string) (results []openeo.JobResult, err error) {
	globalLock(j)
	defer globalUnlock(j)

	mj, present := j.jobs[openeo.JobRef{User: user, ID: id}]
	if !present {
		return nil, openeo.ErrNoSuchJob{ID: id}
	}
	if mj.job.Status != openeo.JobFinished {
		return nil, openeo.ErrJobNotFinished
	}
	results = make([]openeo.JobResult, len(mj.results))
	copy(results, mj.results)
	return results, nil
}

func (j *memJobs) Logs(user, id, offset string) (entries []openeo.LogEntry, err error) {
	globalLock(j)
	defer globalUnlock(j)

	mj, present := j.jobs[openeo.JobRef{User: user, ID: id}]
	if !present {
		return nil, openeo.ErrNoSuchJob{ID: id}
	}
	log := mj.log
	if offset != "" {
		// Resume after the last entry the client saw; an offset
		// that matches nothing restarts from the beginning.
		for i, entry := range log {
			if entry.ID == offset {
				log = log[i+1:]
				break
			}
		}
	}
	entries = make([]openeo.LogEntry, len(log))
	copy(entries, log)
	return entries, nil
}

// memory.lockable interface:

func (j *memJobs) Backend() *memBackend {
	return j.backend
}

// openeo.JobQueue interface, on the backend itself:

func (b *memBackend) ClaimQueuedJob() (ref openeo.JobRef, ok bool, err error) {
	globalLock(b)
	defer globalUnlock(b)

	for _, r := range b.jobs.order {
		mj := b.jobs.jobs[r]
		if mj.job.Status == openeo.JobQueued {
			mj.job.Status = openeo.JobRunning
			return r, true, nil
		}
	}
	return openeo.JobRef{}, false, nil
}

func (b *memBackend) FinishJob(ref openeo.JobRef, results []openeo.JobResult) error {
	globalLock(b)
	defer globalUnlock(b)

	mj, present := b.jobs.jobs[ref]
	if !present {
		return openeo.ErrNoSuchJob{ID: ref.ID}
	}
	mj.job.Status = openeo.JobFinished
	mj.results = results
	return nil
}

func (b *memBackend) FailJob(ref openeo.JobRef, message string) error {
	globalLock(b)
	defer globalUnlock(b)

	mj, present := b.jobs.jobs[ref]
	if !present {
		return openeo.ErrNoSuchJob{ID: ref.ID}
	}
	mj.job.Status = openeo.JobError
	mj.log = append(mj.log, openeo.LogEntry{
		ID:      strconv.Itoa(len(mj.log) + 1),
		Level:   "error",
		Message: message,
		Path:    []interface{}{},
	})
	return nil
}
