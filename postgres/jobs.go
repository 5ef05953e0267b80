// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/lib/pq"
	"github.com/satori/go.uuid"

	"github.com/diffeo/go-openeo/openeo"
)

// pgJobs is a container type for an openeo.BatchJobs.
type pgJobs struct {
	backend *pgBackend
}

// jobOutputs lists the columns jobFromRow() scans, in order.
func jobOutputs() []string {
	return []string{
		jobID,
		jobStatus,
		jobProcess,
		jobTitle,
		jobDescription,
		jobPlan,
		jobBudget,
		jobOptions,
		jobProgress,
		jobCosts,
		jobCreated,
		jobUpdated,
	}
}

// jobFromRow scans one row holding the jobOutputs() columns into a
// job record.
func jobFromRow(rows *sql.Rows) (openeo.BatchJob, error) {
	var (
		job          openeo.BatchJob
		statusText   string
		processBytes []byte
		optionsBytes []byte
		budget       sql.NullFloat64
		progress     sql.NullFloat64
		costs        sql.NullFloat64
		created      time.Time
		updated      pq.NullTime
	)
	err := rows.Scan(&job.ID, &statusText, &processBytes, &job.Title,
		&job.Description, &job.Plan, &budget, &optionsBytes,
		&progress, &costs, &created, &updated)
	if err != nil {
		return openeo.BatchJob{}, err
	}
	err = job.Status.UnmarshalText([]byte(statusText))
	if err == nil {
		job.Process, err = bytesToMap(processBytes)
	}
	if err == nil {
		job.Options, err = bytesToMap(optionsBytes)
	}
	if err != nil {
		return openeo.BatchJob{}, err
	}
	job.Budget = nullFloatToFloat(budget)
	job.Progress = nullFloatToFloat(progress)
	job.Costs = nullFloatToFloat(costs)
	job.Created = created.UTC()
	job.Updated = nullTimeToTime(updated)
	return job, nil
}

// jobStatusInTx reads one job's status within a transaction, scoped
// to its owner, mapping a missing row to ErrNoSuchJob.  This doubles
// as the existence check before updates.
func jobStatusInTx(tx *sql.Tx, user, id string) (openeo.JobStatus, error) {
	var (
		status openeo.JobStatus
		text   string
	)
	query := buildSelect([]string{
		jobStatus,
	}, []string{
		jobTable,
	}, []string{
		jobID + "=$1",
		jobOwner + "=$2",
	})
	row := tx.QueryRow(query, id, user)
	err := row.Scan(&text)
	if err == sql.ErrNoRows {
		return status, openeo.ErrNoSuchJob{ID: id}
	}
	if err != nil {
		return status, err
	}
	err = status.UnmarshalText([]byte(text))
	return status, err
}

// setJobStatus updates a job's status and updated timestamp within a
// transaction.  The job is known to exist.
func setJobStatus(tx *sql.Tx, id string, status openeo.JobStatus, now time.Time) error {
	params := queryParams{}
	changes := []string{
		"status=" + params.Param(status.String()),
		"updated=" + params.Param(now),
	}
	conditions := []string{jobID + "=" + params.Param(id)}
	_, err := tx.Exec(buildUpdate(jobTable, changes, conditions), params...)
	return err
}

// deleteJobResults discards a job's stored result artifacts within a
// transaction.
func deleteJobResults(tx *sql.Tx, id string) error {
	params := queryParams{}
	query := "DELETE FROM " + jobResultTable +
		" WHERE " + jobResultJob + "=" + params.Param(id)
	_, err := tx.Exec(query, params...)
	return err
}

// insertLogEntry appends one entry to a job's log within a
// transaction.
func insertLogEntry(tx *sql.Tx, id, entryID, level, message string, path []interface{}) error {
	pathBytes, err := sliceToBytes(path)
	if err != nil {
		return err
	}
	params := queryParams{}
	fields := fieldList{}
	fields.Add(&params, "job_id", id)
	fields.Add(&params, "entry_id", entryID)
	fields.Add(&params, "level", level)
	fields.Add(&params, "message", message)
	fields.Add(&params, "path", pathBytes)
	_, err = tx.Exec(fields.InsertStatement(jobLogTable), params...)
	return err
}

// openeo.BatchJobs interface:

func (j *pgJobs) CreateJob(user string, req openeo.JobRequest) (openeo.BatchJob, error) {
	if req.Process == nil {
		return openeo.BatchJob{}, openeo.ErrProcessGraphMissing
	}
	processBytes, err := mapToBytes(req.Process)
	if err != nil {
		return openeo.BatchJob{}, err
	}
	optionsBytes, err := mapToBytes(req.Options)
	if err != nil {
		return openeo.BatchJob{}, err
	}
	job := openeo.BatchJob{
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
	err = withTx(j, false, func(tx *sql.Tx) error {
		params := queryParams{}
		fields := fieldList{}
		fields.Add(&params, "id", job.ID)
		fields.Add(&params, "owner", user)
		fields.Add(&params, "status", job.Status.String())
		fields.Add(&params, "process", processBytes)
		fields.Add(&params, "title", job.Title)
		fields.Add(&params, "description", job.Description)
		fields.Add(&params, "plan", job.Plan)
		fields.Add(&params, "budget", floatToNullFloat(job.Budget))
		fields.Add(&params, "options", optionsBytes)
		fields.Add(&params, "created", job.Created)
		_, err := tx.Exec(fields.InsertStatement(jobTable), params...)
		if err != nil {
			return err
		}
		return insertLogEntry(tx, job.ID, "1", "info", "hello world", []interface{}{})
	})
	if err != nil {
		return openeo.BatchJob{}, err
	}
	return job, nil
}

func (j *pgJobs) GetJob(user, id string) (openeo.BatchJob, error) {
	var (
		job   openeo.BatchJob
		found bool
	)
	params := queryParams{}
	query := buildSelect(jobOutputs(), []string{jobTable}, []string{
		jobID + "=" + params.Param(id),
		jobOwner + "=" + params.Param(user),
	})
	err := queryAndScan(j, query, params, func(rows *sql.Rows) error {
		var err error
		job, err = jobFromRow(rows)
		found = err == nil
		return err
	})
	if err == nil && !found {
		err = openeo.ErrNoSuchJob{ID: id}
	}
	if err != nil {
		return openeo.BatchJob{}, err
	}
	return job, nil
}

func (j *pgJobs) ListJobs(user string) ([]openeo.BatchJob, error) {
	var jobs []openeo.BatchJob
	params := queryParams{}
	query := buildSelect(jobOutputs(), []string{jobTable}, []string{
		jobOwner + "=" + params.Param(user),
	})
	query += " ORDER BY " + jobSeq
	err := queryAndScan(j, query, params, func(rows *sql.Rows) error {
		job, err := jobFromRow(rows)
		if err == nil {
			jobs = append(jobs, job)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (j *pgJobs) DeleteJob(user, id string) error {
	return withTx(j, false, func(tx *sql.Tx) error {
		params := queryParams{}
		query := "DELETE FROM " + jobTable +
			" WHERE " + jobID + "=" + params.Param(id) +
			" AND " + jobOwner + "=" + params.Param(user)
		result, err := tx.Exec(query, params...)
		if err != nil {
			return err
		}
		count, err := result.RowsAffected()
		if err == nil && count == 0 {
			err = openeo.ErrNoSuchJob{ID: id}
		}
		return err
	})
}

func (j *pgJobs) StartJob(user, id string) error {
	return withTx(j, false, func(tx *sql.Tx) error {
		status, err := jobStatusInTx(tx, user, id)
		if err != nil {
			return err
		}
		switch status {
		case openeo.JobQueued, openeo.JobRunning:
			return nil
		}
		// Restarting a finished or failed job discards its results
		err = deleteJobResults(tx, id)
		if err == nil {
			err = setJobStatus(tx, id, openeo.JobQueued, j.backend.clock.Now().UTC())
		}
		return err
	})
}

func (j *pgJobs) CancelJob(user, id string) error {
	return withTx(j, false, func(tx *sql.Tx) error {
		status, err := jobStatusInTx(tx, user, id)
		if err != nil {
			return err
		}
		switch status {
		case openeo.JobQueued, openeo.JobRunning:
			err = deleteJobResults(tx, id)
			if err == nil {
				err = setJobStatus(tx, id, openeo.JobCanceled, j.backend.clock.Now().UTC())
			}
			return err
		}
		return openeo.ErrJobNotStarted
	})
}

func (j *pgJobs) Results(user, id string) ([]openeo.JobResult, error) {
	var results []openeo.JobResult
	err := withTx(j, true, func(tx *sql.Tx) error {
		status, err := jobStatusInTx(tx, user, id)
		if err != nil {
			return err
		}
		if status != openeo.JobFinished {
			return openeo.ErrJobNotFinished
		}
		query := buildSelect([]string{
			jobResultName,
			jobResultMediaType,
			jobResultContent,
		}, []string{
			jobResultTable,
		}, []string{
			jobResultJob + "=$1",
		})
		query += " ORDER BY " + jobResultSeq
		rows, err := tx.Query(query, id)
		if err != nil {
			return err
		}
		return scanRows(rows, func() error {
			var result openeo.JobResult
			err := rows.Scan(&result.Name, &result.MediaType, &result.Content)
			if err == nil {
				results = append(results, result)
			}
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (j *pgJobs) Logs(user, id, offset string) ([]openeo.LogEntry, error) {
	var entries []openeo.LogEntry
	err := withTx(j, true, func(tx *sql.Tx) error {
		_, err := jobStatusInTx(tx, user, id)
		if err != nil {
			return err
		}
		query := buildSelect([]string{
			jobLogEntry,
			jobLogLevel,
			jobLogMessage,
			jobLogPath,
		}, []string{
			jobLogTable,
		}, []string{
			jobLogJob + "=$1",
		})
		query += " ORDER BY " + jobLogSeq
		rows, err := tx.Query(query, id)
		if err != nil {
			return err
		}
		return scanRows(rows, func() error {
			var (
				entry     openeo.LogEntry
				pathBytes []byte
			)
			err := rows.Scan(&entry.ID, &entry.Level, &entry.Message, &pathBytes)
			if err != nil {
				return err
			}
			entry.Path, err = bytesToSlice(pathBytes)
			if err == nil {
				entries = append(entries, entry)
			}
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	if offset != "" {
		// Resume after the last entry the client saw; an offset
		// that matches nothing restarts from the beginning.
		for i, entry := range entries {
			if entry.ID == offset {
				entries = entries[i+1:]
				break
			}
		}
	}
	return entries, nil
}

// postgres.backendable interface:

func (j *pgJobs) Backend() *pgBackend {
	return j.backend
}

// openeo.JobQueue interface, on the backend itself:

func (b *pgBackend) ClaimQueuedJob() (openeo.JobRef, bool, error) {
	var (
		ref openeo.JobRef
		ok  bool
	)
	err := withTx(b, false, func(tx *sql.Tx) error {
		// Reset any state from a previous serialization retry
		ref = openeo.JobRef{}
		ok = false
		params := queryParams{}
		query := buildSelect([]string{
			jobID,
			jobOwner,
		}, []string{
			jobTable,
		}, []string{
			jobStatus + "=" + params.Param(openeo.JobQueued.String()),
		})
		query += " ORDER BY " + jobSeq + " LIMIT 1"
		row := tx.QueryRow(query, params...)
		err := row.Scan(&ref.ID, &ref.User)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}
		err = setJobStatus(tx, ref.ID, openeo.JobRunning, b.clock.Now().UTC())
		if err == nil {
			ok = true
		}
		return err
	})
	if err != nil {
		return openeo.JobRef{}, false, err
	}
	return ref, ok, nil
}

func (b *pgBackend) FinishJob(ref openeo.JobRef, results []openeo.JobResult) error {
	return withTx(b, false, func(tx *sql.Tx) error {
		_, err := jobStatusInTx(tx, ref.User, ref.ID)
		if err != nil {
			return err
		}
		err = deleteJobResults(tx, ref.ID)
		if err != nil {
			return err
		}
		for _, result := range results {
			params := queryParams{}
			fields := fieldList{}
			fields.Add(&params, "job_id", ref.ID)
			fields.Add(&params, "name", result.Name)
			fields.Add(&params, "media_type", result.MediaType)
			fields.Add(&params, "content", result.Content)
			_, err = tx.Exec(fields.InsertStatement(jobResultTable), params...)
			if err != nil {
				return err
			}
		}
		return setJobStatus(tx, ref.ID, openeo.JobFinished, b.clock.Now().UTC())
	})
}

func (b *pgBackend) FailJob(ref openeo.JobRef, message string) error {
	return withTx(b, false, func(tx *sql.Tx) error {
		_, err := jobStatusInTx(tx, ref.User, ref.ID)
		if err != nil {
			return err
		}
		// Entry ids continue the 1, 2, ... sequence
		var count int
		params := queryParams{}
		query := buildSelect([]string{
			"COUNT(*)",
		}, []string{
			jobLogTable,
		}, []string{
			jobLogJob + "=" + params.Param(ref.ID),
		})
		row := tx.QueryRow(query, params...)
		err = row.Scan(&count)
		if err != nil {
			return err
		}
		err = insertLogEntry(tx, ref.ID, strconv.Itoa(count+1), "error", message, []interface{}{})
		if err == nil {
			err = setJobStatus(tx, ref.ID, openeo.JobError, b.clock.Now().UTC())
		}
		return err
	})
}
